package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Discord  DiscordConfig  `mapstructure:"discord"`
	Store    StoreConfig    `mapstructure:"store"`
	Events   EventsConfig   `mapstructure:"events"`
	Cron     CronConfig     `mapstructure:"cron"`
	Reminder ReminderConfig `mapstructure:"reminder"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DiscordConfig struct {
	GuildID           string `mapstructure:"guild_id"`
	AnnounceChannelID string `mapstructure:"announce_channel_id"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type EventsConfig struct {
	Timezone     string   `mapstructure:"timezone"`
	FetchLimit   int      `mapstructure:"fetch_limit"`
	DisplayLimit int      `mapstructure:"display_limit"`
	Locations    []string `mapstructure:"locations"`
}

type CronConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ReminderSweep string `mapstructure:"reminder_sweep"`
	MorningDigest string `mapstructure:"morning_digest"`
	EveningDigest string `mapstructure:"evening_digest"`
}

type ReminderConfig struct {
	LeadTime time.Duration `mapstructure:"lead_time"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DGBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("discord.guild_id", "")
	v.SetDefault("discord.announce_channel_id", "")
	v.SetDefault("store.path", "events.json")
	v.SetDefault("events.timezone", "America/New_York")
	v.SetDefault("events.fetch_limit", 10)
	v.SetDefault("events.display_limit", 10)
	v.SetDefault("events.locations", []string{
		"Tranquility Trails",
		"Stafford Woods",
		"Alcyon Woods",
		"New Brooklyn",
		"SoVi",
	})
	// Schedules use the six-field form because the cron runner enables
	// seconds resolution.
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.reminder_sweep", "0 */5 * * * *")
	v.SetDefault("cron.morning_digest", "0 30 8 * * *")
	v.SetDefault("cron.evening_digest", "0 0 21 * * *")
	v.SetDefault("reminder.lead_time", "1h")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if err := validateSchedules(cfg.Cron); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateSchedules(cfg CronConfig) error {
	g := gronx.New()
	for name, expr := range map[string]string{
		"reminder_sweep": cfg.ReminderSweep,
		"morning_digest": cfg.MorningDigest,
		"evening_digest": cfg.EveningDigest,
	} {
		if !g.IsValid(expr) {
			return fmt.Errorf("cron.%s: invalid schedule %q", name, expr)
		}
	}
	return nil
}
