package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cdeck95/dg-events-bot/internal/agg"
	"github.com/cdeck95/dg-events-bot/internal/bot"
	"github.com/cdeck95/dg-events-bot/internal/config"
	cronrunner "github.com/cdeck95/dg-events-bot/internal/cron"
	"github.com/cdeck95/dg-events-bot/internal/discord"
	"github.com/cdeck95/dg-events-bot/internal/httpapi"
	"github.com/cdeck95/dg-events-bot/internal/logger"
	"github.com/cdeck95/dg-events-bot/internal/rsvp"
	"github.com/cdeck95/dg-events-bot/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("DGBOT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	envOnly := false
	if raw := os.Getenv("DGBOT_ENV_ONLY"); raw != "" {
		envOnly = strings.EqualFold(raw, "true") || raw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		log.Fatal("DISCORD_TOKEN is not set")
	}
	if cfg.Discord.GuildID == "" || cfg.Discord.AnnounceChannelID == "" {
		log.Fatal("discord.guild_id and discord.announce_channel_id must be configured")
	}

	loc, err := time.LoadLocation(cfg.Events.Timezone)
	if err != nil {
		log.Warn("unknown timezone, using local", zap.String("timezone", cfg.Events.Timezone), zap.Error(err))
		loc = time.Local
	}

	st := store.New(cfg.Store.Path, log)
	st.Load()
	log.Info("event store loaded", zap.String("path", cfg.Store.Path), zap.Int("events", st.Len()))

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatal("discord session init failed", zap.Error(err))
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentGuildScheduledEvents

	source := discord.NewEventSource(session, log, cfg.Events.FetchLimit)
	aggregator := agg.New(source, st, loc)
	controller := rsvp.NewController(st)

	b := bot.New(session, st, aggregator, controller, log, loc, bot.Options{
		GuildID:           cfg.Discord.GuildID,
		AnnounceChannelID: cfg.Discord.AnnounceChannelID,
		Locations:         cfg.Events.Locations,
		DisplayLimit:      cfg.Events.DisplayLimit,
		ReminderLead:      cfg.Reminder.LeadTime,
	})
	b.Register()

	if err := session.Open(); err != nil {
		log.Fatal("discord gateway open failed", zap.Error(err))
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		runner := cronrunner.New(log, ctx)
		if _, err := runner.Add(cfg.Cron.ReminderSweep, b.SweepReminders); err != nil {
			log.Warn("cron register reminder sweep failed", zap.Error(err))
		}
		if _, err := runner.Add(cfg.Cron.MorningDigest, b.AnnounceToday); err != nil {
			log.Warn("cron register morning digest failed", zap.Error(err))
		}
		if _, err := runner.Add(cfg.Cron.EveningDigest, b.AnnounceTomorrow); err != nil {
			log.Warn("cron register evening digest failed", zap.Error(err))
		}
		runner.Start()
		defer runner.Stop()
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	opsHandler := &httpapi.EventsHandler{
		Agg:     aggregator,
		GuildID: cfg.Discord.GuildID,
		Logger:  log,
	}
	opsHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
