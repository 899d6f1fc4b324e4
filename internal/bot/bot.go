package bot

import (
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/cdeck95/dg-events-bot/internal/agg"
	"github.com/cdeck95/dg-events-bot/internal/rsvp"
	"github.com/cdeck95/dg-events-bot/internal/store"
)

// Options carries the per-deployment knobs the handlers need.
type Options struct {
	GuildID           string
	AnnounceChannelID string
	Locations         []string
	DisplayLimit      int
	ReminderLead      time.Duration
}

// memberAPI and channelAPI are the slices of the session the handlers use
// for rendering; *discordgo.Session satisfies both.
type memberAPI interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

type channelAPI interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot owns the interaction handlers and the timed announcements for one
// guild.
type Bot struct {
	session  *discordgo.Session
	members  memberAPI
	channels channelAPI
	store    *store.Store
	agg      *agg.Aggregator
	rsvp     *rsvp.Controller
	log      *zap.Logger
	loc      *time.Location
	opts     Options

	remindedMu sync.Mutex
	reminded   map[string]time.Time
}

func New(session *discordgo.Session, st *store.Store, aggregator *agg.Aggregator, controller *rsvp.Controller, log *zap.Logger, loc *time.Location, opts Options) *Bot {
	if loc == nil {
		loc = time.Local
	}
	if opts.DisplayLimit <= 0 {
		opts.DisplayLimit = 10
	}
	if opts.ReminderLead <= 0 {
		opts.ReminderLead = time.Hour
	}
	return &Bot{
		session:  session,
		members:  session,
		channels: session,
		store:    st,
		agg:      aggregator,
		rsvp:     controller,
		log:      log,
		loc:      loc,
		opts:     opts,
		reminded: map[string]time.Time{},
	}
}

// Register attaches the gateway handlers to the session.
func (b *Bot) Register() {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("logged in", zap.String("user", r.User.Username))
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleButton(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.handleAutocomplete(s, i)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if err := b.deferEphemeral(s, i); err != nil {
		b.log.Warn("defer reply failed", zap.String("command", data.Name), zap.Error(err))
		return
	}

	opts := optionMap(data.Options)
	switch data.Name {
	case "create_event":
		b.handleCreateEvent(s, i, opts)
	case "delete_event":
		b.handleDeleteEvent(s, i, opts)
	case "edit_title":
		b.handleEditTitle(s, i, opts)
	case "edit_description":
		b.handleEditDescription(s, i, opts)
	case "events_today":
		b.handleEventsToday(s, i)
	case "future_events":
		b.handleFutureEvents(s, i)
	default:
		b.editReply(s, i, "Unknown command.")
	}
}

func (b *Bot) handleButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, eventID, ok := strings.Cut(i.MessageComponentData().CustomID, "_")
	if !ok || (action != string(rsvp.KindGoing) && action != string(rsvp.KindMaybe)) {
		return
	}
	b.handleToggle(s, i, rsvp.Kind(action), eventID)
}

func (b *Bot) deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

func (b *Bot) editReply(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		b.log.Warn("edit reply failed", zap.Error(err))
	}
}

func (b *Bot) replyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.log.Warn("reply failed", zap.Error(err))
	}
}

// announce posts to the configured announcement channel. Best effort; every
// caller also confirms to the invoking user via the interaction.
func (b *Bot) announce(msg *discordgo.MessageSend) {
	if _, err := b.channels.ChannelMessageSendComplex(b.opts.AnnounceChannelID, msg); err != nil {
		b.log.Warn("announce failed", zap.String("channel_id", b.opts.AnnounceChannelID), zap.Error(err))
	}
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
