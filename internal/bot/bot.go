package bot

import (
	"context"
	"fmt"
	"strings"

	"gizmo/internal/config"
	"gizmo/internal/constants"
	"gizmo/internal/domain"
	"gizmo/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const (
	CommandBalls = "balls"
	CommandDeep  = "deep"

	moreComing = " > More coming **↓** (This might take a minute)"
)

// Searcher is the part of the search service the bot drives.
type Searcher interface {
	Lookup(ctx context.Context, target string) (*service.LookupResult, error)
	History(ctx context.Context, account domain.AccountRef) (*domain.PlayerProfile, error)
}

func Commands() []*discordgo.ApplicationCommand {
	targetOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "target",
		Description: "Profile URL, platform:id, SteamID64 or exact player name",
		MaxLength:   constants.MaxTargetInput,
	}
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandBalls,
			Description: "Look up a player's current settings",
			Type:        discordgo.ChatApplicationCommand,
			Options:     []*discordgo.ApplicationCommandOption{targetOption},
		},
		{
			Name:        CommandDeep,
			Description: "Dig through a player's whole replay history",
			Type:        discordgo.ChatApplicationCommand,
			Options:     []*discordgo.ApplicationCommandOption{targetOption},
		},
	}
}

type Bot struct {
	session *discordgo.Session
	search  Searcher
	appID   string
	guildID string
	logger  zerolog.Logger
}

func New(session *discordgo.Session, search Searcher, cfg *config.Config, logger zerolog.Logger) *Bot {
	return &Bot{
		session: session,
		search:  search,
		appID:   cfg.DiscordAppID,
		guildID: cfg.DiscordGuildID,
		logger:  logger.With().Str("component", "bot").Logger(),
	}
}

// Register installs the interaction handler and overwrites the slash commands.
// An empty guild id registers them globally.
func (b *Bot) Register() error {
	b.session.AddHandler(b.handleInteraction)

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.appID, b.guildID, Commands())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	b.logger.Info().Int("commands", len(registered)).Str("guild_id", b.guildID).Msg("slash commands registered")
	return nil
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	target := targetOption(data.Options)

	log := b.logger.With().
		Str("command", data.Name).
		Str("target", target).
		Str("guild_id", i.GuildID).
		Str("user", interactionUser(i)).
		Logger()
	log.Info().Msg("command received")

	switch data.Name {
	case CommandBalls, CommandDeep:
	default:
		return
	}

	// upstream calls easily outlast the three second interaction window
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		log.Error().Err(err).Msg("failed to defer interaction")
		return
	}

	ctx := log.WithContext(context.Background())
	if data.Name == CommandDeep {
		b.runDeep(ctx, s, i, target)
		return
	}
	b.runLookup(ctx, s, i, target)
}

// runLookup posts the player card and returns the result for follow-up work.
// A nil result means a reply explaining the failure was already sent.
func (b *Bot) runLookup(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, target string) *service.LookupResult {
	log := zerolog.Ctx(ctx)

	if target == "" {
		b.followup(ctx, s, i, HelpEmbed())
		return nil
	}

	result, err := b.search.Lookup(ctx, target)
	switch {
	case err == nil:
	case domain.IsNotFound(err):
		log.Info().Err(err).Msg("target not found")
		b.followup(ctx, s, i, NotFoundEmbed(target))
		return nil
	default:
		log.Error().Err(err).Msg("lookup failed")
		b.followup(ctx, s, i, ErrorEmbed(err))
		return nil
	}

	b.followup(ctx, s, i, PlayerEmbed(result))
	return result
}

func (b *Bot) runDeep(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, target string) {
	log := zerolog.Ctx(ctx)

	result := b.runLookup(ctx, s, i, target)
	if result == nil {
		return
	}

	note, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: moreComing})
	if err != nil {
		log.Warn().Err(err).Msg("failed to post progress note")
	}

	profile, err := b.search.History(ctx, result.Resolution.Account)
	if err != nil {
		log.Error().Err(err).Int("replay_count", profile.ReplayCount).Msg("history incomplete")
	}
	b.followup(ctx, s, i, HistoryEmbeds(profile, result.Snapshot.Name)...)

	if note != nil {
		if err := s.FollowupMessageDelete(i.Interaction, note.ID); err != nil {
			log.Warn().Err(err).Msg("failed to delete progress note")
		}
	}
}

func (b *Bot) followup(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, embeds ...*discordgo.MessageEmbed) {
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Embeds: embeds}); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send followup")
	}
}

func targetOption(opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, o := range opts {
		if o.Name == "target" && o.Type == discordgo.ApplicationCommandOptionString {
			return strings.TrimSpace(o.StringValue())
		}
	}
	return ""
}

func interactionUser(i *discordgo.InteractionCreate) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.Username
	case i.User != nil:
		return i.User.Username
	default:
		return ""
	}
}
