package main

import (
	"context"
	"database/sql"
	"fmt"

	"gizmo/internal/bot"
	"gizmo/internal/config"
	fxmodules "gizmo/internal/fx"
	"gizmo/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.ServicesModule,
		fxmodules.StorageModule,
		fx.Provide(
			newSession,
			func(s *service.SearchService) bot.Searcher { return s },
			bot.New,
		),
		fx.Invoke(runBot),
	).Run()
}

func newSession(cfg *config.Config) (*discordgo.Session, error) {
	if err := cfg.RequireDiscord(); err != nil {
		return nil, err
	}
	sess, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("discord session error: %w", err)
	}
	sess.Identify.Intents = discordgo.IntentsGuilds
	return sess, nil
}

func runBot(lc fx.Lifecycle, b *bot.Bot, sess *discordgo.Session, db *sql.DB, logger zerolog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := sess.Open(); err != nil {
				return fmt.Errorf("open gateway error: %w", err)
			}
			if err := b.Register(); err != nil {
				return err
			}
			logger.Info().Str("user", sess.State.User.Username).Msg("bot ready")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down bot")
			if err := sess.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing discord session")
			}
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			return nil
		},
	})
}
