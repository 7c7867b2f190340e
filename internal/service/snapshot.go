package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gizmo/internal/constants"
	"gizmo/internal/domain"

	"github.com/rs/zerolog"
)

// RankedPlaylists are the playlists whose replays carry the settings a player
// actually competes with.
var RankedPlaylists = []string{"ranked-duels", "ranked-doubles", "ranked-standard"}

type SnapshotService struct {
	replays ReplayGateway
	steam   SteamProfiles
	logger  zerolog.Logger
}

func NewSnapshotService(replays ReplayGateway, steam SteamProfiles, logger zerolog.Logger) *SnapshotService {
	return &SnapshotService{replays: replays, steam: steam, logger: logger}
}

// Snapshot reads the player's settings out of their newest ranked replay. When the
// account has no ranked replay the newest replay of any playlist is used instead and
// the snapshot is marked as not ranked.
func (s *SnapshotService) Snapshot(ctx context.Context, account domain.AccountRef) (*domain.PlayerSnapshot, error) {
	log := s.logger.With().Str("account", account.String()).Logger()

	replay, found, err := s.latestDeep(ctx, account, RankedPlaylists)
	if err != nil {
		return nil, err
	}
	ranked := found
	if !found {
		log.Info().Msg("no ranked replay, falling back to any playlist")
		replay, found, err = s.latestDeep(ctx, account, nil)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("snapshot %s: no replays: %w", account, domain.ErrNotFound)
		}
	}

	slot, _, ok := replay.FindSlot(func(sl domain.Slot) bool { return sl.Account == account })
	if !ok {
		return nil, fmt.Errorf("snapshot %s: replay %s has no slot for the player: %w", account, replay.ID, domain.ErrNotFound)
	}

	snap := &domain.PlayerSnapshot{
		Account:             account,
		Name:                slot.Name,
		SteeringSensitivity: slot.SteeringSensitivity,
		CarName:             slot.CarName,
		MatchDate:           datePart(replay.RawDate),
		Ranked:              ranked,
		Links:               s.links(ctx, account),
	}
	if slot.Camera != nil {
		snap.Camera = *slot.Camera
	}
	snap.Uploader = s.isUploader(ctx, account)

	log.Debug().Str("replay_id", replay.ID).Bool("ranked", ranked).Msg("snapshot built")
	return snap, nil
}

func (s *SnapshotService) latestDeep(ctx context.Context, account domain.AccountRef, playlists []string) (domain.Replay, bool, error) {
	apiCtx, cancel := context.WithTimeout(ctx, 2*constants.ExternalAPITimeout)
	defer cancel()

	return firstReplay(apiCtx, s.replays, domain.ReplayQuery{
		PlayerID:  account.String(),
		Playlists: playlists,
		Deep:      true,
		SortBy:    domain.SortMostRecent,
		Limit:     1,
	})
}

func (s *SnapshotService) links(ctx context.Context, account domain.AccountRef) domain.Links {
	links := domain.Links{Ballchasing: BallchasingPlayerURL(account)}
	if account.Platform != domain.PlatformSteam || s.steam == nil {
		return links
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	profile, err := s.steam.Profile(apiCtx, account.ID)
	if err != nil {
		s.logger.Debug().Err(err).Str("account", account.String()).Msg("steam profile unavailable")
		return links
	}
	links.Steam = profile.ProfileURL
	links.Avatar = profile.AvatarURL
	return links
}

// isUploader reports whether the account uploads replays itself. Only numeric ids
// can be uploaders.
func (s *SnapshotService) isUploader(ctx context.Context, account domain.AccountRef) bool {
	if _, err := strconv.ParseUint(account.ID, 10, 64); err != nil {
		return false
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	_, found, err := firstReplay(apiCtx, s.replays, domain.ReplayQuery{
		Uploader: account.ID,
		SortBy:   domain.SortMostRecent,
		Limit:    1,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("account", account.String()).Msg("uploader check failed")
		return false
	}
	return found
}

func BallchasingPlayerURL(account domain.AccountRef) string {
	return fmt.Sprintf("https://ballchasing.com/player/%s/%s", account.Platform, account.ID)
}

func datePart(raw string) string {
	date, _, _ := strings.Cut(raw, "T")
	return date
}
