package service

import (
	"context"
	"fmt"
	"time"

	"gizmo/internal/constants"
	"gizmo/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SearchRecorder is the audit log behind SearchService.
type SearchRecorder interface {
	Insert(ctx context.Context, rec *domain.SearchRecord) error
	Recent(ctx context.Context, limit int) ([]domain.SearchRecord, error)
}

// NopRecorder drops every record. Used by the CLI, which has no database.
type NopRecorder struct{}

func (NopRecorder) Insert(context.Context, *domain.SearchRecord) error { return nil }

func (NopRecorder) Recent(context.Context, int) ([]domain.SearchRecord, error) {
	return []domain.SearchRecord{}, nil
}

type LookupResult struct {
	Resolution *Resolution            `json:"resolution"`
	Snapshot   *domain.PlayerSnapshot `json:"snapshot"`
}

type DeepResult struct {
	Resolution *Resolution            `json:"resolution"`
	Snapshot   *domain.PlayerSnapshot `json:"snapshot"`
	Profile    *domain.PlayerProfile  `json:"profile"`
}

type SearchService struct {
	resolver  *Resolver
	snapshots *SnapshotService
	history   *HistoryService
	recorder  SearchRecorder
	logger    zerolog.Logger
}

func NewSearchService(
	resolver *Resolver,
	snapshots *SnapshotService,
	history *HistoryService,
	recorder SearchRecorder,
	logger zerolog.Logger,
) *SearchService {
	return &SearchService{
		resolver:  resolver,
		snapshots: snapshots,
		history:   history,
		recorder:  recorder,
		logger:    logger,
	}
}

// Lookup resolves target and reads the player's current settings.
func (s *SearchService) Lookup(ctx context.Context, target string) (*LookupResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	start := time.Now()
	rec := &domain.SearchRecord{Target: target, Mode: domain.SearchLookup}
	defer s.record(ctx, rec, start)

	res, err := s.resolver.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	rec.Account, rec.Stage = res.Account, res.Stage

	snap, err := s.snapshots.Snapshot(ctx, res.Account)
	if err != nil {
		s.logger.Warn().Err(err).Str("account", res.Account.String()).Msg("snapshot failed")
		return nil, fmt.Errorf("lookup %q: %w", target, err)
	}
	rec.Found = true

	return &LookupResult{Resolution: res, Snapshot: snap}, nil
}

// Deep is Lookup plus the whole-history profile. The snapshot and the history walk
// run side by side. A history walk cut short by the upstream service still
// returns, with Profile.Complete=false.
func (s *SearchService) Deep(ctx context.Context, target string) (*DeepResult, error) {
	start := time.Now()
	rec := &domain.SearchRecord{Target: target, Mode: domain.SearchDeep}
	defer s.record(ctx, rec, start)

	resolveCtx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	res, err := s.resolver.Resolve(resolveCtx, target)
	cancel()
	if err != nil {
		return nil, err
	}
	rec.Account, rec.Stage = res.Account, res.Stage

	log := s.logger.With().Str("account", res.Account.String()).Logger()
	result := &DeepResult{Resolution: res}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snapCtx, cancel := context.WithTimeout(gCtx, constants.RequestTimeout)
		defer cancel()

		snap, err := s.snapshots.Snapshot(snapCtx, res.Account)
		if err != nil {
			return fmt.Errorf("deep %q: %w", target, err)
		}
		result.Snapshot = snap
		return nil
	})
	g.Go(func() error {
		profile, err := s.history.Aggregate(gCtx, res.Account)
		if err != nil {
			// partial profiles are still worth showing
			log.Warn().Err(err).Int("replay_count", profile.ReplayCount).Msg("history incomplete")
		}
		result.Profile = profile
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("deep search failed")
		return nil, err
	}

	rec.Found = true
	rec.ReplayCount = result.Profile.ReplayCount
	rec.Complete = result.Profile.Complete
	return result, nil
}

// History aggregates an account that has already been resolved, for callers that
// show the lookup before the slow history walk. The partial profile is returned
// alongside any upstream error.
func (s *SearchService) History(ctx context.Context, account domain.AccountRef) (*domain.PlayerProfile, error) {
	start := time.Now()
	rec := &domain.SearchRecord{Target: account.String(), Mode: domain.SearchDeep, Account: account, Stage: "resolved"}
	defer s.record(ctx, rec, start)

	profile, err := s.history.Aggregate(ctx, account)
	rec.Found = true
	rec.ReplayCount = profile.ReplayCount
	rec.Complete = profile.Complete
	return profile, err
}

// RecentSearches lists the newest audit entries. limit<=0 selects the default.
func (s *SearchService) RecentSearches(ctx context.Context, limit int) ([]domain.SearchRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	switch {
	case limit <= 0:
		limit = constants.RecentSearchLimit
	case limit > constants.MaxRecentSearchLimit:
		limit = constants.MaxRecentSearchLimit
	}

	records, err := s.recorder.Recent(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Msg("failed to list recent searches")
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	return records, nil
}

func (s *SearchService) record(ctx context.Context, rec *domain.SearchRecord, start time.Time) {
	rec.Duration = time.Since(start)

	dbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DatabaseTimeout)
	defer cancel()

	if err := s.recorder.Insert(dbCtx, rec); err != nil {
		s.logger.Warn().Err(err).Str("target", rec.Target).Msg("failed to record search")
	}
}
