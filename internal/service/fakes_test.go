package service_test

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	"gizmo/internal/api"
	"gizmo/internal/domain"
)

// step is one element of a fake replay stream.
type step struct {
	replay domain.Replay
	err    error
}

func ok(r domain.Replay) step { return step{replay: r} }
func fail(err error) step     { return step{err: err} }

func replays(rs ...domain.Replay) []step {
	steps := make([]step, 0, len(rs))
	for _, r := range rs {
		steps = append(steps, ok(r))
	}
	return steps
}

type fakeGateway struct {
	mu      sync.Mutex
	queries []domain.ReplayQuery
	respond func(q domain.ReplayQuery) []step
}

func (f *fakeGateway) SearchReplays(_ context.Context, q domain.ReplayQuery) iter.Seq2[domain.Replay, error] {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	return func(yield func(domain.Replay, error) bool) {
		if f.respond == nil {
			return
		}
		for _, s := range f.respond(q) {
			if !yield(s.replay, s.err) {
				return
			}
			if s.err != nil && !errors.Is(s.err, domain.ErrMalformedRecord) {
				return
			}
		}
	}
}

func (f *fakeGateway) recorded() []domain.ReplayQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ReplayQuery(nil), f.queries...)
}

type fakeVanity map[string]string

func (f fakeVanity) ResolveVanity(_ context.Context, vanity string) (string, bool) {
	id, found := f[vanity]
	return id, found
}

type fakeSteamProfiles struct {
	profile *api.SteamProfile
	err     error
}

func (f fakeSteamProfiles) Profile(context.Context, string) (*api.SteamProfile, error) {
	return f.profile, f.err
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []domain.SearchRecord
	err     error
}

func (f *fakeRecorder) Insert(_ context.Context, rec *domain.SearchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *rec)
	return f.err
}

func (f *fakeRecorder) Recent(_ context.Context, limit int) ([]domain.SearchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.records) > limit {
		return f.records[:limit], f.err
	}
	return f.records, f.err
}

func acct(platform domain.Platform, id string) domain.AccountRef {
	return domain.AccountRef{Platform: platform, ID: id}
}

func slot(account domain.AccountRef, name string) domain.Slot {
	return domain.Slot{Account: account, Name: name}
}

func proSlot(account domain.AccountRef, name string) domain.Slot {
	s := slot(account, name)
	s.Pro = true
	return s
}

func ghost() domain.Slot {
	return domain.Slot{Ghost: true}
}

func splitScreen(account domain.AccountRef, name string) domain.Slot {
	s := slot(account, name)
	s.SplitScreen = true
	return s
}

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func match(id string, at time.Duration, blue, orange []domain.Slot) domain.Replay {
	date := base.Add(at)
	return domain.Replay{
		ID:      id,
		Date:    date,
		RawDate: date.Format(time.RFC3339),
		Blue:    blue,
		Orange:  orange,
	}
}
