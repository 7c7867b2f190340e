package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gizmo/internal/config"
	"gizmo/internal/constants"
	"gizmo/internal/domain"

	"github.com/rs/zerolog"
)

type HistoryService struct {
	replays ReplayGateway
	limit   int
	logger  zerolog.Logger
}

func NewHistoryService(replays ReplayGateway, cfg *config.Config, logger zerolog.Logger) *HistoryService {
	return &HistoryService{replays: replays, limit: cfg.HistoryLimit, logger: logger}
}

// Aggregate streams the account's whole replay history in the order the gateway
// delivers it and folds it into a profile. If the stream fails part way the
// profile built so far is returned with Complete=false together with the error.
func (s *HistoryService) Aggregate(ctx context.Context, account domain.AccountRef) (*domain.PlayerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.HistoryTimeout)
	defer cancel()

	log := s.logger.With().Str("account", account.String()).Logger()
	start := time.Now()

	acc := newHistoryAccumulator(account)
	skipped := 0

	for replay, err := range s.replays.SearchReplays(ctx, domain.ReplayQuery{PlayerID: account.String(), Limit: s.limit}) {
		if err != nil {
			if isMalformed(err) {
				skipped++
				log.Debug().Err(err).Msg("skipping malformed replay")
				continue
			}
			log.Error().Err(err).Int("replay_count", acc.replayCount).Msg("history stream interrupted")
			return acc.profile(false), fmt.Errorf("aggregate %s: %w", account, err)
		}

		if acc.add(replay) && acc.replayCount%constants.HistoryProgressEvery == 0 {
			log.Debug().Int("replay_count", acc.replayCount).Str("date", replay.RawDate).Msg("history progress")
		}
	}

	profile := acc.profile(true)
	log.Info().
		Int("replay_count", profile.ReplayCount).
		Int("skipped", skipped).
		Int("teammates", len(profile.Teammates)).
		Int("opponents", len(profile.Opponents)).
		Dur("elapsed", time.Since(start)).
		Msg("history aggregated")
	return profile, nil
}

type associateAcc struct {
	account domain.AccountRef
	names   []string
	pro     bool
	order   int
}

// historyAccumulator is the per-request builder behind Aggregate. It is not safe
// for concurrent use.
type historyAccumulator struct {
	account     domain.AccountRef
	replayCount int
	isPro       bool
	names       []domain.NameUse
	teammates   map[domain.AccountRef]*associateAcc
	opponents   map[domain.AccountRef]*associateAcc

	// duplicates are judged against the last accepted replay only; skipped
	// replays never move the cursor
	lastAccepted time.Time
	haveLast     bool
}

func newHistoryAccumulator(account domain.AccountRef) *historyAccumulator {
	return &historyAccumulator{
		account:   account,
		teammates: make(map[domain.AccountRef]*associateAcc),
		opponents: make(map[domain.AccountRef]*associateAcc),
	}
}

// add folds one replay in and reports whether it was accepted as a distinct match.
func (h *historyAccumulator) add(replay domain.Replay) bool {
	if h.isDuplicate(replay.Date) {
		return false
	}
	h.lastAccepted = replay.Date
	h.haveLast = !replay.Date.IsZero()
	h.replayCount++

	self, team, ok := replay.FindSlot(func(s domain.Slot) bool { return s.Account == h.account })
	if !ok {
		return true
	}

	h.names = append(h.names, domain.NameUse{Date: replay.Date, Name: self.Name})
	h.isPro = h.isPro || self.Pro

	opposing := domain.TeamOrange
	if team == domain.TeamOrange {
		opposing = domain.TeamBlue
	}

	for _, s := range replay.Roster(team) {
		if !s.Eligible() || s.Account == h.account {
			continue
		}
		record(h.teammates, s)
	}
	for _, s := range replay.Roster(opposing) {
		if !s.Eligible() {
			continue
		}
		record(h.opponents, s)
	}
	return true
}

// isDuplicate compares against the last accepted replay only. Replays without a
// readable date never count as duplicates.
func (h *historyAccumulator) isDuplicate(date time.Time) bool {
	if !h.haveLast || date.IsZero() {
		return false
	}
	diff := date.Sub(h.lastAccepted)
	if diff < 0 {
		diff = -diff
	}
	return diff < constants.DuplicateWindow
}

func record(table map[domain.AccountRef]*associateAcc, s domain.Slot) {
	a, ok := table[s.Account]
	if !ok {
		a = &associateAcc{account: s.Account, order: len(table)}
		table[s.Account] = a
	}
	a.names = append(a.names, s.Name)
	a.pro = a.pro || s.Pro
}

func (h *historyAccumulator) profile(complete bool) *domain.PlayerProfile {
	history := make([]domain.NameUse, len(h.names))
	copy(history, h.names)
	sort.SliceStable(history, func(i, j int) bool { return history[i].Date.Before(history[j].Date) })

	return &domain.PlayerProfile{
		Account:     h.account,
		ReplayCount: h.replayCount,
		NameHistory: history,
		NameCounts:  countNames(history),
		Teammates:   rankAssociates(h.teammates),
		Opponents:   rankAssociates(h.opponents),
		IsPro:       h.isPro,
		Complete:    complete,
	}
}

// countNames tallies name usage, most used first. Equal counts keep first-use order.
func countNames(history []domain.NameUse) []domain.NameCount {
	index := make(map[string]int)
	counts := make([]domain.NameCount, 0)
	for _, use := range history {
		i, ok := index[use.Name]
		if !ok {
			i = len(counts)
			index[use.Name] = i
			counts = append(counts, domain.NameCount{Name: use.Name})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts
}

func rankAssociates(table map[domain.AccountRef]*associateAcc) []domain.Associate {
	accs := make([]*associateAcc, 0, len(table))
	for _, a := range table {
		accs = append(accs, a)
	}
	sort.Slice(accs, func(i, j int) bool {
		if len(accs[i].names) != len(accs[j].names) {
			return len(accs[i].names) > len(accs[j].names)
		}
		return accs[i].order < accs[j].order
	})

	out := make([]domain.Associate, 0, len(accs))
	for _, a := range accs {
		out = append(out, domain.Associate{
			Account:   a.account,
			Name:      modeName(a.names),
			NamesSeen: a.names,
			Count:     len(a.names),
			Pro:       a.pro,
		})
	}
	return out
}

// modeName picks the most frequent name; ties go to the one seen first.
func modeName(names []string) string {
	counts := make(map[string]int, len(names))
	for _, n := range names {
		counts[n]++
	}
	best, bestCount := "", 0
	for _, n := range names {
		if counts[n] > bestCount {
			best, bestCount = n, counts[n]
		}
	}
	return best
}
