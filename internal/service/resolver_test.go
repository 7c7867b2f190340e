package service_test

import (
	"context"
	"fmt"
	"testing"

	"gizmo/internal/config"
	"gizmo/internal/domain"
	"gizmo/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const referee = "76561199225615730"

func newResolver(gw *fakeGateway, vanity fakeVanity) *service.Resolver {
	return service.NewResolver(gw, vanity, &config.Config{RefereeUploaderID: referee}, zerolog.Nop())
}

func TestResolveExactID(t *testing.T) {
	want := acct(domain.PlatformSteam, "76561198438198955")
	gw := &fakeGateway{respond: func(q domain.ReplayQuery) []step {
		if q.PlayerID == want.String() {
			return replays(match("r1", 0, []domain.Slot{slot(want, "Player")}, nil))
		}
		return nil
	}}

	res, err := newResolver(gw, nil).Resolve(context.Background(), "steam:76561198438198955")
	require.NoError(t, err)
	require.Equal(t, want, res.Account)
	require.Equal(t, "exact-id", res.Stage)

	queries := gw.recorded()
	require.Len(t, queries, 1)
	require.Equal(t, domain.SortMostRecent, queries[0].SortBy)
	require.Equal(t, 1, queries[0].Limit)
	require.False(t, queries[0].Deep)
}

func TestResolveProfileURLRoundTrip(t *testing.T) {
	want := acct(domain.PlatformSteam, "76561198286759507")
	gw := &fakeGateway{respond: func(q domain.ReplayQuery) []step {
		if q.PlayerID == want.String() {
			return replays(match("r1", 0, []domain.Slot{slot(want, "Squishy")}, nil))
		}
		return nil
	}}
	resolver := newResolver(gw, nil)

	fromURL, err := resolver.Resolve(context.Background(), "https://ballchasing.com/player/steam/76561198286759507")
	require.NoError(t, err)
	compact, err := resolver.Resolve(context.Background(), "steam:76561198286759507")
	require.NoError(t, err)
	require.Equal(t, compact.Account, fromURL.Account)
}

func TestResolveNotFoundWalksEveryStage(t *testing.T) {
	gw := &fakeGateway{}

	_, err := newResolver(gw, fakeVanity{}).Resolve(context.Background(), "Nobody")
	require.ErrorIs(t, err, domain.ErrNotFound)

	var ids, names []string
	for _, q := range gw.recorded() {
		if q.PlayerID != "" {
			ids = append(ids, q.PlayerID)
		}
		if q.PlayerName != "" {
			names = append(names, q.PlayerName)
		}
	}
	// the any-platform id sweep never asks about ps4
	require.Equal(t, []string{"steam:Nobody", "epic:Nobody", "xbox:Nobody"}, ids)
	// referee pro, pro, anywhere
	require.Equal(t, []string{`"Nobody"`, `"Nobody"`, `"Nobody"`}, names)
}

func TestResolveUpstreamErrorAborts(t *testing.T) {
	gw := &fakeGateway{respond: func(domain.ReplayQuery) []step {
		return []step{fail(fmt.Errorf("list replays: %w", domain.ErrUpstreamUnavailable))}
	}}

	_, err := newResolver(gw, fakeVanity{}).Resolve(context.Background(), "steam:76561198438198955")
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	require.False(t, domain.IsNotFound(err))
	require.Len(t, gw.recorded(), 1)
}

func TestResolveRefereeProNameSkipsSplitScreen(t *testing.T) {
	pro := acct(domain.PlatformEpic, "pro-epic-id")
	gw := &fakeGateway{respond: func(q domain.ReplayQuery) []step {
		if q.Uploader == referee && q.ProOnly && q.PlayerName == `"Squishy"` {
			return replays(match("r1", 0,
				[]domain.Slot{ghost(), splitScreen(acct(domain.PlatformSteam, "1"), "Squishy")},
				[]domain.Slot{proSlot(pro, "Squishy")},
			))
		}
		return nil
	}}

	res, err := newResolver(gw, fakeVanity{}).Resolve(context.Background(), "Squishy")
	require.NoError(t, err)
	require.Equal(t, pro, res.Account)
	require.Equal(t, "referee-pro-name", res.Stage)
}

func TestResolveDeclaredSteamVanity(t *testing.T) {
	gw := &fakeGateway{}
	vanity := fakeVanity{"SquishyMuffinz": "76561198286759507"}

	res, err := newResolver(gw, vanity).Resolve(context.Background(), "https://steamcommunity.com/id/SquishyMuffinz/")
	require.NoError(t, err)
	require.Equal(t, acct(domain.PlatformSteam, "76561198286759507"), res.Account)
	require.Equal(t, "steam-vanity", res.Stage)
}

func TestResolveNameHonorsPlatformHint(t *testing.T) {
	onSteam := acct(domain.PlatformSteam, "11")
	onXbox := acct(domain.PlatformXbox, "22")
	gw := &fakeGateway{respond: func(q domain.ReplayQuery) []step {
		if q.PlayerName == `"Mr Smith"` && !q.ProOnly {
			return replays(match("r1", 0,
				[]domain.Slot{slot(onSteam, "Mr Smith")},
				[]domain.Slot{slot(onXbox, "Mr Smith")},
			))
		}
		return nil
	}}

	res, err := newResolver(gw, fakeVanity{}).Resolve(context.Background(), "xbox:Mr Smith")
	require.NoError(t, err)
	require.Equal(t, onXbox, res.Account)
	require.Equal(t, "name-on-platform", res.Stage)

	res, err = newResolver(gw, fakeVanity{}).Resolve(context.Background(), "Mr Smith")
	require.NoError(t, err)
	require.Equal(t, onSteam, res.Account, "blue roster is scanned first")
	require.Equal(t, "name-anywhere", res.Stage)
}

func TestResolveVanityFallbackNeedsReplays(t *testing.T) {
	steam := acct(domain.PlatformSteam, "76561198000000001")
	withReplays := true
	gw := &fakeGateway{respond: func(q domain.ReplayQuery) []step {
		if withReplays && q.PlayerID == steam.String() {
			return replays(match("r1", 0, []domain.Slot{slot(steam, "gizmo")}, nil))
		}
		return nil
	}}
	vanity := fakeVanity{"gizmo": steam.ID}

	res, err := newResolver(gw, vanity).Resolve(context.Background(), "epic:gizmo")
	require.NoError(t, err)
	require.Equal(t, steam, res.Account)
	require.Equal(t, "steam-vanity-fallback", res.Stage)

	withReplays = false
	_, err = newResolver(gw, vanity).Resolve(context.Background(), "epic:gizmo")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveNameHitWithoutMatchingSlotContinues(t *testing.T) {
	gw := &fakeGateway{respond: func(q domain.ReplayQuery) []step {
		if q.PlayerName != "" {
			// upstream name search is fuzzier than an exact match
			return replays(match("r1", 0, []domain.Slot{slot(acct(domain.PlatformSteam, "1"), "GHOSTY")}, nil))
		}
		return nil
	}}

	_, err := newResolver(gw, fakeVanity{}).Resolve(context.Background(), "ghosty")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveIDOnAnyPlatform(t *testing.T) {
	want := acct(domain.PlatformEpic, "someid")
	gw := &fakeGateway{respond: func(q domain.ReplayQuery) []step {
		if q.PlayerID == want.String() {
			return replays(match("r1", 0, []domain.Slot{slot(want, "someone")}, nil))
		}
		return nil
	}}

	res, err := newResolver(gw, fakeVanity{}).Resolve(context.Background(), "someid")
	require.NoError(t, err)
	require.Equal(t, want, res.Account)
	require.Equal(t, "id-any-platform", res.Stage)

	queries := gw.recorded()
	require.Len(t, queries, 3)
	require.Equal(t, referee, queries[0].Uploader)
	require.Equal(t, `"someid"`, queries[0].PlayerName)
	require.Equal(t, "steam:someid", queries[1].PlayerID)
	require.Equal(t, "epic:someid", queries[2].PlayerID)
}

func TestResolveProNameWithoutReferee(t *testing.T) {
	pro := acct(domain.PlatformSteam, "76561198000000042")
	gw := &fakeGateway{respond: func(q domain.ReplayQuery) []step {
		if q.ProOnly && q.Uploader == "" && q.PlayerName == `"Squishy"` {
			return replays(match("r1", 0, nil, []domain.Slot{proSlot(pro, "Squishy")}))
		}
		return nil
	}}

	res, err := newResolver(gw, fakeVanity{}).Resolve(context.Background(), "Squishy")
	require.NoError(t, err)
	require.Equal(t, pro, res.Account)
	require.Equal(t, "pro-name", res.Stage)

	queries := gw.recorded()
	require.Len(t, queries, 5)
	require.Equal(t, referee, queries[0].Uploader)
	require.Equal(t, "steam:Squishy", queries[1].PlayerID)
	require.Equal(t, "epic:Squishy", queries[2].PlayerID)
	require.Equal(t, "xbox:Squishy", queries[3].PlayerID)

	last := queries[4]
	require.True(t, last.ProOnly)
	require.Empty(t, last.Uploader)
	require.Equal(t, `"Squishy"`, last.PlayerName)
}

func TestResolveSteamVanityBeforeIDSweep(t *testing.T) {
	gw := &fakeGateway{}
	vanity := fakeVanity{"SquishyMuffinz": "76561198286759507"}

	res, err := newResolver(gw, vanity).Resolve(context.Background(), "steam:SquishyMuffinz")
	require.NoError(t, err)
	require.Equal(t, acct(domain.PlatformSteam, "76561198286759507"), res.Account)
	require.Equal(t, "steam-vanity", res.Stage)

	queries := gw.recorded()
	require.Len(t, queries, 2)
	require.Equal(t, "steam:SquishyMuffinz", queries[0].PlayerID)
	require.Equal(t, referee, queries[1].Uploader)
	for _, q := range queries {
		require.NotEqual(t, "epic:SquishyMuffinz", q.PlayerID)
		require.NotEqual(t, "xbox:SquishyMuffinz", q.PlayerID)
	}
}
