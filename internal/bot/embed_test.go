package bot_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"gizmo/internal/bot"
	"gizmo/internal/domain"
	"gizmo/internal/service"

	"github.com/stretchr/testify/require"
)

func lookupResult() *service.LookupResult {
	account := domain.AccountRef{Platform: domain.PlatformSteam, ID: "76561198286759507"}
	return &service.LookupResult{
		Resolution: &service.Resolution{Account: account, Stage: "exact-id"},
		Snapshot: &domain.PlayerSnapshot{
			Account:             account,
			Name:                "Squishy",
			Camera:              domain.Camera{FOV: 110, Height: 100, Pitch: -4, Distance: 270, Stiffness: 0.45, SwivelSpeed: 6, TransitionSpeed: 1.2},
			SteeringSensitivity: 1.4,
			MatchDate:           "2024-05-01",
			Ranked:              true,
			Links: domain.Links{
				Ballchasing: "https://ballchasing.com/player/steam/76561198286759507",
				Steam:       "https://steamcommunity.com/id/SquishyMuffinz",
				Avatar:      "https://avatars.example/full.jpg",
			},
		},
	}
}

func TestPlayerEmbed(t *testing.T) {
	emb := bot.PlayerEmbed(lookupResult())

	require.Equal(t, "Squishy", emb.Title)
	require.Equal(t, "https://ballchasing.com/player/steam/76561198286759507", emb.URL)
	require.Contains(t, emb.Description, "steam:76561198286759507")
	require.Equal(t, "https://avatars.example/full.jpg", emb.Thumbnail.URL)
	require.Len(t, emb.Fields, 3)
	require.Contains(t, emb.Fields[0].Value, "Not Applicable")
	require.Contains(t, emb.Fields[0].Value, "2024-05-01")
	require.Contains(t, emb.Fields[1].Value, "110 270 100 -4 0.45 6 1.2")
	require.Contains(t, emb.Fields[1].Value, "1.4")
	require.Contains(t, emb.Fields[2].Value, "steamcommunity.com")
}

func TestPlayerEmbedUnranked(t *testing.T) {
	result := lookupResult()
	result.Snapshot.Ranked = false
	result.Snapshot.Links = domain.Links{Ballchasing: "https://ballchasing.com/player/steam/76561198286759507"}

	emb := bot.PlayerEmbed(result)
	require.Contains(t, emb.Fields[0].Value, "(unranked)")
	require.Nil(t, emb.Thumbnail)
	require.NotContains(t, emb.Fields[2].Value, "steamcommunity.com")
}

func TestHistoryEmbeds(t *testing.T) {
	var mates []domain.Associate
	for i := range 20 {
		mates = append(mates, domain.Associate{
			Account: domain.AccountRef{Platform: domain.PlatformEpic, ID: fmt.Sprint(i)},
			Name:    fmt.Sprintf("mate%d", i),
			Count:   20 - i,
			Pro:     i == 0,
		})
	}
	profile := &domain.PlayerProfile{
		ReplayCount: 12345,
		IsPro:       true,
		Complete:    true,
		NameCounts:  []domain.NameCount{{Name: "Squishy", Count: 900}, {Name: "Muffinz", Count: 12}},
		Teammates:   mates,
	}

	embeds := bot.HistoryEmbeds(profile, "Squishy")
	require.Len(t, embeds, 3)

	names := embeds[0]
	require.Contains(t, names.Fields[0].Value, "true")
	require.Equal(t, "`12,345`", names.Fields[1].Value)
	require.Contains(t, names.Fields[2].Name, "🥇 `Squishy` ₉₀₀")
	require.Contains(t, names.Fields[2].Value, "Squishy, Muffinz")

	team := embeds[1]
	require.Len(t, team.Fields, 3)
	require.Contains(t, team.Fields[0].Name, "`20`")
	require.Contains(t, team.Fields[0].Value, "[mate0](<https://ballchasing.com/player/epic/0>) 🏆 ₂₀")
	require.NotContains(t, team.Fields[2].Value, "mate15")

	opps := embeds[2]
	require.Len(t, opps.Fields, 1)
	require.Equal(t, "Details for: Squishy", opps.Footer.Text)
}

func TestHistoryEmbedsPartial(t *testing.T) {
	embeds := bot.HistoryEmbeds(&domain.PlayerProfile{ReplayCount: 3}, "Squishy")
	require.Contains(t, embeds[0].Fields[1].Value, "partial")
	require.Contains(t, embeds[2].Footer.Text, "incomplete")
}

func TestHistoryEmbedsClipLongNames(t *testing.T) {
	var counts []domain.NameCount
	for i := range 50 {
		counts = append(counts, domain.NameCount{Name: strings.Repeat("ñ", 30) + fmt.Sprint(i), Count: 1})
	}
	embeds := bot.HistoryEmbeds(&domain.PlayerProfile{Complete: true, NameCounts: counts}, "x")
	value := embeds[0].Fields[2].Value
	require.LessOrEqual(t, len(value), 1024)
	require.True(t, strings.HasSuffix(value, "…```"))
}

func TestFailureEmbeds(t *testing.T) {
	require.Equal(t, `"Nobody" not found.`, bot.NotFoundEmbed("Nobody").Title)
	require.Equal(t, "Help", bot.HelpEmbed().Title)

	upstream := bot.ErrorEmbed(fmt.Errorf("x: %w", domain.ErrUpstreamUnavailable))
	require.Contains(t, upstream.Description, "ballchasing.com")
	require.NotContains(t, bot.ErrorEmbed(errors.New("boom")).Description, "boom")
}

func TestCommands(t *testing.T) {
	cmds := bot.Commands()
	require.Len(t, cmds, 2)
	require.Equal(t, bot.CommandBalls, cmds[0].Name)
	require.Equal(t, bot.CommandDeep, cmds[1].Name)
	require.Equal(t, "target", cmds[0].Options[0].Name)
	require.False(t, cmds[0].Options[0].Required)
}
