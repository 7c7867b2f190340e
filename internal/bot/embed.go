package bot

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gizmo/internal/domain"
	"gizmo/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

const (
	colorBlue   = 0x3498DB
	colorOrange = 0xE67E22
	colorRed    = 0xE74C3C

	footerText = "gizmo • data from ballchasing.com"

	proMarker = "🏆"

	// discord rejects field values longer than this
	maxFieldValue = 1024

	topNames      = 50
	leaderboard   = 3
	topAssociates = 15
	associatesRow = 5
)

var medals = []string{"🥇", "🥈", "🥉"}

var subscript = strings.NewReplacer(
	"0", "₀", "1", "₁", "2", "₂", "3", "₃", "4", "₄",
	"5", "₅", "6", "₆", "7", "₇", "8", "₈", "9", "₉",
)

// HelpEmbed explains the accepted inputs. It doubles as the not-found reply.
func HelpEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Help",
		Description: "*↓ Help for the command*",
		Color:       colorOrange,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Example Inputs",
				Value: "`https://steamcommunity.com/id/SquishyMuffinz/`\n" +
					"`https://ballchasing.com/player/steam/76561198286759507`\n" +
					"`steam:76561198286759507`\n" +
					"`Squishy`",
			},
			{
				Name:   "Platforms",
				Value:  "`steam` `epic` `xbox` `ps4`",
				Inline: true,
			},
			{
				Name:  "Tips",
				Value: " > This tool is **case-sensitive**\n > If searching by name, the name must be an **exact** match",
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: footerText},
	}
}

func NotFoundEmbed(target string) *discordgo.MessageEmbed {
	emb := HelpEmbed()
	emb.Title = fmt.Sprintf("%q not found.", target)
	emb.Color = colorRed
	return emb
}

// ErrorEmbed reports a failed search without leaking internals.
func ErrorEmbed(err error) *discordgo.MessageEmbed {
	desc := "Something went wrong, try again later."
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		desc = "ballchasing.com is not answering right now, try again in a minute."
	}
	return &discordgo.MessageEmbed{
		Title:       "Search failed",
		Description: desc,
		Color:       colorRed,
		Footer:      &discordgo.MessageEmbedFooter{Text: footerText},
	}
}

// PlayerEmbed is the player card shown for every successful search.
func PlayerEmbed(result *service.LookupResult) *discordgo.MessageEmbed {
	snap := result.Snapshot
	cam := snap.Camera

	car := snap.CarName
	if car == "" {
		car = "Not Applicable"
	}
	date := snap.MatchDate
	if !snap.Ranked {
		date += " (unranked)"
	}

	links := "- " + snap.Links.Ballchasing
	if snap.Links.Steam != "" {
		links = "- " + snap.Links.Steam + "\n" + links
	}

	emb := &discordgo.MessageEmbed{
		Title:       snap.Name,
		Description: fmt.Sprintf("```%s```", snap.Account),
		URL:         snap.Links.Ballchasing,
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "**Statistics**",
				Value: fmt.Sprintf("Uploader: `%t`    Last Used Car: `%s`    Date: `%s`", snap.Uploader, car, date),
			},
			{
				Name: "**Settings**",
				Value: fmt.Sprintf("```📸 %s %s %s %s %s %s %s   ⚙️ %s```",
					num(cam.FOV), num(cam.Distance), num(cam.Height), num(cam.Pitch),
					num(cam.Stiffness), num(cam.SwivelSpeed), num(cam.TransitionSpeed),
					num(snap.SteeringSensitivity)),
			},
			{
				Name:  "**Links**",
				Value: links,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%s • matched by %s", footerText, result.Resolution.Stage)},
	}
	if snap.Links.Avatar != "" {
		emb.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: snap.Links.Avatar}
	}
	return emb
}

// HistoryEmbeds renders a profile as three embeds: names, teammates, opponents.
func HistoryEmbeds(profile *domain.PlayerProfile, name string) []*discordgo.MessageEmbed {
	pro := fmt.Sprintf("`%t`", profile.IsPro)
	if profile.IsPro {
		pro += " " + proMarker
	}

	replays := fmt.Sprintf("`%s`", humanize.Comma(int64(profile.ReplayCount)))
	if !profile.Complete {
		replays += " *(partial)*"
	}

	names := make([]string, 0, topNames)
	var board strings.Builder
	for i, nc := range profile.NameCounts {
		if i >= topNames {
			break
		}
		names = append(names, nc.Name)
		if i < leaderboard {
			fmt.Fprintf(&board, "   %s `%s` %s", medals[i], nc.Name, subscript.Replace(humanize.Comma(int64(nc.Count))))
		}
	}
	nameList := "```" + clipTo(orDash(strings.Join(names, ", ")), maxFieldValue-6) + "```"

	nameEmbed := &discordgo.MessageEmbed{
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "**Pro**", Value: pro, Inline: true},
			{Name: "**Replays**", Value: replays, Inline: true},
			{Name: "**Names**" + board.String(), Value: nameList},
		},
	}

	teamEmbed := associatesEmbed("**Friends**", profile.Teammates)
	oppEmbed := associatesEmbed("**Opps**", profile.Opponents)

	footer := "Details for: " + name
	if !profile.Complete {
		footer += " • history incomplete, ballchasing stopped answering"
	}
	oppEmbed.Footer = &discordgo.MessageEmbedFooter{Text: footer}

	return []*discordgo.MessageEmbed{nameEmbed, teamEmbed, oppEmbed}
}

func associatesEmbed(title string, associates []domain.Associate) *discordgo.MessageEmbed {
	top := associates
	if len(top) > topAssociates {
		top = top[:topAssociates]
	}

	emb := &discordgo.MessageEmbed{Color: colorBlue}
	for row := 0; row*associatesRow < topAssociates; row++ {
		name := "\u200B"
		if row == 0 {
			name = fmt.Sprintf("%s  `%d`", title, len(associates))
		}

		var entries []string
		for i := row * associatesRow; i < min(len(top), (row+1)*associatesRow); i++ {
			entries = append(entries, associateLink(top[i]))
		}
		if row > 0 && len(entries) == 0 {
			break
		}
		emb.Fields = append(emb.Fields, &discordgo.MessageEmbedField{
			Name:  name,
			Value: clip(orDash(strings.Join(entries, " ,  "))),
		})
	}
	return emb
}

func associateLink(a domain.Associate) string {
	marker := ""
	if a.Pro {
		marker = " " + proMarker
	}
	return fmt.Sprintf("[%s](<%s>)%s %s", a.Name, service.BallchasingPlayerURL(a.Account), marker, subscript.Replace(fmt.Sprint(a.Count)))
}

func num(f float64) string {
	return humanize.Ftoa(f)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func clip(s string) string {
	return clipTo(s, maxFieldValue)
}

// clipTo shortens s to at most n bytes without splitting a rune.
func clipTo(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - len("…")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
