package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"gizmo/internal/config"

	"github.com/leighmacdonald/steamid/v4/steamid"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type SteamClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

type SteamProfile struct {
	ProfileURL string
	AvatarURL  string
}

func NewSteamClient(cfg *config.Config, logger zerolog.Logger) *SteamClient {
	return &SteamClient{
		apiKey:  cfg.SteamAPIKey,
		baseURL: strings.TrimSuffix(cfg.SteamBaseURL, "/"),
		client:  newFastHTTPClient(),
		logger:  logger,
	}
}

// ResolveVanity maps a custom profile name to a SteamID64. Any failure, including
// a missing API key, is reported as not found.
func (c *SteamClient) ResolveVanity(ctx context.Context, vanity string) (string, bool) {
	if c.apiKey == "" || vanity == "" {
		return "", false
	}

	u := fmt.Sprintf("%s/ISteamUser/ResolveVanityURL/v0001/?%s", c.baseURL, url.Values{
		"key":       {c.apiKey},
		"vanityurl": {vanity},
	}.Encode())

	resp, err := doRequest[resolveVanityResponse](ctx, c.client, u, nil)
	if err != nil {
		c.logger.Debug().Err(err).Str("vanity", vanity).Msg("vanity lookup failed")
		return "", false
	}
	if resp.Response.SteamID == "" {
		return "", false
	}

	sid := steamid.New(resp.Response.SteamID)
	if !sid.Valid() {
		c.logger.Warn().Str("vanity", vanity).Str("steam_id", resp.Response.SteamID).Msg("vanity resolved to invalid steam id")
		return "", false
	}
	return sid.String(), true
}

// Profile fetches the public profile and avatar urls of a SteamID64.
func (c *SteamClient) Profile(ctx context.Context, steamID string) (*SteamProfile, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("steam api key not configured")
	}

	u := fmt.Sprintf("%s/ISteamUser/GetPlayerSummaries/v0002/?%s", c.baseURL, url.Values{
		"key":      {c.apiKey},
		"steamids": {steamID},
	}.Encode())

	resp, err := doRequest[playerSummariesResponse](ctx, c.client, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player summary: %w", err)
	}
	if len(resp.Response.Players) == 0 {
		return nil, fmt.Errorf("no player summary for %s", steamID)
	}

	p := resp.Response.Players[0]
	return &SteamProfile{
		ProfileURL: strings.TrimSuffix(p.ProfileURL, "/"),
		AvatarURL:  p.AvatarFull,
	}, nil
}
