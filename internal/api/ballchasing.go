package api

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gizmo/internal/config"
	"gizmo/internal/constants"
	"gizmo/internal/domain"

	"github.com/valyala/fasthttp"
)

// BallchasingClient implements replay search on top of the ballchasing.com API.
type BallchasingClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client
	pace    *pacer
}

func NewBallchasingClient(cfg *config.Config) *BallchasingClient {
	return &BallchasingClient{
		apiKey:  cfg.BallchasingAPIKey,
		baseURL: strings.TrimSuffix(cfg.BallchasingBaseURL, "/"),
		client:  newFastHTTPClient(),
		pace:    &pacer{interval: cfg.BallchasingMinInterval},
	}
}

// SearchReplays lists replays matching q. The sequence is lazy: pages are only
// requested while the consumer keeps ranging, and breaking out stops paging.
// A transport or decode failure is yielded once and ends the sequence. A record
// without any roster or without a readable date is yielded as
// domain.ErrMalformedRecord and the sequence goes on; such records do not count
// toward q.Limit.
func (c *BallchasingClient) SearchReplays(ctx context.Context, q domain.ReplayQuery) iter.Seq2[domain.Replay, error] {
	return func(yield func(domain.Replay, error) bool) {
		yielded := 0
		next := c.listURL(q)

		for next != "" {
			page, err := c.get(ctx, next)
			if err != nil {
				yield(domain.Replay{}, upstreamError("list replays", err))
				return
			}

			for _, item := range page.List {
				if q.Deep {
					detail, err := c.replay(ctx, item.ID)
					if err != nil {
						yield(domain.Replay{}, upstreamError("get replay "+item.ID, err))
						return
					}
					item = *detail
				}

				replay, err := toReplay(item, q.Deep)
				if !yield(replay, err) {
					return
				}
				if err != nil {
					continue
				}

				yielded++
				if q.Limit > 0 && yielded >= q.Limit {
					return
				}
			}

			next = page.Next
		}
	}
}

func (c *BallchasingClient) listURL(q domain.ReplayQuery) string {
	params := url.Values{}
	if q.PlayerID != "" {
		params.Set("player-id", q.PlayerID)
	}
	if q.PlayerName != "" {
		params.Set("player-name", q.PlayerName)
	}
	if q.Uploader != "" {
		params.Set("uploader", q.Uploader)
	}
	for _, playlist := range q.Playlists {
		params.Add("playlist", playlist)
	}
	if q.ProOnly {
		params.Set("pro", "true")
	}
	if q.SortBy != domain.SortNone {
		params.Set("sort-by", string(q.SortBy))
		params.Set("sort-dir", "desc")
	}

	count := constants.ReplayPageSize
	if q.Limit > 0 && q.Limit < count {
		count = q.Limit
	}
	params.Set("count", strconv.Itoa(count))

	return fmt.Sprintf("%s/replays?%s", c.baseURL, params.Encode())
}

func (c *BallchasingClient) get(ctx context.Context, url string) (*replayList, error) {
	if err := c.pace.wait(ctx); err != nil {
		return nil, err
	}
	return doRequest[replayList](ctx, c.client, url, c.headers())
}

func (c *BallchasingClient) replay(ctx context.Context, id string) (*replaySummary, error) {
	if err := c.pace.wait(ctx); err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/replays/%s", c.baseURL, url.PathEscape(id))
	return doRequest[replaySummary](ctx, c.client, u, c.headers())
}

func (c *BallchasingClient) headers() map[string]string {
	return map[string]string{"Authorization": c.apiKey}
}

func toReplay(item replaySummary, deep bool) (domain.Replay, error) {
	replay := domain.Replay{
		ID:      item.ID,
		RawDate: item.Date,
		Deep:    deep,
	}
	if item.Blue == nil && item.Orange == nil {
		return replay, fmt.Errorf("replay %q has no rosters: %w", item.ID, domain.ErrMalformedRecord)
	}
	date, ok := parseReplayDate(item.Date)
	if !ok {
		return replay, fmt.Errorf("replay %q has unreadable date %q: %w", item.ID, item.Date, domain.ErrMalformedRecord)
	}
	replay.Date = date
	replay.Blue = toRoster(item.Blue)
	replay.Orange = toRoster(item.Orange)
	return replay, nil
}

func toRoster(team *replayTeam) []domain.Slot {
	if team == nil {
		return nil
	}
	slots := make([]domain.Slot, 0, len(team.Players))
	for i, p := range team.Players {
		slot := domain.Slot{Position: i}
		if p == nil || p.ID == nil || p.ID.ID == "" {
			slot.Ghost = true
			slots = append(slots, slot)
			continue
		}

		slot.Account = domain.AccountRef{Platform: domain.Platform(strings.ToLower(p.ID.Platform)), ID: p.ID.ID}
		slot.Name = p.Name
		slot.Pro = p.Pro != nil && *p.Pro
		slot.SplitScreen = p.ID.PlayerNumber != nil
		slot.SteeringSensitivity = p.SteeringSensitivity
		slot.CarName = p.CarName
		if p.Camera != nil {
			slot.Camera = &domain.Camera{
				FOV:             p.Camera.FOV,
				Height:          p.Camera.Height,
				Pitch:           p.Camera.Pitch,
				Distance:        p.Camera.Distance,
				Stiffness:       p.Camera.Stiffness,
				SwivelSpeed:     p.Camera.SwivelSpeed,
				TransitionSpeed: p.Camera.TransitionSpeed,
			}
		}
		slots = append(slots, slot)
	}
	return slots
}

// Uploads without an explicit offset are local times of the bot's home region.
var replayZone = loadZone("Australia/Melbourne")

func loadZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// parseReplayDate reads an upload timestamp. A trailing "Z" is dropped and the
// remainder read as local time, matching how the dedup window has always behaved.
func parseReplayDate(raw string) (time.Time, bool) {
	s := strings.TrimSuffix(strings.TrimSpace(raw), "Z")
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, replayZone); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
