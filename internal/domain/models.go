package domain

import (
	"strings"
	"time"
)

type Platform string

const (
	PlatformUnspecified Platform = ""
	PlatformAny         Platform = "any"
	PlatformSteam       Platform = "steam"
	PlatformEpic        Platform = "epic"
	PlatformXbox        Platform = "xbox"
	PlatformPS4         Platform = "ps4"
)

// KnownPlatforms is the preference order used when a target names no platform.
var KnownPlatforms = []Platform{PlatformSteam, PlatformEpic, PlatformXbox, PlatformPS4}

// Concrete reports whether p names a real platform rather than a wildcard.
func (p Platform) Concrete() bool {
	return p != PlatformUnspecified && p != PlatformAny
}

type AccountRef struct {
	Platform Platform `json:"platform"`
	ID       string   `json:"id"`
}

func (a AccountRef) String() string {
	return string(a.Platform) + ":" + a.ID
}

func (a AccountRef) IsZero() bool {
	return a.Platform == PlatformUnspecified && a.ID == ""
}

// ParseAccountRef splits "platform:id". The platform is lowercased.
func ParseAccountRef(s string) (AccountRef, bool) {
	platform, id, ok := strings.Cut(s, ":")
	if !ok || platform == "" || id == "" {
		return AccountRef{}, false
	}
	return AccountRef{Platform: Platform(strings.ToLower(platform)), ID: id}, true
}

type Camera struct {
	FOV             float64 `json:"fov"`
	Height          float64 `json:"height"`
	Pitch           float64 `json:"pitch"`
	Distance        float64 `json:"distance"`
	Stiffness       float64 `json:"stiffness"`
	SwivelSpeed     float64 `json:"swivel_speed"`
	TransitionSpeed float64 `json:"transition_speed"`
}

// Slot is one roster position of a replay. Ghost slots carry no participant data.
type Slot struct {
	Position    int
	Ghost       bool
	Account     AccountRef
	Name        string
	Pro         bool
	SplitScreen bool

	// deep replays only
	Camera              *Camera
	SteeringSensitivity float64
	CarName             string
}

// Eligible reports whether the slot may take part in identity matching and statistics.
func (s Slot) Eligible() bool {
	return !s.Ghost && !s.SplitScreen && s.Account.ID != ""
}

type Team string

const (
	TeamBlue   Team = "blue"
	TeamOrange Team = "orange"
)

type Replay struct {
	ID      string
	Date    time.Time
	RawDate string
	Blue    []Slot
	Orange  []Slot
	Deep    bool
}

// Roster returns the slots of the given side.
func (r Replay) Roster(team Team) []Slot {
	if team == TeamOrange {
		return r.Orange
	}
	return r.Blue
}

// FindSlot scans blue then orange for the first eligible slot matching fn.
func (r Replay) FindSlot(fn func(Slot) bool) (Slot, Team, bool) {
	for _, team := range []Team{TeamBlue, TeamOrange} {
		for _, s := range r.Roster(team) {
			if s.Eligible() && fn(s) {
				return s, team, true
			}
		}
	}
	return Slot{}, "", false
}

type SortOrder string

const (
	SortNone       SortOrder = ""
	SortMostRecent SortOrder = "replay-date"
)

// ReplayQuery is the filter set understood by the replay search gateway.
type ReplayQuery struct {
	PlayerID   string
	PlayerName string
	Uploader   string
	Playlists  []string
	ProOnly    bool
	Deep       bool
	SortBy     SortOrder
	Limit      int
}

type Links struct {
	Ballchasing string `json:"ballchasing"`
	Steam       string `json:"steam,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

type PlayerSnapshot struct {
	Account             AccountRef `json:"account"`
	Name                string     `json:"name"`
	Camera              Camera     `json:"camera"`
	SteeringSensitivity float64    `json:"steering_sensitivity"`
	CarName             string     `json:"car_name,omitempty"`
	MatchDate           string     `json:"match_date"`
	Ranked              bool       `json:"ranked"`
	Uploader            bool       `json:"uploader"`
	Links               Links      `json:"links"`
}

type NameUse struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Associate is a teammate or opponent aggregated across the player's history.
type Associate struct {
	Account   AccountRef `json:"account"`
	Name      string     `json:"name"`
	NamesSeen []string   `json:"names_seen"`
	Count     int        `json:"count"`
	Pro       bool       `json:"pro"`
}

type PlayerProfile struct {
	Account     AccountRef  `json:"account"`
	ReplayCount int         `json:"replay_count"`
	NameHistory []NameUse   `json:"name_history"`
	NameCounts  []NameCount `json:"name_counts"`
	Teammates   []Associate `json:"teammates"`
	Opponents   []Associate `json:"opponents"`
	IsPro       bool        `json:"is_pro"`
	Complete    bool        `json:"complete"`
}

type SearchMode string

const (
	SearchLookup SearchMode = "lookup"
	SearchDeep   SearchMode = "deep"
)

// SearchRecord is one entry of the search audit log.
type SearchRecord struct {
	ID          string        `json:"id"`
	Target      string        `json:"target"`
	Mode        SearchMode    `json:"mode"`
	Account     AccountRef    `json:"account"`
	Stage       string        `json:"stage,omitempty"`
	Found       bool          `json:"found"`
	ReplayCount int           `json:"replay_count"`
	Complete    bool          `json:"complete"`
	Duration    time.Duration `json:"duration"`
	CreatedAt   time.Time     `json:"created_at"`
}
