package api

type replayList struct {
	Count int             `json:"count"`
	List  []replaySummary `json:"list"`
	Next  string          `json:"next"`
}

// replaySummary is one item of GET /replays and also the body of GET /replays/{id}.
// Roster entries may be null when the upload recorded an empty slot.
type replaySummary struct {
	ID       string      `json:"id"`
	Date     string      `json:"date"`
	Playlist string      `json:"playlist_id"`
	Blue     *replayTeam `json:"blue"`
	Orange   *replayTeam `json:"orange"`
}

type replayTeam struct {
	Name    string          `json:"name"`
	Players []*replayPlayer `json:"players"`
}

type replayPlayer struct {
	Name                string        `json:"name"`
	ID                  *replayPlayID `json:"id"`
	Pro                 *bool         `json:"pro"`
	Camera              *replayCamera `json:"camera"`
	SteeringSensitivity float64       `json:"steering_sensitivity"`
	CarName             string        `json:"car_name"`
}

type replayPlayID struct {
	Platform string `json:"platform"`
	ID       string `json:"id"`

	// only present for split-screen guests
	PlayerNumber *int `json:"player_number"`
}

type replayCamera struct {
	FOV             float64 `json:"fov"`
	Height          float64 `json:"height"`
	Pitch           float64 `json:"pitch"`
	Distance        float64 `json:"distance"`
	Stiffness       float64 `json:"stiffness"`
	SwivelSpeed     float64 `json:"swivel_speed"`
	TransitionSpeed float64 `json:"transition_speed"`
}

type resolveVanityResponse struct {
	Response struct {
		SteamID string `json:"steamid"`
		Success int    `json:"success"`
		Message string `json:"message"`
	} `json:"response"`
}

type playerSummariesResponse struct {
	Response struct {
		Players []struct {
			SteamID    string `json:"steamid"`
			ProfileURL string `json:"profileurl"`
			AvatarFull string `json:"avatarfull"`
		} `json:"players"`
	} `json:"response"`
}
