package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 2 * time.Minute
	HistoryTimeout     = 15 * time.Minute
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// ballchasing caps a single page of replays at 200
	ReplayPageSize = 200

	// replays closer together than this are reports of the same match
	DuplicateWindow = 60 * time.Second

	HistoryProgressEvery = 1000
)

const (
	RecentSearchLimit    = 20
	MaxRecentSearchLimit = 200
)

const (
	// raw search input, profile URLs included
	MaxTargetInput = 200
)
