package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gizmo/internal/config"
	"gizmo/internal/database"
	"gizmo/internal/domain"
	"gizmo/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *repository.SearchLogRepository {
	t.Helper()
	db, err := database.New(&config.Config{DBPath: filepath.Join(t.TempDir(), "gizmo.db")}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return repository.NewSearchLogRepository(db, zerolog.Nop())
}

func TestSearchLogInsertAndRecent(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, target := range []string{"Squishy", "steam:76561198286759507", "Nobody"} {
		rec := &domain.SearchRecord{
			Target:      target,
			Mode:        domain.SearchDeep,
			Account:     domain.AccountRef{Platform: domain.PlatformSteam, ID: "76561198286759507"},
			Stage:       "exact-id",
			Found:       target != "Nobody",
			ReplayCount: 1200,
			Complete:    true,
			Duration:    1500 * time.Millisecond,
			CreatedAt:   start.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Insert(ctx, rec))
		require.NotEmpty(t, rec.ID)
	}

	records, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	newest := records[0]
	require.Equal(t, "Nobody", newest.Target)
	require.False(t, newest.Found)
	require.Equal(t, "steam:76561198286759507", records[1].Target)
	require.Equal(t, domain.SearchDeep, newest.Mode)
	require.Equal(t, domain.PlatformSteam, newest.Account.Platform)
	require.Equal(t, 1200, newest.ReplayCount)
	require.Equal(t, 1500*time.Millisecond, newest.Duration)
	require.True(t, newest.CreatedAt.Equal(start.Add(2*time.Minute)))
}

func TestSearchLogEmpty(t *testing.T) {
	records, err := newRepo(t).Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestSearchLogKeepsGivenID(t *testing.T) {
	repo := newRepo(t)
	rec := &domain.SearchRecord{ID: "fixed-id", Target: "x", Mode: domain.SearchLookup}
	require.NoError(t, repo.Insert(context.Background(), rec))
	require.Equal(t, "fixed-id", rec.ID)
	require.False(t, rec.CreatedAt.IsZero())

	// primary key
	require.Error(t, repo.Insert(context.Background(), &domain.SearchRecord{ID: "fixed-id", Target: "y", Mode: domain.SearchLookup}))
}
