package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/healthreport/internal/report"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.sqlite")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	base := report.RunSummary{
		ID:          "run-1",
		TenantID:    "local",
		UserID:      "me",
		Records:     42,
		Workouts:    2,
		Sheets:      5,
		FirstMonth:  "2024-01",
		LastMonth:   "2024-03",
		Timezone:    "UTC",
		Duration:    250 * time.Millisecond,
		GeneratedAt: time.Date(2024, time.March, 20, 15, 0, 0, 0, time.UTC),
	}
	second := base
	second.ID = "run-2"
	second.GeneratedAt = base.GeneratedAt.Add(time.Minute)
	other := base
	other.ID = "run-3"
	other.UserID = "someone-else"

	for _, run := range []report.RunSummary{base, second, other} {
		require.NoError(t, store.SaveRun(ctx, run))
	}

	runs, err := store.ListRuns(ctx, "local", "me", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "run-2", runs[0].ID)
	require.Equal(t, base, runs[1])

	limited, err := store.ListRuns(ctx, "local", "me", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)

	require.Error(t, store.SaveRun(ctx, base), "duplicate run id")
}

func TestStoreReopenKeepsHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.sqlite")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveRun(ctx, report.RunSummary{ID: "run-1", TenantID: "local", UserID: "me", Timezone: "UTC", GeneratedAt: time.Now()}))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	runs, err := store.ListRuns(ctx, "local", "me", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}
