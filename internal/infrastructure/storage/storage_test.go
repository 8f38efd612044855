package storage

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTempDB(t *testing.T) string {
	tmpFile, err := os.CreateTemp("", "test_*.db")
	require.NoError(t, err)
	tmpFile.Close()
	return tmpFile.Name()
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	tmpDB := createTempDB(t)
	t.Cleanup(func() { os.Remove(tmpDB) })

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func ptr[T any](v T) *T { return &v }

func TestStorage_Migrations(t *testing.T) {
	store := newTestStorage(t)

	version, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestStorage_ReopenKeepsData(t *testing.T) {
	tmpDB := createTempDB(t)
	defer os.Remove(tmpDB)

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	_, err = store.UpdateFeedback("svc", FeedbackUpdate{Status: ptr("keep")})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStorage(tmpDB)
	require.NoError(t, err)
	defer reopened.Close()

	f, err := reopened.GetFeedback("svc")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "keep", f.Status)
}

func TestStorage_GetFeedback_NotFound(t *testing.T) {
	store := newTestStorage(t)

	f, err := store.GetFeedback("missing")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestStorage_UpdateFeedback(t *testing.T) {
	store := newTestStorage(t)

	t.Run("creates row with given fields", func(t *testing.T) {
		f, err := store.UpdateFeedback("OPENAI_API_KEY", FeedbackUpdate{
			ActualCost: ptr(123.45),
			Status:     ptr("active"),
			Projects:   ptr([]string{"alpha", "beta"}),
		})
		require.NoError(t, err)
		assert.Equal(t, 123.45, *f.ActualCost)
		assert.WithinDuration(t, time.Now(), f.UpdatedAt, 5*time.Second)

		stored, err := store.GetFeedback("OPENAI_API_KEY")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, 123.45, *stored.ActualCost)
		assert.Equal(t, "active", stored.Status)
		assert.Equal(t, []string{"alpha", "beta"}, stored.Projects)
		assert.Nil(t, stored.Weights)
	})

	t.Run("leaves unspecified fields untouched", func(t *testing.T) {
		_, err := store.UpdateFeedback("OPENAI_API_KEY", FeedbackUpdate{
			UserNotes: ptr("shared with lab"),
		})
		require.NoError(t, err)

		stored, err := store.GetFeedback("OPENAI_API_KEY")
		require.NoError(t, err)
		assert.Equal(t, "shared with lab", stored.UserNotes)
		assert.Equal(t, "active", stored.Status)
		assert.Equal(t, 123.45, *stored.ActualCost)
	})
}

func TestStorage_Weights(t *testing.T) {
	store := newTestStorage(t)

	require.NoError(t, store.SaveWeights("svc", map[string]int{"a": 25, "b": 75}))

	f, err := store.GetFeedback("svc")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 25, "b": 75}, f.Weights)

	require.NoError(t, store.ClearWeights("svc"))

	f, err = store.GetFeedback("svc")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Nil(t, f.Weights)

	// Clearing a service with no feedback is a no-op
	require.NoError(t, store.ClearWeights("other"))
}

func TestStorage_ListAndReplaceFeedback(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.UpdateFeedback("b-svc", FeedbackUpdate{Plan: ptr("pro")})
	require.NoError(t, err)
	_, err = store.UpdateFeedback("a-svc", FeedbackUpdate{Plan: ptr("free")})
	require.NoError(t, err)

	all, err := store.ListFeedback()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a-svc", all[0].ServiceID)
	assert.Equal(t, "b-svc", all[1].ServiceID)

	err = store.ReplaceFeedback([]*ServiceFeedback{
		{ServiceID: "c-svc", Category: "ai", Weights: map[string]int{"x": 1}},
	})
	require.NoError(t, err)

	all, err = store.ListFeedback()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "c-svc", all[0].ServiceID)
	assert.Equal(t, "ai", all[0].Category)
	assert.Equal(t, map[string]int{"x": 1}, all[0].Weights)
}

func TestStorage_Snapshots(t *testing.T) {
	store := newTestStorage(t)

	march := &Snapshot{
		ID:           "snap-1",
		Period:       "2026-03",
		RecordedAt:   time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC),
		Total:        250.5,
		Billable:     200,
		Internal:     40.5,
		Unassigned:   10,
		ServiceCount: 7,
		ByProject:    map[string]float64{"alpha": 200},
		ByCategory:   map[string]float64{"ai": 250.5},
	}
	feb := &Snapshot{ID: "snap-0", Period: "2026-02", RecordedAt: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), Total: 100}

	require.NoError(t, store.SaveSnapshot(march))
	require.NoError(t, store.SaveSnapshot(feb))

	got, err := store.GetSnapshot("2026-03")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 250.5, got.Total)
	assert.Equal(t, 7, got.ServiceCount)
	assert.Equal(t, map[string]float64{"alpha": 200}, got.ByProject)
	assert.Empty(t, got.ByClient)
	assert.True(t, march.RecordedAt.Equal(got.RecordedAt))

	t.Run("list is ordered by period", func(t *testing.T) {
		all, err := store.ListSnapshots()
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "2026-02", all[0].Period)
		assert.Equal(t, "2026-03", all[1].Period)
	})

	t.Run("same period replaces", func(t *testing.T) {
		require.NoError(t, store.SaveSnapshot(&Snapshot{
			ID: "snap-2", Period: "2026-03", RecordedAt: time.Now().UTC(), Total: 300,
		}))

		all, err := store.ListSnapshots()
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "snap-2", all[1].ID)
		assert.Equal(t, 300.0, all[1].Total)
	})

	t.Run("missing period", func(t *testing.T) {
		got, err := store.GetSnapshot("1999-01")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStorage_SaveSnapshot_EncodeError(t *testing.T) {
	store := newTestStorage(t)

	err := store.SaveSnapshot(&Snapshot{
		ID:         "snap-nan",
		Period:     "2026-04",
		RecordedAt: time.Now().UTC(),
		ByProject:  map[string]float64{"alpha": math.NaN()},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode project totals for 2026-04")

	got, err := store.GetSnapshot("2026-04")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFeedbackUpdate_IsEmpty(t *testing.T) {
	assert.True(t, FeedbackUpdate{}.IsEmpty())
	assert.False(t, FeedbackUpdate{Plan: ptr("")}.IsEmpty())
}

func TestMockRepository_Weights(t *testing.T) {
	repo := NewMockRepository()

	require.NoError(t, repo.SaveWeights("svc", map[string]int{"a": 1}))
	assert.True(t, repo.SaveWeightsCalled)

	f, err := repo.GetFeedback("svc")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, f.Weights)

	require.NoError(t, repo.ClearWeights("svc"))
	f, _ = repo.GetFeedback("svc")
	assert.Nil(t, f.Weights)
}
