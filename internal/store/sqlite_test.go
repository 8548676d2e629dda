package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/internal/resilience"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testContact() model.Contact {
	return model.Contact{
		"name":    "Jane Smith",
		"company": "Acme Fasteners",
		"email":   "jane@acmefasteners.com",
	}
}

// --- Runs ---

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "user-1", testContact())
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "Jane Smith", got.Contact.Name())
	assert.Nil(t, got.Report)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "user-1", testContact())
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, got.Status)

	assert.Error(t, st.UpdateRunStatus(ctx, "missing", model.RunStatusRunning))
}

func TestSQLite_SaveReport(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "user-1", testContact())
	require.NoError(t, err)

	report := &model.Report{
		EnrichedData: model.FieldMap{"phone": "+1 555 0100"},
		Provenance:   map[string]model.Source{"phone": model.SourceExactMatch},
		Summary: model.Summary{
			FieldsFound: 1,
			Confidence:  model.ConfidenceLow,
			Quality:     model.QualityMinimal,
		},
	}
	require.NoError(t, st.SaveReport(ctx, run.ID, report))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Report)
	assert.Equal(t, "+1 555 0100", got.Report.EnrichedData["phone"])
	assert.Equal(t, model.SourceExactMatch, got.Report.Provenance["phone"])
	assert.Equal(t, 1, got.Report.Summary.FieldsFound)
}

func TestSQLite_ListRuns_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	r1, err := st.CreateRun(ctx, "user-1", testContact())
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "user-2", testContact())
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunStatus(ctx, r1.ID, model.RunStatusComplete))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, r1.ID, complete[0].ID)

	user2, err := st.ListRuns(ctx, RunFilter{UserID: "user-2"})
	require.NoError(t, err)
	require.Len(t, user2, 1)
	assert.Equal(t, "user-2", user2[0].UserID)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

// --- Profile cache ---

func TestSQLite_ProfileCache_SetAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCachedProfile(ctx, "pers-1", []byte(`{"person":null}`), time.Hour))

	data, err := st.GetCachedProfile(ctx, "pers-1")
	require.NoError(t, err)
	assert.Equal(t, `{"person":null}`, string(data))
}

func TestSQLite_ProfileCache_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	data, err := st.GetCachedProfile(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSQLite_ProfileCache_Expired(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCachedProfile(ctx, "stale", []byte("old"), -48*time.Hour))

	data, err := st.GetCachedProfile(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSQLite_ProfileCache_Upsert(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCachedProfile(ctx, "pers-1", []byte("v1"), time.Hour))
	require.NoError(t, st.SetCachedProfile(ctx, "pers-1", []byte("v2"), time.Hour))

	data, err := st.GetCachedProfile(ctx, "pers-1")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestSQLite_DeleteExpiredProfiles(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCachedProfile(ctx, "fresh", []byte("keep"), time.Hour))
	require.NoError(t, st.SetCachedProfile(ctx, "stale", []byte("drop"), -48*time.Hour))

	n, err := st.DeleteExpiredProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := st.GetCachedProfile(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, data)
}

// --- Dead letter queue ---

func dlqEntry(id string) resilience.DLQEntry {
	now := time.Now().UTC()
	return resilience.DLQEntry{
		ID:           id,
		Contact:      testContact(),
		UserID:       "user-1",
		Error:        "HTTP 503",
		ErrorType:    "transient",
		FailedStep:   "exact_match",
		RetryCount:   0,
		MaxRetries:   3,
		NextRetryAt:  now.Add(-time.Minute),
		CreatedAt:    now,
		LastFailedAt: now,
	}
}

func TestSQLite_DLQ_EnqueueDequeue(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.EnqueueDLQ(ctx, dlqEntry("dlq-1")))

	entries, err := st.DequeueDLQ(ctx, resilience.DLQFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dlq-1", entries[0].ID)
	assert.Equal(t, "Jane Smith", entries[0].Contact.Name())
	assert.Equal(t, "exact_match", entries[0].FailedStep)

	count, err := st.CountDLQ(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLite_DLQ_FilterByErrorType(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	transient := dlqEntry("dlq-transient")
	permanent := dlqEntry("dlq-permanent")
	permanent.ErrorType = "permanent"

	require.NoError(t, st.EnqueueDLQ(ctx, transient))
	require.NoError(t, st.EnqueueDLQ(ctx, permanent))

	entries, err := st.DequeueDLQ(ctx, resilience.DLQFilter{ErrorType: "transient"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dlq-transient", entries[0].ID)
}

func TestSQLite_DLQ_NotYetDue(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	entry := dlqEntry("dlq-future")
	entry.NextRetryAt = time.Now().UTC().Add(48 * time.Hour)
	require.NoError(t, st.EnqueueDLQ(ctx, entry))

	entries, err := st.DequeueDLQ(ctx, resilience.DLQFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSQLite_DLQ_IncrementRetry(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.EnqueueDLQ(ctx, dlqEntry("dlq-1")))
	require.NoError(t, st.IncrementDLQRetry(ctx, "dlq-1", time.Now().UTC().Add(-time.Minute), "HTTP 500"))

	entries, err := st.DequeueDLQ(ctx, resilience.DLQFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].RetryCount)
	assert.Equal(t, "HTTP 500", entries[0].Error)

	assert.Error(t, st.IncrementDLQRetry(ctx, "missing", time.Now(), "x"))
}

func TestSQLite_DLQ_ExhaustedRetriesExcluded(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	entry := dlqEntry("dlq-spent")
	entry.RetryCount = 3
	require.NoError(t, st.EnqueueDLQ(ctx, entry))

	entries, err := st.DequeueDLQ(ctx, resilience.DLQFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Exhausted entries still count toward the queue depth.
	count, err := st.CountDLQ(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLite_DLQ_Remove(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.EnqueueDLQ(ctx, dlqEntry("dlq-1")))
	require.NoError(t, st.RemoveDLQ(ctx, "dlq-1"))

	count, err := st.CountDLQ(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
