package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndListRuns(t *testing.T) {
	l := openTestLedger(t)

	base := time.Now().Truncate(time.Millisecond)
	first, err := l.RecordRun(Run{
		Problem:  "wet.yaml",
		Started:  base,
		Duration: 12 * time.Millisecond,
		Applied:  5,
		Closed:   2,
		Open:     0,
		Status:   "proved",
	}, []GoalResult{
		{Goal: "main", Rule: "triv", Outcome: "closed"},
		{Goal: "aux", Rule: "rfl", Outcome: "closed"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := l.RecordRun(Run{
		Problem: "stuck.yaml",
		Started: base.Add(time.Second),
		Applied: 3,
		Open:    1,
		Status:  "open",
	}, []GoalResult{{Goal: "main", Outcome: "open"}})
	require.NoError(t, err)

	runs, err := l.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, "stuck.yaml", runs[0].Problem)
	assert.Equal(t, first, runs[1].ID)
	assert.Equal(t, "proved", runs[1].Status)
	assert.Equal(t, 12*time.Millisecond, runs[1].Duration)
	assert.True(t, runs[1].Started.Equal(base))

	results, err := l.GoalResults(first)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "main", results[0].Goal)
	assert.Equal(t, "triv", results[0].Rule)
	assert.Equal(t, "closed", results[0].Outcome)
}

func TestListRunsLimit(t *testing.T) {
	l := openTestLedger(t)

	for i := 0; i < 5; i++ {
		_, err := l.RecordRun(Run{
			Problem: "p.yaml",
			Started: time.Now().Add(time.Duration(i) * time.Second),
			Status:  "open",
		}, nil)
		require.NoError(t, err)
	}

	runs, err := l.ListRuns(3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestRecordRunKeepsGivenID(t *testing.T) {
	l := openTestLedger(t)

	id, err := l.RecordRun(Run{ID: "fixed-id", Problem: "p.yaml", Started: time.Now(), Status: "error", Error: "boom"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)

	runs, err := l.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "boom", runs[0].Error)
}

func TestGoalResultsUnknownRun(t *testing.T) {
	l := openTestLedger(t)
	results, err := l.GoalResults("nope")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	l, err := Open(path)
	require.NoError(t, err)
	_, err = l.RecordRun(Run{Problem: "p.yaml", Started: time.Now(), Status: "proved"}, nil)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l2, err := Open(path)
	require.NoError(t, err)
	defer l2.Close()
	runs, err := l2.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
