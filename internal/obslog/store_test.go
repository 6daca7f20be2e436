package obslog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmett/conteo/internal/state"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "observations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func obs(at time.Time, cama, stage string, value int) state.Observation {
	return state.Observation{
		At:    at,
		Finca: "cananvalle", Bloque: "2", Cama: cama,
		Stage: stage, Value: value,
	}
}

func TestNormalizeCama(t *testing.T) {
	cases := map[string]string{
		"3":   "03",
		"03":  "03",
		"12":  "12",
		"3a":  "03a",
		"12b": "12b",
		"-":   "-",
		"":    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeCama(in), "input %q", in)
	}
}

func TestAppendAndCountsForDay(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// 09:30 in Guayaquil on Feb 10.
	guayaquil, err := time.LoadLocation("America/Guayaquil")
	require.NoError(t, err)
	at := time.Date(2026, 2, 10, 9, 30, 0, 0, guayaquil)

	require.NoError(t, s.Append(ctx, obs(at, "3", "garbanzo", 5)))
	require.NoError(t, s.Append(ctx, obs(at.Add(time.Hour), "3", "garbanzo", 2)))
	require.NoError(t, s.Append(ctx, obs(at, "3", "arroz", 4)))
	// Different bed, same day: not counted.
	require.NoError(t, s.Append(ctx, obs(at, "4", "garbanzo", 9)))
	// Same bed, previous day in the recording timezone: not counted.
	require.NoError(t, s.Append(ctx, obs(at.Add(-24*time.Hour), "3", "garbanzo", 11)))

	counts, skipped, err := s.CountsForDay(ctx, "cananvalle", "2", "3", at, guayaquil)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, 7, counts["garbanzo"])
	assert.Equal(t, 4, counts["arroz"])
	assert.Zero(t, counts["uva"])
}

func TestCountsForDayTimezoneBoundary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	guayaquil, err := time.LoadLocation("America/Guayaquil")
	require.NoError(t, err)

	// 03:00 UTC on Feb 11 is still 22:00 Feb 10 in Guayaquil (UTC-5).
	late := time.Date(2026, 2, 11, 3, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(ctx, obs(late, "3", "garbanzo", 5)))

	asOf := time.Date(2026, 2, 10, 20, 0, 0, 0, guayaquil)
	counts, _, err := s.CountsForDay(ctx, "cananvalle", "2", "3", asOf, guayaquil)
	require.NoError(t, err)
	assert.Equal(t, 5, counts["garbanzo"], "record belongs to Feb 10 in the recording timezone")

	// In UTC the same record belongs to Feb 11.
	counts, _, err = s.CountsForDay(ctx, "cananvalle", "2", "3", time.Date(2026, 2, 10, 20, 0, 0, 0, time.UTC), time.UTC)
	require.NoError(t, err)
	assert.Zero(t, counts["garbanzo"])
}

func TestCountsForDaySkipsMalformedRecords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

	require.NoError(t, s.Append(ctx, obs(at, "3", "garbanzo", 5)))
	// Unknown stage and a corrupt timestamp, inserted behind the API's back.
	_, err := s.db.Exec(`INSERT INTO observations (id, at, finca, bloque, cama, stage, value)
		VALUES ('bad-1', ?, 'cananvalle', '2', '03', 'maleza', 3)`, at.Format(time.RFC3339Nano))
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO observations (id, at, finca, bloque, cama, stage, value)
		VALUES ('bad-2', 'not-a-time', 'cananvalle', '2', '03', 'garbanzo', 3)`)
	require.NoError(t, err)

	counts, skipped, err := s.CountsForDay(ctx, "cananvalle", "2", "3", at, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, 5, counts["garbanzo"], "malformed rows are skipped, not fatal")
}

func TestCompensatingRecordsNetOut(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

	require.NoError(t, s.Append(ctx, obs(at, "3", "garbanzo", 5)))
	require.NoError(t, s.Append(ctx, obs(at.Add(time.Minute), "3", "garbanzo", -5)))

	counts, _, err := s.CountsForDay(ctx, "cananvalle", "2", "3", at, time.UTC)
	require.NoError(t, err)
	assert.Zero(t, counts["garbanzo"])

	// A stray compensation without its positive record clamps at zero.
	require.NoError(t, s.Append(ctx, obs(at, "4", "arroz", -2)))
	counts, _, err = s.CountsForDay(ctx, "cananvalle", "2", "4", at, time.UTC)
	require.NoError(t, err)
	assert.Zero(t, counts["arroz"])
}

func TestCamaPaddingAggregates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

	// "3" and "03" are the same bed.
	require.NoError(t, s.Append(ctx, obs(at, "3", "garbanzo", 2)))
	require.NoError(t, s.Append(ctx, obs(at, "03", "garbanzo", 3)))

	counts, _, err := s.CountsForDay(ctx, "cananvalle", "2", "3", at, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 5, counts["garbanzo"])
}

func TestSyncLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

	require.NoError(t, s.Append(ctx, obs(at, "3", "garbanzo", 5)))
	require.NoError(t, s.Append(ctx, obs(at.Add(time.Minute), "3", "arroz", 2)))

	pending, err := s.Unsynced(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.NotEmpty(t, pending[0].ID)
	assert.Equal(t, "03", pending[0].Cama)

	require.NoError(t, s.MarkSynced(ctx, []string{pending[0].ID}))
	pending, err = s.Unsynced(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "arroz", pending[0].Stage)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAppendKeepsProvidedID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	o := obs(time.Now(), "3", "garbanzo", 1)
	o.ID = "origin-id-1"
	require.NoError(t, s.Append(ctx, o))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "origin-id-1", all[0].ID)
}
