package grpc

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmett/conteo/internal/obslog"
)

func newTestService(t *testing.T) *SyncService {
	t.Helper()
	store, err := obslog.Open(filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tz, err := time.LoadLocation("America/Guayaquil")
	require.NoError(t, err)
	return NewSyncService(store, tz)
}

func pushBatch(at time.Time) *PushRequest {
	return &PushRequest{Observations: []*ObservationRecord{
		{Id: "a1", At: at.Format(time.RFC3339), Finca: "cananvalle", Bloque: "2", Cama: "3", Stage: "garbanzo", Value: 5},
		{Id: "a2", At: at.Format(time.RFC3339), Finca: "cananvalle", Bloque: "2", Cama: "3", Stage: "arroz", Value: 3},
	}}
}

func TestPushAndTotals(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	at := time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)

	resp, err := svc.Push(ctx, pushBatch(at))
	require.NoError(t, err)
	assert.Equal(t, int32(2), resp.Accepted)
	assert.Zero(t, resp.Duplicate)

	totals, err := svc.Totals(ctx, &TotalsRequest{
		Finca: "cananvalle", Bloque: "2", Cama: "3", Date: "2026-02-10",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(5), totals.Counts["garbanzo"])
	assert.Equal(t, int32(3), totals.Counts["arroz"])
	assert.Equal(t, int32(8), totals.Total)
	assert.Zero(t, totals.SkippedRecords)
}

func TestPushRetryCountsDuplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	at := time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)

	_, err := svc.Push(ctx, pushBatch(at))
	require.NoError(t, err)

	// Same batch again, as after a dropped connection.
	resp, err := svc.Push(ctx, pushBatch(at))
	require.NoError(t, err)
	assert.Zero(t, resp.Accepted)
	assert.Equal(t, int32(2), resp.Duplicate)
}

func TestPushRejectsBadRecords(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Push(ctx, &PushRequest{Observations: []*ObservationRecord{
		{At: time.Now().Format(time.RFC3339), Finca: "f", Bloque: "1", Cama: "1", Stage: "arroz", Value: 1},
	}})
	assert.Error(t, err)

	_, err = svc.Push(ctx, &PushRequest{Observations: []*ObservationRecord{
		{Id: "x", At: "yesterday", Finca: "f", Bloque: "1", Cama: "1", Stage: "arroz", Value: 1},
	}})
	assert.Error(t, err)
}

func TestTotalsDayBoundaryInRecordingZone(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// 03:00 UTC on Feb 11 is still Feb 10 in Guayaquil (UTC-5).
	late := time.Date(2026, 2, 11, 3, 0, 0, 0, time.UTC)
	_, err := svc.Push(ctx, &PushRequest{Observations: []*ObservationRecord{
		{Id: "b1", At: late.Format(time.RFC3339), Finca: "santamaria", Bloque: "1", Cama: "7", Stage: "uva", Value: 2},
	}})
	require.NoError(t, err)

	totals, err := svc.Totals(ctx, &TotalsRequest{
		Finca: "santamaria", Bloque: "1", Cama: "7", Date: "2026-02-10",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), totals.Total)

	totals, err = svc.Totals(ctx, &TotalsRequest{
		Finca: "santamaria", Bloque: "1", Cama: "7", Date: "2026-02-11",
	})
	require.NoError(t, err)
	assert.Zero(t, totals.Total)
}

func TestTotalsBadDate(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Totals(context.Background(), &TotalsRequest{Date: "not-a-date"})
	assert.Error(t, err)
}
