package grpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/emmett/conteo/internal/obslog"
	"github.com/emmett/conteo/internal/state"
)

// ObservationRecord is one durable observation on the wire
type ObservationRecord struct {
	Id     string
	At     string // RFC3339
	Finca  string
	Bloque string
	Cama   string
	Stage  string
	Value  int32
}

// PushRequest carries a batch of observations from a field device
type PushRequest struct {
	Observations []*ObservationRecord
}

// PushResponse reports how the batch was handled
type PushResponse struct {
	Accepted  int32
	Duplicate int32
}

// TotalsRequest asks for the per-stage tallies of one bed on one day
type TotalsRequest struct {
	Finca  string
	Bloque string
	Cama   string
	Date   string // YYYY-MM-DD in the recording timezone; empty means today
}

// TotalsResponse carries the tallies
type TotalsResponse struct {
	Counts         map[string]int32
	Total          int32
	SkippedRecords int32
}

// SyncService implements the gRPC observation sync service
type SyncService struct {
	store *obslog.Store
	tz    *time.Location
	mu    sync.Mutex
}

// NewSyncService creates a new sync service over the given store. The
// timezone defines the day boundary for totals queries.
func NewSyncService(store *obslog.Store, tz *time.Location) *SyncService {
	if tz == nil {
		tz = time.UTC
	}
	return &SyncService{store: store, tz: tz}
}

// Push appends a batch of observations to the log. Records that are
// already present (same id) count as duplicates rather than errors, so
// a device can safely retry a batch after a dropped connection.
// This will be updated to use generated proto types once protoc runs
func (s *SyncService) Push(ctx context.Context, req *PushRequest) (*PushResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := &PushResponse{}
	for _, rec := range req.Observations {
		if rec.Id == "" {
			return nil, fmt.Errorf("observation without id")
		}
		at, err := time.Parse(time.RFC3339, rec.At)
		if err != nil {
			return nil, fmt.Errorf("observation %s: bad timestamp %q: %w", rec.Id, rec.At, err)
		}
		err = s.store.Append(ctx, state.Observation{
			ID:     rec.Id,
			At:     at,
			Finca:  rec.Finca,
			Bloque: rec.Bloque,
			Cama:   rec.Cama,
			Stage:  rec.Stage,
			Value:  int(rec.Value),
		})
		if err != nil {
			if obslog.IsDuplicate(err) {
				resp.Duplicate++
				continue
			}
			return nil, fmt.Errorf("observation %s: %w", rec.Id, err)
		}
		resp.Accepted++
	}
	return resp, nil
}

// Totals returns the per-stage tallies for one bed on one recording day
func (s *SyncService) Totals(ctx context.Context, req *TotalsRequest) (*TotalsResponse, error) {
	asOf := time.Now()
	if req.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", req.Date, s.tz)
		if err != nil {
			return nil, fmt.Errorf("bad date %q: %w", req.Date, err)
		}
		// Noon avoids any edge trouble right at the day boundary.
		asOf = day.Add(12 * time.Hour)
	}

	counts, skipped, err := s.store.CountsForDay(ctx, req.Finca, req.Bloque, req.Cama, asOf, s.tz)
	if err != nil {
		return nil, err
	}

	resp := &TotalsResponse{
		Counts:         make(map[string]int32, len(counts)),
		SkippedRecords: int32(skipped),
	}
	for stage, v := range counts {
		resp.Counts[stage] = int32(v)
		resp.Total += int32(v)
	}
	return resp, nil
}
