package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/emmett/conteo/internal/command"
	"github.com/emmett/conteo/internal/vocab"
)

// NoticeKind classifies the user-facing notices a reduction can raise.
// None of them are errors; the worst outcome of any event is that it is
// dropped and the user repeats it.
type NoticeKind string

const (
	// NoticeIncompleteLocation: a quantity arrived before the location
	// triple was fully set and was dropped.
	NoticeIncompleteLocation NoticeKind = "incomplete_location"
	// NoticeNothingToUndo: undo with an empty history.
	NoticeNothingToUndo NoticeKind = "nothing_to_undo"
	// NoticeNothingToUndoStage: targeted undo found no matching entry.
	NoticeNothingToUndoStage NoticeKind = "nothing_to_undo_stage"
)

// Notice is a non-fatal signal the host surfaces to the user.
type Notice struct {
	Kind NoticeKind
	// Missing holds the unset location levels for NoticeIncompleteLocation.
	Missing []string
	// Stage holds the requested stage for NoticeNothingToUndoStage.
	Stage string
}

// Outcome carries the side signals of a reduction: notices to surface,
// events the host acts on, and the phrases spoken back to the user.
type Outcome struct {
	Notices []Notice
	// Navigate is the view the host should switch to, if any.
	Navigate string
	// TotalRequested is set when the user asked for the running total.
	TotalRequested bool
	// SkippedRecords counts malformed durable records encountered while
	// recomputing today's counts after a cama change.
	SkippedRecords int
}

// Reducer folds command events into session state. It is the only
// writer of the observation log. The zero value is not usable; use
// NewReducer.
type Reducer struct {
	log    Log
	clock  func() time.Time
	tz     *time.Location
	logger *slog.Logger
}

// NewReducer builds a reducer writing through log, stamping records
// with clock (nil means time.Now) in the recording timezone tz (nil
// means UTC).
func NewReducer(log Log, clock func() time.Time, tz *time.Location, logger *slog.Logger) *Reducer {
	if clock == nil {
		clock = time.Now
	}
	if tz == nil {
		tz = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reducer{log: log, clock: clock, tz: tz, logger: logger}
}

// Apply folds events into s and returns the next state plus the side
// signals. It never fails: invalid or unrecognized events are no-ops,
// and durable-log trouble is logged and reported via the Outcome, never
// allowed to block the transition.
func (r *Reducer) Apply(ctx context.Context, s State, events []command.Event) (State, Outcome) {
	next := s.clone()
	var out Outcome

	for _, ev := range events {
		switch ev.Type {
		case command.EventLocation:
			r.applyLocation(ctx, &next, &out, ev)
		case command.EventQuantity:
			r.applyQuantity(ctx, &next, &out, ev)
		case command.EventUndo:
			r.applyUndo(ctx, &next, &out)
		case command.EventUndoStage:
			r.applyUndoStage(ctx, &next, &out, ev.Stage)
		case command.EventVoice:
			next.Voice = ev.Voice
		case command.EventNavigate:
			out.Navigate = ev.Target
		case command.EventTotal:
			out.TotalRequested = true
		}
	}
	return next, out
}

func (r *Reducer) applyLocation(ctx context.Context, next *State, out *Outcome, ev command.Event) {
	switch ev.Key {
	case command.KeyFinca:
		if next.Location.Finca == ev.Value {
			return
		}
		// Changing finca invalidates everything beneath it.
		next.Location.Finca = ev.Value
		next.Location.Bloque = Unset
		next.Location.Cama = Unset
		next.Counts = zeroCounts()
		next.History = nil
	case command.KeyBloque:
		if next.Location.Bloque == ev.Value {
			return
		}
		next.Location.Bloque = ev.Value
		next.Location.Cama = Unset
		next.Counts = zeroCounts()
		next.History = nil
	case command.KeyCama:
		if next.Location.Cama == ev.Value {
			return
		}
		next.Location.Cama = ev.Value
		next.History = nil
		next.Counts = r.todayCounts(ctx, next.Location, out)
	}
}

// todayCounts recomputes the per-stage totals for the (now complete)
// location from the durable log. Log trouble degrades to zero counts
// rather than blocking the location change.
func (r *Reducer) todayCounts(ctx context.Context, loc Location, out *Outcome) map[string]int {
	if !loc.Complete() {
		return zeroCounts()
	}
	counts, skipped, err := r.log.CountsForDay(ctx, loc.Finca, loc.Bloque, loc.Cama, r.clock(), r.tz)
	if err != nil {
		r.logger.Warn("recompute today counts failed", "finca", loc.Finca, "bloque", loc.Bloque, "cama", loc.Cama, "error", err)
		return zeroCounts()
	}
	out.SkippedRecords += skipped
	full := zeroCounts()
	for stage, v := range counts {
		if _, ok := full[stage]; ok {
			full[stage] = v
		}
	}
	return full
}

func (r *Reducer) applyQuantity(ctx context.Context, next *State, out *Outcome, ev command.Event) {
	if !vocab.IsStage(ev.Stage) || ev.Count <= 0 {
		return
	}
	if !next.Location.Complete() {
		out.Notices = append(out.Notices, Notice{
			Kind:    NoticeIncompleteLocation,
			Missing: next.Location.Missing(),
		})
		return
	}
	next.Counts[ev.Stage] += ev.Count
	next.History = append(next.History, Entry{Stage: ev.Stage, Value: ev.Count})
	r.append(ctx, next.Location, ev.Stage, ev.Count)
}

func (r *Reducer) applyUndo(ctx context.Context, next *State, out *Outcome) {
	if len(next.History) == 0 {
		out.Notices = append(out.Notices, Notice{Kind: NoticeNothingToUndo})
		return
	}
	last := next.History[len(next.History)-1]
	next.History = next.History[:len(next.History)-1]
	r.compensate(ctx, next, last)
}

func (r *Reducer) applyUndoStage(ctx context.Context, next *State, out *Outcome, stage string) {
	for i := len(next.History) - 1; i >= 0; i-- {
		if next.History[i].Stage != stage {
			continue
		}
		removed := next.History[i]
		next.History = append(next.History[:i], next.History[i+1:]...)
		r.compensate(ctx, next, removed)
		return
	}
	out.Notices = append(out.Notices, Notice{Kind: NoticeNothingToUndoStage, Stage: stage})
}

// compensate reverses one history entry: decrement the count (floored
// at zero) and append a negative-value record so durable totals agree.
func (r *Reducer) compensate(ctx context.Context, next *State, e Entry) {
	next.Counts[e.Stage] -= e.Value
	if next.Counts[e.Stage] < 0 {
		next.Counts[e.Stage] = 0
	}
	if next.Location.Complete() {
		r.append(ctx, next.Location, e.Stage, -e.Value)
	}
}

func (r *Reducer) append(ctx context.Context, loc Location, stage string, value int) {
	o := Observation{
		At:     r.clock(),
		Finca:  loc.Finca,
		Bloque: loc.Bloque,
		Cama:   loc.Cama,
		Stage:  stage,
		Value:  value,
	}
	if err := r.log.Append(ctx, o); err != nil {
		r.logger.Warn("observation append failed", "stage", stage, "value", value, "error", err)
	}
}
