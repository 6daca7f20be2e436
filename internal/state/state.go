// Package state holds the running tally for the current location and
// the reducer that folds interpreted command events into it.
package state

import (
	"context"
	"time"

	"github.com/emmett/conteo/internal/vocab"
)

// Unset is the sentinel for a location level that has not been spoken yet.
const Unset = "-"

// Location is the finca > bloque > cama hierarchy. A level is
// meaningful only when all ancestors are set.
type Location struct {
	Finca  string
	Bloque string
	Cama   string
}

// Complete reports whether all three levels are set.
func (l Location) Complete() bool {
	return l.Finca != Unset && l.Bloque != Unset && l.Cama != Unset
}

// Missing lists the unset levels, outermost first.
func (l Location) Missing() []string {
	var missing []string
	if l.Finca == Unset {
		missing = append(missing, "finca")
	}
	if l.Bloque == Unset {
		missing = append(missing, "bloque")
	}
	if l.Cama == Unset {
		missing = append(missing, "cama")
	}
	return missing
}

// Entry is one applied quantity event, kept to support undo.
type Entry struct {
	Stage string
	Value int
}

// State is the in-memory session state. It is plain data; the reducer
// returns a fresh value and never mutates its input.
type State struct {
	Location Location
	// Counts accumulates today's per-stage totals for the current
	// location. Every canonical stage is present as a key.
	Counts map[string]int
	// History records quantity events applied since the last location
	// change, most recent last. Session-local: it is not rebuilt from
	// the durable log.
	History []Entry
	Voice   vocab.Voice
}

// New returns the empty session state.
func New() State {
	return State{
		Location: Location{Finca: Unset, Bloque: Unset, Cama: Unset},
		Counts:   zeroCounts(),
		Voice:    vocab.VoiceMale,
	}
}

func zeroCounts() map[string]int {
	counts := make(map[string]int, len(vocab.Stages))
	for _, s := range vocab.Stages {
		counts[s] = 0
	}
	return counts
}

// Total sums all stage counts.
func (s State) Total() int {
	total := 0
	for _, v := range s.Counts {
		total += v
	}
	return total
}

func (s State) clone() State {
	next := s
	next.Counts = make(map[string]int, len(s.Counts))
	for k, v := range s.Counts {
		next.Counts[k] = v
	}
	next.History = make([]Entry, len(s.History))
	copy(next.History, s.History)
	return next
}

// Observation is one durable quantity record. Undo is represented as a
// compensating record with a negated value; the log is append-only and
// never rewritten.
type Observation struct {
	ID     string
	At     time.Time
	Finca  string
	Bloque string
	Cama   string
	Stage  string
	Value  int
}

// Log is the durable observation log the reducer writes through.
// Append failures must not block a state transition; CountsForDay is
// consulted only when the location leaf changes.
type Log interface {
	Append(ctx context.Context, o Observation) error
	// CountsForDay returns the per-stage totals for the given location
	// on the day containing asOf, with day boundaries taken in tz.
	// Malformed records are skipped, not fatal; the count of skipped
	// records is returned for observability.
	CountsForDay(ctx context.Context, finca, bloque, cama string, asOf time.Time, tz *time.Location) (map[string]int, int, error)
}
