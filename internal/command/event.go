// Package command turns normalized transcript text into a sequence of
// typed events: location changes, quantity adds, undo, navigation,
// total queries and voice selection.
package command

import "github.com/emmett/conteo/internal/vocab"

// EventType discriminates the Event variants.
type EventType string

const (
	EventLocation  EventType = "location"
	EventQuantity  EventType = "quantity"
	EventUndo      EventType = "undo"
	EventUndoStage EventType = "undo_stage"
	EventNavigate  EventType = "navigate"
	EventTotal     EventType = "total"
	EventVoice     EventType = "voice"
)

// LocationKey identifies a level of the location hierarchy.
type LocationKey string

const (
	KeyFinca  LocationKey = "finca"
	KeyBloque LocationKey = "bloque"
	KeyCama   LocationKey = "cama"
)

// Event is one interpreted voice command. Only the fields relevant to
// its Type are set.
type Event struct {
	Type EventType

	// EventLocation
	Key   LocationKey
	Value string

	// EventQuantity and EventUndoStage
	Stage string
	// EventQuantity
	Count int

	// EventNavigate
	Target string

	// EventVoice
	Voice vocab.Voice
}
