package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmett/conteo/internal/vocab"
)

func TestSegmentLocationAndQuantity(t *testing.T) {
	events := Segment("finca 1 bloque 2 cama 3 garbanzo 5")
	require.Len(t, events, 4)
	assert.Equal(t, Event{Type: EventLocation, Key: KeyFinca, Value: "cananvalle"}, events[0])
	assert.Equal(t, Event{Type: EventLocation, Key: KeyBloque, Value: "2"}, events[1])
	assert.Equal(t, Event{Type: EventLocation, Key: KeyCama, Value: "3"}, events[2])
	assert.Equal(t, Event{Type: EventQuantity, Stage: "garbanzo", Count: 5}, events[3])
}

func TestSegmentSpokenNumbers(t *testing.T) {
	events := Segment("finca uno bloque veinte cama treinta y cinco arroz diez")
	require.Len(t, events, 4)
	assert.Equal(t, "cananvalle", events[0].Value)
	assert.Equal(t, "20", events[1].Value)
	assert.Equal(t, "35", events[2].Value)
	assert.Equal(t, Event{Type: EventQuantity, Stage: "arroz", Count: 10}, events[3])
}

func TestSegmentLetterSuffix(t *testing.T) {
	events := Segment("bloque 2 a cama 3 b")
	require.Len(t, events, 2)
	assert.Equal(t, "2a", events[0].Value)
	assert.Equal(t, "3b", events[1].Value)

	// The letter binds to the location value, not to a following stage.
	events = Segment("cama 3 arroz 4")
	require.Len(t, events, 2)
	assert.Equal(t, "3", events[0].Value)
	assert.Equal(t, Event{Type: EventQuantity, Stage: "arroz", Count: 4}, events[1])
}

func TestSegmentUndoDisambiguation(t *testing.T) {
	assert.Equal(t, []Event{{Type: EventUndo}}, Segment("borrar"))
	assert.Equal(t, []Event{{Type: EventUndoStage, Stage: "arroz"}}, Segment("borrar ultimo arroz"))
	// "ultimo" without a stage falls back to a bare undo.
	assert.Equal(t, []Event{{Type: EventUndo}}, Segment("borrar ultimo"))
	// A stage word without "ultimo" does not make it targeted.
	assert.Equal(t, []Event{{Type: EventUndo}}, Segment("borrar arroz"))
	// The stage has to come after "ultimo".
	assert.Equal(t, []Event{{Type: EventUndo}}, Segment("arroz borrar ultimo"))
}

func TestSegmentDeleteShortCircuitsDataEntry(t *testing.T) {
	// "borrar" anywhere suppresses every location/quantity match in the
	// same utterance.
	events := Segment("garbanzo 5 borrar")
	assert.Equal(t, []Event{{Type: EventUndo}}, events)
}

func TestSegmentNavigateAndTotal(t *testing.T) {
	assert.Equal(t, []Event{{Type: EventNavigate, Target: "observaciones"}}, Segment("observaciones"))
	assert.Equal(t, []Event{{Type: EventTotal}}, Segment("garbanzo 5 total"))
}

func TestSegmentVoiceSelect(t *testing.T) {
	events := Segment("femenina arroz 2")
	require.Len(t, events, 2)
	assert.Equal(t, Event{Type: EventVoice, Voice: vocab.VoiceFemale}, events[0])
	assert.Equal(t, Event{Type: EventQuantity, Stage: "arroz", Count: 2}, events[1])

	// Field misrecognition still selects the female voice.
	events = Segment("femenie")
	require.Len(t, events, 1)
	assert.Equal(t, vocab.VoiceFemale, events[0].Voice)
}

func TestSegmentSkipsUnknownWords(t *testing.T) {
	events := Segment("este finca 1 eh garbanzo cinco")
	require.Len(t, events, 2)
	assert.Equal(t, KeyFinca, events[0].Key)
	assert.Equal(t, Event{Type: EventQuantity, Stage: "garbanzo", Count: 5}, events[1])
}

func TestSegmentIncompleteCommands(t *testing.T) {
	assert.Empty(t, Segment("finca"))
	assert.Empty(t, Segment("garbanzo"))
	assert.Empty(t, Segment("bloque gato"))
	assert.Empty(t, Segment(""))
	// An unknown finca alias does not become a location event.
	assert.Empty(t, Segment("finca 9"))
}

func TestSegmentNormalizesInput(t *testing.T) {
	events := Segment("  Cama Veintidós  ")
	require.Len(t, events, 1)
	assert.Equal(t, Event{Type: EventLocation, Key: KeyCama, Value: "22"}, events[0])
}
