package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpretCarryOver(t *testing.T) {
	// A command split across two recognizer callbacks completes on the
	// second one.
	res := Interpret("", "finca")
	assert.Equal(t, "finca", res.Buffer)
	assert.Empty(t, res.Events)

	res = Interpret(res.Buffer, "1")
	assert.Empty(t, res.Buffer)
	require.Len(t, res.Events, 1)
	assert.Equal(t, Event{Type: EventLocation, Key: KeyFinca, Value: "cananvalle"}, res.Events[0])
}

func TestInterpretBufferClearedOnMatch(t *testing.T) {
	res := Interpret("", "garbanzo cinco")
	require.Len(t, res.Events, 1)
	assert.Empty(t, res.Buffer, "matched words must not be reinterpretable")

	// The next call starts from a clean buffer.
	res = Interpret(res.Buffer, "")
	assert.Empty(t, res.Events)
	assert.Empty(t, res.Buffer)
}

func TestInterpretBufferCap(t *testing.T) {
	long := strings.Repeat("gato ", 30)
	res := Interpret("", long)
	assert.Empty(t, res.Events)
	assert.Len(t, strings.Fields(res.Buffer), 10)

	// New text still completes a command against the capped tail.
	res = Interpret(res.Buffer, "cama tres")
	require.Len(t, res.Events, 1)
	assert.Equal(t, Event{Type: EventLocation, Key: KeyCama, Value: "3"}, res.Events[0])
	assert.Empty(t, res.Buffer)
}

func TestInterpretMultipleCommandsInOneUtterance(t *testing.T) {
	res := Interpret("", "finca 1 bloque 2 cama 3 garbanzo 5")
	// The ten-token cap keeps the whole utterance; all four commands fire
	// in order.
	require.Len(t, res.Events, 4)
	assert.Empty(t, res.Buffer)
}

func TestInterpretEmptyInputs(t *testing.T) {
	res := Interpret("", "")
	assert.Empty(t, res.Buffer)
	assert.Empty(t, res.Events)
}
