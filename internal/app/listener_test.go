package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmett/conteo/internal/logging"
	"github.com/emmett/conteo/internal/obslog"
	"github.com/emmett/conteo/internal/output"
	"github.com/emmett/conteo/internal/state"
)

// newTestListener wires a listener around a real store and a console
// writing into buf, skipping the audio pipeline entirely.
func newTestListener(t *testing.T, buf *bytes.Buffer) (*Listener, *obslog.Store) {
	t.Helper()
	store, err := obslog.Open(filepath.Join(t.TempDir(), "observations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := logging.Discard()
	tz, err := time.LoadLocation("America/Guayaquil")
	require.NoError(t, err)

	l := NewListener(ListenerConfig{Logger: logger})
	l.console = output.NewConsoleOutput(output.ConsoleConfig{Writer: buf})
	l.reducer = state.NewReducer(store, nil, tz, logger)
	return l, store
}

func TestHandleTranscriptRecordsObservation(t *testing.T) {
	var buf bytes.Buffer
	l, store := newTestListener(t, &buf)
	ctx := context.Background()

	l.handleTranscript(ctx, "finca uno bloque dos cama tres garbanzo cinco")

	assert.Equal(t, "cananvalle", l.state.Location.Finca)
	assert.Equal(t, "2", l.state.Location.Bloque)
	assert.Equal(t, "3", l.state.Location.Cama)
	assert.Equal(t, 5, l.state.Counts["garbanzo"])

	obs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, "garbanzo", obs[0].Stage)
	assert.Equal(t, 5, obs[0].Value)
	assert.Equal(t, "03", obs[0].Cama)
}

func TestHandleTranscriptBuffersSplitCommand(t *testing.T) {
	var buf bytes.Buffer
	l, _ := newTestListener(t, &buf)
	ctx := context.Background()

	l.handleTranscript(ctx, "finca")
	assert.Equal(t, "finca", l.buffer)
	assert.Equal(t, state.Unset, l.state.Location.Finca)

	l.handleTranscript(ctx, "uno")
	assert.Empty(t, l.buffer)
	assert.Equal(t, "cananvalle", l.state.Location.Finca)
}

func TestHandleTranscriptSurfacesNotices(t *testing.T) {
	var buf bytes.Buffer
	l, store := newTestListener(t, &buf)
	ctx := context.Background()

	l.handleTranscript(ctx, "garbanzo cinco")

	assert.Zero(t, l.state.Counts["garbanzo"])
	assert.Contains(t, buf.String(), "Ubicacion incompleta")

	obs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestHandleTranscriptTotal(t *testing.T) {
	var buf bytes.Buffer
	l, _ := newTestListener(t, &buf)
	ctx := context.Background()

	l.handleTranscript(ctx, "finca dos bloque uno cama uno arroz diez arveja cinco")
	l.handleTranscript(ctx, "total")

	assert.Contains(t, buf.String(), "Total en esta cama: 15")
}

func TestNoticeText(t *testing.T) {
	assert.Equal(t, "Ubicacion incompleta, falta: bloque, cama",
		noticeText(state.Notice{Kind: state.NoticeIncompleteLocation, Missing: []string{"cama", "bloque"}}))
	assert.Equal(t, "Nada que borrar", noticeText(state.Notice{Kind: state.NoticeNothingToUndo}))
	assert.Equal(t, "Nada que borrar para arroz",
		noticeText(state.Notice{Kind: state.NoticeNothingToUndoStage, Stage: "arroz"}))
}
