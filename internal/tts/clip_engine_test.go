package tts

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wavFile builds a minimal 16-bit PCM mono WAV around the given samples.
func wavFile(t *testing.T, samples []int16) []byte {
	t.Helper()
	dataLen := len(samples) * 2
	buf := make([]byte, 0, 44+dataLen)

	u32 := func(v int) []byte {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(v))
		return b
	}
	u16 := func(v int) []byte {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(v))
		return b
	}

	buf = append(buf, []byte("RIFF")...)
	buf = append(buf, u32(36+dataLen)...)
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = append(buf, u32(16)...)
	buf = append(buf, u16(1)...)      // PCM
	buf = append(buf, u16(1)...)      // mono
	buf = append(buf, u32(16000)...)  // sample rate
	buf = append(buf, u32(32000)...)  // byte rate
	buf = append(buf, u16(2)...)      // block align
	buf = append(buf, u16(16)...)     // bits
	buf = append(buf, []byte("data")...)
	buf = append(buf, u32(dataLen)...)
	for _, s := range samples {
		buf = append(buf, u16(int(uint16(s)))...)
	}
	return buf
}

func writeClipDir(t *testing.T, words map[string][]int16) string {
	t.Helper()
	dir := t.TempDir()
	voiceDir := filepath.Join(dir, "male")
	require.NoError(t, os.MkdirAll(voiceDir, 0o755))
	for word, samples := range words {
		require.NoError(t, os.WriteFile(filepath.Join(voiceDir, word+".wav"), wavFile(t, samples), 0o644))
	}
	return dir
}

func TestSynthesizePlaysWordClips(t *testing.T) {
	dir := writeClipDir(t, map[string][]int16{
		"garbanzo": {1, 2, 3},
		"cinco":    {4, 5},
	})

	e := NewClipEngine()
	require.NoError(t, e.Initialize(DefaultConfig(dir)))
	defer e.Close()

	var chunks []AudioChunk
	err := e.Synthesize(context.Background(), SynthesizeRequest{Text: "garbanzo cinco"}, func(c AudioChunk) error {
		chunks = append(chunks, c)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 16000, chunks[0].SampleRate)
	assert.Equal(t, 1, chunks[0].Channels)
	assert.Len(t, chunks[0].Data, 6)
	assert.Len(t, chunks[1].Data, 4)
}

func TestSynthesizeSkipsMissingWords(t *testing.T) {
	dir := writeClipDir(t, map[string][]int16{"cinco": {1}})

	e := NewClipEngine()
	require.NoError(t, e.Initialize(DefaultConfig(dir)))
	defer e.Close()

	count := 0
	err := e.Synthesize(context.Background(), SynthesizeRequest{Text: "garbanzo cinco"}, func(AudioChunk) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// No clips at all is an error.
	err = e.Synthesize(context.Background(), SynthesizeRequest{Text: "garbanzo", Voice: "female"}, func(AudioChunk) error {
		return nil
	})
	assert.Error(t, err)
}

func TestInitializeRequiresDirectory(t *testing.T) {
	e := NewClipEngine()
	assert.Error(t, e.Initialize(DefaultConfig(filepath.Join(t.TempDir(), "missing"))))
	assert.False(t, e.IsInitialized())
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	_, err := decodeWAV([]byte("not a wav"))
	assert.Error(t, err)
	_, err = decodeWAV(wavFile(t, nil)[:20])
	assert.Error(t, err)
}

func TestListVoices(t *testing.T) {
	dir := writeClipDir(t, map[string][]int16{"uno": {1}})
	e := NewClipEngine()
	require.NoError(t, e.Initialize(DefaultConfig(dir)))
	voices := e.ListVoices()
	require.Len(t, voices, 1)
	assert.Equal(t, "male", voices[0].ID)
}
