package tts

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ClipEngine implements the Engine interface from a library of
// pre-generated word clips (16-bit PCM WAV), one directory per voice.
// The field devices have no network and no room for a neural TTS model,
// so every word of the closed grammar is recorded ahead of time and a
// phrase is spoken by playing its word clips back to back.
type ClipEngine struct {
	config      Config
	mu          sync.Mutex
	initialized bool
	// cache maps voice/word to decoded PCM. Populated lazily; dropped
	// wholesale on Close.
	cache map[string]clip
}

type clip struct {
	data       []byte
	sampleRate int
	channels   int
}

// NewClipEngine creates a new clip-library feedback engine
func NewClipEngine() *ClipEngine {
	return &ClipEngine{cache: make(map[string]clip)}
}

// Initialize verifies the clip directory exists
func (e *ClipEngine) Initialize(config Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return fmt.Errorf("engine already initialized")
	}

	info, err := os.Stat(config.ClipDir)
	if err != nil {
		return fmt.Errorf("clip directory %s: %w", config.ClipDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("clip directory %s: not a directory", config.ClipDir)
	}

	e.config = config
	e.initialized = true
	return nil
}

// Synthesize speaks a phrase by emitting the clip of each word in turn.
// Words without a clip are skipped; a phrase with no clips at all is an
// error so callers notice a missing voice directory.
func (e *ClipEngine) Synthesize(ctx context.Context, req SynthesizeRequest, callback AudioCallback) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return fmt.Errorf("engine not initialized")
	}

	voice := req.Voice
	if voice == "" {
		voice = e.config.DefaultVoice
	}

	emitted := 0
	for _, word := range strings.Fields(strings.ToLower(req.Text)) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c, err := e.loadClip(voice, word)
		if err != nil {
			continue
		}
		if err := callback(AudioChunk{Data: c.data, SampleRate: c.sampleRate, Channels: c.channels}); err != nil {
			return err
		}
		emitted++
	}

	if emitted == 0 {
		return fmt.Errorf("no clips found for %q (voice %s)", req.Text, voice)
	}
	return nil
}

// ListVoices returns the voices present in the clip directory
func (e *ClipEngine) ListVoices() []Voice {
	entries, err := os.ReadDir(e.config.ClipDir)
	if err != nil {
		return nil
	}
	var voices []Voice
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		voices = append(voices, Voice{
			ID:       entry.Name(),
			Name:     entry.Name(),
			Language: "es-EC",
			Gender:   entry.Name(),
		})
	}
	return voices
}

// Close releases the decoded clip cache
func (e *ClipEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cache = make(map[string]clip)
	e.initialized = false
	return nil
}

// IsInitialized returns true if engine is ready
func (e *ClipEngine) IsInitialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

func (e *ClipEngine) loadClip(voice, word string) (clip, error) {
	key := voice + "/" + word
	if c, ok := e.cache[key]; ok {
		return c, nil
	}

	path := filepath.Join(e.config.ClipDir, voice, word+".wav")
	data, err := os.ReadFile(path)
	if err != nil {
		return clip{}, err
	}
	c, err := decodeWAV(data)
	if err != nil {
		return clip{}, fmt.Errorf("decode %s: %w", path, err)
	}
	e.cache[key] = c
	return c, nil
}

// decodeWAV extracts 16-bit PCM samples from a RIFF/WAVE file.
func decodeWAV(data []byte) (clip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return clip{}, fmt.Errorf("not a RIFF/WAVE file")
	}

	var c clip
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			return clip{}, fmt.Errorf("truncated %s chunk", chunkID)
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return clip{}, fmt.Errorf("short fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if format != 1 || bits != 16 {
				return clip{}, fmt.Errorf("expected 16-bit PCM, got format %d bits %d", format, bits)
			}
			c.channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			c.sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
		case "data":
			c.data = data[body : body+chunkSize]
		}

		// Chunks are word-aligned.
		offset = body + chunkSize + chunkSize%2
	}

	if c.sampleRate == 0 {
		return clip{}, fmt.Errorf("missing fmt chunk")
	}
	if c.data == nil {
		return clip{}, fmt.Errorf("missing data chunk")
	}
	return c, nil
}
