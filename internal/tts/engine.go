package tts

import "context"

// Engine defines the interface for speech feedback engines
type Engine interface {
	// Initialize sets up the engine with the given config
	Initialize(config Config) error

	// Synthesize converts text to audio, streaming chunks via callback
	Synthesize(ctx context.Context, req SynthesizeRequest, callback AudioCallback) error

	// ListVoices returns available voices
	ListVoices() []Voice

	// Close releases resources
	Close() error

	// IsInitialized returns true if engine is ready
	IsInitialized() bool
}

// Config holds feedback engine configuration
type Config struct {
	// ClipDir is the root directory of pre-generated voice clips, one
	// subdirectory per voice ID
	ClipDir string
	// DefaultVoice is used when a request names no voice
	DefaultVoice string
}

// SynthesizeRequest contains text-to-speech parameters
type SynthesizeRequest struct {
	Text  string
	Voice string
}

// AudioChunk represents a chunk of synthesized audio
type AudioChunk struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// AudioCallback is called for each audio chunk during synthesis
type AudioCallback func(chunk AudioChunk) error

// Voice represents an available feedback voice
type Voice struct {
	ID       string
	Name     string
	Language string
	Gender   string
}

// DefaultConfig returns default feedback configuration
func DefaultConfig(clipDir string) Config {
	return Config{
		ClipDir:      clipDir,
		DefaultVoice: "male",
	}
}
