package audio

import (
	"context"
	"time"
)

// CaptureConfig holds configuration for audio capture
type CaptureConfig struct {
	// SampleRate is the number of samples per second (Hz)
	// 16000 is what the recognizer models expect
	SampleRate uint32

	// Channels is the number of audio channels
	// 1 = mono (recommended for STT), 2 = stereo
	Channels uint32

	// BitDepth is the number of bits per sample
	BitDepth uint32

	// BufferFrames is the number of frames per buffer
	// Smaller = lower latency, higher CPU usage
	BufferFrames uint32

	// SampleBufferSize is the size of the channel buffer for audio samples
	// Larger = more tolerance for slow STT processing, higher memory usage
	SampleBufferSize int

	// DeviceID is the audio device identifier
	// Empty string = use default device
	DeviceID string
}

// DefaultConfig returns the capture configuration for field commands:
// short utterances against a small constrained-grammar model, so a
// modest channel buffer keeps latency low.
func DefaultConfig() CaptureConfig {
	return CaptureConfig{
		SampleRate:       16000,
		Channels:         1,
		BitDepth:         16,
		BufferFrames:     480, // 30ms at 16kHz
		SampleBufferSize: 50,  // ~1.5 seconds of backlog
		DeviceID:         "",
	}
}

// AudioSample represents a chunk of captured audio data
type AudioSample struct {
	Data      []byte    // Raw audio data
	Timestamp time.Time // When the sample was captured
	Frames    uint32    // Number of audio frames in this sample
}

// Capturer is the interface for audio capture implementations
type Capturer interface {
	// Start begins audio capture
	Start(ctx context.Context) error

	// Stop stops audio capture
	Stop() error

	// Samples returns a channel that receives audio samples
	Samples() <-chan AudioSample

	// Errors returns a channel that receives capture errors
	Errors() <-chan error

	// IsRunning returns true if capture is currently active
	IsRunning() bool
}

// NewCapturer creates a new audio capturer with the given configuration
func NewCapturer(config CaptureConfig) (Capturer, error) {
	return NewMalgoCapturer(config)
}
