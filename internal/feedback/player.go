package feedback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/emmett/conteo/internal/tts"
)

// clipGap is the pause inserted between consecutive clips.
const clipGap = 100 * time.Millisecond

// Player plays synthesized audio chunks on the default output device.
type Player struct {
	malgoContext *malgo.AllocatedContext
	mu           sync.Mutex
}

// NewPlayer initializes the playback context.
func NewPlayer() (*Player, error) {
	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize playback context: %w", err)
	}
	return &Player{malgoContext: malgoCtx}, nil
}

// Play blocks until the chunk finishes playing or the context is
// cancelled. Chunks play one at a time.
func (p *Player) Play(ctx context.Context, chunk tts.AudioChunk) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(chunk.Data) == 0 {
		return nil
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(chunk.Channels)
	deviceConfig.SampleRate = uint32(chunk.SampleRate)

	done := make(chan struct{})
	var once sync.Once
	offset := 0

	var callbacks malgo.DeviceCallbacks
	callbacks.Data = func(pOutputSamples, pInputSamples []byte, framecount uint32) {
		n := copy(pOutputSamples, chunk.Data[offset:])
		offset += n
		if offset >= len(chunk.Data) {
			once.Do(func() { close(done) })
		}
	}

	device, err := malgo.InitDevice(p.malgoContext.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	select {
	case <-done:
		// Let the device drain its last period before teardown.
		time.Sleep(clipGap)
	case <-ctx.Done():
		return ctx.Err()
	}
	return device.Stop()
}

// Close releases the playback context.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.malgoContext != nil {
		p.malgoContext.Uninit()
		p.malgoContext.Free()
		p.malgoContext = nil
	}
	return nil
}

// Speaker couples a clip engine with a player and speaks whole
// confirmation phrases.
type Speaker struct {
	engine tts.Engine
	player *Player
	voice  string
	mu     sync.Mutex
}

// NewSpeaker builds a speaker around an initialized engine.
func NewSpeaker(engine tts.Engine, player *Player, voice string) *Speaker {
	return &Speaker{engine: engine, player: player, voice: voice}
}

// SetVoice switches the voice used for subsequent phrases.
func (s *Speaker) SetVoice(voice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = voice
}

// Voice returns the currently selected voice.
func (s *Speaker) Voice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

// Speak plays every phrase in order, with a short gap between clips.
// Missing clips are skipped by the engine; playback errors abort.
func (s *Speaker) Speak(ctx context.Context, phrases []string) error {
	voice := s.Voice()
	for _, phrase := range phrases {
		req := tts.SynthesizeRequest{Text: phrase, Voice: voice}
		err := s.engine.Synthesize(ctx, req, func(chunk tts.AudioChunk) error {
			return s.player.Play(ctx, chunk)
		})
		if err != nil {
			return fmt.Errorf("failed to speak %q: %w", phrase, err)
		}
	}
	return nil
}
