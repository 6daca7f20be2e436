package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/emmett/conteo/internal/audio"
	"github.com/emmett/conteo/internal/command"
	"github.com/emmett/conteo/internal/config"
	"github.com/emmett/conteo/internal/feedback"
	"github.com/emmett/conteo/internal/gps"
	"github.com/emmett/conteo/internal/input"
	"github.com/emmett/conteo/internal/models"
	"github.com/emmett/conteo/internal/obslog"
	"github.com/emmett/conteo/internal/output"
	"github.com/emmett/conteo/internal/state"
	"github.com/emmett/conteo/internal/stt"
	"github.com/emmett/conteo/internal/tts"
	"github.com/emmett/conteo/internal/vocab"
)

// ListenerConfig holds configuration for a counting session
type ListenerConfig struct {
	ModelName    string
	AudioDevice  string
	EnableVAD    bool
	VADThreshold float64
	// VADSilenceDelay is the silence span, in seconds, that ends an utterance
	VADSilenceDelay float64
	StorePath       string
	Timezone        string
	// Debounce is how long to wait after a final transcript for a
	// follow-up fragment before interpreting, so a command split across
	// recognizer results still lands in one pass
	Debounce        time.Duration
	Hotkey          string
	FeedbackEnabled bool
	FeedbackVoice   string
	ClipDir         string
	AutoDownload    bool
	Fincas          map[string]string
	Logger          *slog.Logger
}

// ListenerConfigFromFile maps a loaded config file onto session settings
func ListenerConfigFromFile(cfg *config.Config, logger *slog.Logger) ListenerConfig {
	return ListenerConfig{
		ModelName:       cfg.Model.Default,
		AudioDevice:     cfg.Audio.Device,
		EnableVAD:       cfg.VAD.Enabled,
		VADThreshold:    cfg.VAD.Threshold,
		VADSilenceDelay: cfg.VAD.SilenceDelay,
		StorePath:       cfg.Store.Path,
		Timezone:        cfg.Recording.Timezone,
		Debounce:        time.Duration(cfg.Recording.DebounceMs) * time.Millisecond,
		Hotkey:          cfg.Recording.Hotkey,
		FeedbackEnabled: cfg.Feedback.Enabled,
		FeedbackVoice:   cfg.Feedback.Voice,
		ClipDir:         cfg.Feedback.ClipDir,
		Fincas:          cfg.Fincas,
		Logger:          logger,
	}
}

// Listener runs the hands-free counting session: capture, grammar-
// constrained recognition, command interpretation and state reduction.
type Listener struct {
	config ListenerConfig
	logger *slog.Logger

	console *output.ConsoleOutput
	reducer *state.Reducer
	speaker *feedback.Speaker

	state  state.State
	buffer string
}

// NewListener creates a new Listener instance
func NewListener(cfg ListenerConfig) *Listener {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		config:  cfg,
		logger:  logger,
		console: output.DefaultConsoleOutput(),
		state:   state.New(),
	}
}

// Run starts the counting session and blocks until interrupted
func (l *Listener) Run() error {
	for word, name := range l.config.Fincas {
		vocab.RegisterFincaAlias(word, name)
	}

	mgr := NewModelManager()
	selectedModel, err := mgr.SelectModel(l.config.ModelName, false)
	if err != nil {
		return fmt.Errorf("failed to select model: %w", err)
	}
	selectedModel, err = mgr.EnsureModel(selectedModel, l.config.AutoDownload)
	if err != nil {
		return err
	}
	modelPath, err := models.GetModelPath(selectedModel)
	if err != nil {
		return fmt.Errorf("failed to get model path: %w", err)
	}

	deviceMgr := NewDeviceManager()
	selectedDevice, err := deviceMgr.SelectDevice(l.config.AudioDevice)
	if err != nil {
		return err
	}

	l.console.Info("Initializing speech recognition engine...")
	engine := stt.NewVoskEngine()
	sttConfig := stt.DefaultConfig(modelPath)
	sttConfig.Grammar = vocab.GrammarJSON()
	if err := engine.Initialize(sttConfig); err != nil {
		return fmt.Errorf("failed to initialize STT engine: %w", err)
	}
	defer engine.Close()

	store, err := obslog.Open(l.config.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open observation store: %w", err)
	}
	defer store.Close()

	tz := l.recordingZone()
	l.reducer = state.NewReducer(store, nil, tz, l.logger)

	if l.config.FeedbackEnabled {
		speaker, cleanup, err := l.setupFeedback()
		if err != nil {
			// A broken speaker should not keep counts from being recorded.
			l.logger.Warn("audio feedback disabled", "error", err)
		} else {
			l.speaker = speaker
			defer cleanup()
		}
	}

	audioConfig := audio.DefaultConfig()
	audioConfig.DeviceID = selectedDevice.ID
	capturer, err := audio.NewCapturer(audioConfig)
	if err != nil {
		return fmt.Errorf("failed to create capturer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nStopping...")
		cancel()
	}()

	hotkeys := input.NewHotkeyManager(func(listening bool) {
		if listening {
			l.console.Info("Listening resumed")
		} else {
			l.console.Info("Listening paused")
		}
	})
	if l.config.Hotkey != "" {
		if err := hotkeys.Start(ctx, l.config.Hotkey); err != nil {
			l.logger.Warn("hotkey unavailable", "hotkey", l.config.Hotkey, "error", err)
		} else {
			defer hotkeys.Stop()
			l.console.Info(fmt.Sprintf("Press %s to pause or resume listening", l.config.Hotkey))
		}
	}

	if err := capturer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}
	defer capturer.Stop()

	var vad *audio.VAD
	if l.config.EnableVAD {
		vadConfig := audio.DefaultVADConfig()
		if l.config.VADThreshold > 0 {
			vadConfig.EnergyThreshold = l.config.VADThreshold
		}
		if l.config.VADSilenceDelay > 0 {
			framesPerSecond := float64(audioConfig.SampleRate) / float64(audioConfig.BufferFrames)
			vadConfig.SilenceFrames = int(l.config.VADSilenceDelay * framesPerSecond)
		}
		vad = audio.NewVAD(vadConfig)
	}

	l.console.Info(fmt.Sprintf("Using model %s on %s", selectedModel, selectedDevice.Name))
	l.console.Info(fmt.Sprintf("Recording day boundary: %s", tz.String()))
	l.console.Info("Ready. Speak your counts. Press Ctrl+C to stop.")
	l.console.WriteState(l.state)

	debounce := l.config.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	// Final transcripts queue up here until the debounce window closes,
	// then get interpreted in one pass.
	var pending []string
	flushTimer := time.NewTimer(debounce)
	if !flushTimer.Stop() {
		<-flushTimer.C
	}

	queueFinal := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		pending = append(pending, text)
		flushTimer.Reset(debounce)
	}

	flush := func() {
		if len(pending) == 0 {
			return
		}
		text := strings.Join(pending, " ")
		pending = pending[:0]
		l.handleTranscript(ctx, text)
	}

	for {
		select {
		case <-ctx.Done():
			if finalResult, err := engine.FinalResult(); err == nil {
				queueFinal(finalResult.Text)
			}
			flush()
			l.console.Info("Session finished")
			l.console.WriteState(l.state)
			return nil

		case <-flushTimer.C:
			flush()

		case sample, ok := <-capturer.Samples():
			if !ok {
				return nil
			}
			if !hotkeys.IsListening() {
				continue
			}

			if vad != nil {
				isSpeaking, _, speechEnded := vad.ProcessFrame(sample.Data)
				if speechEnded {
					if finalResult, err := engine.FinalResult(); err == nil {
						queueFinal(finalResult.Text)
					}
					engine.Reset()
					continue
				}
				if !isSpeaking {
					continue
				}
			}

			result, err := engine.ProcessAudio(ctx, sample.Data)
			if err != nil {
				l.console.Error(fmt.Sprintf("STT error: %v", err))
				continue
			}
			if result == nil {
				continue
			}

			if result.Partial && result.Text != "" {
				l.console.WritePartial(result.Text)
				continue
			}
			if !result.Partial && result.Text != "" {
				l.console.Clear()
				queueFinal(result.Text)
			}

		case err, ok := <-capturer.Errors():
			if !ok {
				return nil
			}
			l.console.Error(fmt.Sprintf("Capture error: %v", err))
		}
	}
}

// handleTranscript feeds a final transcript through the interpreter and
// folds the resulting events into session state.
func (l *Listener) handleTranscript(ctx context.Context, text string) {
	l.console.Write(text)

	res := command.Interpret(l.buffer, text)
	l.buffer = res.Buffer
	if len(res.Events) == 0 {
		return
	}

	next, out := l.reducer.Apply(ctx, l.state, res.Events)
	l.state = next

	l.console.WriteState(l.state)
	for _, n := range out.Notices {
		l.console.Notice(noticeText(n))
	}
	if out.TotalRequested {
		l.console.Info(fmt.Sprintf("Total en esta cama: %d", l.state.Total()))
	}
	if out.Navigate != "" {
		l.console.Info(fmt.Sprintf("Cambiando a vista %s", out.Navigate))
	}
	if out.SkippedRecords > 0 {
		l.logger.Warn("skipped malformed records while restoring counts",
			"count", out.SkippedRecords)
	}

	l.speak(ctx, res.Events, out)
}

// speak voices confirmation for the applied events, switching voice
// first if the utterance selected one.
func (l *Listener) speak(ctx context.Context, events []command.Event, out state.Outcome) {
	if l.speaker == nil {
		return
	}
	for _, e := range events {
		if e.Type == command.EventVoice {
			l.speaker.SetVoice(string(e.Voice))
		}
	}
	phrases := feedback.Phrases(events)
	if out.TotalRequested {
		phrases = append(phrases, "total "+vocab.SpellNumber(l.state.Total()))
	}
	if len(phrases) == 0 {
		return
	}
	if err := l.speaker.Speak(ctx, phrases); err != nil {
		l.logger.Warn("audio feedback failed", "error", err)
	}
}

func (l *Listener) setupFeedback() (*feedback.Speaker, func(), error) {
	engine := tts.NewClipEngine()
	if err := engine.Initialize(tts.Config{
		ClipDir:      l.config.ClipDir,
		DefaultVoice: l.config.FeedbackVoice,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize clip engine: %w", err)
	}
	player, err := feedback.NewPlayer()
	if err != nil {
		engine.Close()
		return nil, nil, err
	}
	speaker := feedback.NewSpeaker(engine, player, l.config.FeedbackVoice)
	cleanup := func() {
		player.Close()
		engine.Close()
	}
	return speaker, cleanup, nil
}

// recordingZone resolves the timezone that defines the recording day.
func (l *Listener) recordingZone() *time.Location {
	name := l.config.Timezone
	if name == "" {
		name = gps.DefaultZone
	}
	tz, err := time.LoadLocation(name)
	if err != nil {
		l.logger.Warn("unknown timezone, falling back", "timezone", name, "fallback", gps.DefaultZone)
		return gps.Zone(nil)
	}
	return tz
}

// noticeText renders a reducer notice for the console.
func noticeText(n state.Notice) string {
	switch n.Kind {
	case state.NoticeIncompleteLocation:
		missing := append([]string(nil), n.Missing...)
		sort.Strings(missing)
		return fmt.Sprintf("Ubicacion incompleta, falta: %s", strings.Join(missing, ", "))
	case state.NoticeNothingToUndo:
		return "Nada que borrar"
	case state.NoticeNothingToUndoStage:
		return fmt.Sprintf("Nada que borrar para %s", n.Stage)
	default:
		return string(n.Kind)
	}
}
