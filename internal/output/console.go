package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/emmett/conteo/internal/state"
	"github.com/emmett/conteo/internal/vocab"
)

// ConsoleOutput renders transcripts, applied commands and the running
// tally on the console
type ConsoleOutput struct {
	mu            sync.Mutex
	writer        io.Writer
	showTimestamp bool
}

// ConsoleConfig configures console output behavior
type ConsoleConfig struct {
	// ShowTimestamp prefixes each line with a timestamp
	ShowTimestamp bool

	// Writer is the output destination (default: os.Stdout)
	Writer io.Writer
}

// NewConsoleOutput creates a new console output handler
func NewConsoleOutput(config ConsoleConfig) *ConsoleOutput {
	writer := config.Writer
	if writer == nil {
		writer = os.Stdout
	}

	return &ConsoleOutput{
		writer:        writer,
		showTimestamp: config.ShowTimestamp,
	}
}

// DefaultConsoleOutput creates a console output with default settings
func DefaultConsoleOutput() *ConsoleOutput {
	return NewConsoleOutput(ConsoleConfig{
		ShowTimestamp: true,
		Writer:        os.Stdout,
	})
}

// Write writes a line to the console
func (c *ConsoleOutput) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.showTimestamp {
		timestamp := time.Now().Format("15:04:05")
		fmt.Fprintf(c.writer, "[%s] %s\n", timestamp, text)
	} else {
		fmt.Fprintf(c.writer, "%s\n", text)
	}

	return nil
}

// WritePartial writes a partial transcription (work-in-progress)
// This typically overwrites the current line
func (c *ConsoleOutput) WritePartial(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Use carriage return to overwrite the current line
	fmt.Fprintf(c.writer, "\r%s", text)
	return nil
}

// Clear clears the current line
func (c *ConsoleOutput) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.writer, "\r%80s\r", " ") // Clear line
	return nil
}

// WriteState renders the current location and tally after a reduction.
func (c *ConsoleOutput) WriteState(s state.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "finca %s  bloque %s  cama %s  |", s.Location.Finca, s.Location.Bloque, s.Location.Cama)
	for _, stage := range vocab.Stages {
		if v := s.Counts[stage]; v > 0 {
			fmt.Fprintf(&b, "  %s %d", stage, v)
		}
	}
	fmt.Fprintln(c.writer, b.String())
	return nil
}

// Info writes an informational message
func (c *ConsoleOutput) Info(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.writer, "[INFO] %s\n", msg)
}

// Notice writes a user-facing notice (dropped command, nothing to undo)
func (c *ConsoleOutput) Notice(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.writer, "[!] %s\n", msg)
}

// Error writes an error message to stderr
func (c *ConsoleOutput) Error(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(os.Stderr, "[ERROR] %s\n", msg)
}
