package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/emmett/conteo/internal/state"
)

// ObservationRecord is the export shape of one durable observation
type ObservationRecord struct {
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
	Finca  string    `json:"finca"`
	Bloque string    `json:"bloque"`
	Cama   string    `json:"cama"`
	Stage  string    `json:"stage"`
	Value  int       `json:"value"`
}

// Formatter is the interface for observation export formatters
type Formatter interface {
	// WriteObservation writes one observation record
	WriteObservation(o state.Observation) error

	// Close flushes and closes the formatter
	Close() error
}

// NewFormatter creates a formatter for the given format name
// (valid: json, csv)
func NewFormatter(format string, w io.Writer) (Formatter, error) {
	switch format {
	case "json":
		return NewJSONFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown export format: %s (valid: json, csv)", format)
	}
}

// JSONFormatter exports observations as a JSON stream
type JSONFormatter struct {
	encoder *json.Encoder
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return &JSONFormatter{encoder: encoder}
}

// WriteObservation writes one observation in JSON format
func (j *JSONFormatter) WriteObservation(o state.Observation) error {
	return j.encoder.Encode(ObservationRecord{
		ID:     o.ID,
		At:     o.At,
		Finca:  o.Finca,
		Bloque: o.Bloque,
		Cama:   o.Cama,
		Stage:  o.Stage,
		Value:  o.Value,
	})
}

// Close closes the formatter
func (j *JSONFormatter) Close() error {
	return nil
}

// CSVFormatter exports observations as CSV with a header row
type CSVFormatter struct {
	writer      *csv.Writer
	wroteHeader bool
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: csv.NewWriter(w)}
}

// WriteObservation writes one observation as a CSV row
func (c *CSVFormatter) WriteObservation(o state.Observation) error {
	if !c.wroteHeader {
		if err := c.writer.Write([]string{"id", "at", "finca", "bloque", "cama", "stage", "value"}); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	return c.writer.Write([]string{
		o.ID,
		o.At.UTC().Format(time.RFC3339),
		o.Finca,
		o.Bloque,
		o.Cama,
		o.Stage,
		strconv.Itoa(o.Value),
	})
}

// Close flushes buffered rows
func (c *CSVFormatter) Close() error {
	c.writer.Flush()
	return c.writer.Error()
}
