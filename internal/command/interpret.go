package command

import "strings"

// bufferTokens bounds the trailing window of unmatched words kept
// between recognizer callbacks. A recognizer that never settles on a
// final result cannot grow the buffer past this.
const bufferTokens = 10

// Result is the outcome of one Interpret call.
type Result struct {
	// Buffer is the text to pass back on the next call. Empty whenever
	// events were produced, so matched words are never reinterpreted.
	Buffer string
	Events []Event
}

// Interpret merges the caller-held buffer with newly arrived transcript
// text and scans for complete commands. It is a pure function of its two
// inputs and may be called with every partial result the recognizer
// produces; a command split across callbacks ("finca" then "1") completes
// once the second fragment arrives.
func Interpret(prevBuffer, text string) Result {
	merged := strings.Fields(prevBuffer + " " + text)
	if len(merged) > bufferTokens {
		merged = merged[len(merged)-bufferTokens:]
	}
	buffer := strings.Join(merged, " ")

	events := Segment(buffer)
	if len(events) > 0 {
		return Result{Buffer: "", Events: events}
	}
	return Result{Buffer: buffer}
}
