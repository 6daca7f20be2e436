// Package feedback builds spoken confirmation phrases for applied
// commands and plays them through the default output device.
package feedback

import (
	"strconv"
	"strings"

	"github.com/emmett/conteo/internal/command"
	"github.com/emmett/conteo/internal/vocab"
)

// Phrases renders the events worth confirming out loud. Location
// changes and quantity adds get a phrase; undo, total and voice
// selection stay silent to keep feedback short.
func Phrases(events []command.Event) []string {
	var phrases []string
	for _, e := range events {
		switch e.Type {
		case command.EventLocation:
			phrases = append(phrases, string(e.Key)+" "+spellValue(e.Value))
		case command.EventQuantity:
			phrases = append(phrases, e.Stage+" "+vocab.SpellNumber(e.Count))
		}
	}
	return phrases
}

// spellValue turns a stored location value into clip-ready words:
// digits become number words and a trailing letter is split off, so
// "2a" reads "dos a" and "cananvalle" passes through.
func spellValue(v string) string {
	digits := v
	letter := ""
	if n := len(v); n > 1 && vocab.IsLetter(v[n-1:]) {
		digits, letter = v[:n-1], v[n-1:]
	}
	if n, err := strconv.Atoi(digits); err == nil {
		spoken := vocab.SpellNumber(n)
		if letter != "" {
			return spoken + " " + letter
		}
		return spoken
	}
	return v
}

// Words flattens phrases into the individual clip names to play.
func Words(phrases []string) []string {
	var words []string
	for _, p := range phrases {
		words = append(words, strings.Fields(p)...)
	}
	return words
}
