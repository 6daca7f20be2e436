package command

import (
	"strconv"
	"strings"

	"github.com/emmett/conteo/internal/vocab"
)

// Segment splits an utterance into an ordered list of events.
//
// Delete, navigation and total commands are whole-utterance matches: if
// "borrar", the navigation word or "total" appears anywhere, that command
// is the only result and no location or quantity events are produced from
// the same utterance. This keeps delete semantics unambiguous when the
// recognizer mixes a command word into a data phrase.
//
// Everything else is a single left-to-right scan over adjacent word
// pairs (keyword followed by a number phrase). Unrecognized words are
// skipped, never an error.
func Segment(text string) []Event {
	words := strings.Fields(vocab.Normalize(text))
	if len(words) == 0 {
		return nil
	}

	if contains(words, "borrar") {
		for i, w := range words {
			if w != "ultimo" {
				continue
			}
			for _, rest := range words[i+1:] {
				if vocab.IsStage(rest) {
					return []Event{{Type: EventUndoStage, Stage: rest}}
				}
			}
		}
		return []Event{{Type: EventUndo}}
	}

	if contains(words, vocab.NavigateWord) {
		return []Event{{Type: EventNavigate, Target: vocab.NavigateWord}}
	}

	if contains(words, "total") {
		return []Event{{Type: EventTotal}}
	}

	var events []Event
	i := 0
	for i < len(words) {
		word := words[i]

		if voice, ok := vocab.VoiceWords[word]; ok {
			events = append(events, Event{Type: EventVoice, Voice: voice})
			i++
			continue
		}

		if word == "finca" && i+1 < len(words) {
			if name, ok := vocab.FincaName(words[i+1]); ok {
				events = append(events, Event{Type: EventLocation, Key: KeyFinca, Value: name})
				i += 2
				continue
			}
		}

		if word == "bloque" || word == "cama" {
			if value, consumed, ok := readLocationValue(words, i+1); ok {
				key := KeyBloque
				if word == "cama" {
					key = KeyCama
				}
				events = append(events, Event{Type: EventLocation, Key: key, Value: value})
				i += 1 + consumed
				continue
			}
		}

		if vocab.IsStage(word) {
			if n, consumed, ok := vocab.ReadNumber(words, i+1); ok {
				events = append(events, Event{Type: EventQuantity, Stage: word, Count: n})
				i += 1 + consumed
				continue
			}
		}

		i++
	}
	return events
}

// readLocationValue reads a number phrase plus an optional trailing
// disambiguating letter ("2 a" -> "2a") starting at words[i].
func readLocationValue(words []string, i int) (value string, consumed int, ok bool) {
	n, consumed, ok := vocab.ReadNumber(words, i)
	if !ok {
		return "", 0, false
	}
	value = strconv.Itoa(n)
	if i+consumed < len(words) && vocab.IsLetter(words[i+consumed]) {
		value += words[i+consumed]
		consumed++
	}
	return value, consumed, true
}

func contains(words []string, w string) bool {
	for _, word := range words {
		if word == w {
			return true
		}
	}
	return false
}
