// Package vocab holds the closed voice grammar: location keywords,
// phenological stages, Spanish number words, command words and the
// finca alias table. Everything here is static data; the only runtime
// population is the one-time generation of compound number words.
package vocab

import (
	"encoding/json"
	"strings"
)

// LocationKeywords are the location hierarchy keywords, outermost first.
var LocationKeywords = []string{"finca", "bloque", "cama"}

// Stages is the canonical stage list. Order matters: it is the storage
// and display order used everywhere counts are laid out per stage.
var Stages = []string{"espiga", "arroz", "arveja", "garbanzo", "uva", "color", "abierto", "cosecha"}

// Letters are the disambiguating suffixes allowed after a bloque or
// cama number ("bloque 2 a" -> "2a").
var Letters = []string{"a", "b", "c"}

// CommandWords are the reserved command words.
var CommandWords = []string{"borrar", "ultimo", "total"}

// NavigateWord switches the host application to the observations view.
const NavigateWord = "observaciones"

// Voice identifies the feedback voice requested by the user.
type Voice string

const (
	VoiceMale   Voice = "male"
	VoiceFemale Voice = "female"
)

// VoiceWords maps spoken voice-selector words to a voice.
// "femenie" is a common misrecognition in the field.
var VoiceWords = map[string]Voice{
	"masculino": VoiceMale,
	"masculina": VoiceMale,
	"hombre":    VoiceMale,
	"varon":     VoiceMale,
	"femenino":  VoiceFemale,
	"femenina":  VoiceFemale,
	"femenie":   VoiceFemale,
	"mujer":     VoiceFemale,
}

// fincaAliases maps spoken finca identifiers (numbers or number words)
// to the finca name used everywhere downstream.
var fincaAliases = map[string]string{
	"1":   "cananvalle",
	"uno": "cananvalle",
	"2":   "santamaria",
	"dos": "santamaria",
}

// FincaNames maps finca names to their display labels.
var FincaNames = map[string]string{
	"cananvalle": "Cananvalle (Finca 1)",
	"santamaria": "Santa Maria (Finca 2)",
}

// IsStage reports whether word is a canonical stage name.
func IsStage(word string) bool {
	for _, s := range Stages {
		if s == word {
			return true
		}
	}
	return false
}

// IsLetter reports whether word is a disambiguating letter suffix.
func IsLetter(word string) bool {
	for _, l := range Letters {
		if l == word {
			return true
		}
	}
	return false
}

// FincaName resolves a spoken finca identifier to its canonical name.
// Accepts both the raw word and its parsed numeric form.
func FincaName(word string) (string, bool) {
	if name, ok := fincaAliases[word]; ok {
		return name, true
	}
	if n, ok := ParseNumber(word); ok {
		if name, ok := fincaAliases[itoa(n)]; ok {
			return name, true
		}
	}
	return "", false
}

// RegisterFincaAlias adds an extra spoken alias for a finca. Used by the
// config layer at startup; not safe for concurrent use afterwards.
func RegisterFincaAlias(alias, name string) {
	fincaAliases[Normalize(alias)] = name
}

// Normalize lowercases, strips the Spanish diacritics the recognizer can
// produce, and trims surrounding whitespace.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r := strings.NewReplacer(
		"á", "a",
		"é", "e",
		"í", "i",
		"ó", "o",
		"ú", "u",
		"ü", "u",
		"ñ", "n",
	)
	return r.Replace(s)
}

// AllWords returns the flattened word list for constraining the
// recognizer grammar.
func AllWords() []string {
	words := make([]string, 0, len(LocationKeywords)+len(Stages)+len(NumberWords())+len(Letters)+len(CommandWords)+len(VoiceWords)+1)
	words = append(words, LocationKeywords...)
	words = append(words, Stages...)
	words = append(words, NumberWords()...)
	words = append(words, Letters...)
	words = append(words, CommandWords...)
	words = append(words, NavigateWord)
	for w := range VoiceWords {
		words = append(words, w)
	}
	return words
}

// GrammarJSON returns the word list as a JSON array string, the format
// the Vosk recognizer expects for a constrained grammar.
func GrammarJSON() string {
	data, err := json.Marshal(AllWords())
	if err != nil {
		// Marshalling a []string cannot fail.
		return "[]"
	}
	return string(data)
}
