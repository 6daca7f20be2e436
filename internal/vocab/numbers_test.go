package vocab

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumberSingleWords(t *testing.T) {
	cases := map[string]int{
		"cero":       0,
		"uno":        1,
		"un":         1,
		"una":        1,
		"nueve":      9,
		"diez":       10,
		"quince":     15,
		"dieciseis":  16,
		"dieciséis":  16,
		"diecinueve": 19,
		"veinte":     20,
		"veintiuno":  21,
		"veintidós":  22,
		"veintidos":  22,
		"veintitres": 23,
		"veintiséis": 26,
		"noventa":    90,
		"cien":       100,
		"ciento":     100,
		"doscientos": 200,
	}
	for word, want := range cases {
		got, ok := ParseNumber(word)
		require.True(t, ok, "expected %q to parse", word)
		assert.Equal(t, want, got, "word %q", word)
	}
}

func TestParseNumberCompounds(t *testing.T) {
	cases := map[string]int{
		"treinta y cinco":         35,
		"treinta cinco":           35,
		"cuarenta y uno":          41,
		"noventa y nueve":         99,
		"ciento diez":             110,
		"ciento treinta y cinco":  135,
		"doscientos diez":         210,
		"doscientos veintinueve":  229,
		"trescientos cuarenta":    340,
		"cuatrocientos y":         -1, // invalid remainder
		"veinte y cinco":          -1, // fused form is required below 30
		"treinta y":               -1,
		"y cinco":                 -1,
		"treinta y garbanzo":      -1,
		"doscientos trescientos~": -1,
	}
	for phrase, want := range cases {
		got, ok := ParseNumber(phrase)
		if want < 0 {
			assert.False(t, ok, "expected %q to be rejected", phrase)
			continue
		}
		require.True(t, ok, "expected %q to parse", phrase)
		assert.Equal(t, want, got, "phrase %q", phrase)
	}
}

func TestParseNumberDigits(t *testing.T) {
	for n := 0; n <= 100; n++ {
		got, ok := ParseNumber(strconv.Itoa(n))
		require.True(t, ok)
		assert.Equal(t, n, got)
	}
	_, ok := ParseNumber("1234")
	assert.False(t, ok, "more than three digits is rejected")
	_, ok = ParseNumber("")
	assert.False(t, ok)
	_, ok = ParseNumber("gato")
	assert.False(t, ok)
}

// Every generated word form must round-trip through the parser. This is
// what guarantees the recognizer grammar and the parser agree.
func TestNumberWordsRoundTrip(t *testing.T) {
	wordToValue := map[string]int{}
	unitWords := []string{"", "uno", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho", "nueve"}
	for i := 1; i <= 9; i++ {
		wordToValue[unitWords[i]] = i
	}
	teenWords := []string{"diez", "once", "doce", "trece", "catorce", "quince",
		"dieciséis", "diecisiete", "dieciocho", "diecinueve"}
	for i, w := range teenWords {
		wordToValue[w] = 10 + i
	}
	twentyWords := []string{"veinte", "veintiuno", "veintidós", "veintitrés", "veinticuatro",
		"veinticinco", "veintiséis", "veintisiete", "veintiocho", "veintinueve"}
	for i, w := range twentyWords {
		wordToValue[w] = 20 + i
	}
	tensWords := map[string]int{"treinta": 30, "cuarenta": 40, "cincuenta": 50,
		"sesenta": 60, "setenta": 70, "ochenta": 80, "noventa": 90}
	for w, base := range tensWords {
		wordToValue[w] = base
		for j := 1; j <= 9; j++ {
			wordToValue[w+" y "+unitWords[j]] = base + j
		}
	}
	wordToValue["cien"] = 100

	for _, word := range NumberWords() {
		want, known := wordToValue[word]
		require.True(t, known, "generated word %q missing from reference table", word)
		got, ok := ParseNumber(word)
		require.True(t, ok, "generated word %q must parse", word)
		assert.Equal(t, want, got, "word %q", word)
	}
	assert.Len(t, NumberWords(), len(wordToValue))
}

func TestReadNumberGreedy(t *testing.T) {
	cases := []struct {
		words    []string
		i        int
		value    int
		consumed int
		ok       bool
	}{
		{[]string{"treinta", "y", "cinco"}, 0, 35, 3, true},
		{[]string{"treinta", "y", "cinco", "arroz"}, 0, 35, 3, true},
		{[]string{"cinco", "finca", "uno"}, 0, 5, 1, true},
		{[]string{"veinte", "cama", "cinco"}, 0, 20, 1, true},
		{[]string{"bloque", "dos"}, 1, 2, 1, true},
		{[]string{"garbanzo"}, 0, 0, 0, false},
		{[]string{}, 0, 0, 0, false},
		{[]string{"arroz", "gato"}, 1, 0, 0, false},
	}
	for _, tc := range cases {
		value, consumed, ok := ReadNumber(tc.words, tc.i)
		assert.Equal(t, tc.ok, ok, "words %v", tc.words)
		assert.Equal(t, tc.value, value, "words %v", tc.words)
		assert.Equal(t, tc.consumed, consumed, "words %v", tc.words)
	}
}

func TestSpellNumberRoundTrips(t *testing.T) {
	for n := 0; n <= 100; n++ {
		spoken := SpellNumber(n)
		got, ok := ParseNumber(spoken)
		require.True(t, ok, "spelled %q must parse", spoken)
		assert.Equal(t, n, got, "spelled %q", spoken)
	}
	assert.Equal(t, "-5", SpellNumber(-5))
	assert.Equal(t, "101", SpellNumber(101))
}
