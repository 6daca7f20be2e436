package vocab

import (
	"strconv"
	"strings"
	"sync"
)

// Spanish number tables. The fused twenties get their own table because
// a direct fused-form match wins before any compositional parse.
var (
	units = map[string]int{
		"cero": 0, "uno": 1, "un": 1, "una": 1, "dos": 2, "tres": 3,
		"cuatro": 4, "cinco": 5, "seis": 6, "siete": 7, "ocho": 8, "nueve": 9,
	}
	teens = map[string]int{
		"diez": 10, "once": 11, "doce": 12, "trece": 13, "catorce": 14,
		"quince": 15, "dieciseis": 16, "diecisiete": 17, "dieciocho": 18,
		"diecinueve": 19,
	}
	fusedTwenties = map[string]int{
		"veintiuno": 21, "veintiun": 21, "veintiuna": 21, "veintidos": 22,
		"veintitres": 23, "veinticuatro": 24, "veinticinco": 25,
		"veintiseis": 26, "veintisiete": 27, "veintiocho": 28, "veintinueve": 29,
	}
	tens = map[string]int{
		"veinte": 20, "treinta": 30, "cuarenta": 40, "cincuenta": 50,
		"sesenta": 60, "setenta": 70, "ochenta": 80, "noventa": 90,
	}
	hundreds = map[string]int{
		"cien": 100, "ciento": 100, "doscientos": 200, "trescientos": 300,
		"cuatrocientos": 400,
	}
)

// ParseNumber parses a Spanish number word or phrase, or a 1-3 digit
// string, into its value. Returns false on anything unrecognized.
func ParseNumber(s string) (int, bool) {
	t := Normalize(s)
	if t == "" {
		return 0, false
	}

	if len(t) <= 3 && isDigits(t) {
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	if n, ok := fusedTwenties[t]; ok {
		return n, true
	}
	if n, ok := teens[t]; ok {
		return n, true
	}
	if n, ok := units[t]; ok {
		return n, true
	}
	if n, ok := tens[t]; ok {
		return n, true
	}
	if n, ok := hundreds[t]; ok {
		return n, true
	}

	tokens := strings.Fields(t)
	if len(tokens) < 2 {
		return 0, false
	}

	// hundreds + remainder: "doscientos diez", "ciento treinta y cinco"
	if h, ok := hundreds[tokens[0]]; ok {
		rest := tokens[1:]
		if n, ok := parseBelowHundred(rest); ok {
			return h + n, true
		}
		return 0, false
	}

	return parseBelowHundred(tokens)
}

// parseBelowHundred parses "<tens> y <unit>", "<tens> <unit>", a lone
// teen/tens/unit word, or a fused twenty, from an exact token slice.
func parseBelowHundred(tokens []string) (int, bool) {
	switch len(tokens) {
	case 1:
		w := tokens[0]
		if n, ok := fusedTwenties[w]; ok {
			return n, true
		}
		if n, ok := teens[w]; ok {
			return n, true
		}
		if n, ok := tens[w]; ok {
			return n, true
		}
		if n, ok := units[w]; ok {
			return n, true
		}
	case 2:
		if tVal, ok := tens[tokens[0]]; ok && tVal >= 30 {
			if u, ok := units[tokens[1]]; ok && u >= 1 {
				return tVal + u, true
			}
		}
	case 3:
		if tokens[1] != "y" {
			return 0, false
		}
		if tVal, ok := tens[tokens[0]]; ok && tVal >= 30 {
			if u, ok := units[tokens[2]]; ok && u >= 1 {
				return tVal + u, true
			}
		}
	}
	return 0, false
}

// ReadNumber reads the longest number phrase starting at words[i],
// consuming up to three tokens ("treinta y cinco"). Returns the value,
// the number of tokens consumed and whether a number was found.
func ReadNumber(words []string, i int) (value, consumed int, ok bool) {
	if i >= len(words) {
		return 0, 0, false
	}
	max := 3
	if rem := len(words) - i; rem < max {
		max = rem
	}
	for n := max; n >= 1; n-- {
		phrase := strings.Join(words[i:i+n], " ")
		if v, ok := ParseNumber(phrase); ok {
			return v, n, true
		}
	}
	return 0, 0, false
}

// SpellNumber renders a value as its spoken form, unaccented so the
// result maps directly onto audio clip names. Values outside 0-100
// fall back to digits.
func SpellNumber(n int) string {
	switch {
	case n < 0 || n > 100:
		return itoa(n)
	case n == 100:
		return "cien"
	case n < 10:
		return spokenUnits[n]
	case n < 20:
		return spokenTeens[n-10]
	case n < 30:
		return spokenTwenties[n-20]
	default:
		t := spokenTens[n/10-3]
		if u := n % 10; u != 0 {
			return t + " y " + spokenUnits[u]
		}
		return t
	}
}

var (
	spokenUnits = []string{"cero", "uno", "dos", "tres", "cuatro", "cinco",
		"seis", "siete", "ocho", "nueve"}
	spokenTeens = []string{"diez", "once", "doce", "trece", "catorce", "quince",
		"dieciseis", "diecisiete", "dieciocho", "diecinueve"}
	spokenTwenties = []string{"veinte", "veintiuno", "veintidos", "veintitres",
		"veinticuatro", "veinticinco", "veintiseis", "veintisiete",
		"veintiocho", "veintinueve"}
	spokenTens = []string{"treinta", "cuarenta", "cincuenta", "sesenta",
		"setenta", "ochenta", "noventa"}
)

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func itoa(n int) string { return strconv.Itoa(n) }

var (
	numberWordsOnce sync.Once
	numberWords     []string
)

// NumberWords returns every spoken number form the grammar accepts:
// 1-29 (teens and fused twenties, with their accented variants), the
// tens with their "y" compounds up to 99, and cien. Generated once.
func NumberWords() []string {
	numberWordsOnce.Do(func() {
		unitWords := []string{"", "uno", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho", "nueve"}
		teenWords := []string{"diez", "once", "doce", "trece", "catorce", "quince",
			"dieciséis", "diecisiete", "dieciocho", "diecinueve"}
		twentyWords := []string{"veinte", "veintiuno", "veintidós", "veintitrés", "veinticuatro",
			"veinticinco", "veintiséis", "veintisiete", "veintiocho", "veintinueve"}
		tensWords := []string{"treinta", "cuarenta", "cincuenta", "sesenta", "setenta", "ochenta", "noventa"}

		for i := 1; i <= 9; i++ {
			numberWords = append(numberWords, unitWords[i])
		}
		numberWords = append(numberWords, teenWords...)
		numberWords = append(numberWords, twentyWords...)
		for _, t := range tensWords {
			numberWords = append(numberWords, t)
			for j := 1; j <= 9; j++ {
				numberWords = append(numberWords, t+" y "+unitWords[j])
			}
		}
		numberWords = append(numberWords, "cien")
	})
	return numberWords
}
