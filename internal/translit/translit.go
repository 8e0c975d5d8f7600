// Package translit turns Branner-notation strings into IPA display strings.
//
// A transliteration is any total func(string) string. BrannerToIPA is the
// default: it scans left to right, always taking the longest Branner token
// that matches, and copies anything it does not recognise unchanged.
package translit

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/jengamon/lexi/pkg/phone"
)

// Func converts a Branner string into a display string. Implementations must
// be total: every input yields some output.
type Func func(string) string

// zeroWidthSpace is removed from every display string.
const zeroWidthSpace = "\u200b"

// brannerTokens maps ASCII Branner tokens to IPA. Combining marks attach to
// the preceding base character.
var brannerTokens = map[string]string{
	// Plosives
	"p": "p", "b": "b", "t": "t", "d": "d", "k": "k", "g": "ɡ", "q": "q", "?": "ʔ",

	// Fricatives
	`P"`: "ɸ", `B"`: "β", "f": "f", "v": "v", "O-": "θ", "d-": "ð",
	"s": "s", "z": "z", "S": "ʃ", `3"`: "ʒ", "x": "x", "h": "h",

	// Sonorants
	"m": "m", "n": "n", "N": "ŋ", "l": "l", "r": "r", "j": "j", "w": "w",

	// Vowels
	"a": "a", "e": "e", "i": "i", "o": "o", "u": "u", "y": "y",
	"@": "ə", "E": "ɛ", "O": "ɔ", "I": "ɪ", "U": "ʊ", "A": "ɑ",

	// Diacritics and modifiers
	"[":   "\u032a", // dental bridge below
	`h")`: "ʱ",
	"~":   "\u0330", // creaky, tilde below
	"`":   "ʼ",
	"h^":  "ʰ",
	"))":  "\u0361", // tie bar
	":":   "ː",
}

var brannerKeys = sortedKeys(brannerTokens)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// BrannerToIPA converts Branner notation to NFC-normalized IPA.
func BrannerToIPA(input string) string {
	var b strings.Builder
	b.Grow(len(input))

	for i := 0; i < len(input); {
		matched := false
		for _, key := range brannerKeys {
			if strings.HasPrefix(input[i:], key) {
				b.WriteString(brannerTokens[key])
				i += len(key)
				matched = true
				break
			}
		}
		if !matched {
			// Copy one whole rune so multi-byte input survives intact.
			_, size := utf8.DecodeRuneInString(input[i:])
			b.WriteString(input[i : i+size])
			i += size
		}
	}

	return Clean(norm.NFC.String(b.String()))
}

// Clean strips zero-width spaces.
func Clean(s string) string {
	return strings.ReplaceAll(s, zeroWidthSpace, "")
}

// Rendering is the Branner and display form of one phone.
type Rendering struct {
	Branner string `json:"branner"`
	Display string `json:"display"`
}

// Render renders p in Branner notation and passes it through fn. A nil fn
// uses BrannerToIPA.
func Render(p phone.Phone, fn Func) (Rendering, error) {
	if fn == nil {
		fn = BrannerToIPA
	}
	branner, err := p.Branner()
	if err != nil {
		return Rendering{}, err
	}
	return Rendering{Branner: branner, Display: Clean(fn(branner))}, nil
}
