package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// pathSeparatorReplacer turns path separators into word breaks so "A/B" keeps
// both words apart instead of fusing them.
var pathSeparatorReplacer = strings.NewReplacer(
	"/", " ",
	"\\", " ",
)

// SanitizeTitle converts a caption into a file name stem. The title is NFC
// normalized, surrounding whitespace is removed, each inner whitespace run
// becomes a single underscore, and every rune that is not a letter, digit, or
// underscore is dropped. Path separators count as whitespace.
//
//	" NGC #3521: Galaxy in a Bubble " -> "NGC_3521_Galaxy_in_a_Bubble"
//	"A/B  Test!!"                      -> "A_B_Test"
//
// The result may be empty when the title holds no letters or digits.
func SanitizeTitle(title string) string {
	title = norm.NFC.String(title)
	title = pathSeparatorReplacer.Replace(title)
	joined := strings.Join(strings.Fields(title), "_")

	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsASCIIAlnum reports whether value is non-empty and made only of ASCII
// letters and digits.
func IsASCIIAlnum(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
