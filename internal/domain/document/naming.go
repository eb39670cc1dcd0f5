package document

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultPrefix is used when a DocType name yields no prefix characters.
const DefaultPrefix = "DOC"

// NamePrefix derives the auto-name prefix of a DocType: its first three
// characters, uppercased, with whitespace removed. "Sales Invoice" gives "SAL",
// "A B" gives "AB".
func NamePrefix(docType string) string {
	runes := []rune(docType)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	prefix := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToUpper(string(runes)))
	if prefix == "" {
		return DefaultPrefix
	}
	return prefix
}

// FormatName renders the n-th generated name of a series, zero-padded to three digits.
func FormatName(prefix string, n int64) string {
	return fmt.Sprintf("%s-%03d", prefix, n)
}
