// Package cypher builds parameterized Cypher statements.
//
// Labels cannot be bound as parameters, so they are the only text taken from
// callers that is ever embedded in a statement, and always through
// QuoteIdentifier. Every value goes in as a $parameter.
package cypher

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Identifier errors.
var (
	ErrEmptyIdentifier   = errors.New("cypher: empty identifier")
	ErrInvalidIdentifier = errors.New("cypher: identifier is not valid UTF-8")
	ErrUnicodeEscape     = errors.New("cypher: identifier contains a unicode escape")
)

// QuoteIdentifier returns name as a backtick-quoted Cypher identifier.
// Embedded backticks are doubled, never dropped.
//
// Cypher decodes \uXXXX and \UXXXXXXXX inside quoted names, so a name holding
// one would address the same label as its decoded spelling; such names are
// rejected.
func QuoteIdentifier(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyIdentifier
	}
	if !utf8.ValidString(name) {
		return "", ErrInvalidIdentifier
	}
	if hasUnicodeEscape(name) {
		return "", ErrUnicodeEscape
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`", nil
}

func hasUnicodeEscape(name string) bool {
	for i := 0; i+1 < len(name); i++ {
		if name[i] != '\\' {
			continue
		}
		var digits int
		switch name[i+1] {
		case 'u':
			digits = 4
		case 'U':
			digits = 8
		default:
			continue
		}
		if isHex(name[i+2:], digits) {
			return true
		}
	}
	return false
}

func isHex(s string, n int) bool {
	if len(s) < n {
		return false
	}
	for i := 0; i < n; i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
