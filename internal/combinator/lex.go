package combinator

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Char consumes one rune satisfying pred. The input advances by the encoded
// width of the rune, so multi-byte text is never split.
func Char(pred func(rune) bool) Parser[rune] {
	return func(input string) (rune, string, bool) {
		if input == "" {
			return 0, input, false
		}
		r, width := utf8.DecodeRuneInString(input)
		if !pred(r) {
			return 0, input, false
		}
		return r, input[width:], true
	}
}

// AnyChar consumes any single rune.
func AnyChar() Parser[rune] {
	return Char(func(rune) bool { return true })
}

// Literal matches the exact string s.
func Literal(s string) Parser[string] {
	return func(input string) (string, string, bool) {
		rest, ok := strings.CutPrefix(input, s)
		if !ok {
			return "", input, false
		}
		return s, rest, true
	}
}

// Runes collects the runes produced by p into a string.
func Runes(p Parser[[]rune]) Parser[string] {
	return Map(p, func(rs []rune) string { return string(rs) })
}

// Uint matches one or more ASCII digits. A run that does not fit in a
// uint64 fails the match.
func Uint() Parser[uint64] {
	digits := Runes(Some(Char(isDigit)))
	return func(input string) (uint64, string, bool) {
		text, rest, ok := digits(input)
		if !ok {
			return 0, input, false
		}
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return 0, input, false
		}
		return n, rest, true
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
