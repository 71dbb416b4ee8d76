// Package combinator provides the small parser-combinator runtime the
// markdown grammar is written in. A parser is a plain function over the
// remaining input; it either fails or returns a value and the unconsumed
// suffix. Parsers capture no mutable state, so a single parser value can be
// invoked any number of times, from any goroutine.
package combinator

import "strings"

// Parser consumes a prefix of input. On success it returns the produced
// value, the unconsumed remainder and true. On failure ok is false and the
// other results carry no meaning.
type Parser[T any] func(input string) (value T, rest string, ok bool)

// Pair holds the results of two sequenced parsers.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Map transforms the value of a successful parse.
func Map[T, U any](p Parser[T], fn func(T) U) Parser[U] {
	return func(input string) (U, string, bool) {
		value, rest, ok := p(input)
		if !ok {
			var zero U
			return zero, input, false
		}
		return fn(value), rest, true
	}
}

// And runs left then right on the remainder left produced. Either failure
// fails the whole sequence and nothing is consumed.
func And[A, B any](left Parser[A], right Parser[B]) Parser[Pair[A, B]] {
	return func(input string) (Pair[A, B], string, bool) {
		a, rest, ok := left(input)
		if !ok {
			return Pair[A, B]{}, input, false
		}
		b, rest, ok := right(rest)
		if !ok {
			return Pair[A, B]{}, input, false
		}
		return Pair[A, B]{First: a, Second: b}, rest, true
	}
}

// Left sequences two parsers and keeps the value of the first.
func Left[A, B any](left Parser[A], right Parser[B]) Parser[A] {
	return Map(And(left, right), func(p Pair[A, B]) A { return p.First })
}

// Right sequences two parsers and keeps the value of the second.
func Right[A, B any](left Parser[A], right Parser[B]) Parser[B] {
	return Map(And(left, right), func(p Pair[A, B]) B { return p.Second })
}

// Or tries left and, when it fails, right on the original input.
func Or[T any](left, right Parser[T]) Parser[T] {
	return func(input string) (T, string, bool) {
		if value, rest, ok := left(input); ok {
			return value, rest, true
		}
		return right(input)
	}
}

// Choice is an n-ary Or. Earlier parsers take priority.
func Choice[T any](parsers ...Parser[T]) Parser[T] {
	return func(input string) (T, string, bool) {
		for _, p := range parsers {
			if value, rest, ok := p(input); ok {
				return value, rest, true
			}
		}
		var zero T
		return zero, input, false
	}
}

// Many applies p until it fails and never fails itself. Repetition also
// stops when p succeeds without consuming input.
func Many[T any](p Parser[T]) Parser[[]T] {
	return func(input string) ([]T, string, bool) {
		var out []T
		for {
			value, rest, ok := p(input)
			if !ok || len(rest) == len(input) {
				break
			}
			out = append(out, value)
			input = rest
		}
		return out, input, true
	}
}

// Some is Many that requires at least one success.
func Some[T any](p Parser[T]) Parser[[]T] {
	many := Many(p)
	return func(input string) ([]T, string, bool) {
		first, rest, ok := p(input)
		if !ok {
			return nil, input, false
		}
		tail, rest, _ := many(rest)
		return append([]T{first}, tail...), rest, true
	}
}

// Id always succeeds without consuming input and produces the zero value
// of T. Combined with Or it makes a sub-parse optional.
func Id[T any]() Parser[T] {
	return func(input string) (T, string, bool) {
		var zero T
		return zero, input, true
	}
}

// Satisfy fails when p succeeds with a value rejected by pred.
func Satisfy[T any](p Parser[T], pred func(T) bool) Parser[T] {
	return func(input string) (T, string, bool) {
		value, rest, ok := p(input)
		if !ok || !pred(value) {
			var zero T
			return zero, input, false
		}
		return value, rest, true
	}
}

// Lazy defers building a parser until it is invoked. Recursive grammar
// rules go through Lazy so that constructing a rule never constructs
// itself.
func Lazy[T any](build func() Parser[T]) Parser[T] {
	return func(input string) (T, string, bool) {
		return build()(input)
	}
}

// TakeUntil returns everything before the first occurrence of target and
// leaves target at the head of the remainder. It fails when target does
// not occur.
func TakeUntil(target string) Parser[string] {
	return func(input string) (string, string, bool) {
		idx := strings.Index(input, target)
		if idx < 0 {
			return "", input, false
		}
		return input[:idx], input[idx:], true
	}
}

// Newline matches a single line feed.
func Newline() Parser[string] {
	return Literal("\n")
}

// Line returns the text up to the next line feed and consumes the line
// feed. Without a line feed the rest of the input is the line.
func Line() Parser[string] {
	return func(input string) (string, string, bool) {
		line, rest, found := strings.Cut(input, "\n")
		if !found {
			return input, "", true
		}
		return line, rest, true
	}
}

// BlankLine matches spaces and tabs followed by a line feed.
func BlankLine() Parser[struct{}] {
	return Map(
		And(Many(Char(isBlank)), Newline()),
		func(Pair[[]rune, string]) struct{} { return struct{}{} },
	)
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t'
}
