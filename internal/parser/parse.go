package parser

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxKeyLen bounds entity keys; longer keys are truncated.
	MaxKeyLen = 32
	// MaxValueLen bounds entity values; longer values are truncated.
	MaxValueLen = 1024

	excerptLen = 200
)

// ErrMalformedEntityBlock is returned when the entity text does not follow
// the block structure.
var ErrMalformedEntityBlock = errors.New("malformed entity block")

// Visitor receives every key/value pair of the entity text in order.
type Visitor interface {
	Observe(key, value string)
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(key, value string)

// Observe calls f(key, value).
func (f VisitorFunc) Observe(key, value string) { f(key, value) }

// SyntaxError describes where parsing stopped.
type SyntaxError struct {
	Offset   int
	Expected TokenKind
	Found    TokenKind
	Near     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d: expected %s, found %s near %q",
		ErrMalformedEntityBlock, e.Offset, e.Expected, e.Found, e.Near)
}

func (e *SyntaxError) Unwrap() error { return ErrMalformedEntityBlock }

// Parse walks the entity blocks in src and passes each key/value pair to v.
// Values holding several ';' separated alternatives are passed once per
// alternative under the same key.
func Parse(src []byte, v Visitor) error {
	lex := NewLexer(src)
	tok := lex.Next()

	for tok.Kind == BeginEntity {
		tok = lex.Next()

		for tok.Kind == QuotedString {
			key := truncate(tok.Text(src), MaxKeyLen)

			tok = lex.Next()
			if tok.Kind != QuotedString {
				return syntaxError(src, tok, QuotedString)
			}
			value := truncate(tok.Text(src), MaxValueLen)

			SplitValues(value, func(sub string) {
				v.Observe(key, sub)
			})
			tok = lex.Next()
		}

		if tok.Kind != EndEntity {
			return syntaxError(src, tok, EndEntity)
		}
		tok = lex.Next()
	}

	return nil
}

// SplitValues calls emit for each ';' separated part of value, left to
// right. A value without ';' is emitted unchanged.
func SplitValues(value string, emit func(string)) {
	for {
		idx := strings.IndexByte(value, ';')
		if idx < 0 {
			emit(value)
			return
		}
		SplitValues(value[:idx], emit)
		value = value[idx+1:]
	}
}

func truncate(b []byte, max int) string {
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}

func syntaxError(src []byte, tok Token, expected TokenKind) error {
	start := tok.Start - excerptLen/2
	if start < 0 {
		start = 0
	}
	end := start + excerptLen
	if end > len(src) {
		end = len(src)
	}
	return &SyntaxError{
		Offset:   tok.Start,
		Expected: expected,
		Found:    tok.Kind,
		Near:     string(src[start:end]),
	}
}
