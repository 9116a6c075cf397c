package parser

import "fmt"

// TokenKind identifies the kind of a lexical token in entity text.
type TokenKind int

const (
	EndOfStream TokenKind = iota
	BeginEntity
	EndEntity
	QuotedString
)

func (k TokenKind) String() string {
	switch k {
	case EndOfStream:
		return "end of stream"
	case BeginEntity:
		return "begin entity"
	case EndEntity:
		return "end entity"
	case QuotedString:
		return "string"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a lexical token. For QuotedString, [Start, End) is the span of
// the string contents in the source, without the quotes.
type Token struct {
	Kind  TokenKind
	Start int
	End   int
}

// Text returns the token's span of src.
func (t Token) Text(src []byte) []byte {
	return src[t.Start:t.End]
}
