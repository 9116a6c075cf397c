package parser

// Lexer scans entity text one token at a time. It never fails: bytes it
// does not recognise outside a string are skipped.
type Lexer struct {
	src []byte
	pos int
}

// NewLexer creates a Lexer over src. src must stay unmodified while tokens
// from this Lexer are in use.
func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src}
}

// Pos returns the current byte offset.
func (l *Lexer) Pos() int { return l.pos }

func (l *Lexer) at(i int) byte {
	if i < 0 || i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// Next returns the next token. Once EndOfStream is returned, every later
// call returns it again.
func (l *Lexer) Next() Token {
	for {
		c := l.at(l.pos)
		switch {
		case c == 0:
			return Token{Kind: EndOfStream, Start: l.pos, End: l.pos}
		case isSpace(c):
			l.skipSpace()
		case c == '/' && l.at(l.pos+1) == '/':
			l.skipLine()
		case c == '{' || c == '(':
			l.pos++
			return Token{Kind: BeginEntity, Start: l.pos - 1, End: l.pos}
		case c == '}' || c == ')':
			l.pos++
			return Token{Kind: EndEntity, Start: l.pos - 1, End: l.pos}
		case c == '"':
			return l.readString()
		default:
			l.pos++
		}
	}
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
		if l.at(l.pos)&0x80 != 0 {
			return
		}
	}
}

func (l *Lexer) skipLine() {
	for {
		c := l.at(l.pos)
		if c == 0 || c == '\n' || c == '\r' {
			return
		}
		l.pos++
	}
}

func (l *Lexer) readString() Token {
	start := l.pos + 1
	end := start
	for !l.stringEnd(end) {
		end++
	}

	l.pos = end
	if l.at(end) == '"' {
		l.pos++
	}
	return Token{Kind: QuotedString, Start: start, End: end}
}

// stringEnd reports whether the byte at i closes the current string.
//
// A quote closes the string when whitespace, NUL or the end of the buffer
// follows it. A quote followed by "//" closes it only if no other quote
// appears before the end of the line; otherwise the slashes are part of the
// value. End of input also stops the string.
func (l *Lexer) stringEnd(i int) bool {
	c := l.at(i)
	if c == 0 {
		return true
	}
	if c != '"' {
		return false
	}

	next := l.at(i + 1)
	if next == 0 || isSpace(next) {
		return true
	}

	if next == '/' && l.at(i+2) == '/' {
		for j := i + 1; ; j++ {
			switch l.at(j) {
			case '"':
				return false
			case 0, '\n', '\r':
				return true
			}
		}
	}

	return false
}
