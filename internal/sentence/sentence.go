// Package sentence expands spoken sentence values into the word sound files
// the engine plays for them.
package sentence

import "strings"

const (
	soundDir    = "sound/"
	defaultDir  = "sound/vox/"
	wavExt      = ".wav"
	delimiters  = "\t\r\n<>:\"\\/|?*,!()'"
	sentenceRef = "!#"
)

// Decode returns the sound paths spoken by a sentence value, in order.
//
// Values starting with '!' or '#' name entries in the game's sentence table
// and are not expanded. A value ending in ".wav" names a single file.
// Otherwise the value is a list of words, optionally prefixed with the
// directory they live in ("scientist/hello there"); the default directory
// is vox. Parenthesised pitch and volume modifiers are ignored.
func Decode(value string) []string {
	if value == "" || strings.ContainsRune(sentenceRef, rune(value[0])) {
		return nil
	}

	if strings.HasSuffix(value, wavExt) {
		return []string{soundDir + value}
	}

	value = eraseModifiers(value)

	dir := defaultDir
	if idx := strings.LastIndexByte(value, '/'); idx >= 0 {
		if prefix := strings.TrimSpace(value[:idx+1]); prefix != "/" {
			dir = soundDir + strings.TrimLeft(prefix, "/")
		}
		value = value[idx+1:]
	}

	var paths []string
	for _, word := range Words(value) {
		paths = append(paths, dir+word+wavExt)
	}
	return paths
}

// Words splits a sentence body into words. Control characters and
// punctuation separate words; so does '.', which is replaced last.
func Words(body string) []string {
	body = replaceAny(body, delimiters, ' ')
	body = replaceAny(body, ".", ' ')
	return strings.Fields(body)
}

// eraseModifiers blanks every "(...)" segment. An unclosed '(' blanks the
// rest of the value.
func eraseModifiers(value string) string {
	b := []byte(value)
	depth := 0
	for i, c := range b {
		switch {
		case c == '(':
			depth++
			b[i] = ' '
		case c == ')' && depth > 0:
			depth--
			b[i] = ' '
		case depth > 0:
			b[i] = ' '
		}
	}
	return string(b)
}

func replaceAny(s, chars string, with byte) string {
	if !strings.ContainsAny(s, chars) {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if strings.IndexByte(chars, c) >= 0 {
			b[i] = with
		}
	}
	return string(b)
}
