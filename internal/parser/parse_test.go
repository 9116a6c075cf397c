package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct{ Key, Value string }

type recorder struct{ pairs []pair }

func (r *recorder) Observe(key, value string) {
	r.pairs = append(r.pairs, pair{key, value})
}

func TestParseEntities(t *testing.T) {
	input := `{
"classname" "worldspawn"
"wad" "\half-life\valve\halflife.wad"
"skyname" "desert"
}
{
"classname" "ambient_generic"
"message" "ambience/drips.wav"
}
`
	rec := &recorder{}
	require.NoError(t, Parse([]byte(input), rec))

	assert.Equal(t, []pair{
		{"classname", "worldspawn"},
		{"wad", `\half-life\valve\halflife.wad`},
		{"skyname", "desert"},
		{"classname", "ambient_generic"},
		{"message", "ambience/drips.wav"},
	}, rec.pairs)
}

func TestParseSplitsMultiValues(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, Parse([]byte(`{ "noise" "a.wav;b.wav;c.wav" }`), rec))

	assert.Equal(t, []pair{
		{"noise", "a.wav"},
		{"noise", "b.wav"},
		{"noise", "c.wav"},
	}, rec.pairs)
}

func TestParseEmpty(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, Parse(nil, rec))
	require.NoError(t, Parse([]byte("  \n// only a comment\n"), rec))
	assert.Empty(t, rec.pairs)
}

func TestParseMissingEndEntity(t *testing.T) {
	err := Parse([]byte("{\n\"classname\" \"worldspawn\"\n{"), &recorder{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedEntityBlock)

	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, EndEntity, syntaxErr.Expected)
	assert.Equal(t, BeginEntity, syntaxErr.Found)
	assert.Contains(t, syntaxErr.Near, "worldspawn")
}

func TestParseMissingValue(t *testing.T) {
	rec := &recorder{}
	err := Parse([]byte("{ \"a\" \"1\" \"orphan\" }"), rec)
	assert.ErrorIs(t, err, ErrMalformedEntityBlock)
	assert.Equal(t, []pair{{"a", "1"}}, rec.pairs)
}

func TestParseStopsAtNonEntityTopLevel(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, Parse([]byte(`{ "a" "1" } "stray" { "b" "2" }`), rec))
	assert.Equal(t, []pair{{"a", "1"}}, rec.pairs)
}

func TestParseTruncatesLongFields(t *testing.T) {
	longKey := strings.Repeat("k", MaxKeyLen+10)
	longValue := strings.Repeat("v", MaxValueLen+10)

	rec := &recorder{}
	require.NoError(t, Parse([]byte(`{ "`+longKey+`" "`+longValue+`" }`), rec))

	require.Len(t, rec.pairs, 1)
	assert.Len(t, rec.pairs[0].Key, MaxKeyLen)
	assert.Len(t, rec.pairs[0].Value, MaxValueLen)
}

func TestParseHighBitValueDoesNotDisturbLaterPairs(t *testing.T) {
	rec := &recorder{}
	input := "{\n\"message\" \"caf\xe9\"\n\"model\" \"models/a.mdl\"\n}"
	require.NoError(t, Parse([]byte(input), rec))
	assert.Equal(t, []pair{{"message", "caf\xe9"}, {"model", "models/a.mdl"}}, rec.pairs)
}

func TestParseVisitorFunc(t *testing.T) {
	var keys []string
	err := Parse([]byte(`{ "a" "1" "b" "2" }`), VisitorFunc(func(key, _ string) {
		keys = append(keys, key)
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestSplitValues(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a;b;c", []string{"a", "b", "c"}},
		{"single", []string{"single"}},
		{"", []string{""}},
		{"a;", []string{"a", ""}},
		{";a", []string{"", "a"}},
		{"a;;b", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		var got []string
		SplitValues(tt.input, func(s string) { got = append(got, s) })
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestSplitValuesWithoutDelimiterYieldsOriginal(t *testing.T) {
	for _, v := range []string{"models/a.mdl", "x y z", "sound/a.wav"} {
		var got []string
		SplitValues(v, func(s string) { got = append(got, s) })
		assert.Equal(t, []string{v}, got)
	}
}
