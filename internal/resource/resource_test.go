package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Models/Player.MDL", "models/player.mdl"},
		{"backslashes", `sound\Ambience\Drips.wav`, "sound/ambience/drips.wav"},
		{"keeps punctuation", "sprites/fog5!.spr", "sprites/fog5!.spr"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRejectsHighBit(t *testing.T) {
	_, err := Normalize("models/caf\xe9.mdl")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnrepresentablePath)
}

func TestIsKnownFormat(t *testing.T) {
	for _, ext := range []string{".mdl", ".WAV", ".Spr", ".wad", ".tga", ".bmp", ".txt"} {
		assert.True(t, IsKnownFormat(ext), ext)
	}
	for _, ext := range []string{"", ".mp3", ".bsp", "wav", ".wavx"} {
		assert.False(t, IsKnownFormat(ext), ext)
	}
}

func TestExtensionAndBase(t *testing.T) {
	assert.Equal(t, ".wad", Extension("c:/half-life/valve/halflife.wad"))
	assert.Equal(t, "", Extension("models/player"))
	assert.Equal(t, "halflife.wad", Base("c:/half-life/valve/halflife.wad"))
	assert.Equal(t, "decals.wad", Base("decals.wad"))
}

func TestRegistryAddIsIdempotent(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Add("models/a.mdl"))
	assert.True(t, r.Add("sound/b.wav"))
	assert.False(t, r.Add("models/a.mdl"))

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"models/a.mdl", "sound/b.wav"}, r.All())
	assert.True(t, r.Contains("sound/b.wav"))
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	r.Add("models/a.mdl")
	r.Add("models/b.mdl")

	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Contains("models/a.mdl"))

	r.Add("models/b.mdl")
	assert.Equal(t, []string{"models/b.mdl"}, r.All())
}

func TestRegistryAllReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Add("models/a.mdl")

	all := r.All()
	all[0] = "changed"

	assert.Equal(t, []string{"models/a.mdl"}, r.All())
}
