package classify

import (
	"testing"

	"bsp-archiver/internal/parser"
	"bsp-archiver/internal/resource"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  []string
	}{
		{"skyname", "skyname", "desert", []string{
			"gfx/env/desertup.tga",
			"gfx/env/desertdn.tga",
			"gfx/env/desertlf.tga",
			"gfx/env/desertrt.tga",
			"gfx/env/desertft.tga",
			"gfx/env/desertbk.tga",
		}},
		{"skyname key case", "SkyName", "Night", []string{
			"gfx/env/nightup.tga",
			"gfx/env/nightdn.tga",
			"gfx/env/nightlf.tga",
			"gfx/env/nightrt.tga",
			"gfx/env/nightft.tga",
			"gfx/env/nightbk.tga",
		}},
		{"wad basename", "wad", "c:/half-life/valve/halflife.wad", []string{"halflife.wad"}},
		{"wad backslashes", "wad", `\Half-Life\valve\Decals.WAD`, []string{"decals.wad"}},
		{"wad without directory", "wad", "custom.wad", []string{"custom.wad"}},
		{"wad unknown format", "wad", "c:/maps/readme.doc", nil},
		{"speak", "speak", "scientist/hello there", []string{"sound/scientist/hello.wav", "sound/scientist/there.wav"}},
		{"speak group", "team_speak", "!HG_FIRE(agh)", nil},
		{"speak mixed case key", "AP_Speak", "doop", []string{"sound/vox/doop.wav"}},
		{"wav under sound", "message", "ambience/drips.wav", []string{"sound/ambience/drips.wav"}},
		{"model", "model", "models/Barney.mdl", []string{"models/barney.mdl"}},
		{"sprite", "model", "sprites\\glow01.spr", []string{"sprites/glow01.spr"}},
		{"text", "texture", "maps/readme.txt", []string{"maps/readme.txt"}},
		{"brush model", "model", "*12", nil},
		{"no extension", "targetname", "door1", nil},
		{"short extension", "scale", "0.5", nil},
		{"empty", "model", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.key, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyUnknownFormat(t *testing.T) {
	got, err := Classify("model", "models/thing.mp3")
	assert.ErrorIs(t, err, resource.ErrUnknownFormat)
	assert.Empty(t, got)
}

func TestClassifyUnrepresentable(t *testing.T) {
	got, err := Classify("model", "models/caf\xe9.mdl")
	assert.ErrorIs(t, err, resource.ErrUnrepresentablePath)
	assert.Empty(t, got)
}

func TestObserveFillsRegistry(t *testing.T) {
	reg := resource.NewRegistry()
	c := New(reg).WithLogger(zerolog.Nop())

	c.Observe("model", "models/a.mdl")
	c.Observe("message", "caf\xe9.wav")
	c.Observe("model", "MODELS/A.MDL")
	c.Observe("noise", "doors/doormove1.wav")

	assert.Equal(t, []string{"models/a.mdl", "sound/doors/doormove1.wav"}, reg.All())
}

func TestClassifierAsVisitor(t *testing.T) {
	reg := resource.NewRegistry()
	var v parser.Visitor = New(reg).WithLogger(zerolog.Nop())

	input := "{\n\"message\" \"caf\xe9\"\n\"noise\" \"a.wav;b.wav\"\n\"skyname\" \"desert\"\n}"
	require.NoError(t, parser.Parse([]byte(input), v))

	all := reg.All()
	require.Len(t, all, 8)
	assert.Equal(t, []string{"sound/a.wav", "sound/b.wav"}, all[:2])
	assert.Equal(t, "gfx/env/desertup.tga", all[2])
}

func TestIsSpeakKey(t *testing.T) {
	for _, k := range SpeakKeys {
		assert.True(t, IsSpeakKey(k), k)
	}
	assert.False(t, IsSpeakKey("message"))
}
