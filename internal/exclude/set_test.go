package exclude

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapacity(t *testing.T) {
	tests := []struct {
		items int
		want  int
	}{
		{0, 16},
		{3, 16},
		{8, 16},
		{9, 32},
		{16, 32},
		{17, 64},
		{290, 1024},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, capacityFor(tt.items), "items=%d", tt.items)

		items := make([]string, tt.items)
		for i := range items {
			items[i] = fmt.Sprintf("models/m%d.mdl", i)
		}
		assert.Equal(t, tt.want, New(items).Cap())
	}
}

func TestContains(t *testing.T) {
	s := New([]string{"sprites/fog5.spr", "sound/hgrunt/fire!.wav", "halflife.wad"})

	assert.True(t, s.Contains("sprites/fog5.spr"))
	assert.True(t, s.Contains("sound/hgrunt/fire!.wav"))
	assert.True(t, s.Contains("halflife.wad"))
	assert.False(t, s.Contains("sprites/fog6.spr"))
	assert.False(t, s.Contains(""))
	assert.Equal(t, 3, s.Len())
}

func TestDuplicatesStoredOnce(t *testing.T) {
	s := New([]string{"a.wad", "a.wad", "b.wad"})
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("a.wad"))
}

// Fills a table close to its load bound with random keys so that probe runs
// collide and wrap, then checks there are no false negatives or positives.
func TestNoFalseNegativesUnderCollisions(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		n := 1 + rng.Intn(500)
		items := make([]string, n)
		inSet := make(map[string]bool, n)
		for i := range items {
			items[i] = randomPath(rng)
			inSet[items[i]] = true
		}

		s := New(items)
		for _, item := range items {
			require.True(t, s.Contains(item), "missing %q", item)
		}
		for i := 0; i < 200; i++ {
			probe := randomPath(rng)
			assert.Equal(t, inSet[probe], s.Contains(probe), "probe %q", probe)
		}
	}
}

func randomPath(rng *rand.Rand) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789_"
	var b strings.Builder
	b.WriteString([]string{"sound/", "models/", "sprites/", "gfx/env/"}[rng.Intn(4)])
	for i := 0; i < 1+rng.Intn(12); i++ {
		b.WriteByte(alphabet[rng.Intn(len(alphabet))])
	}
	b.WriteString([]string{".wav", ".mdl", ".spr", ".tga"}[rng.Intn(4)])
	return b.String()
}

func TestDefaultManifest(t *testing.T) {
	s := Default()
	require.NotNil(t, s)
	assert.Same(t, s, Default())

	assert.True(t, s.Contains("sound/hgrunt/fire!.wav"))
	assert.True(t, s.Contains("sprites/fog5.spr"))
	assert.True(t, s.Contains("gfx/vgui/fonts/800_title font.tga"))
	assert.False(t, s.Contains("maps/mymap.bsp"))

	items, err := ParseManifest(strings.NewReader(string(manifest)))
	require.NoError(t, err)
	for _, item := range items {
		assert.True(t, s.Contains(item), item)
	}
	assert.GreaterOrEqual(t, s.Cap(), 2*s.Len())
}

func TestParseManifest(t *testing.T) {
	input := "// header\n\nsound/a.wav\n  models/b.mdl  \n// trailing\n"
	items, err := ParseManifest(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"sound/a.wav", "models/b.mdl"}, items)
}

func ExampleSet_Contains() {
	s := New([]string{"halflife.wad"})
	fmt.Println(s.Contains("halflife.wad"), s.Contains("custom.wad"))
	// Output: true false
}
