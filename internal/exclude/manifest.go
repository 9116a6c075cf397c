package exclude

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

//go:embed goldsrc-manifest.lst
var manifest []byte

var (
	defaultOnce sync.Once
	defaultSet  *Set
)

// Default returns the Set built from the embedded base game manifest.
func Default() *Set {
	defaultOnce.Do(func() {
		items, err := ParseManifest(bytes.NewReader(manifest))
		if err != nil {
			// The manifest is compiled in; a read error here is a build defect.
			panic(fmt.Sprintf("parse embedded manifest: %v", err))
		}
		defaultSet = New(items)
		log.Debug().
			Int("items", defaultSet.Len()).
			Int("slots", defaultSet.Cap()).
			Msg("Loaded exclusion manifest")
	})
	return defaultSet
}

// ParseManifest reads one path per line. Blank lines and lines starting
// with "//" are ignored.
func ParseManifest(r io.Reader) ([]string, error) {
	var items []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		items = append(items, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}

	return items, nil
}
