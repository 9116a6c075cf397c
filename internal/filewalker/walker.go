package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// MapExtension is the file type handled by the tool.
const MapExtension = ".bsp"

// Walker discovers map files.
type Walker struct {
	// Recursive descends into subdirectories when set.
	Recursive bool
}

// NewWalker creates a Walker that only looks at the top directory.
func NewWalker() *Walker {
	return &Walker{}
}

// IsMap reports whether path has the map extension, ignoring case.
func IsMap(path string) bool {
	return strings.EqualFold(filepath.Ext(path), MapExtension)
}

// Walk returns the map files named by input: input itself when it is a map
// file, or the maps inside it when it is a directory. Results are sorted.
func (w *Walker) Walk(input string) ([]string, error) {
	root, err := filepath.Abs(input)
	if err != nil {
		return nil, fmt.Errorf("resolve input path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if !info.IsDir() {
		if !IsMap(root) {
			return nil, fmt.Errorf("not a %s file: %s", MapExtension, input)
		}
		return []string{root}, nil
	}

	var maps []string

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if d.IsDir() {
			if path != root && !w.Recursive {
				return filepath.SkipDir
			}
			return nil
		}

		if IsMap(path) {
			maps = append(maps, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Strings(maps)
	log.Info().Int("count", len(maps)).Str("root", root).Msg("Discovered maps")
	return maps, nil
}
