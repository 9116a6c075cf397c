package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// gameDirFolders are the directories a mod folder usually has.
var gameDirFolders = []string{
	"sound",
	"gfx",
	"sprites",
	"models",
	"maps",
}

const (
	gameDirSearchDepth = 3
	gameDirMinMatches  = 3
)

// IsGameDir reports whether dir looks like a game or mod directory: it
// holds at least three of the usual asset folders.
func IsGameDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}

	matches := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		for _, name := range gameDirFolders {
			if strings.EqualFold(e.Name(), name) {
				matches++
			}
		}
	}
	return matches >= gameDirMinMatches
}

// FindGameDir looks for a game directory at input and up to three of its
// parents. A map in <game>/maps/ resolves to <game>.
func FindGameDir(input string) (string, error) {
	dir, err := filepath.Abs(input)
	if err != nil {
		return "", fmt.Errorf("resolve input path: %w", err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for depth := 0; depth <= gameDirSearchDepth; depth++ {
		if IsGameDir(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no game directory found above %s", input)
}
