// Package archive bundles resolved map dependencies from a game directory
// into one zip file per map.
package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"bsp-archiver/internal/pipeline"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"
)

var (
	// ErrArchiveExists is returned when the target zip exists and overwriting is off.
	ErrArchiveExists = errors.New("archive already exists")
	// ErrOutsideGameDir is returned for dependency paths that escape the game directory.
	ErrOutsideGameDir = errors.New("path outside game directory")
)

// Stats counts what happened to each dependency.
type Stats struct {
	Added   int
	Missing int
	Skipped int
}

// Packager writes map archives.
type Packager struct {
	GameDir   string
	OutputDir string
	Overwrite bool
}

// ArchivePath returns where the archive for map name is written.
func (p *Packager) ArchivePath(name string) string {
	return filepath.Join(p.OutputDir, name+".zip")
}

// Package writes <OutputDir>/<name>.zip holding every non-excluded
// dependency found under GameDir. Dependencies that cannot be found are
// counted as missing; they do not fail the archive.
func (p *Packager) Package(name string, deps []pipeline.Dependency) (Stats, error) {
	var stats Stats

	dest := p.ArchivePath(name)
	if _, err := os.Stat(dest); err == nil && !p.Overwrite {
		return stats, fmt.Errorf("%w: %s", ErrArchiveExists, dest)
	}

	tmp, err := os.CreateTemp(p.OutputDir, ".tmp-"+name+"-*.zip")
	if err != nil {
		return stats, fmt.Errorf("create archive: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	zw := zip.NewWriter(tmp)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	for _, dep := range deps {
		if dep.Excluded {
			log.Debug().Str("map", name).Str("path", dep.Path).Msg("Skipping base game file")
			stats.Skipped++
			continue
		}

		added, err := p.addFile(zw, dep.Path)
		if err != nil {
			cleanup()
			return stats, fmt.Errorf("add %s: %w", dep.Path, err)
		}
		if added {
			stats.Added++
		} else {
			stats.Missing++
		}
	}

	if err := zw.Close(); err != nil {
		cleanup()
		return stats, fmt.Errorf("finalize archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return stats, fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return stats, fmt.Errorf("move archive into place: %w", err)
	}

	return stats, nil
}

// addFile copies the dependency at rel into zw. It reports false when the
// file does not exist under the game directory.
func (p *Packager) addFile(zw *zip.Writer, rel string) (bool, error) {
	full, err := Locate(p.GameDir, rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrOutsideGameDir) {
			log.Debug().Err(err).Str("path", FullPath(p.GameDir, rel)).Msg("Dependency missing")
			return false, nil
		}
		return false, err
	}

	f, err := os.Open(full)
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     rel,
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	})
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(w, f); err != nil {
		return false, err
	}

	return true, nil
}

// FullPath joins a game directory and a dependency path with a separator,
// unless the dependency already starts with one.
func FullPath(gameDir, dep string) string {
	if strings.HasPrefix(dep, "/") || strings.HasPrefix(dep, `\`) {
		return gameDir + dep
	}
	return gameDir + "/" + dep
}

// Locate finds the file for dependency rel under gameDir. Dependency paths
// are lower case, but files on a case-sensitive filesystem may not be, so
// when the exact path is missing each segment is matched ignoring case.
func Locate(gameDir, rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(rel, "/")))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: %s", ErrOutsideGameDir, rel)
	}

	exact := filepath.Join(gameDir, clean)
	if info, err := os.Stat(exact); err == nil && !info.IsDir() {
		return exact, nil
	}

	dir := gameDir
	segments := strings.Split(clean, string(filepath.Separator))
	for i, seg := range segments {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", fmt.Errorf("%s: %w", rel, fs.ErrNotExist)
		}
		found := ""
		for _, e := range entries {
			if strings.EqualFold(e.Name(), seg) && (e.IsDir() == (i < len(segments)-1)) {
				found = e.Name()
				break
			}
		}
		if found == "" {
			return "", fmt.Errorf("%s: %w", rel, fs.ErrNotExist)
		}
		dir = filepath.Join(dir, found)
	}

	return dir, nil
}
