// Package classify turns entity key/value pairs into the resource paths
// they depend on.
package classify

import (
	"errors"
	"fmt"
	"strings"

	"bsp-archiver/internal/resource"
	"bsp-archiver/internal/sentence"
	"bsp-archiver/internal/textutil"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var skySides = []string{
	"up.tga",
	"dn.tga",
	"lf.tga",
	"rt.tga",
	"ft.tga",
	"bk.tga",
}

// SpeakKeys are the entity keys whose values are spoken sentences.
var SpeakKeys = []string{
	"speak",
	"team_speak",
	"non_team_speak",
	"owners_team_speak",
	"non_owners_team_speak",
	"ap_speak",
	"mpg_speak",
}

// Classifier resolves entity values into resource paths and records them in
// a Registry. It implements parser.Visitor.
type Classifier struct {
	registry *resource.Registry
	logger   zerolog.Logger
}

// New creates a Classifier that adds every resolved path to registry.
func New(registry *resource.Registry) *Classifier {
	return &Classifier{
		registry: registry,
		logger:   log.Logger,
	}
}

// WithLogger returns a copy of c logging through logger.
func (c *Classifier) WithLogger(logger zerolog.Logger) *Classifier {
	cp := *c
	cp.logger = logger
	return &cp
}

// Observe classifies one pair and adds the resulting paths to the registry.
// Pairs that cannot be classified are logged and skipped.
func (c *Classifier) Observe(key, value string) {
	paths, err := Classify(key, value)
	if err != nil {
		ev := c.logger.Debug().Err(err).Str("key", key)
		shown := value
		if errors.Is(err, resource.ErrUnrepresentablePath) {
			shown = textutil.DecodeLegacy(value)
		}
		ev.Str("value", textutil.Truncate(shown, 120)).Msg("Skipping entity value")
	}

	for _, p := range paths {
		if c.registry.Add(p) {
			c.logger.Debug().Str("key", key).Str("path", p).Msg("Found dependency")
		}
	}
}

// Classify returns the resource paths a key/value pair refers to.
//
// The returned error is informational: ErrUnrepresentablePath when the
// value cannot be normalized, ErrUnknownFormat when it carries an
// extension that is not a resource format. In both cases no paths are
// returned.
func Classify(key, value string) ([]string, error) {
	if value == "" {
		return nil, nil
	}

	value, err := resource.Normalize(value)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.EqualFold(key, "skyname"):
		return skyPaths(value), nil
	case strings.EqualFold(key, "wad"):
		return wadPaths(value), nil
	case IsSpeakKey(key):
		return sentence.Decode(value), nil
	}

	ext := resource.Extension(value)
	switch {
	case ext == "":
		return nil, nil
	case resource.IsKnownFormat(ext):
		if ext == ".wav" {
			return []string{"sound/" + value}, nil
		}
		return []string{value}, nil
	case len(ext) >= 4:
		return nil, fmt.Errorf("%w: %q", resource.ErrUnknownFormat, ext)
	default:
		return nil, nil
	}
}

// IsSpeakKey reports whether key holds a spoken sentence.
func IsSpeakKey(key string) bool {
	for _, k := range SpeakKeys {
		if strings.EqualFold(key, k) {
			return true
		}
	}
	return false
}

func skyPaths(name string) []string {
	paths := make([]string, len(skySides))
	for i, side := range skySides {
		paths[i] = "gfx/env/" + name + side
	}
	return paths
}

// wadPaths keeps only the package file name: the directory stored in the
// map is the compiling machine's and means nothing on another install.
func wadPaths(value string) []string {
	base := resource.Base(value)
	if !resource.IsKnownFormat(resource.Extension(base)) {
		return nil
	}
	return []string{base}
}
