// Package pipeline drives dependency resolution for one map or a batch of
// maps: container read, entity parsing, classification and exclusion.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"bsp-archiver/internal/bsp"
	"bsp-archiver/internal/classify"
	"bsp-archiver/internal/exclude"
	"bsp-archiver/internal/parser"
	"bsp-archiver/internal/resource"
	"bsp-archiver/internal/textutil"
	"bsp-archiver/internal/worker"

	"github.com/rs/zerolog/log"
)

// Stage names the step at which a map failed.
type Stage string

const (
	StageContainer Stage = "container"
	StageParse     Stage = "parse"
)

// MapError reports a failure that aborted one map.
type MapError struct {
	Map   string
	Stage Stage
	Err   error
}

func (e *MapError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Map, e.Stage, e.Err)
}

func (e *MapError) Unwrap() error { return e.Err }

// Dependency is a resolved resource path. Excluded is set when the path
// ships with the base game and need not be bundled.
type Dependency struct {
	Path     string `json:"path"`
	Excluded bool   `json:"excluded"`
}

// Result is the outcome for a single map.
type Result struct {
	Map          string       `json:"map"`
	Name         string       `json:"name"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
	Cached       bool         `json:"cached,omitempty"`
	Err          error        `json:"-"`
}

// Cache stores resolved entity dependencies keyed by a hash of the entity
// lump. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]string, bool)
	Set(ctx context.Context, key, mapName string, paths []string) error
}

// Options configures a Driver.
type Options struct {
	// Exclude is the base game set; nil means exclude.Default().
	Exclude *exclude.Set
	// NoExclude marks nothing as excluded.
	NoExclude bool
	// Cache is optional.
	Cache Cache
	// Workers is the batch concurrency; values below 1 mean 1.
	Workers int
}

// Driver resolves map dependencies.
type Driver struct {
	opts Options
	ws   *workspace
}

// workspace holds the registries one worker reuses across maps. found
// collects entity paths only, so what is cached never depends on the name
// of the map that filled the cache.
type workspace struct {
	deps  *resource.Registry
	found *resource.Registry
}

func newWorkspace() *workspace {
	return &workspace{
		deps:  resource.NewRegistry(),
		found: resource.NewRegistry(),
	}
}

// NewDriver creates a Driver.
func NewDriver(opts Options) *Driver {
	if opts.Exclude == nil {
		opts.Exclude = exclude.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Driver{
		opts: opts,
		ws:   newWorkspace(),
	}
}

// ProcessMap resolves the dependencies of the map at path. It is not safe
// to call concurrently on the same Driver; use ProcessBatch instead.
func (d *Driver) ProcessMap(ctx context.Context, path string) Result {
	return d.process(ctx, d.ws, path)
}

// ProcessBatch resolves every map in paths. A failed map is reported in its
// Result and does not stop the others. Results are in input order.
func (d *Driver) ProcessBatch(ctx context.Context, paths []string) ([]Result, error) {
	workspaces := make([]*workspace, d.opts.Workers)
	for i := range workspaces {
		workspaces[i] = newWorkspace()
	}

	pool := worker.NewPool(d.opts.Workers, func(ctx context.Context, workerID int, path string) (Result, error) {
		res := d.process(ctx, workspaces[workerID], path)
		return res, res.Err
	})

	tasks, err := pool.Execute(ctx, paths)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(tasks))
	for i, task := range tasks {
		results[i] = task.Result
		if task.Result.Map == "" {
			results[i] = Result{Map: task.Input, Name: MapName(task.Input), Err: task.Err}
		}
	}
	return results, nil
}

func (d *Driver) process(ctx context.Context, ws *workspace, path string) Result {
	name := MapName(path)
	res := Result{Map: path, Name: name}
	logger := log.With().Str("map", name).Logger()

	ents, err := bsp.OpenEntities(path)
	if err != nil {
		res.Err = &MapError{Map: path, Stage: StageContainer, Err: err}
		return res
	}

	var found []string
	key := textutil.Hash(ents)
	if paths, ok := d.cacheGet(ctx, key); ok {
		found = paths
		res.Cached = true
		logger.Debug().Int("paths", len(paths)).Msg("Using cached resolution")
	} else {
		ws.found.Clear()
		c := classify.New(ws.found).WithLogger(logger)
		if err := parser.Parse(ents, c); err != nil {
			res.Err = &MapError{Map: path, Stage: StageParse, Err: err}
			return res
		}
		found = ws.found.All()
		d.cacheSet(ctx, key, name, found)
	}

	ws.deps.Clear()
	for _, dep := range BaseDependencies(name) {
		ws.deps.Add(dep)
	}
	for _, p := range found {
		ws.deps.Add(p)
	}

	res.Dependencies = d.annotate(ws.deps.All())
	return res
}

func (d *Driver) cacheGet(ctx context.Context, key string) ([]string, bool) {
	if d.opts.Cache == nil {
		return nil, false
	}
	return d.opts.Cache.Get(ctx, key)
}

func (d *Driver) cacheSet(ctx context.Context, key, name string, paths []string) {
	if d.opts.Cache == nil {
		return
	}
	if err := d.opts.Cache.Set(ctx, key, name, paths); err != nil {
		log.Warn().Err(err).Str("map", name).Msg("Failed to cache resolution")
	}
}

func (d *Driver) annotate(paths []string) []Dependency {
	deps := make([]Dependency, len(paths))
	for i, p := range paths {
		deps[i] = Dependency{
			Path:     p,
			Excluded: !d.opts.NoExclude && d.opts.Exclude.Contains(p),
		}
	}
	return deps
}

// MapName returns the file name of path without its extension.
func MapName(path string) string {
	base := path
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		base = path[i+1:]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// BaseDependencies lists the files every map named name may come with: the
// map itself, its description and resource list, and its overview.
func BaseDependencies(name string) []string {
	if normalized, err := resource.Normalize(name); err == nil {
		name = normalized
	}
	return []string{
		"maps/" + name + ".bsp",
		"maps/" + name + ".txt",
		"maps/" + name + ".res",
		"overviews/" + name + ".bmp",
		"overviews/" + name + ".tga",
		"overviews/" + name + ".txt",
	}
}

// Summary counts batch outcomes.
type Summary struct {
	Succeeded int
	Failed    int
}

// Summarize counts successful and failed results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
		} else {
			s.Succeeded++
		}
	}
	return s
}
