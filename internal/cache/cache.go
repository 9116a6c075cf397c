package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS resolved_dependencies (
	hash       TEXT PRIMARY KEY,
	map_name   TEXT NOT NULL,
	paths      TEXT[] NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// store persists resolutions keyed by entity lump hash.
type store interface {
	get(ctx context.Context, hash string) ([]string, error)
	upsert(ctx context.Context, hash, mapName string, paths []string) error
	list(ctx context.Context) (map[string][]string, error)
}

// ResolutionCache provides in-memory + PostgreSQL-backed caching of the
// dependencies resolved from a map's entity lump.
type ResolutionCache struct {
	store  store
	mu     sync.RWMutex
	memory map[string][]string // hash → resolved paths
}

// NewResolutionCache creates a cache backed by PostgreSQL. A nil pool keeps
// the cache in memory only.
func NewResolutionCache(pool *pgxpool.Pool) *ResolutionCache {
	c := &ResolutionCache{memory: make(map[string][]string)}
	if pool != nil {
		c.store = &pgStore{pool: pool}
	}
	return c
}

// EnsureSchema creates the cache table if it does not exist.
func (c *ResolutionCache) EnsureSchema(ctx context.Context) error {
	pg, ok := c.store.(*pgStore)
	if !ok {
		return nil
	}
	if _, err := pg.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}
	return nil
}

// Get retrieves cached paths for hash.
func (c *ResolutionCache) Get(ctx context.Context, hash string) ([]string, bool) {
	c.mu.RLock()
	if v, ok := c.memory[hash]; ok {
		c.mu.RUnlock()
		return v, true
	}
	c.mu.RUnlock()

	if c.store == nil {
		return nil, false
	}

	paths, err := c.store.get(ctx, hash)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Warn().Err(err).Str("hash", hash).Msg("Cache lookup failed")
		}
		return nil, false
	}

	c.mu.Lock()
	c.memory[hash] = paths
	c.mu.Unlock()

	return paths, true
}

// Set stores paths in memory and in PostgreSQL.
func (c *ResolutionCache) Set(ctx context.Context, hash, mapName string, paths []string) error {
	stored := make([]string, len(paths))
	copy(stored, paths)

	c.mu.Lock()
	c.memory[hash] = stored
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.upsert(ctx, hash, mapName, stored); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Preload loads all cached resolutions into memory.
func (c *ResolutionCache) Preload(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	rows, err := c.store.list(ctx)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for hash, paths := range rows {
		c.memory[hash] = paths
	}

	log.Info().Int("count", len(rows)).Msg("Preloaded resolution cache")
	return nil
}

type pgStore struct {
	pool *pgxpool.Pool
}

func (s *pgStore) get(ctx context.Context, hash string) ([]string, error) {
	var paths []string
	err := s.pool.QueryRow(ctx,
		`SELECT paths FROM resolved_dependencies WHERE hash = $1`, hash,
	).Scan(&paths)
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *pgStore) upsert(ctx context.Context, hash, mapName string, paths []string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO resolved_dependencies (hash, map_name, paths, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (hash) DO UPDATE
		SET map_name = EXCLUDED.map_name, paths = EXCLUDED.paths, updated_at = now()
	`, hash, mapName, paths)
	return err
}

func (s *pgStore) list(ctx context.Context) (map[string][]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT hash, paths FROM resolved_dependencies`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var hash string
		var paths []string
		if err := rows.Scan(&hash, &paths); err != nil {
			return nil, err
		}
		out[hash] = paths
	}
	return out, rows.Err()
}
