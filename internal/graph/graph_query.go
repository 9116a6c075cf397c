package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// SharedResource is a resource required by several maps.
type SharedResource struct {
	Path     string   `json:"path"`
	Excluded bool     `json:"excluded"`
	Maps     []string `json:"maps"`
}

// GraphQuerier queries the map dependency graph.
type GraphQuerier struct {
	driver neo4j.DriverWithContext
}

// NewGraphQuerier creates a new graph querier.
func NewGraphQuerier(driver neo4j.DriverWithContext) *GraphQuerier {
	return &GraphQuerier{driver: driver}
}

// SharedResources returns resources required by at least minMaps maps,
// most shared first.
func (gq *GraphQuerier) SharedResources(ctx context.Context, minMaps int) ([]SharedResource, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (m:Map)-[:REQUIRES]->(r:Resource)
		WITH r, collect(m.name) AS maps
		WHERE size(maps) >= $min
		RETURN r.path AS path, coalesce(r.excluded, false) AS excluded, maps
		ORDER BY size(maps) DESC, path
	`, map[string]any{"min": minMaps})
	if err != nil {
		return nil, fmt.Errorf("query shared resources: %w", err)
	}

	var shared []SharedResource
	for result.Next(ctx) {
		record := result.Record()
		path, _ := record.Get("path")
		excluded, _ := record.Get("excluded")
		maps, _ := record.Get("maps")

		sr := SharedResource{Path: fmt.Sprintf("%v", path)}
		if b, ok := excluded.(bool); ok {
			sr.Excluded = b
		}
		if list, ok := maps.([]any); ok {
			for _, m := range list {
				sr.Maps = append(sr.Maps, fmt.Sprintf("%v", m))
			}
		}
		shared = append(shared, sr)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read shared resources: %w", err)
	}

	log.Debug().Int("resources", len(shared)).Msg("Graph query complete")
	return shared, nil
}

// MapsRequiring returns the names of maps that require path.
func (gq *GraphQuerier) MapsRequiring(ctx context.Context, path string) ([]string, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (m:Map)-[:REQUIRES]->(:Resource {path: $path})
		RETURN m.name AS name
		ORDER BY name
	`, map[string]any{"path": path})
	if err != nil {
		return nil, fmt.Errorf("query maps requiring %s: %w", path, err)
	}

	var names []string
	for result.Next(ctx) {
		name, _ := result.Record().Get("name")
		names = append(names, fmt.Sprintf("%v", name))
	}
	return names, result.Err()
}
