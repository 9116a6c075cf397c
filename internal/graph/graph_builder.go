package graph

import (
	"context"
	"fmt"

	"bsp-archiver/internal/pipeline"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// GraphBuilder records which maps require which resources in Neo4j.
type GraphBuilder struct {
	driver neo4j.DriverWithContext
}

// NewGraphBuilder creates a new graph builder.
func NewGraphBuilder(driver neo4j.DriverWithContext) *GraphBuilder {
	return &GraphBuilder{driver: driver}
}

// EnsureSchema creates constraints on the Neo4j database.
func (gb *GraphBuilder) EnsureSchema(ctx context.Context) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (m:Map) REQUIRE m.name IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (r:Resource) REQUIRE r.path IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// RecordMap replaces the REQUIRES edges of a map with its current
// dependencies.
func (gb *GraphBuilder) RecordMap(ctx context.Context, res pipeline.Result) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	deps := make([]map[string]any, len(res.Dependencies))
	for i, d := range res.Dependencies {
		deps[i] = map[string]any{
			"path":     d.Path,
			"excluded": d.Excluded,
		}
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (m:Map {name: $name})
			SET m.file = $file
			WITH m
			OPTIONAL MATCH (m)-[old:REQUIRES]->()
			DELETE old
		`, map[string]any{"name": res.Name, "file": res.Map}); err != nil {
			return nil, err
		}

		_, err := tx.Run(ctx, `
			MATCH (m:Map {name: $name})
			UNWIND $deps AS dep
			MERGE (r:Resource {path: dep.path})
			SET r.excluded = dep.excluded
			MERGE (m)-[:REQUIRES]->(r)
		`, map[string]any{"name": res.Name, "deps": deps})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("record map %s: %w", res.Name, err)
	}

	log.Debug().Str("map", res.Name).Int("resources", len(deps)).Msg("Recorded map in graph")
	return nil
}
