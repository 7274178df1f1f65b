// Package graphdb stores course prerequisites in Neo4j as
// (:Course)-[:PREREQUISITE_OF]->(:Course) relationships.
package graphdb

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Runner executes a Cypher query and returns a fully buffered result.
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Executor runs queries against a Neo4j database through the official driver.
type Executor struct {
	driver   neo4j.DriverWithContext
	database string
}

// Connect creates a driver for uri and verifies connectivity.
func Connect(ctx context.Context, uri, username, password, database string) (*Executor, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach neo4j at %s: %w", uri, err)
	}
	return &Executor{driver: driver, database: database}, nil
}

// Run executes query with ExecuteQuery, which manages the session and
// transaction for each call.
func (e *Executor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(
		ctx,
		e.driver,
		query,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.database),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute neo4j query: %w", err)
	}
	return result, nil
}

// Close releases the driver.
func (e *Executor) Close(ctx context.Context) error {
	return e.driver.Close(ctx)
}
