package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/coursemate/internal/catalog"
	"github.com/jonathan/coursemate/internal/config"
	"github.com/jonathan/coursemate/internal/db"
	"github.com/jonathan/coursemate/internal/graphdb"
	"github.com/jonathan/coursemate/internal/prereq"
)

// openCatalog loads the configured catalog directory, or the built-in one.
func openCatalog(cfg config.Config) (*catalog.Store, error) {
	if cfg.CatalogDir == "" {
		return catalog.Default()
	}
	store, err := catalog.LoadDir(cfg.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return store, nil
}

// openSource connects the configured prerequisite source. The returned
// function releases it.
func openSource(ctx context.Context, cfg config.Config) (prereq.Source, func(), error) {
	switch cfg.PrereqSource {
	case config.SourcePostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[setup] prerequisites from postgres")
		return database, database.Close, nil

	case config.SourceNeo4j:
		executor, err := graphdb.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[setup] prerequisites from neo4j at %s", cfg.Neo4jURI)
		closeFn := func() {
			if err := executor.Close(context.Background()); err != nil {
				log.Printf("[setup] failed to close neo4j driver: %v", err)
			}
		}
		return graphdb.NewStore(executor), closeFn, nil

	default:
		var (
			source *prereq.StaticSource
			err    error
		)
		if cfg.PrereqFixture != "" {
			source, err = prereq.LoadFixture(cfg.PrereqFixture)
		} else {
			source, err = prereq.DefaultStaticSource()
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load prerequisite fixture: %w", err)
		}
		return source, func() {}, nil
	}
}

// newLookuper returns the lookup used while assembling graphs: an HTTP
// client when baseURL is set, otherwise source queried in-process.
func newLookuper(cfg config.Config, baseURL string, source prereq.Source) (prereq.Lookuper, error) {
	if baseURL == "" {
		return prereq.SourceLookuper(source), nil
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, fmt.Errorf("invalid lookup timeout: %w", err)
	}
	opts := prereq.DefaultOptions()
	opts.Timeout = timeout
	return prereq.NewClient(baseURL, opts), nil
}
