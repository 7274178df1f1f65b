package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/coursemate/internal/config"
	"github.com/jonathan/coursemate/internal/db"
	"github.com/jonathan/coursemate/internal/graphdb"
	"github.com/jonathan/coursemate/internal/prereq"
	"github.com/jonathan/coursemate/internal/types"
	"github.com/spf13/cobra"
)

var (
	importIn     string
	importTarget string
)

var importPrereqsCmd = &cobra.Command{
	Use:   "import-prereqs",
	Short: "Load a prerequisite fixture into Postgres or Neo4j",
	Long: `Read a prerequisite fixture ({"<course>": {"<label>": [codes]}}) and store
every course in the target database, replacing what was there. Without --in the
built-in fixture is imported.`,
	RunE: runImportPrereqs,
}

func init() {
	importPrereqsCmd.Flags().StringVarP(&importIn, "in", "i", "", "Fixture file (default: built-in fixture)")
	importPrereqsCmd.Flags().StringVar(&importTarget, "target", "", "Target database: postgres or neo4j")
	_ = importPrereqsCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(importPrereqsCmd)
}

// prerequisiteWriter is the write side shared by the Postgres and Neo4j stores.
type prerequisiteWriter func(ctx context.Context, course types.CourseCode, groups types.PrerequisiteGroups) error

func runImportPrereqs(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.Resolve(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var fixture *prereq.StaticSource
	if importIn != "" {
		fixture, err = prereq.LoadFixture(importIn)
	} else {
		fixture, err = prereq.DefaultStaticSource()
	}
	if err != nil {
		return fmt.Errorf("failed to load fixture: %w", err)
	}

	var write prerequisiteWriter
	switch importTarget {
	case config.SourcePostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL (or database_url in the config) is required")
		}
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		write = database.UpsertPrerequisites

	case config.SourceNeo4j:
		if cfg.Neo4jURI == "" {
			return fmt.Errorf("NEO4J_URI (or neo4j_uri in the config) is required")
		}
		executor, err := graphdb.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
		if err != nil {
			return err
		}
		defer func() { _ = executor.Close(ctx) }()
		store := graphdb.NewStore(executor)
		if err := store.EnsureConstraints(ctx); err != nil {
			return err
		}
		write = store.SavePrerequisites

	default:
		return fmt.Errorf("unknown target %q (want postgres or neo4j)", importTarget)
	}

	n, err := importFixture(ctx, fixture, write)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported prerequisites for %d courses into %s\n", n, importTarget)
	return nil
}

// importFixture writes every course of fixture in fixture order.
func importFixture(ctx context.Context, fixture *prereq.StaticSource, write prerequisiteWriter) (int, error) {
	codes := fixture.Courses()
	for i, course := range codes {
		groups, err := fixture.Prerequisites(ctx, course)
		if err != nil {
			return i, err
		}
		if err := write(ctx, course, groups); err != nil {
			return i, fmt.Errorf("failed to import %s: %w", course, err)
		}
		log.Printf("[import] %d/%d %s", i+1, len(codes), course)
	}
	return len(codes), nil
}
