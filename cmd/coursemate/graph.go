package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/coursemate/internal/config"
	"github.com/jonathan/coursemate/internal/observability"
	"github.com/jonathan/coursemate/internal/pipeline"
	"github.com/jonathan/coursemate/internal/types"
	"github.com/spf13/cobra"
)

var (
	graphProgram     string
	graphCourses     string
	graphAPI         string
	graphDedupe      bool
	graphConcurrency int
	graphOut         string
	graphVerbose     bool
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build the prerequisite graph for a submission",
	Long: `Resolve the outstanding requirements of a program, look up the prerequisites
of every outstanding and completed course, and write the node/edge JSON.

Lookups go to --api (or lookup_base_url from the config) when set, otherwise to
the configured prerequisite source in-process.`,
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().StringVarP(&graphProgram, "program", "p", "", "Program name (see 'coursemate programs')")
	graphCmd.Flags().StringVarP(&graphCourses, "courses", "c", "", "Completed courses, comma separated")
	graphCmd.Flags().StringVar(&graphAPI, "api", "", "Base URL of the prerequisite lookup service")
	graphCmd.Flags().BoolVar(&graphDedupe, "dedupe", false, "Merge duplicate nodes and collapse repeated edges")
	graphCmd.Flags().IntVar(&graphConcurrency, "concurrency", 0, "Parallel prerequisite lookups (0 or 1 is sequential)")
	graphCmd.Flags().StringVarP(&graphOut, "out", "o", "", "Write the graph JSON to this file instead of stdout")
	graphCmd.Flags().BoolVarP(&graphVerbose, "verbose", "v", false, "Print step summaries to stderr")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.Resolve(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.LookupConcurrency = graphConcurrency
	}
	baseURL := cfg.LookupBaseURL
	if graphAPI != "" {
		baseURL = graphAPI
	}

	store, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	if graphProgram != "" && !store.Has(graphProgram) {
		return fmt.Errorf("unknown program %q", graphProgram)
	}

	source, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	lookup, err := newLookuper(cfg, baseURL, source)
	if err != nil {
		return err
	}

	req := pipeline.Request{
		ResolveRequest: types.ResolveRequest{
			Program:     graphProgram,
			Courses:     graphCourses,
			Dedupe:      graphDedupe,
			Concurrency: cfg.LookupConcurrency,
		},
	}
	if graphVerbose || cfg.Verbose {
		req.Printer = observability.NewPrinter(cmd.ErrOrStderr())
	}

	result, err := pipeline.Run(ctx, store, lookup, req)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result.Response(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	if graphOut == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(graphOut, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d nodes and %d edges to %s\n", len(result.Graph.Nodes), len(result.Graph.Edges), graphOut)
	return nil
}
