package main

import (
	"context"
	"fmt"

	"github.com/jonathan/coursemate/internal/config"
	"github.com/jonathan/coursemate/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that resolves submissions and answers prerequisite
lookups at /api/{course} from the configured source.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	store, err := openCatalog(cfg)
	if err != nil {
		return err
	}

	source, closeSource, err := openSource(context.Background(), cfg)
	if err != nil {
		return err
	}

	lookup, err := newLookuper(cfg, cfg.LookupBaseURL, source)
	if err != nil {
		closeSource()
		return err
	}

	srv, err := server.New(server.Config{
		Port:              cfg.Port,
		Catalog:           store,
		Source:            source,
		Lookup:            lookup,
		LookupConcurrency: cfg.LookupConcurrency,
		OnShutdown:        []func(){closeSource},
	})
	if err != nil {
		closeSource()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
