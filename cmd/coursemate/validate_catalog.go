package main

import (
	"fmt"

	"github.com/jonathan/coursemate/internal/catalog"
	"github.com/spf13/cobra"
)

var validateDir string

var validateCatalogCmd = &cobra.Command{
	Use:   "validate-catalog",
	Short: "Validate a catalog directory",
	Long: `Load programs.json and every program file it names, checking each against
the embedded JSON schemas.`,
	RunE: runValidateCatalog,
}

func init() {
	validateCatalogCmd.Flags().StringVarP(&validateDir, "dir", "d", "", "Catalog directory containing programs.json")
	_ = validateCatalogCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(validateCatalogCmd)
}

func runValidateCatalog(cmd *cobra.Command, _ []string) error {
	store, err := catalog.LoadDir(validateDir)
	if err != nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation failed: %v\n", err)
		return fmt.Errorf("catalog %s is invalid: %w", validateDir, err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Validation passed: %d programs\n", len(store.Names()))
	for _, name := range store.Names() {
		program := store.Program(name)
		_, _ = fmt.Fprintf(out, "  %s (%d categories)\n", name, len(program.Categories))
	}
	return nil
}
