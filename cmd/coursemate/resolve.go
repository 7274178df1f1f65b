package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/coursemate/internal/config"
	"github.com/jonathan/coursemate/internal/courses"
	"github.com/jonathan/coursemate/internal/observability"
	"github.com/jonathan/coursemate/internal/requirements"
	"github.com/jonathan/coursemate/internal/types"
	"github.com/spf13/cobra"
)

var (
	resolveProgram string
	resolveCourses string
	resolveJSON    bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the outstanding requirements for a program",
	Long: `Normalize a comma-separated list of completed courses and print which
requirement categories of the program still need units, and from which courses.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveProgram, "program", "p", "", "Program name (see 'coursemate programs')")
	resolveCmd.Flags().StringVarP(&resolveCourses, "courses", "c", "", "Completed courses, comma separated (e.g. \"cmput 174, MATH 144\")")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Print JSON instead of formatted boxes")
	rootCmd.AddCommand(resolveCmd)
}

type resolveOutput struct {
	Program     string                        `json:"program"`
	Completed   []types.CourseCode            `json:"completed"`
	Outstanding types.OutstandingRequirements `json:"outstanding"`
}

func runResolve(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := openCatalog(cfg)
	if err != nil {
		return err
	}

	if resolveProgram == "" {
		return fmt.Errorf("--program is required")
	}
	program := store.Program(resolveProgram)
	if program == nil {
		return fmt.Errorf("unknown program %q", resolveProgram)
	}

	completed := courses.Normalize(resolveCourses)
	outstanding := requirements.Resolve(program, completed)

	if resolveJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resolveOutput{
			Program:     program.Name,
			Completed:   completed.Codes(),
			Outstanding: outstanding,
		})
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintCompleted(program.Name, completed)
	printer.PrintOutstanding(outstanding)
	return nil
}
