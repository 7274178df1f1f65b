// Package main provides the coursemate CLI: the HTTP server plus commands for
// resolving requirements and building prerequisite graphs locally.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "coursemate",
	Short: "Degree requirement resolver and prerequisite graph builder",
	Long: `coursemate compares a student's completed courses with the requirements of a
degree program and builds the prerequisite graph of everything left to take.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (flags override its values)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
