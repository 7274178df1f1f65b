package main

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
)

// execute runs the root command in-process with args and returns what it
// wrote to stdout. Flags are reset first so tests do not leak into each other.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Keep the environment from switching sources or catalogs under the tests.
	for _, key := range []string{
		"COURSEMATE_PREREQ_SOURCE", "COURSEMATE_PREREQ_FIXTURE", "COURSEMATE_CATALOG_DIR",
		"COURSEMATE_LOOKUP_BASE_URL", "COURSEMATE_LOOKUP_CONCURRENCY",
	} {
		t.Setenv(key, "")
	}

	resetFlags(rootCmd.PersistentFlags())
	for _, sub := range rootCmd.Commands() {
		resetFlags(sub.Flags())
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

func resetFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}
