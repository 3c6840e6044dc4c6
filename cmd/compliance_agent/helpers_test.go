package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// getBinaryPath returns the path to the compliance_agent binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "compliance_agent"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'make build'", binaryPath)
	}

	return binaryPath
}

// newRunCommand builds a throwaway command carrying the run flags and parses args into f.
func newRunCommand(t *testing.T, f *runFlags, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "run"}
	f.register(cmd)
	cmd.Flags().StringVarP(&f.outDir, "out", "o", "", "")
	cmd.Flags().IntVar(&f.maxConcurrency, "max-concurrency", 0, "")
	cmd.Flags().IntVar(&f.maxRetries, "max-retries", 0, "")
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

const sampleRequest = `prompt: GDPR documentation for our EU SaaS product
success_criteria:
  - Covers Article 30
blueprint:
  - title: Privacy Policy
    format: html
  - title: ROPA Register
    format: xlsx
    depends_on: [Privacy Policy]
`

func writeRequest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "request.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// withoutEnv returns the environment minus the given variables.
func withoutEnv(keys ...string) []string {
	var env []string
	for _, e := range os.Environ() {
		skip := false
		for _, k := range keys {
			if len(e) > len(k) && e[:len(k)+1] == k+"=" {
				skip = true
				break
			}
		}
		if !skip {
			env = append(env, e)
		}
	}
	return env
}
