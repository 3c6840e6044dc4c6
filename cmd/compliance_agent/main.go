// Package main provides the entry point for the compliance document generation CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "compliance_agent",
	Short: "Multi-document compliance and marketing generation",
	Long: `compliance_agent turns a project request (prompt, optional blueprint and success criteria)
into a validated package of documents: it plans work items, generates them in dependency
order, renders each in its requested format, validates them individually and as a set,
and consolidates a delivery summary.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
