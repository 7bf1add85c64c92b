// Package main provides the entry point for the Cover Letter Studio HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cover_agent",
	Short: "Cover Letter Studio HTTP API Server",
	Long:  "Cover Letter Studio maintains a professional profile and generates tailored cover letters for job postings via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
