// Package main provides the interview_coach CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logMode    string
)

var rootCmd = &cobra.Command{
	Use:   "interview_coach",
	Short: "Interview answer feedback service",
	Long:  "interview_coach transcribes spoken interview answers, asks a generative model to critique them, and stores a complete, consistent feedback document for each answer.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "Log mode: development or production (overrides config)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
