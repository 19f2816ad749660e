package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Parley - governed gateway for text-generation models",
	Long: `Parley is a governed gateway in front of hosted text-generation models.

Every request passes through a governance pipeline before any model is
invoked:
  - Input validation and prompt-injection flagging
  - Content-policy filtering of prompts and generated output
  - Per-caller fixed-window rate limiting
  - Bounded per-conversation history
  - Usage accounting with per-user reporting`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
