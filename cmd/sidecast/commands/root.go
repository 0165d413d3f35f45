package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "sidecast",
		Short: "Sidecast - second-screen companion display for game frontends",
		Long: `Sidecast drives a second-screen companion display for a game browsing
frontend. It watches the frontend's signal files, tracks what the user is
browsing or playing, resolves artwork and video for the current position,
and pushes the result to a renderer over Socket.io.

Features:
  • File-based signal ingestion with debouncing
  • Layered media resolution with per-category fallbacks
  • Widget pages with live editing from a remote browser
  • Delayed background video with gameplay/screensaver gating
  • Audio arbitration between widgets, video, and ambient MPD music`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/sidecast/config.yaml)")
	rootCmd.PersistentFlags().Int("port", 0, "server port (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
