package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "wasmdom",
	Short: "Run wasm guests against a simulated DOM",
	Long: `wasmdom hosts wasm guests built for the browser's odin_env and
odin_dom import modules. It drives their frame loop, feeds them synthetic
UI events from scripts or a WebSocket, and prints the event record layout
guests decode.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// newLogger returns the CLI logger. Debug output needs --verbose.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
