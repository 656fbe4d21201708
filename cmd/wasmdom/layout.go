package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/event"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/memory"
)

var (
	// layout flags
	layoutWidth  int
	layoutKind   string
	layoutFormat string
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the event record layout guests decode",
	Long: `Print the field table (name, offset, size, type) of each event record
shape written by init_event_raw and get_gamepad_state.

Examples:
  # Every shape for 32-bit guests, as JSON Lines
  wasmdom layout

  # Keyboard record for 64-bit guests
  wasmdom layout --word-width 8 --kind keyboard --format pretty`,
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().IntVarP(&layoutWidth, "word-width", "w", 4,
		"Guest word width in bytes: 4 or 8")
	layoutCmd.Flags().StringVarP(&layoutKind, "kind", "k", "",
		"Record shape to print (default all): "+strings.Join(event.Shapes(), ", "))
	layoutCmd.Flags().StringVarP(&layoutFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")

	_ = layoutCmd.RegisterFlagCompletionFunc("kind", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return event.Shapes(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = layoutCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		formats := make([]string, 0, len(validFormats))
		for f := range validFormats {
			formats = append(formats, f)
		}
		sort.Strings(formats)
		return formats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	if !validFormats[layoutFormat] {
		return fmt.Errorf("unknown format: %s", layoutFormat)
	}
	width, err := memory.ParseWidth(layoutWidth)
	if err != nil {
		return err
	}

	shapes := event.Shapes()
	if layoutKind != "" {
		shapes = []string{layoutKind}
	}

	out := cmd.OutOrStdout()
	for i, shape := range shapes {
		fields, size, err := event.Describe(shape, width)
		if err != nil {
			return err
		}
		if i > 0 && layoutFormat == "pretty" {
			fmt.Fprintln(out)
		}
		if err := OutputLayout(layoutFormat, shape, layoutWidth, fields, size, out); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
	return nil
}
