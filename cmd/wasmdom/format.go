package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/event"
)

// validFormats lists the layout output formats.
var validFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// layoutRow is one jsonl line of the layout command.
type layoutRow struct {
	Shape  string `json:"shape"`
	Width  int    `json:"word_width"`
	Name   string `json:"name"`
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
	Type   string `json:"type"`
}

// OutputLayout writes the field table of one record shape.
func OutputLayout(format, shape string, width int, fields []event.Field, size uint32, out io.Writer) error {
	switch format {
	case "jsonl":
		return outputLayoutJSON(shape, width, fields, out)
	case "pretty":
		return outputLayoutPretty(shape, width, fields, size, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func outputLayoutJSON(shape string, width int, fields []event.Field, out io.Writer) error {
	enc := json.NewEncoder(out)
	for _, f := range fields {
		row := layoutRow{Shape: shape, Width: width, Name: f.Name, Offset: f.Offset, Size: f.Size, Type: f.Type}
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

func outputLayoutPretty(shape string, width int, fields []event.Field, size uint32, out io.Writer) error {
	nameWidth := len("field")
	for _, f := range fields {
		if len(f.Name) > nameWidth {
			nameWidth = len(f.Name)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (word width %d, %d bytes)\n", shape, width, size)
	fmt.Fprintf(&sb, "  %-*s  %6s  %4s  %s\n", nameWidth, "field", "offset", "size", "type")
	for _, f := range fields {
		fmt.Fprintf(&sb, "  %-*s  %6d  %4d  %s\n", nameWidth, f.Name, f.Offset, f.Size, f.Type)
	}
	_, err := io.WriteString(out, sb.String())
	return err
}
