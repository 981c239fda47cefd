package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/iota-uz/orgnav/modules/orgnav/presentation/viewmodels"
)

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	info   = color.New(color.FgCyan)
	warn   = color.New(color.FgYellow)
)

func writeJSONLine(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return withCode(exitData, fmt.Errorf("json encode: %w", err))
	}
	return nil
}

func printLevelTable(w io.Writer, rows []viewmodels.LevelRow) {
	brand.Fprintf(w, "%-6s %8s %10s %8s\n", "LEVEL", "UNITS", "POSITIONS", "PEOPLE")
	var units, positions, people int
	for _, r := range rows {
		fmt.Fprintf(w, "%-6d %8d %10d %8d\n", r.Level, r.Units, r.Positions, r.People)
		units += r.Units
		positions += r.Positions
		people += r.People
	}
	subtle.Fprintf(w, "%-6s %8d %10d %8d\n", "total", units, positions, people)
}

func printOutline(w io.Writer, rows []viewmodels.OutlineRow) {
	for _, r := range rows {
		indent := strings.Repeat("  ", r.Depth)
		fmt.Fprintf(w, "%s%s", indent, r.Name)
		if r.ShortName != "" {
			info.Fprintf(w, " (%s)", r.ShortName)
		}
		subtle.Fprintf(w, "  %s · %d positions · %d people\n", r.Kind, r.Positions, r.People)
	}
}
