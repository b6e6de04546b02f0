package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dshills/termkeys/internal/input/key"
)

func newParseCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse SPEC...",
		Short: "Show how key specs are understood",
		Example: `  keytrace parse "<C-S-q>" Ctrl+Q "<F12>" Enter
  keytrace parse "<U+0001>" " "`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(root.stdout, args)
		},
	}
}

var parseHeader = []string{"SPEC", "KEY", "NAME", "CODE", "MODIFIERS"}

// runParse prints one table row per spec. Invalid specs get an error row
// and make the command fail after the table is written.
func runParse(w io.Writer, specs []string) error {
	rows := [][]string{parseHeader}
	failed := 0
	for _, spec := range specs {
		ev, err := key.Parse(spec)
		if err != nil {
			failed++
			rows = append(rows, []string{quoteSpec(spec), "error: " + err.Error()})
			continue
		}
		rows = append(rows, []string{
			quoteSpec(spec),
			ev.VimString(),
			ev.String(),
			ev.Code.String(),
			ev.Modifiers.String(),
		})
	}

	if err := writeTable(w, rows); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d specs could not be parsed", failed, len(specs))
	}
	return nil
}

// quoteSpec quotes specs that would be invisible in a table.
func quoteSpec(spec string) string {
	if strings.TrimSpace(spec) != spec || spec == "" {
		return fmt.Sprintf("%q", spec)
	}
	return spec
}

// writeTable aligns columns by display width. The last cell of a row is
// never padded.
func writeTable(w io.Writer, rows [][]string) error {
	var widths []int
	for _, row := range rows {
		for i, cell := range row[:len(row)-1] {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
