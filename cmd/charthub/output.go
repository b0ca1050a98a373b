package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"charthub/internal/domain"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q, want table, json or yaml", s)
}

// printRepositories writes repos in the hub's order
func printRepositories(w io.Writer, format outputFormat, repos []domain.ChartRepository) error {
	if repos == nil {
		repos = []domain.ChartRepository{}
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(repos)

	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(repos); err != nil {
			return fmt.Errorf("failed to render YAML: %w", err)
		}
		return enc.Close()
	}

	if len(repos) == 0 {
		fmt.Fprintln(w, "No chart repositories found")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if isTerminal(w) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateColumns = false
		tw.Style().Options.SeparateHeader = false
	}

	tw.AppendHeader(table.Row{"Name", "Display name", "URL"})
	for _, repo := range repos {
		tw.AppendRow(table.Row{repo.Name, repo.DisplayName, repo.URL})
	}
	tw.Render()
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
