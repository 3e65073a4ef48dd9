// Package output renders tool results and the tool catalog for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Formats accepted by Print.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	paramStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	requiredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Print writes v in the given format.
func Print(w io.Writer, v any, format string) error {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return PrintJSON(w, v)
	case FormatYAML:
		return PrintYAML(w, v)
	default:
		return fmt.Errorf("unknown format %q (expected json or yaml)", format)
	}
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// PrintYAML writes v as YAML.
func PrintYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// CatalogEntry is one tool as shown by RenderCatalog.
type CatalogEntry struct {
	Name        string
	Description string
	Params      []string
	Required    []string
	Disabled    bool
}

// RenderCatalog writes a styled listing of tools.
func RenderCatalog(w io.Writer, entries []CatalogEntry) error {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d tools", len(entries))))
	b.WriteString("\n\n")

	for _, e := range entries {
		name := nameStyle.Render(e.Name)
		if e.Disabled {
			name += " " + disabledStyle.Render("(unsupported by your devices)")
		}
		b.WriteString(name + "\n")
		b.WriteString("  " + descStyle.Render(firstSentence(e.Description)) + "\n")
		if params := renderParams(e); params != "" {
			b.WriteString("  " + params + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderParams(e CatalogEntry) string {
	required := make(map[string]bool, len(e.Required))
	for _, r := range e.Required {
		required[r] = true
	}
	parts := make([]string, 0, len(e.Params))
	for _, p := range e.Params {
		if required[p] {
			parts = append(parts, requiredStyle.Render(p+"*"))
		} else {
			parts = append(parts, paramStyle.Render(p))
		}
	}
	return strings.Join(parts, paramStyle.Render(", "))
}

func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}
