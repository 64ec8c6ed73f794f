package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/tarifa/internal/pagination"
)

// WriteTable prints headers, a separator and rows as aligned columns.
func WriteTable(out io.Writer, headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = HeaderStyle.Render(h)
		rules[i] = strings.Repeat("─", max(len([]rune(h)), 4))
	}

	if _, err := fmt.Fprintln(w, strings.Join(styled, "\t")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := fmt.Fprintln(w, strings.Join(rules, "\t")); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush table writer: %w", err)
	}
	return nil
}

// FormatWindow renders pagination controls as plain text, e.g.
// "‹ 1 2 … 4 [5] 6 … 9 10 ›". Disabled controls are dimmed.
func FormatWindow(w pagination.Window) string {
	if w.Empty() {
		return ""
	}

	control := func(label string, disabled bool) string {
		if disabled {
			return SubtleStyle.Render(label)
		}
		return label
	}

	parts := []string{control("‹", w.Prev.Disabled)}
	for _, it := range w.Items {
		switch {
		case it.Ellipsis:
			parts = append(parts, "…")
		case it.Current:
			parts = append(parts, "["+strconv.Itoa(it.Page)+"]")
		default:
			parts = append(parts, strconv.Itoa(it.Page))
		}
	}
	parts = append(parts, control("›", w.Next.Disabled))
	return strings.Join(parts, " ")
}
