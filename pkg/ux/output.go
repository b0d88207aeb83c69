// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux renders command output: styled for terminals, plain
// tab-separated text for scripts.
package ux

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Aleutian color palette - deep ocean teals and arctic waters
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // Bright teal - highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4") // Primary teal - headers
	ColorTealDeep    = lipgloss.Color("#16858E") // Deep teal - borders
	ColorSlate       = lipgloss.Color("#2C4A54") // Slate - muted text

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Infinite lipgloss.Style
	Box      lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Header:   lipgloss.NewStyle().Bold(true).Foreground(ColorTealPrimary).Padding(0, 1),
	Cell:     lipgloss.NewStyle().Padding(0, 1),
	Muted:    lipgloss.NewStyle().Foreground(ColorSlate),
	Success:  lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:  lipgloss.NewStyle().Foreground(ColorWarning),
	Error:    lipgloss.NewStyle().Foreground(ColorError),
	Infinite: lipgloss.NewStyle().Foreground(ColorWarning).Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Infinity is how an unreachable cost is shown.
const Infinity = "∞"

// FormatCost renders a heuristic value: integers without decimals, other
// finite values with up to three, +Inf as ∞.
func FormatCost(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return Infinity
	case math.IsNaN(v):
		return "NaN"
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// Printer writes command output to one writer.
//
// Plain printers emit no colors or borders: tables become tab-separated
// lines and messages get a "LEVEL:" prefix.
type Printer struct {
	w     io.Writer
	plain bool
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, plain bool) *Printer {
	return &Printer{w: w, plain: plain}
}

// Plain reports whether the printer emits plain text.
func (p *Printer) Plain() bool {
	return p.plain
}

// Title prints a styled title. Plain printers skip it.
func (p *Printer) Title(text string) {
	if p.plain {
		return
	}
	fmt.Fprintln(p.w, Styles.Title.Render(text))
}

// Success prints a message with a checkmark.
func (p *Printer) Success(text string) {
	if p.plain {
		fmt.Fprintf(p.w, "OK: %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
}

// Warning prints a warning message.
func (p *Printer) Warning(text string) {
	if p.plain {
		fmt.Fprintf(p.w, "WARN: %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
}

// Error prints an error message.
func (p *Printer) Error(text string) {
	if p.plain {
		fmt.Fprintf(p.w, "ERROR: %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
}

// KeyValues prints aligned "key: value" lines, in a box when styled.
func (p *Printer) KeyValues(title string, pairs [][2]string) {
	width := 0
	for _, kv := range pairs {
		width = max(width, len(kv[0]))
	}

	lines := make([]string, len(pairs))
	for i, kv := range pairs {
		if p.plain {
			lines[i] = kv[0] + "\t" + kv[1]
		} else {
			lines[i] = Styles.Muted.Render(fmt.Sprintf("%-*s", width, kv[0])) + "  " + kv[1]
		}
	}

	if p.plain {
		fmt.Fprintln(p.w, strings.Join(lines, "\n"))
		return
	}
	body := Styles.Title.Render(title) + "\n" + strings.Join(lines, "\n")
	fmt.Fprintln(p.w, Styles.Box.Render(body))
}

// Table prints rows under headers.
func (p *Printer) Table(headers []string, rows [][]string) {
	fmt.Fprintln(p.w, RenderTable(headers, rows, p.plain))
}

// RenderTable renders rows under headers. Plain tables are tab-separated
// with the header line first. Styled tables highlight ∞ cells.
func RenderTable(headers []string, rows [][]string, plain bool) string {
	if plain {
		var b strings.Builder
		b.WriteString(strings.Join(headers, "\t"))
		for _, r := range rows {
			b.WriteByte('\n')
			b.WriteString(strings.Join(r, "\t"))
		}
		return b.String()
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorTealDeep)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Styles.Header
			}
			if row >= 0 && row < len(rows) && col < len(rows[row]) && rows[row][col] == Infinity {
				return Styles.Infinite.Padding(0, 1)
			}
			return Styles.Cell
		})
	return t.String()
}
