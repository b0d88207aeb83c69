// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

// =============================================================================
// Icon.Render Tests
// =============================================================================

func TestIcon_Render(t *testing.T) {
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError, IconArrow} {
		if got := icon.Render(); !strings.Contains(got, string(icon)) {
			t.Errorf("%q.Render() = %q, want it to contain the icon", icon, got)
		}
	}
}

// =============================================================================
// FormatCost Tests
// =============================================================================

func TestFormatCost(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{3, "3"},
		{12, "12"},
		{2.5, "2.5"},
		{0.125, "0.125"},
		{math.Inf(1), "∞"},
		{math.NaN(), "NaN"},
	}

	for _, tt := range tests {
		if got := FormatCost(tt.in); got != tt.want {
			t.Errorf("FormatCost(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// =============================================================================
// Printer Tests
// =============================================================================

func TestPrinter_PlainMessages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	p.Title("ignored")
	p.Success("done")
	p.Warning("careful")
	p.Error("broken")

	want := "OK: done\nWARN: careful\nERROR: broken\n"
	if buf.String() != want {
		t.Errorf("plain output = %q, want %q", buf.String(), want)
	}
	if !p.Plain() {
		t.Error("Plain() = false, want true")
	}
}

func TestPrinter_StyledMessages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	p.Title("Estimate")
	p.Success("done")

	out := buf.String()
	if !strings.Contains(out, "Estimate") {
		t.Errorf("title missing: %q", out)
	}
	if !strings.Contains(out, string(IconSuccess)) || !strings.Contains(out, "done") {
		t.Errorf("success line missing: %q", out)
	}
}

func TestPrinter_KeyValues(t *testing.T) {
	pairs := [][2]string{{"value", "3"}, {"passes", "4"}}

	var plain bytes.Buffer
	NewPrinter(&plain, true).KeyValues("Estimate", pairs)
	if plain.String() != "value\t3\npasses\t4\n" {
		t.Errorf("plain KeyValues = %q", plain.String())
	}

	var styled bytes.Buffer
	NewPrinter(&styled, false).KeyValues("Estimate", pairs)
	for _, want := range []string{"Estimate", "value", "passes", "╭"} {
		if !strings.Contains(styled.String(), want) {
			t.Errorf("styled KeyValues missing %q:\n%s", want, styled.String())
		}
	}
}

// =============================================================================
// RenderTable Tests
// =============================================================================

func TestRenderTable_Plain(t *testing.T) {
	got := RenderTable([]string{"domain", "h"}, [][]string{{"chain", "5"}, {"unreachable", "∞"}}, true)
	want := "domain\th\nchain\t5\nunreachable\t∞"
	if got != want {
		t.Errorf("RenderTable(plain) = %q, want %q", got, want)
	}
}

func TestRenderTable_Styled(t *testing.T) {
	got := RenderTable([]string{"domain", "h"}, [][]string{{"chain", "5"}, {"unreachable", "∞"}}, false)
	for _, want := range []string{"domain", "chain", "unreachable", "∞", "╭", "╯"} {
		if !strings.Contains(got, want) {
			t.Errorf("styled table missing %q:\n%s", want, got)
		}
	}
}

func TestRenderTable_NoRows(t *testing.T) {
	if got := RenderTable([]string{"a", "b"}, nil, true); got != "a\tb" {
		t.Errorf("RenderTable(no rows) = %q", got)
	}
}
