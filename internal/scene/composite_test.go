package scene

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func TestCrossfadeEndpoints(t *testing.T) {
	base := "base1\nbase2\nbase3"
	over := "over1\nover2\nover3"
	if got := Crossfade(base, over, 0, 5, 3); got != base {
		t.Fatalf("opacity 0 = %q, want base", got)
	}
	if got := Crossfade(base, over, 1, 5, 3); got != over {
		t.Fatalf("opacity 1 = %q, want over", got)
	}
	if got := Crossfade(base, over, 7, 5, 3); got != over {
		t.Fatalf("opacity is clamped, got %q", got)
	}
}

func TestCrossfadeRevealsMoreRowsAsOpacityGrows(t *testing.T) {
	base := strings.TrimSuffix(strings.Repeat("-\n", 16), "\n")
	over := strings.TrimSuffix(strings.Repeat("#\n", 16), "\n")
	prev := 0
	for _, o := range []float64{0, 0.125, 0.25, 0.5, 0.75, 1} {
		n := strings.Count(Crossfade(base, over, o, 1, 16), "#")
		if n < prev {
			t.Fatalf("opacity %v revealed %d rows, fewer than %d", o, n, prev)
		}
		prev = n
	}
	if prev != 16 {
		t.Fatalf("full opacity revealed %d rows", prev)
	}
}

func TestCrossfadeFitsCanvas(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("a much longer styled line")
	out := Crossfade(styled, "x", 0.5, 10, 4)
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	for i, l := range lines {
		if w := ansi.StringWidth(l); w != 10 {
			t.Fatalf("line %d width = %d, want 10", i, w)
		}
	}
}

func TestCrossfadeEmptyCanvas(t *testing.T) {
	if got := Crossfade("a", "b", 0.5, 0, 10); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
