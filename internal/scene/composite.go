package scene

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Row order of an 8-step ordered dither. Neighbouring rows switch far
// apart in time so the fade reads as a dissolve rather than a wipe.
var ditherOrder = [8]int{0, 4, 2, 6, 1, 5, 3, 7}

// Crossfade renders over on top of base at the given opacity. Terminal
// cells have no alpha, so opacity selects which rows already show over.
// At 0 the result is base, at 1 it is over.
func Crossfade(base, over string, opacity float64, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	opacity = clamp01(opacity)
	under := splitToLines(base, height)
	top := splitToLines(over, height)
	out := make([]string, height)
	for i := 0; i < height; i++ {
		line := under[i]
		if opacity >= rowThreshold(i) {
			line = top[i]
		}
		out[i] = padRightANSI(line, width)
	}
	return strings.Join(out, "\n")
}

func rowThreshold(row int) float64 {
	return float64(ditherOrder[row%len(ditherOrder)]+1) / float64(len(ditherOrder))
}

func splitToLines(s string, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

func padRightANSI(s string, width int) string {
	s = ansi.Truncate(s, width, "")
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
