package ui

import (
	"fmt"
	"strings"
)

// subBlocks give sub-cell vertical resolution within a single row.
var subBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// sparkline renders a one-row trend of the series scaled to [minVal, maxVal],
// resampled to fit width. Latest value is annotated on the right.
func sparkline(data []float64, width int, minVal, maxVal float64) string {
	if width < 10 {
		width = 10
	}
	if maxVal <= minVal {
		maxVal = minVal + 1
	}
	if len(data) == 0 {
		return dimStyle.Render(strings.Repeat(" ", width))
	}

	resampled := resampleData(data, width-8)
	var sb strings.Builder
	for _, v := range resampled {
		frac := (v - minVal) / (maxVal - minVal)
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		idx := int(frac * float64(len(subBlocks)-1))
		sb.WriteRune(subBlocks[idx])
	}
	last := data[len(data)-1]
	return okStyle.Render(sb.String()) + dimStyle.Render(fmt.Sprintf(" %3.0f bpm", last))
}

// resampleData shrinks or stretches data to exactly n points.
func resampleData(data []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if len(data) == 0 {
		return make([]float64, n)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		srcIdx := i * len(data) / n
		out[i] = data[srcIdx]
	}
	return out
}
