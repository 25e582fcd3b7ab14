package errmag

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"
)

const maxBarWidth = 50

// PlotSummaryTerminal draws one horizontal bar per leaf, scaled by mean error.
func PlotSummaryTerminal(w io.Writer, rows []LeafSummary, title string) {
	if len(rows) == 0 {
		fmt.Fprintf(w, "\n%s: no results\n", title)
		return
	}

	means := make([]float64, len(rows))
	for i, row := range rows {
		means[i] = row.Mean
	}
	widths := MinMaxScale(means)
	minMean := floats.Min(means)
	maxMean := floats.Max(means)

	labels := make([]string, len(rows))
	labelWidth := len("Scale/Method")
	for i, row := range rows {
		labels[i] = fmt.Sprintf("%s/%s", row.Scale, row.Method)
		labelWidth = max(labelWidth, utf8.RuneCountInString(labels[i]))
	}

	fmt.Fprintf(w, "\n%s (Mean Error per Leaf):\n", title)
	fmt.Fprintf(w, "%-*s | Mean     | Bar Chart\n", labelWidth, "Scale/Method")
	fmt.Fprintf(w, "%s-|----------|%s\n", strings.Repeat("-", labelWidth), strings.Repeat("-", maxBarWidth))

	for i, row := range rows {
		var barWidth int
		if maxMean != minMean {
			barWidth = int(widths[i] * float64(maxBarWidth))
		} else {
			barWidth = maxBarWidth / 2
		}

		bar := strings.Repeat("█", barWidth)
		if barWidth == 0 {
			bar = "▏"
		}

		fmt.Fprintf(w, "%-*s | %.6f | %s (max %.4f)\n", labelWidth, labels[i], row.Mean, bar, row.Max)
	}

	fmt.Fprintf(w, "\nScale: Min=%.6f, Max=%.6f\n", minMean, maxMean)
	fmt.Fprintf(w, "Bar width represents relative mean error (0 to %d chars)\n", maxBarWidth)
}

// MinMaxScale maps values onto [0, 1]; a constant input maps to all zeros.
func MinMaxScale(values []float64) []float64 {
	result := make([]float64, len(values))
	copy(result, values)
	if len(result) == 0 {
		return result
	}

	lo := floats.Min(result)
	hi := floats.Max(result)

	if hi != lo {
		floats.AddConst(-lo, result)
		floats.Scale(1.0/(hi-lo), result)
	} else {
		floats.Scale(0, result)
	}

	return result
}
