package orchestrator

import (
	"sort"

	"github.com/gonum/floats"

	"github.com/emotionflow/emotion-timeline/models"
)

// buildTable collects every label seen in raw and lays the scores out
// as a dense table.
func buildTable(raw [][]models.Score) ScoreTable {
	seen := map[string]struct{}{}
	for _, row := range raw {
		for _, s := range row {
			seen[s.Label] = struct{}{}
		}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	col := make(map[string]int, len(labels))
	for i, l := range labels {
		col[l] = i
	}
	rows := make([][]float64, len(raw))
	for i, row := range raw {
		rows[i] = make([]float64, len(labels))
		for _, s := range row {
			rows[i][col[s.Label]] = s.Score
		}
	}
	return ScoreTable{Labels: labels, Rows: rows}
}

// MeanScores averages each label over all segments, highest first. Ties keep
// label order.
func MeanScores(t ScoreTable) []MeanScore {
	if t.Empty() {
		return nil
	}
	out := make([]MeanScore, len(t.Labels))
	for i, l := range t.Labels {
		out[i] = MeanScore{Label: l, Score: floats.Sum(t.Column(l)) / float64(len(t.Rows))}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// TopEmotions returns the k labels with the highest mean score.
func TopEmotions(t ScoreTable, k int) []string {
	means := MeanScores(t)
	k = max(0, min(k, len(means)))
	out := make([]string, 0, k)
	for _, m := range means[:k] {
		out = append(out, m.Label)
	}
	return out
}

// RollingMean replaces each row with the mean of the window rows ending at
// it. Leading rows average over what is available.
func RollingMean(t ScoreTable, window int) ScoreTable {
	window = max(1, window)
	return smooth(t, func(i, n int) (int, int) {
		return max(0, i-window+1), i + 1
	})
}

// CenteredMean averages rows i-window/2 .. i+window/2, clipped to the table.
func CenteredMean(t ScoreTable, window int) ScoreTable {
	if window <= 1 {
		return smooth(t, func(i, n int) (int, int) { return i, i + 1 })
	}
	half := window / 2
	return smooth(t, func(i, n int) (int, int) {
		return max(0, i-half), min(n, i+half+1)
	})
}

func smooth(t ScoreTable, span func(i, n int) (int, int)) ScoreTable {
	out := ScoreTable{Labels: t.Labels, Rows: make([][]float64, len(t.Rows))}
	n := len(t.Rows)
	for i := range t.Rows {
		lo, hi := span(i, n)
		acc := make([]float64, len(t.Labels))
		for _, row := range t.Rows[lo:hi] {
			floats.Add(acc, row)
		}
		floats.Scale(1/float64(hi-lo), acc)
		out.Rows[i] = acc
	}
	return out
}

func applySmoothing(t ScoreTable, o Options) ScoreTable {
	if o.Smoothing == Centered {
		return CenteredMean(t, o.SmoothWindow)
	}
	return RollingMean(t, o.SmoothWindow)
}
