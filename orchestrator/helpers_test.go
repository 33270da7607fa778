package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emotionflow/emotion-timeline/models"
)

func sampleTable() ScoreTable {
	return buildTable([][]models.Score{
		{{Label: "joy", Score: 0.9}, {Label: "anger", Score: 0.1}},
		{{Label: "joy", Score: 0.3}, {Label: "fear", Score: 0.6}},
		{{Label: "joy", Score: 0.0}, {Label: "anger", Score: 0.5}, {Label: "fear", Score: 0.3}},
	})
}

func TestBuildTableFillsMissingLabels(t *testing.T) {
	tbl := sampleTable()
	assert.Equal(t, []string{"anger", "fear", "joy"}, tbl.Labels)
	assert.Equal(t, [][]float64{
		{0.1, 0, 0.9},
		{0, 0.6, 0.3},
		{0.5, 0.3, 0},
	}, tbl.Rows)
	assert.Nil(t, tbl.Column("love"))
}

func TestMeanScoresAndTopEmotions(t *testing.T) {
	tbl := sampleTable()
	means := MeanScores(tbl)
	require.Len(t, means, 3)
	assert.Equal(t, "joy", means[0].Label)
	assert.InDelta(t, 0.4, means[0].Score, 1e-9)
	// anger and fear tie at 0.2 and keep label order
	assert.Equal(t, "anger", means[1].Label)
	assert.Equal(t, "fear", means[2].Label)

	assert.Equal(t, []string{"joy", "anger"}, TopEmotions(tbl, 2))
	assert.Equal(t, []string{"joy", "anger", "fear"}, TopEmotions(tbl, 10))
	assert.Empty(t, TopEmotions(ScoreTable{}, 5))
	assert.Empty(t, TopEmotions(tbl, 0))
	assert.Empty(t, TopEmotions(tbl, -1))
}

func TestRollingMean(t *testing.T) {
	tbl := ScoreTable{Labels: []string{"a"}, Rows: [][]float64{{1}, {3}, {5}, {7}}}

	got := RollingMean(tbl, 2)
	assert.Equal(t, [][]float64{{1}, {2}, {4}, {6}}, got.Rows)

	// window 1 and below leave the series alone
	assert.Equal(t, tbl.Rows, RollingMean(tbl, 1).Rows)
	assert.Equal(t, tbl.Rows, RollingMean(tbl, 0).Rows)

	// the input is not modified
	assert.Equal(t, [][]float64{{1}, {3}, {5}, {7}}, tbl.Rows)
}

func TestCenteredMean(t *testing.T) {
	tbl := ScoreTable{Labels: []string{"a"}, Rows: [][]float64{{1}, {3}, {5}, {7}}}

	got := CenteredMean(tbl, 3)
	assert.Equal(t, [][]float64{{2}, {3}, {5}, {6}}, got.Rows)
	assert.Equal(t, tbl.Rows, CenteredMean(tbl, 1).Rows)
	// even windows reach window/2 on each side
	assert.Equal(t, [][]float64{{2}, {3}, {5}, {6}}, CenteredMean(tbl, 2).Rows)
	assert.Equal(t, [][]float64{{3}, {4}, {4}, {5}}, CenteredMean(tbl, 4).Rows)
}

func TestExportCSV(t *testing.T) {
	tbl := ScoreTable{Labels: []string{"fear", "joy"}, Rows: [][]float64{{0.25, 0.5}, {0, 1}}}
	out, err := ExportCSV([]string{`She said "run", then left.`, "ok"}, tbl)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "segment,text,fear,joy", lines[0])
	assert.Equal(t, `1,"She said ""run"", then left.",0.25,0.5`, lines[1])
	assert.Equal(t, "2,ok,0,1", lines[2])
}

func TestTimelineTable(t *testing.T) {
	rows := TimelineTable([]string{"a", "b"}, sampleTable())
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Segment)
	assert.Equal(t, "b", rows[1].Text)
	assert.Equal(t, []float64{0, 0.6, 0.3}, rows[1].Scores)
}

func TestOptionsValidate(t *testing.T) {
	o := testOptions()
	assert.NoError(t, o.Validate())

	bad := o
	bad.SmoothWindow = 21
	assert.ErrorIs(t, bad.Validate(), ErrInvalidOption)

	bad = o
	bad.TopK = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidOption)

	bad = o
	bad.Smoothing = "gaussian"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidOption)

	bad = o
	bad.Segmentation.SentencesPerChunk = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidOption)
}
