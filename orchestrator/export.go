package orchestrator

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// TimelineRow is one line of the details table.
type TimelineRow struct {
	Segment int       `json:"segment"`
	Text    string    `json:"text"`
	Scores  []float64 `json:"scores"`
}

// TimelineTable pairs each segment with its scores, numbering from 1.
func TimelineTable(segments []string, t ScoreTable) []TimelineRow {
	rows := make([]TimelineRow, len(segments))
	for i, s := range segments {
		rows[i] = TimelineRow{Segment: i + 1, Text: s}
		if i < len(t.Rows) {
			rows[i].Scores = t.Rows[i]
		}
	}
	return rows
}

// ExportCSV writes segment, text and one column per label.
func ExportCSV(segments []string, t ScoreTable) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	header := append([]string{"segment", "text"}, t.Labels...)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range TimelineTable(segments, t) {
		rec := make([]string, 0, len(header))
		rec = append(rec, strconv.Itoa(r.Segment), r.Text)
		for j := range t.Labels {
			v := 0.0
			if j < len(r.Scores) {
				v = r.Scores[j]
			}
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return b.Bytes(), w.Error()
}
