package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	TimelineFile = "timeline.json"
	CSVFile      = "emotion_timeline.csv"
	ChartFile    = "timeline.svg"
)

func newSessionID(now time.Time) string {
	short := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return "session_" + now.Format("20060102-150405") + "_" + short
}

func mkSessionDir(outputsRoot, sid string) (string, error) {
	dir := filepath.Join(outputsRoot, sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// persist writes timeline.json, the CSV export and the chart into
// outputsRoot/<session id>. The chart is skipped when there is nothing to plot.
func persist(outputsRoot string, res *Result, svg []byte) (string, error) {
	dir, err := mkSessionDir(outputsRoot, res.SessionID)
	if err != nil {
		return "", err
	}
	res.Dir = dir

	if err := writeJSON(filepath.Join(dir, TimelineFile), res); err != nil {
		return "", fmt.Errorf("write timeline: %w", err)
	}
	csvBytes, err := ExportCSV(res.Segments, res.Scores)
	if err != nil {
		return "", fmt.Errorf("export csv: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, CSVFile), csvBytes, 0o644); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	if svg != nil {
		if err := os.WriteFile(filepath.Join(dir, ChartFile), svg, 0o644); err != nil {
			return "", fmt.Errorf("write chart: %w", err)
		}
	}
	return dir, nil
}
