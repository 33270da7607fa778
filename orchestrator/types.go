package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"github.com/emotionflow/emotion-timeline/textutil"
)

var (
	ErrEmptyText     = errors.New("please paste text or upload a .txt file")
	ErrNoSegments    = errors.New("no segments found, try a smaller chunk size")
	ErrInvalidOption = errors.New("invalid option")
)

type Smoothing string

const (
	Trailing Smoothing = "trailing" // rolling mean over the window ending at each segment
	Centered Smoothing = "centered" // moving average around each segment
)

const (
	MinSmoothWindow = 1
	MaxSmoothWindow = 20
	MinTopK         = 1
	MaxTopK         = 10
)

type Options struct {
	Segmentation textutil.Options `json:"segmentation"`
	SmoothWindow int              `json:"smooth_window"`
	Smoothing    Smoothing        `json:"smoothing"`
	TopK         int              `json:"top_k"`
}

func (o Options) Validate() error {
	if err := o.Segmentation.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	if o.SmoothWindow < MinSmoothWindow || o.SmoothWindow > MaxSmoothWindow {
		return fmt.Errorf("%w: smoothing window %d not in [%d, %d]", ErrInvalidOption, o.SmoothWindow, MinSmoothWindow, MaxSmoothWindow)
	}
	if o.TopK < MinTopK || o.TopK > MaxTopK {
		return fmt.Errorf("%w: top-k %d not in [%d, %d]", ErrInvalidOption, o.TopK, MinTopK, MaxTopK)
	}
	switch o.Smoothing {
	case Trailing, Centered:
	default:
		return fmt.Errorf("%w: smoothing %q", ErrInvalidOption, o.Smoothing)
	}
	return nil
}

// ScoreTable holds one row per segment and one column per label.
// Labels are sorted; a label the classifier did not return for a segment
// scores 0.
type ScoreTable struct {
	Labels []string    `json:"labels"`
	Rows   [][]float64 `json:"rows"`
}

func (t ScoreTable) Empty() bool { return len(t.Rows) == 0 || len(t.Labels) == 0 }

// Column returns the scores of label across segments, or nil.
func (t ScoreTable) Column(label string) []float64 {
	j := -1
	for i, l := range t.Labels {
		if l == label {
			j = i
			break
		}
	}
	if j < 0 {
		return nil
	}
	col := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		col[i] = row[j]
	}
	return col
}

type MeanScore struct {
	Label string  `json:"label"`
	Score float64 `json:"mean_score"`
}

type Result struct {
	SessionID   string      `json:"session_id"`
	Backend     string      `json:"backend"`
	GeneratedAt time.Time   `json:"generated_at"`
	Options     Options     `json:"options"`
	Segments    []string    `json:"segments"`
	Scores      ScoreTable  `json:"scores"`
	Smoothed    ScoreTable  `json:"smoothed"`
	Top         []string    `json:"top_emotions"`
	Means       []MeanScore `json:"mean_scores"`
	// set when persisted
	Dir       string `json:"dir,omitempty"`
	ChartPath string `json:"chart_path,omitempty"`
}
