package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/emotionflow/emotion-timeline/clients"
	cfg "github.com/emotionflow/emotion-timeline/config"
	"github.com/emotionflow/emotion-timeline/metrics"
	"github.com/emotionflow/emotion-timeline/models"
	"github.com/emotionflow/emotion-timeline/textutil"
	"github.com/emotionflow/emotion-timeline/viz"
)

const ChartTitle = "Top Emotions Over Segments"

type Pipeline struct {
	cfg     *cfg.Root
	loader  *models.Loader
	http    *clients.HTTP
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewPipeline(c *cfg.Root, loader *models.Loader, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		cfg:     c,
		loader:  loader,
		http:    clients.NewHTTP(cfg.DurSeconds(c.Services.Visualization.Timeout)),
		metrics: m,
		now:     time.Now,
	}
}

// DefaultOptions derives run options from the configuration.
func (p *Pipeline) DefaultOptions() Options {
	return Options{
		Segmentation: textutil.Options{
			Method:            textutil.Method(p.cfg.Segmentation.Method),
			SentencesPerChunk: p.cfg.Segmentation.SentencesPerChunk,
			WordsPerChunk:     p.cfg.Segmentation.WordsPerChunk,
			WordBudget:        p.cfg.Segmentation.WordBudget,
		},
		SmoothWindow: p.cfg.Timeline.SmoothWindow,
		Smoothing:    Smoothing(p.cfg.Timeline.Smoothing),
		TopK:         p.cfg.Timeline.TopK,
	}
}

// Ready returns the classifier load error, if any.
func (p *Pipeline) Ready() error {
	_, err := p.loader.Load()
	return err
}

// Run segments text, scores every segment and derives the smoothed timeline
// and the top emotions.
func (p *Pipeline) Run(ctx context.Context, text string, o Options) (res *Result, err error) {
	defer func() { p.metrics.ObserveAnalysis(outcome(err)) }()

	if err := o.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	segments, err := textutil.Segment(text, o.Segmentation)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}

	cls, err := p.loader.Load()
	if err != nil {
		return nil, err
	}

	start := p.now()
	raw, err := cls.Classify(ctx, segments)
	if err != nil {
		return nil, fmt.Errorf("score segments: %w", err)
	}
	p.metrics.ObserveClassify(cls.Name(), len(segments), time.Since(start))
	if len(raw) != len(segments) {
		return nil, fmt.Errorf("score segments: %d results for %d segments", len(raw), len(segments))
	}

	scores := buildTable(raw)
	res = &Result{
		SessionID:   newSessionID(start),
		Backend:     cls.Name(),
		GeneratedAt: start,
		Options:     o,
		Segments:    segments,
		Scores:      scores,
		Smoothed:    applySmoothing(scores, o),
		Top:         TopEmotions(scores, o.TopK),
		Means:       MeanScores(scores),
	}

	log.WithFields(log.Fields{
		"session":  res.SessionID,
		"backend":  res.Backend,
		"segments": len(segments),
		"labels":   len(scores.Labels),
	}).Info("timeline scored")
	return res, nil
}

// Chart plots the smoothed scores of the top emotions.
func (r *Result) Chart() (*viz.Chart, error) {
	series := make(map[string][]float64, len(r.Top))
	for _, l := range r.Top {
		series[l] = r.Smoothed.Column(l)
	}
	return viz.LineChart(ChartTitle, r.Top, series)
}

// CSV is the downloadable details table.
func (r *Result) CSV() ([]byte, error) { return ExportCSV(r.Segments, r.Scores) }

// Persist stores the session under paths.outputs and, when a visualization
// service is configured, asks it to render the timeline too. A failing
// visualization service is logged, not returned.
func (p *Pipeline) Persist(ctx context.Context, res *Result) error {
	var svg []byte
	chart, err := res.Chart()
	switch {
	case err == nil:
		svg = chart.SVG()
	case !errors.Is(err, viz.ErrNoData):
		return err
	}

	dir, err := persist(p.cfg.Paths.Outputs, res, svg)
	if err != nil {
		return fmt.Errorf("persist %s: %w", res.SessionID, err)
	}
	entry := log.WithFields(log.Fields{"session": res.SessionID, "dir": dir})

	if url := p.cfg.Services.Visualization.URL; url != "" && chart != nil {
		req := clients.TimelineReq{Title: chart.Title, Segments: chart.X, Series: map[string][]float64{}, OutputDir: dir}
		for _, s := range chart.Series {
			req.Series[s.Label] = s.Values
		}
		out, err := p.http.GenerateTimeline(ctx, url, req)
		if err != nil {
			entry.WithError(err).Warn("visualization service failed")
		} else {
			res.ChartPath = out.Path
			if err := writeJSON(filepath.Join(dir, TimelineFile), res); err != nil {
				return fmt.Errorf("persist %s: %w", res.SessionID, err)
			}
		}
	}
	entry.Info("session persisted")
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyText), errors.Is(err, ErrNoSegments), errors.Is(err, ErrInvalidOption):
		return "rejected"
	case errors.Is(err, models.ErrNotReady):
		return "not_ready"
	default:
		return "error"
	}
}
