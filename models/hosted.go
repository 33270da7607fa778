package models

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/emotionflow/emotion-timeline/clients"
)

// hostedClassifier calls a text-classification model on an inference
// endpoint, batch segments per request.
type hostedClassifier struct {
	http    *clients.HTTP
	model   clients.HFModel
	batch   int
	workers int
}

func (h *hostedClassifier) Name() string { return string(HuggingFace) }

func (h *hostedClassifier) Classify(ctx context.Context, segments []string) ([][]Score, error) {
	out := make([][]Score, len(segments))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)
	for start := 0; start < len(segments); start += h.batch {
		start, end := start, min(start+h.batch, len(segments))
		g.Go(func() error {
			res, err := h.http.Classify(ctx, h.model, segments[start:end], GoEmotionsLabels)
			if err != nil {
				return err
			}
			if len(res) != end-start {
				return fmt.Errorf("inference: got %d results for %d inputs", len(res), end-start)
			}
			for i, row := range res {
				out[start+i] = toScores(row)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func toScores(in []clients.EmoScore) []Score {
	out := make([]Score, len(in))
	for i, s := range in {
		out[i] = Score{Label: s.Label, Score: s.Score}
	}
	return out
}
