package models

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/emotionflow/emotion-timeline/clients"
)

// serviceClassifier fans segments out to the emotion service, one /detect
// call per segment.
type serviceClassifier struct {
	http    *clients.HTTP
	url     string
	workers int
}

func (s *serviceClassifier) Name() string { return string(Service) }

func (s *serviceClassifier) Classify(ctx context.Context, segments []string) ([][]Score, error) {
	out := make([][]Score, len(segments))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, text := range segments {
		i, text := i, text
		g.Go(func() error {
			emo, err := s.http.Emotion(ctx, s.url, text)
			if err != nil {
				return fmt.Errorf("segment %d: %w", i+1, err)
			}
			out[i] = toScores(emo.Emotions)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
