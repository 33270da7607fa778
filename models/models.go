// Package models resolves which emotion classifier backend is usable and
// loads it once per process.
package models

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/emotionflow/emotion-timeline/clients"
	cfg "github.com/emotionflow/emotion-timeline/config"
)

// GoEmotionsLabels is the label count of the GoEmotions taxonomy; asking the
// hosted model for this many returns every score.
const GoEmotionsLabels = 28

type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier scores segments. The result holds one score list per segment,
// in input order.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, segments []string) ([][]Score, error)
}

type Backend string

const (
	None        Backend = ""
	HuggingFace Backend = "huggingface"
	Service     Backend = "service"
	Lexicon     Backend = "lexicon"
)

var ErrNotReady = errors.New("classifier not ready")

// Detect resolves the configured backend. "auto" prefers the hosted model when
// a token is present, then the emotion service.
func Detect(c *cfg.Root) Backend {
	switch c.Model.Backend {
	case string(HuggingFace):
		return HuggingFace
	case string(Service):
		return Service
	case string(Lexicon):
		return Lexicon
	}
	if c.Model.Token != "" {
		return HuggingFace
	}
	if c.Services.Emotion.URL != "" {
		return Service
	}
	return None
}

// Ready reports whether Detect finds a backend with everything it needs.
func Ready(c *cfg.Root) bool {
	return check(c, Detect(c)) == nil
}

func check(c *cfg.Root, b Backend) error {
	switch b {
	case HuggingFace:
		if c.Model.Token == "" {
			return fmt.Errorf("%w: missing inference token, set HF_TOKEN or model.token", ErrNotReady)
		}
		if c.Model.ID == "" {
			return fmt.Errorf("%w: model.id is empty", ErrNotReady)
		}
	case Service:
		if c.Services.Emotion.URL == "" {
			return fmt.Errorf("%w: services.emotion.url is empty", ErrNotReady)
		}
	case Lexicon:
	default:
		return fmt.Errorf("%w: no backend configured, set HF_TOKEN for hosted inference or services.emotion.url for the emotion service", ErrNotReady)
	}
	return nil
}

// Loader builds the classifier on first use and hands out the same result,
// classifier or error, on every later call.
type Loader struct {
	cfg  *cfg.Root
	once sync.Once
	cls  Classifier
	err  error
}

func NewLoader(c *cfg.Root) *Loader { return &Loader{cfg: c} }

func (l *Loader) Backend() Backend { return Detect(l.cfg) }

func (l *Loader) Load() (Classifier, error) {
	l.once.Do(func() {
		l.cls, l.err = New(l.cfg)
		entry := log.WithField("backend", string(l.Backend()))
		if l.err != nil {
			entry.WithError(l.err).Warn("emotion classifier unavailable")
			return
		}
		entry.WithField("model", l.cfg.Model.ID).Info("emotion classifier loaded")
	})
	return l.cls, l.err
}

// New builds a classifier for the detected backend without caching.
func New(c *cfg.Root) (Classifier, error) {
	b := Detect(c)
	if err := check(c, b); err != nil {
		return nil, err
	}
	switch b {
	case HuggingFace:
		return &hostedClassifier{
			http:    clients.NewHTTP(cfg.DurSeconds(c.Model.Timeout)),
			model:   clients.HFModel{Endpoint: c.Model.Endpoint, ID: c.Model.ID, Revision: c.Model.Revision, Token: c.Model.Token},
			batch:   max(1, c.Model.Batch),
			workers: max(1, c.Model.Workers),
		}, nil
	case Service:
		return &serviceClassifier{
			http:    clients.NewHTTP(cfg.DurSeconds(c.Services.Emotion.Timeout)),
			url:     c.Services.Emotion.URL,
			workers: max(1, c.Model.Workers),
		}, nil
	default:
		return NewLexicon(), nil
	}
}
