package models

import (
	"context"
	"strings"

	"github.com/blevesearch/segment"
)

// LexiconLabels lists the keyword lexicon emotions in display order.
var LexiconLabels = []string{"joy", "anger", "sadness", "fear", "surprise", "trust", "disgust", "love"}

var lexiconWords = map[string][]string{
	"joy":      {"happy", "joy", "glad", "delight", "smile", "cheer", "love", "grateful", "bliss"},
	"anger":    {"angry", "furious", "rage", "mad", "annoyed", "betrayed", "hate"},
	"sadness":  {"sad", "down", "cry", "tears", "hurt", "lonely", "grief", "broken"},
	"fear":     {"afraid", "scared", "fear", "terrified", "anxious", "worry", "panic"},
	"surprise": {"surprised", "shocked", "astonished", "unexpected", "sudden", "wow"},
	"trust":    {"trust", "faith", "rely", "depend", "secure", "safe", "confident"},
	"disgust":  {"disgust", "gross", "nausea", "repulse", "revolt", "vile"},
	"love":     {"love", "adore", "dear", "beloved", "fond", "cherish", "sweetheart"},
}

// lexiconFloor keeps a single keyword in a short line from scoring 1.0.
const lexiconFloor = 8

// LexiconClassifier is an offline keyword scorer: matches over
// max(8, tokens), clamped to 1. It needs no model and is meant for demos.
type LexiconClassifier struct {
	index map[string][]string // word -> labels
}

func NewLexicon() *LexiconClassifier {
	idx := map[string][]string{}
	for _, label := range LexiconLabels {
		for _, w := range lexiconWords[label] {
			idx[w] = append(idx[w], label)
		}
	}
	return &LexiconClassifier{index: idx}
}

func (l *LexiconClassifier) Name() string { return string(Lexicon) }

func (l *LexiconClassifier) Classify(ctx context.Context, segments []string) ([][]Score, error) {
	out := make([][]Score, len(segments))
	for i, s := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scores, err := l.score(s)
		if err != nil {
			return nil, err
		}
		out[i] = scores
	}
	return out, nil
}

func (l *LexiconClassifier) score(text string) ([]Score, error) {
	tokens, err := Words(text)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, t := range tokens {
		for _, label := range l.index[t] {
			counts[label]++
		}
	}
	denom := float64(max(lexiconFloor, len(tokens)))
	out := make([]Score, len(LexiconLabels))
	for i, label := range LexiconLabels {
		out[i] = Score{Label: label, Score: min(1, float64(counts[label])/denom)}
	}
	return out, nil
}

// Words returns the lower-cased letter tokens of text using Unicode word
// boundaries, so "don't" stays one token and punctuation is dropped.
func Words(text string) ([]string, error) {
	seg := segment.NewWordSegmenter(strings.NewReader(strings.ToLower(text)))
	var out []string
	for seg.Segment() {
		if seg.Type() == segment.Letter {
			out = append(out, seg.Text())
		}
	}
	return out, seg.Err()
}
