// Package textutil cleans raw scripts and lyrics and cuts them into the
// segments that get scored.
package textutil

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Method string

const (
	BySentences Method = "sentences"
	ByWords     Method = "words"
	Bundled     Method = "bundled"
)

var (
	ErrUnknownMethod = errors.New("unknown segmentation method")
	ErrOutOfRange    = errors.New("segmentation parameter out of range")
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	sentenceEndRe = regexp.MustCompile(`[.?!]\s+`)
	// sentence end or a line break
	lineOrSentenceRe = regexp.MustCompile(`[.?!]\s+|\n+`)
)

// CleanText collapses whitespace runs into single spaces and trims the ends.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// splitAfter cuts s at every match of re, keeping a leading terminal
// punctuation mark with the piece before it.
func splitAfter(re *regexp.Regexp, s string) []string {
	var out []string
	last := 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		end := loc[0]
		if strings.ContainsRune(".?!", rune(s[loc[0]])) {
			end++
		}
		out = append(out, s[last:end])
		last = loc[1]
	}
	return append(out, s[last:])
}

// SplitBySentences groups up to maxPerChunk sentences into each chunk.
func SplitBySentences(text string, maxPerChunk int) []string {
	if maxPerChunk < 1 {
		maxPerChunk = 1
	}
	var chunk, chunks []string
	for _, sent := range splitAfter(sentenceEndRe, CleanText(text)) {
		if sent == "" {
			continue
		}
		chunk = append(chunk, sent)
		if len(chunk) >= maxPerChunk {
			chunks = append(chunks, strings.Join(chunk, " "))
			chunk = nil
		}
	}
	if len(chunk) > 0 {
		chunks = append(chunks, strings.Join(chunk, " "))
	}
	return chunks
}

// SplitByWords uses whitespace separated words as a stand-in for model tokens.
func SplitByWords(text string, chunkSize int) []string {
	if chunkSize < 1 {
		chunkSize = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	chunks := make([]string, 0, (len(words)+chunkSize-1)/chunkSize)
	for i := 0; i < len(words); i += chunkSize {
		end := min(i+chunkSize, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// SplitBundled splits on sentence ends and line breaks, then bundles
// sentences until each chunk holds at least wordBudget words (never fewer
// than MinWordBudget).
func SplitBundled(text string, wordBudget int) []string {
	budget := max(MinWordBudget, wordBudget)
	var (
		segs   []string
		bucket []string
		wc     int
	)
	for _, s := range splitAfter(lineOrSentenceRe, strings.TrimSpace(text)) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		bucket = append(bucket, s)
		wc += len(strings.Fields(s))
		if wc >= budget {
			segs = append(segs, strings.Join(bucket, " "))
			bucket, wc = nil, 0
		}
	}
	if len(bucket) > 0 {
		segs = append(segs, strings.Join(bucket, " "))
	}
	return segs
}

const (
	MinSentencesPerChunk = 1
	MaxSentencesPerChunk = 10
	MinWordsPerChunk     = 50
	MaxWordsPerChunk     = 1000
	MinWordBudget        = 20
	MaxWordBudget        = 300
)

type Options struct {
	Method            Method `json:"method"`
	SentencesPerChunk int    `json:"sentences_per_chunk,omitempty"`
	WordsPerChunk     int    `json:"words_per_chunk,omitempty"`
	WordBudget        int    `json:"word_budget,omitempty"`
}

func DefaultOptions() Options {
	return Options{Method: BySentences, SentencesPerChunk: 3, WordsPerChunk: 350, WordBudget: 60}
}

// Param is the size parameter relevant to the selected method.
func (o Options) Param() int {
	switch o.Method {
	case ByWords:
		return o.WordsPerChunk
	case Bundled:
		return o.WordBudget
	default:
		return o.SentencesPerChunk
	}
}

// WithParam returns a copy with the size parameter of the current method set.
func (o Options) WithParam(n int) Options {
	switch o.Method {
	case ByWords:
		o.WordsPerChunk = n
	case Bundled:
		o.WordBudget = n
	default:
		o.SentencesPerChunk = n
	}
	return o
}

func (o Options) Validate() error {
	check := func(name string, v, lo, hi int) error {
		if v < lo || v > hi {
			return fmt.Errorf("%w: %s=%d not in [%d, %d]", ErrOutOfRange, name, v, lo, hi)
		}
		return nil
	}
	switch o.Method {
	case BySentences:
		return check("sentences per chunk", o.SentencesPerChunk, MinSentencesPerChunk, MaxSentencesPerChunk)
	case ByWords:
		return check("words per chunk", o.WordsPerChunk, MinWordsPerChunk, MaxWordsPerChunk)
	case Bundled:
		return check("word budget", o.WordBudget, MinWordBudget, MaxWordBudget)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, o.Method)
	}
}

// Segment splits text with the configured method. Options are not range
// checked here; call Validate for user supplied values.
func Segment(text string, o Options) ([]string, error) {
	switch o.Method {
	case BySentences:
		return SplitBySentences(text, o.SentencesPerChunk), nil
	case ByWords:
		return SplitByWords(text, o.WordsPerChunk), nil
	case Bundled:
		return SplitBundled(text, o.WordBudget), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, o.Method)
	}
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
