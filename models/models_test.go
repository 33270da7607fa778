package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emotionflow/emotion-timeline/clients"
	cfg "github.com/emotionflow/emotion-timeline/config"
)

func testConfig(t *testing.T) *cfg.Root {
	t.Helper()
	c, err := cfg.Default()
	require.NoError(t, err)
	c.Model.Token = ""
	c.Services.Emotion.URL = ""
	return c
}

func TestDetect(t *testing.T) {
	c := testConfig(t)
	assert.Equal(t, None, Detect(c))
	assert.False(t, Ready(c))

	c.Services.Emotion.URL = "http://emotion"
	assert.Equal(t, Service, Detect(c))
	assert.True(t, Ready(c))

	c.Model.Token = "tok"
	assert.Equal(t, HuggingFace, Detect(c))

	c.Model.Backend = "lexicon"
	assert.Equal(t, Lexicon, Detect(c))
	assert.True(t, Ready(c))
}

func TestExplicitBackendWithoutSettingsIsNotReady(t *testing.T) {
	c := testConfig(t)
	c.Model.Backend = "huggingface"
	_, err := New(c)
	require.ErrorIs(t, err, ErrNotReady)
	assert.Contains(t, err.Error(), "HF_TOKEN")

	c.Model.Backend = "service"
	_, err = New(c)
	require.ErrorIs(t, err, ErrNotReady)
}

func TestLoaderCachesResult(t *testing.T) {
	c := testConfig(t)
	l := NewLoader(c)
	_, err := l.Load()
	require.ErrorIs(t, err, ErrNotReady)

	// later config changes are not picked up by a loader that already ran
	c.Model.Backend = "lexicon"
	_, err = l.Load()
	require.ErrorIs(t, err, ErrNotReady)

	l2 := NewLoader(c)
	a, err := l2.Load()
	require.NoError(t, err)
	b, err := l2.Load()
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, "lexicon", a.Name())
}

func TestLexiconClassifier(t *testing.T) {
	lex := NewLexicon()
	out, err := lex.Classify(context.Background(), []string{
		"I am so happy, I smile and love you!",
		"",
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	got := map[string]float64{}
	for _, s := range out[0] {
		got[s.Label] = s.Score
	}
	// 9 tokens; happy, smile, love hit joy; love hits love
	assert.InDelta(t, 3.0/9.0, got["joy"], 1e-9)
	assert.InDelta(t, 1.0/9.0, got["love"], 1e-9)
	assert.Zero(t, got["anger"])

	for _, s := range out[1] {
		assert.Zero(t, s.Score)
	}
	assert.Len(t, out[1], len(LexiconLabels))
}

func TestLexiconClampsToOne(t *testing.T) {
	out, err := NewLexicon().Classify(context.Background(), []string{strings.Repeat("rage ", 20)})
	require.NoError(t, err)
	for _, s := range out[0] {
		if s.Label == "anger" {
			assert.Equal(t, 1.0, s.Score)
		}
	}
}

func TestWords(t *testing.T) {
	words, err := Words("Don't STOP, 42 times... now!")
	require.NoError(t, err)
	assert.Equal(t, []string{"don't", "stop", "times", "now"}, words)
}

func TestServiceClassifierKeepsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req clients.EmoReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(clients.EmoResp{
			Emotions: []clients.EmoScore{{Label: req.Text, Score: 1}},
		})
	}))
	defer srv.Close()

	c := testConfig(t)
	c.Services.Emotion.URL = srv.URL
	c.Model.Workers = 3
	cls, err := New(c)
	require.NoError(t, err)

	segs := []string{"s1", "s2", "s3", "s4", "s5"}
	out, err := cls.Classify(context.Background(), segs)
	require.NoError(t, err)
	for i, row := range out {
		require.Len(t, row, 1)
		assert.Equal(t, segs[i], row[0].Label)
	}
}

func TestServiceClassifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testConfig(t)
	c.Services.Emotion.URL = srv.URL
	cls, err := New(c)
	require.NoError(t, err)

	_, err = cls.Classify(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "segment 1")
}

func TestHostedClassifierBatches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req clients.HFReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.LessOrEqual(t, len(req.Inputs), 2)
		out := make([][]clients.EmoScore, len(req.Inputs))
		for i, in := range req.Inputs {
			out[i] = []clients.EmoScore{{Label: "echo:" + in, Score: 0.5}}
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	c := testConfig(t)
	c.Model.Token = "tok"
	c.Model.Endpoint = srv.URL
	c.Model.Batch = 2
	cls, err := New(c)
	require.NoError(t, err)
	assert.Equal(t, "huggingface", cls.Name())

	out, err := cls.Classify(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
	assert.Equal(t, "echo:a", out[0][0].Label)
	assert.Equal(t, "echo:c", out[2][0].Label)
}

func TestHostedClassifierShortAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"joy","score":1}]]`))
	}))
	defer srv.Close()

	c := testConfig(t)
	c.Model.Token = "tok"
	c.Model.Endpoint = srv.URL
	cls, err := New(c)
	require.NoError(t, err)

	_, err = cls.Classify(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 1 results for 2 inputs")
}
