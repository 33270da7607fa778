package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveAnalysis("ok")
	m.ObserveClassify("lexicon", 4, 10*time.Millisecond)
	m.ObserveAPICall("GET", "/", "200", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `emotion_timeline_analyses_total{outcome="ok"} 1`)
	assert.Contains(t, string(body), `emotion_timeline_segments_scored_total{backend="lexicon"} 4`)
	assert.Contains(t, string(body), "emotion_timeline_classify_seconds")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAnalysis("ok")
		m.ObserveClassify("x", 1, time.Second)
		m.ObserveAPICall("GET", "/", "200", time.Second)
	})
}
