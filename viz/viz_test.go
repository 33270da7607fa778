package viz

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineChart(t *testing.T) {
	c, err := LineChart("Top Emotions", []string{"joy", "fear"}, map[string][]float64{
		"joy":  {0.2, 1.4, -0.1},
		"fear": {0.5, 0.5, 0.5},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, c.X)
	require.Len(t, c.Series, 2)
	assert.Equal(t, []float64{0.2, 1, 0}, c.Series[0].Values)
	assert.Equal(t, Palette[0], c.Series[0].Color)
	assert.Equal(t, Palette[1], c.Series[1].Color)
}

func TestLineChartNoData(t *testing.T) {
	_, err := LineChart("t", nil, nil)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = LineChart("t", []string{"joy"}, map[string][]float64{"joy": {}})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLineChartLengthMismatch(t *testing.T) {
	_, err := LineChart("t", []string{"a", "b"}, map[string][]float64{"a": {1, 2}, "b": {1}})
	assert.Error(t, err)
}

func TestSVGIsWellFormed(t *testing.T) {
	c, err := LineChart(`Tom & "Jerry"`, []string{"joy"}, map[string][]float64{"joy": {0.5}})
	require.NoError(t, err)

	out := string(c.SVG())
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "Tom &amp; &#34;Jerry&#34;")
	assert.Contains(t, out, "<circle")
	assert.Contains(t, out, ">Segment<")

	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err != nil {
			assert.Equal(t, "EOF", err.Error())
			break
		}
	}
}
