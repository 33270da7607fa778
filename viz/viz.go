// Package viz draws the emotion timeline as a self-contained SVG line chart.
package viz

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"math"
)

var ErrNoData = errors.New("no data to plot yet")

// Palette cycles for series beyond its length.
var Palette = []string{"#2563eb", "#f97316", "#16a34a", "#9333ea", "#ef4444", "#0ea5e9", "#22c55e", "#eab308"}

type Series struct {
	Label  string    `json:"label"`
	Color  string    `json:"color"`
	Values []float64 `json:"values"`
}

type Chart struct {
	Title  string   `json:"title"`
	XLabel string   `json:"x_label"`
	YLabel string   `json:"y_label"`
	X      []int    `json:"x"`
	Series []Series `json:"series"`
}

// LineChart builds a chart with one series per entry of values, keyed and
// ordered by labels. X runs 1..n and Y is clamped to [0, 1].
func LineChart(title string, labels []string, values map[string][]float64) (*Chart, error) {
	if len(labels) == 0 {
		return nil, ErrNoData
	}
	n := len(values[labels[0]])
	if n == 0 {
		return nil, ErrNoData
	}
	c := &Chart{Title: title, XLabel: "Segment", YLabel: "Score", X: make([]int, n)}
	for i := range c.X {
		c.X[i] = i + 1
	}
	for i, label := range labels {
		vs := values[label]
		if len(vs) != n {
			return nil, fmt.Errorf("series %q has %d points, want %d", label, len(vs), n)
		}
		clamped := make([]float64, n)
		for j, v := range vs {
			clamped[j] = clamp01(v)
		}
		c.Series = append(c.Series, Series{Label: label, Color: Palette[i%len(Palette)], Values: clamped})
	}
	return c, nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

const (
	width   = 800
	height  = 420
	padL    = 56
	padR    = 20
	padT    = 40
	padB    = 90
	plotW   = width - padL - padR
	plotH   = height - padT - padB
	legendY = height - 28
)

func (c *Chart) xPos(i int) float64 {
	if len(c.X) == 1 {
		return padL + plotW/2
	}
	return padL + float64(i)*plotW/float64(len(c.X)-1)
}

func yPos(v float64) float64 { return padT + (1-v)*plotH }

// SVG renders the chart with axes, a title and a legend.
func (c *Chart) SVG() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" font-family="sans-serif" font-size="12">`+"\n", width, height, width, height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`+"\n", width, height)
	fmt.Fprintf(&b, `<text x="%d" y="24" text-anchor="middle" font-size="16">%s</text>`+"\n", width/2, html.EscapeString(c.Title))

	// y grid
	for _, v := range []float64{0, 0.25, 0.5, 0.75, 1} {
		y := yPos(v)
		fmt.Fprintf(&b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#e5e7eb"/>`+"\n", padL, y, padL+plotW, y)
		fmt.Fprintf(&b, `<text x="%d" y="%.1f" text-anchor="end" dominant-baseline="middle">%.2f</text>`+"\n", padL-6, y, v)
	}
	// axes
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#374151"/>`+"\n", padL, padT, padL, padT+plotH)
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#374151"/>`+"\n", padL, padT+plotH, padL+plotW, padT+plotH)

	step := max(1, len(c.X)/10)
	for i, x := range c.X {
		if i%step != 0 && i != len(c.X)-1 {
			continue
		}
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" text-anchor="middle">%d</text>`+"\n", c.xPos(i), padT+plotH+16, x)
	}
	fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle">%s</text>`+"\n", padL+plotW/2, padT+plotH+36, html.EscapeString(c.XLabel))
	fmt.Fprintf(&b, `<text x="14" y="%d" text-anchor="middle" transform="rotate(-90 14 %d)">%s</text>`+"\n", padT+plotH/2, padT+plotH/2, html.EscapeString(c.YLabel))

	for _, s := range c.Series {
		fmt.Fprintf(&b, `<polyline fill="none" stroke="%s" stroke-width="2" points="`, s.Color)
		for i, v := range s.Values {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%.1f,%.1f", c.xPos(i), yPos(v))
		}
		b.WriteString(`"/>` + "\n")
		if len(s.Values) == 1 {
			fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`+"\n", c.xPos(0), yPos(s.Values[0]), s.Color)
		}
	}

	// legend
	x := padL
	for _, s := range c.Series {
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="12" height="12" fill="%s"/>`+"\n", x, legendY-10, s.Color)
		fmt.Fprintf(&b, `<text x="%d" y="%d">%s</text>`+"\n", x+16, legendY, html.EscapeString(s.Label))
		x += 28 + 7*len(s.Label)
	}
	b.WriteString("</svg>\n")
	return b.Bytes()
}
