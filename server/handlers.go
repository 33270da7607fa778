package server

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/emotionflow/emotion-timeline/models"
	"github.com/emotionflow/emotion-timeline/orchestrator"
	"github.com/emotionflow/emotion-timeline/textutil"
	"github.com/emotionflow/emotion-timeline/viz"
)

const previewRows = 10

type pageData struct {
	Title    string
	Backend  string
	NotReady string
	Error    string
	Text     string
	Options  orchestrator.Options

	Result  *orchestrator.Result
	Chart   template.HTML
	Preview []orchestrator.TimelineRow
}

func (s *Server) page() pageData {
	d := pageData{
		Title:   "Emotion Timeline",
		Backend: string(models.Detect(s.cfg)),
		Options: s.pipeline.DefaultOptions(),
	}
	if d.Backend == "" {
		d.Backend = "no classifier"
	}
	if err := s.pipeline.Ready(); err != nil {
		d.NotReady = err.Error()
	}
	return d
}

func (s *Server) index(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", s.page())
}

// optionsFrom overlays form or JSON supplied values on the defaults.
// Empty values keep the default.
func optionsFrom(def orchestrator.Options, method, chunk, smooth, smoothing, topK string) (orchestrator.Options, error) {
	o := def
	if method != "" {
		o.Segmentation.Method = textutil.Method(method)
	}
	atoi := func(name, v string, set func(int)) error {
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, name+" must be a whole number")
		}
		set(n)
		return nil
	}
	if err := atoi("chunk", chunk, func(n int) { o.Segmentation = o.Segmentation.WithParam(n) }); err != nil {
		return o, err
	}
	if err := atoi("smooth", smooth, func(n int) { o.SmoothWindow = n }); err != nil {
		return o, err
	}
	if err := atoi("top_k", topK, func(n int) { o.TopK = n }); err != nil {
		return o, err
	}
	if smoothing != "" {
		o.Smoothing = orchestrator.Smoothing(smoothing)
	}
	return o, nil
}

// chunkField names the form input holding the size parameter of m. Each
// method has its own input so switching methods keeps a valid default.
func chunkField(m textutil.Method) string {
	switch m {
	case textutil.ByWords:
		return "words_per_chunk"
	case textutil.Bundled:
		return "word_budget"
	default:
		return "sentences_per_chunk"
	}
}

// readUpload returns the text of an uploaded .txt file. Invalid UTF-8 is dropped.
func readUpload(c echo.Context) (string, bool, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		// not multipart, or no file chosen
		return "", false, nil
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".txt") {
		return "", true, echo.NewHTTPError(http.StatusBadRequest, "Please upload a .txt file.")
	}
	f, err := fh.Open()
	if err != nil {
		return "", true, err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return "", true, err
	}
	return strings.ToValidUTF8(string(b), ""), true, nil
}

func statusOf(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, orchestrator.ErrEmptyText), errors.Is(err, orchestrator.ErrNoSegments), errors.Is(err, orchestrator.ErrInvalidOption):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func messageOf(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			return m
		}
	}
	return err.Error()
}

func (s *Server) analyzeForm(c echo.Context) error {
	d := s.page()
	d.Text = c.FormValue("text")

	fail := func(err error) error {
		d.Error = messageOf(err)
		return c.Render(statusOf(err), "index.html", d)
	}

	method := c.FormValue("method")
	if method == "" {
		method = string(d.Options.Segmentation.Method)
	}
	chunk := c.FormValue(chunkField(textutil.Method(method)))
	if chunk == "" {
		chunk = c.FormValue("chunk")
	}
	o, err := optionsFrom(d.Options, method, chunk, c.FormValue("smooth"), c.FormValue("smoothing"), c.FormValue("top_k"))
	d.Options = o
	if err != nil {
		return fail(err)
	}
	text, uploaded, err := readUpload(c)
	if err != nil {
		return fail(err)
	}
	if !uploaded {
		text = d.Text
	}

	res, err := s.analyze(c, text, o)
	if err != nil {
		return fail(err)
	}

	d.Result = res
	d.Preview = orchestrator.TimelineTable(res.Segments, res.Scores)
	if len(d.Preview) > previewRows {
		d.Preview = d.Preview[:previewRows]
	}
	if chart, err := res.Chart(); err == nil {
		// generated markup, labels are escaped by viz
		d.Chart = template.HTML(chart.SVG())
	}
	return c.Render(http.StatusOK, "result.html", d)
}

func (s *Server) analyze(c echo.Context, text string, o orchestrator.Options) (*orchestrator.Result, error) {
	ctx := c.Request().Context()
	res, err := s.pipeline.Run(ctx, text, o)
	if err != nil {
		return nil, err
	}
	if s.cfg.Server.Persist {
		if err := s.pipeline.Persist(ctx, res); err != nil {
			log.WithError(err).WithField("session", res.SessionID).Warn("could not persist session")
		}
	}
	s.sessions.put(res)
	return res, nil
}

func (s *Server) session(c echo.Context) (*orchestrator.Result, error) {
	res, ok := s.sessions.get(c.Param("id"))
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return res, nil
}

func (s *Server) sessionCSV(c echo.Context) error {
	res, err := s.session(c)
	if err != nil {
		return err
	}
	b, err := res.CSV()
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+orchestrator.CSVFile+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", b)
}

func (s *Server) sessionChart(c echo.Context) error {
	res, err := s.session(c)
	if err != nil {
		return err
	}
	chart, err := res.Chart()
	if errors.Is(err, viz.ErrNoData) {
		return echo.NewHTTPError(http.StatusNotFound, "No data to plot yet.")
	}
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/svg+xml", chart.SVG())
}

type TimelineRequest struct {
	Text      string `json:"text"`
	Method    string `json:"method"`
	Chunk     int    `json:"chunk"`
	Smooth    int    `json:"smooth"`
	Smoothing string `json:"smoothing"`
	TopK      int    `json:"top_k"`
}

type TimelineResponse struct {
	*orchestrator.Result
	Chart *viz.Chart `json:"chart,omitempty"`
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func (s *Server) apiTimeline(c echo.Context) error {
	var req TimelineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	o, err := optionsFrom(s.pipeline.DefaultOptions(), req.Method, itoa(req.Chunk), itoa(req.Smooth), req.Smoothing, itoa(req.TopK))
	if err != nil {
		return err
	}
	res, err := s.analyze(c, req.Text, o)
	if err != nil {
		return echo.NewHTTPError(statusOf(err), err.Error())
	}
	return c.JSON(http.StatusOK, timelineResponse(res))
}

func (s *Server) apiSession(c echo.Context) error {
	res, err := s.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, timelineResponse(res))
}

func timelineResponse(res *orchestrator.Result) TimelineResponse {
	out := TimelineResponse{Result: res}
	if chart, err := res.Chart(); err == nil {
		out.Chart = chart
	}
	return out
}
