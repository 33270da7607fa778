// Package server serves the dashboard and the JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	cfg "github.com/emotionflow/emotion-timeline/config"
	"github.com/emotionflow/emotion-timeline/metrics"
	"github.com/emotionflow/emotion-timeline/orchestrator"
	"github.com/emotionflow/emotion-timeline/textutil"
)

//go:embed templates/*.html
var templatesFS embed.FS

type renderer struct{ t *template.Template }

func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.t.ExecuteTemplate(w, name, data)
}

func newRenderer() (*renderer, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"fmt3":     func(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) },
		"truncate": textutil.Truncate,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &renderer{t: t}, nil
}

type Server struct {
	cfg      *cfg.Root
	pipeline *orchestrator.Pipeline
	metrics  *metrics.Metrics
	sessions *store
	e        *echo.Echo
}

func New(c *cfg.Root, p *orchestrator.Pipeline, m *metrics.Metrics) (*Server, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	s := &Server{cfg: c, pipeline: p, metrics: m, sessions: newStore(c.Server.MaxSessions)}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = r
	e.HTTPErrorHandler = s.errorHandler

	e.Use(s.accessLog)
	if c.Server.UploadLimitMB > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", c.Server.UploadLimitMB)))
	}
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/readyz", s.readyz)
	if m != nil && c.Server.Metrics {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	e.GET("/", s.index)
	e.POST("/analyze", s.analyzeForm)
	e.GET("/sessions/:id/csv", s.sessionCSV)
	e.GET("/sessions/:id/chart.svg", s.sessionChart)
	e.GET("/api/v1/sessions/:id", s.apiSession)
	e.POST("/api/v1/timeline", s.apiTimeline)

	s.e = e
	return s, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.e }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", s.cfg.Server.Addr).Info("dashboard listening")
		errc <- s.e.Start(s.cfg.Server.Addr)
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.e.Shutdown(shutdownCtx)
	}
}

func (s *Server) accessLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			// let the error handler set the final status before logging
			c.Error(err)
		}
		req, res := c.Request(), c.Response()
		d := time.Since(start)
		path := c.Path()
		if path == "" {
			path = req.URL.Path
		}
		s.metrics.ObserveAPICall(req.Method, path, strconv.Itoa(res.Status), d)
		log.WithFields(log.Fields{
			"method":  req.Method,
			"path":    req.URL.Path,
			"status":  res.Status,
			"latency": d.String(),
		}).Debug("HTTP request")
		return nil
	}
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if code >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"error": msg})
}

func (s *Server) readyz(c echo.Context) error {
	if err := s.pipeline.Ready(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusOK)
}
