package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/guiltyguilty/disturb/internal/adapter/metrics"
	"github.com/guiltyguilty/disturb/internal/domain"
	"github.com/guiltyguilty/disturb/internal/platform/config"
	apperrors "github.com/guiltyguilty/disturb/internal/platform/errors"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type elementService interface {
	Elements() []domain.ElementInfo
	Element(id string) (domain.ElementInfo, error)
	DisturbElement(ctx context.Context, id string) (string, error)
}

type pageRenderer interface {
	Render(w io.Writer) error
}

// Dependencies are the collaborators a Server routes requests to.
// CentrifugeHandler and Clock are optional.
type Dependencies struct {
	Elements          elementService
	Page              pageRenderer
	WebSocketHandler  http.Handler
	CentrifugeHandler http.Handler
	Registry          *prometheus.Registry
	HealthChecks      []HealthCheck
	Clock             clockwork.Clock
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	elements elementService
	page     pageRenderer

	websocketHandler  http.Handler
	centrifugeHandler http.Handler
	metricsHandler    http.Handler
	httpMetrics       *metrics.HTTPMetrics

	healthChecks []HealthCheck
	clock        clockwork.Clock
	startTime    time.Time
}

func NewServer(cfg *config.Config, deps Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	deps.Registry.MustRegister(apperrors.HTTPErrorsTotal)

	srv := &Server{
		echo:              e,
		config:            cfg,
		elements:          deps.Elements,
		page:              deps.Page,
		websocketHandler:  deps.WebSocketHandler,
		centrifugeHandler: deps.CentrifugeHandler,
		metricsHandler:    metrics.Handler(deps.Registry),
		httpMetrics:       metrics.NewHTTPMetrics(deps.Registry),
		healthChecks:      deps.HealthChecks,
		clock:             clock,
		startTime:         clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP exposes the full middleware and route stack.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) handlePage(c echo.Context) error {
	var buf bytes.Buffer
	if err := s.page.Render(&buf); err != nil {
		return apperrors.InternalError("failed to render page", err)
	}
	if err := c.HTMLBlob(http.StatusOK, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send HTML response: %w", err)
	}
	return nil
}
