package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/guiltyguilty/disturb/internal/domain"
	"github.com/guiltyguilty/disturb/internal/platform/config"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

// --- Mock implementations ---

type mockElements struct {
	elementsFn func() []domain.ElementInfo
	elementFn  func(id string) (domain.ElementInfo, error)
	disturbFn  func(ctx context.Context, id string) (string, error)
}

func (m *mockElements) Elements() []domain.ElementInfo {
	if m.elementsFn != nil {
		return m.elementsFn()
	}
	return nil
}

func (m *mockElements) Element(id string) (domain.ElementInfo, error) {
	if m.elementFn != nil {
		return m.elementFn(id)
	}
	return domain.ElementInfo{}, domain.ErrElementNotFound
}

func (m *mockElements) DisturbElement(ctx context.Context, id string) (string, error) {
	if m.disturbFn != nil {
		return m.disturbFn(ctx, id)
	}
	return "", domain.ErrElementNotFound
}

type stringPage string

func (p stringPage) Render(w io.Writer) error {
	_, err := io.WriteString(w, string(p))
	return err
}

type failingPage struct{}

func (failingPage) Render(io.Writer) error { return errors.New("render failed") }

// --- Test server builder ---

type testServerOption func(*Dependencies)

func withHealthChecks(checks ...HealthCheck) testServerOption {
	return func(d *Dependencies) { d.HealthChecks = checks }
}

func withPage(p pageRenderer) testServerOption {
	return func(d *Dependencies) { d.Page = p }
}

func withClock(c clockwork.Clock) testServerOption {
	return func(d *Dependencies) { d.Clock = c }
}

func withCentrifuge(h http.Handler) testServerOption {
	return func(d *Dependencies) { d.CentrifugeHandler = h }
}

func newTestServer(t *testing.T, elements elementService, opts ...testServerOption) *Server {
	t.Helper()

	cfg := &config.Config{
		AppEnv:             "test",
		AppURL:             "http://localhost:8080",
		Port:               "0",
		MarkerClass:        "disturb",
		WebSocketRateLimit: 100,
	}
	deps := Dependencies{
		Elements: elements,
		Page:     stringPage(`<html><body><p class="disturb" data-disturb-id="0">hello</p></body></html>`),
		WebSocketHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusSwitchingProtocols)
		}),
		Registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return NewServer(cfg, deps)
}
