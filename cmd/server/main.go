package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/centrifugal/centrifuge"
	"github.com/guiltyguilty/disturb/internal/adapter/httpserver"
	"github.com/guiltyguilty/disturb/internal/adapter/metrics"
	"github.com/guiltyguilty/disturb/internal/adapter/websocket"
	"github.com/guiltyguilty/disturb/internal/app"
	"github.com/guiltyguilty/disturb/internal/disturb"
	"github.com/guiltyguilty/disturb/internal/page"
	"github.com/guiltyguilty/disturb/internal/platform/config"
	"github.com/guiltyguilty/disturb/internal/platform/logging"
	"github.com/guiltyguilty/disturb/internal/platform/version"
	"github.com/guiltyguilty/disturb/web"
	"github.com/jonboulle/clockwork"
)

const (
	clientScript    = "/static/disturb.js"
	shutdownTimeout = 10 * time.Second
)

func runGracefulShutdown(srv *httpserver.Server, rt *app.Runtime, hub *websocket.Hub, node *centrifuge.Node) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		rt.Stop()
		hub.Stop()

		if err := node.Shutdown(shutdownCtx); err != nil {
			slog.Error("Centrifuge node shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func loadPage(path string) (*page.Document, error) {
	if path == "" {
		return page.Parse(bytes.NewReader(web.DefaultPage))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() { _ = f.Close() }()

	return page.Parse(f)
}

func setupNode(doc *page.Document, wsMetrics *metrics.WebSocketMetrics, logLevel string) *centrifuge.Node {
	node, err := websocket.NewNode(doc.Snapshot, wsMetrics, logLevel)
	if err != nil {
		slog.Error("Failed to create centrifuge node", "error", err)
		os.Exit(1)
	}
	if err := node.Run(); err != nil {
		slog.Error("Failed to run centrifuge node", "error", err)
		os.Exit(1)
	}
	return node
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "version", version.Get().String(), "env", cfg.AppEnv, "port", cfg.Port)

	doc, err := loadPage(cfg.PagePath)
	if err != nil {
		slog.Error("Failed to load page", "path", cfg.PagePath, "error", err)
		os.Exit(1)
	}
	doc.AppendScript(clientScript)

	reg := metrics.NewRegistry()
	wsMetrics := metrics.NewWebSocketMetrics(reg)
	disturbMetrics := metrics.NewDisturbMetrics(reg)

	hub := websocket.NewHub(doc.Snapshot, cfg.MaxWebSocketConnections, wsMetrics)
	node := setupNode(doc, wsMetrics, cfg.LogLevel)
	doc.SetPublisher(websocket.Fanout{hub, websocket.NewPublisher(node, wsMetrics)})

	defaults := app.ElementDefaults{
		Rate:         cfg.DisturbRate,
		RestoreDelay: cfg.DisturbRestoreDelay,
		Alphabet:     cfg.DisturbAlphabet,
	}
	rt, err := app.Start(context.Background(), doc, cfg.MarkerClass, defaults,
		app.WithClock(clock),
		app.WithRecorder(disturbMetrics),
	)
	if err != nil {
		slog.Error("Failed to start disturb service", "marker_class", cfg.MarkerClass, "error", err)
		os.Exit(1)
	}

	checkOrigin := websocket.NewCheckOrigin(cfg.AppURL, !cfg.IsProduction())
	srv := httpserver.NewServer(cfg, httpserver.Dependencies{
		Elements:          rt,
		Page:              doc,
		WebSocketHandler:  websocket.NewHandler(hub, checkOrigin),
		CentrifugeHandler: centrifuge.NewWebsocketHandler(node, centrifuge.WebsocketConfig{CheckOrigin: checkOrigin}),
		Registry:          reg,
		HealthChecks: []httpserver.HealthCheck{
			{Name: "disturb_service", Check: func(context.Context) error {
				if rt.Service().State() == disturb.StateStopped {
					return errors.New("disturb service stopped")
				}
				return nil
			}},
		},
		Clock: clock,
	})

	done := runGracefulShutdown(srv, rt, hub, node)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
