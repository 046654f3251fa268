package websocket

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/centrifugal/centrifuge"
	"github.com/guiltyguilty/disturb/internal/adapter/metrics"
	"github.com/guiltyguilty/disturb/internal/domain"
)

// Channel carries text frames to centrifuge clients.
const Channel = "disturb:page"

// NewNode creates a centrifuge node for clients speaking the centrifuge
// protocol. Connections are anonymous, subscribed server-side to Channel and
// receive the current snapshot as connect data.
func NewNode(snapshot func() []domain.TextChange, wsMetrics *metrics.WebSocketMetrics, logLevel string) (*centrifuge.Node, error) {
	conf := centrifuge.Config{LogLevel: parseCentrifugeLogLevel(logLevel), LogHandler: slogHandler}
	node, err := centrifuge.New(conf)
	if err != nil {
		return nil, fmt.Errorf("create centrifuge node: %w", err)
	}

	node.OnConnecting(onConnecting(snapshot))
	node.OnConnect(onConnect(wsMetrics))

	return node, nil
}

func onConnecting(snapshot func() []domain.TextChange) func(ctx context.Context, e centrifuge.ConnectEvent) (centrifuge.ConnectReply, error) {
	return func(ctx context.Context, e centrifuge.ConnectEvent) (centrifuge.ConnectReply, error) {
		var elements []domain.TextChange
		if snapshot != nil {
			elements = snapshot()
		}
		data, err := encodeSnapshot(elements)
		if err != nil {
			slog.Error("Failed to encode snapshot", "client_id", e.ClientID, "error", err)
			return centrifuge.ConnectReply{}, centrifuge.DisconnectServerError
		}

		return centrifuge.ConnectReply{
			Credentials: &centrifuge.Credentials{},
			Data:        data,
			Subscriptions: map[string]centrifuge.SubscribeOptions{
				Channel: {},
			},
		}, nil
	}
}

func onConnect(wsMetrics *metrics.WebSocketMetrics) func(client *centrifuge.Client) {
	return func(client *centrifuge.Client) {
		slog.Debug("Centrifuge client connected", "client_id", client.ID())

		if wsMetrics != nil {
			wsMetrics.ActiveConnections.Inc()
		}

		client.OnDisconnect(func(e centrifuge.DisconnectEvent) {
			slog.Debug("Centrifuge client disconnected", "client_id", client.ID(), "reason", e.Reason)
			if wsMetrics != nil {
				wsMetrics.ActiveConnections.Dec()
			}
		})
	}
}

func slogHandler(entry centrifuge.LogEntry) {
	attrs := make([]any, 0, len(entry.Fields)*2)
	for k, v := range entry.Fields {
		attrs = append(attrs, k, v)
	}
	switch entry.Level {
	case centrifuge.LogLevelDebug, centrifuge.LogLevelTrace:
		slog.Debug(entry.Message, attrs...)
	case centrifuge.LogLevelInfo:
		slog.Info(entry.Message, attrs...)
	case centrifuge.LogLevelWarn:
		slog.Warn(entry.Message, attrs...)
	case centrifuge.LogLevelError:
		slog.Error(entry.Message, attrs...)
	case centrifuge.LogLevelNone:
		// EMPTY
	}
}

func parseCentrifugeLogLevel(level string) centrifuge.LogLevel {
	switch level {
	case "debug":
		return centrifuge.LogLevelDebug
	case "warn":
		return centrifuge.LogLevelWarn
	case "error":
		return centrifuge.LogLevelError
	default:
		return centrifuge.LogLevelInfo
	}
}

// Publisher forwards text changes to Channel. It implements
// domain.ChangePublisher.
type Publisher struct {
	node      *centrifuge.Node
	wsMetrics *metrics.WebSocketMetrics
}

func NewPublisher(node *centrifuge.Node, wsMetrics *metrics.WebSocketMetrics) *Publisher {
	return &Publisher{node: node, wsMetrics: wsMetrics}
}

func (p *Publisher) PublishTextChanged(change domain.TextChange) {
	data, err := encodeText(change)
	if err != nil {
		slog.Error("Failed to encode text frame", "element", change.ID, "error", err)
		return
	}

	if _, err := p.node.Publish(Channel, data); err != nil {
		slog.Warn("Failed to publish text change", "channel", Channel, "element", change.ID, "error", err)
		return
	}

	if p.wsMetrics != nil {
		p.wsMetrics.MessagesPublished.Inc()
	}
}

// Fanout publishes every change to each of its publishers in order.
type Fanout []domain.ChangePublisher

func (f Fanout) PublishTextChanged(change domain.TextChange) {
	for _, p := range f {
		p.PublishTextChanged(change)
	}
}
