package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/centrifugal/centrifuge"
	"github.com/guiltyguilty/disturb/internal/adapter/metrics"
	"github.com/guiltyguilty/disturb/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnConnecting_SubscribesAndSendsSnapshot(t *testing.T) {
	handler := onConnecting(staticSnapshot(domain.TextChange{ID: "0", Text: "hello"}))

	reply, err := handler(context.Background(), centrifuge.ConnectEvent{ClientID: "c1"})
	require.NoError(t, err)

	require.NotNil(t, reply.Credentials)
	assert.Empty(t, reply.Credentials.UserID)
	assert.Contains(t, reply.Subscriptions, Channel)

	var f frame
	require.NoError(t, json.Unmarshal(reply.Data, &f))
	assert.Equal(t, FrameSnapshot, f.Type)
	assert.Equal(t, []domain.TextChange{{ID: "0", Text: "hello"}}, f.Elements)
}

func TestParseCentrifugeLogLevel(t *testing.T) {
	assert.Equal(t, centrifuge.LogLevelDebug, parseCentrifugeLogLevel("debug"))
	assert.Equal(t, centrifuge.LogLevelWarn, parseCentrifugeLogLevel("warn"))
	assert.Equal(t, centrifuge.LogLevelError, parseCentrifugeLogLevel("error"))
	assert.Equal(t, centrifuge.LogLevelInfo, parseCentrifugeLogLevel("info"))
	assert.Equal(t, centrifuge.LogLevelInfo, parseCentrifugeLogLevel(""))
}

func TestPublisher_PublishesToChannel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWebSocketMetrics(reg)

	node, err := NewNode(staticSnapshot(), m, "error")
	require.NoError(t, err)
	require.NoError(t, node.Run())
	t.Cleanup(func() { _ = node.Shutdown(context.Background()) })

	pub := NewPublisher(node, m)
	pub.PublishTextChanged(domain.TextChange{ID: "0", Text: "x"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesPublished))
}

type capture struct {
	mu      sync.Mutex
	changes []domain.TextChange
}

func (c *capture) PublishTextChanged(change domain.TextChange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, change)
}

func TestFanout(t *testing.T) {
	a, b := &capture{}, &capture{}
	var pub domain.ChangePublisher = Fanout{a, b}

	pub.PublishTextChanged(domain.TextChange{ID: "1", Text: "y"})

	assert.Equal(t, []domain.TextChange{{ID: "1", Text: "y"}}, a.changes)
	assert.Equal(t, []domain.TextChange{{ID: "1", Text: "y"}}, b.changes)
}
