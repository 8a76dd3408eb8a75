package event

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/trellis-ldp/ldpcore/pkg/lifecycle"
	"github.com/trellis-ldp/ldpcore/pkg/logger"
)

// WebsocketBus broadcasts envelopes to subscribers connected over a
// websocket. Subscriber list is in-process only; deployments running more
// than one instance should pair this with RedisBus instead.
type WebsocketBus struct {
	*lifecycle.ServiceBase

	upgrader websocket.Upgrader
	log      *logger.Logger

	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

func NewWebsocketBus(log *logger.Logger) *WebsocketBus {
	b := &WebsocketBus{
		ServiceBase: lifecycle.NewServiceBase("event-websocket-bus"),
		upgrader:    websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		log:         log,
		conns:       make(map[*websocket.Conn]struct{}),
	}
	b.MarkStarted()
	return b
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection as a subscriber until it closes.
func (b *WebsocketBus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if b.log != nil {
			b.log.WithError(err).Warn("websocket upgrade failed")
		}
		return
	}

	b.mu.Lock()
	b.conns[conn] = struct{}{}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.conns, conn)
		b.mu.Unlock()
		conn.Close()
	}()

	// Drain and discard inbound frames until the client disconnects;
	// subscribers are read-only consumers of this bus.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *WebsocketBus) Publish(ctx context.Context, envelope Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	var lastErr error
	for conn := range b.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

var _ Bus = (*WebsocketBus)(nil)
