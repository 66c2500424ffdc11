package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"deliveryboard/internal/infrastructure"
	"deliveryboard/pkg/contracts/events"
)

// Message types pushed to dashboard clients
const (
	TypeConnection    = string(events.MessageTypeConnection)
	TypeBoardUpdated  = string(events.MessageTypeBoardUpdated)
	TypeRefreshFailed = string(events.MessageTypeRefreshFailed)
)

// broadcastBuffer is how many messages may queue before broadcasts are dropped
const broadcastBuffer = 64

// Message is the envelope of every frame sent to clients
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// ClientMetrics records connected client counts
type ClientMetrics interface {
	ClientConnected(ctx context.Context, delta int64)
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics ClientMetrics
	now     func() time.Time

	totalConnections int64
	messagesSent     int64
	dropped          int64

	quit    chan struct{}
	done    chan struct{}
	running bool
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics ClientMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		now:        time.Now,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.totalConnections++
			count := len(h.clients)
			h.mu.Unlock()

			ctx := client.context()
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))
			if h.metrics != nil {
				h.metrics.ClientConnected(ctx, 1)
			}

			hello, err := h.encode(TypeConnection, events.Hello{Status: "connected", ClientID: client.id}, client.traceID)
			if err == nil {
				select {
				case client.send <- hello:
				default:
					h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
						slog.String("client_id", client.id))
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			if ok {
				ctx := client.context()
				h.logger.InfoContext(ctx, "Client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
				if h.metrics != nil {
					h.metrics.ClientConnected(ctx, -1)
				}
			}

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) deliver(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	failed := 0
	for client := range h.clients {
		select {
		case client.send <- message:
			h.messagesSent++
		default:
			// Slow consumer: drop it rather than stall every other client
			failed++
			close(client.send)
			delete(h.clients, client)
			if h.metrics != nil {
				h.metrics.ClientConnected(client.context(), -1)
			}
			h.logger.WarnContext(client.context(), "Client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}

	h.logger.Debug("Broadcast delivered",
		slog.Int("client_count", len(h.clients)),
		slog.Int("fail_count", failed),
		slog.Int("message_size", len(message)))
}

// Broadcast queues a message for every connected client.
// It never blocks: when the queue is full the message is dropped.
func (h *Hub) Broadcast(msgType string, data interface{}) {
	h.BroadcastWithTrace(msgType, data, "")
}

// BroadcastWithTrace is Broadcast with a trace id attached to the envelope
func (h *Hub) BroadcastWithTrace(msgType string, data interface{}, traceID string) {
	payload, err := h.encode(msgType, data, traceID)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", msgType))
		return
	}

	select {
	case h.broadcast <- payload:
	case <-h.quit:
	default:
		h.mu.Lock()
		h.dropped++
		h.mu.Unlock()
		h.logger.Warn("Broadcast queue full, message dropped",
			slog.String("message_type", msgType))
	}
}

func (h *Hub) encode(msgType string, data interface{}, traceID string) ([]byte, error) {
	return json.Marshal(Message{
		Type:      msgType,
		Data:      data,
		Timestamp: h.now().Format(time.RFC3339),
		TraceID:   traceID,
	})
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client from the hub and closes its send channel
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns counters for the health endpoint and logs
func (h *Hub) Stats() map[string]int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]int64{
		"active_clients":    int64(len(h.clients)),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
		"messages_dropped":  h.dropped,
	}
}

// Stop ends the hub loop and disconnects every client
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
		if h.metrics != nil {
			h.metrics.ClientConnected(client.context(), -1)
		}
	}
}
