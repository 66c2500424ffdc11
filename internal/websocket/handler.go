package websocket

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"deliveryboard/internal/config"
	apierrors "deliveryboard/internal/errors"
	"deliveryboard/internal/infrastructure"
)

// Handler upgrades /ws requests and attaches the connection to the hub
type Handler struct {
	hub          *Hub
	upgrader     websocket.Upgrader
	timing       Timing
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewHandler builds the upgrade handler. Origins are checked against
// allowedOrigins; an empty list or "*" accepts any origin.
func NewHandler(hub *Hub, cfg config.WebSocketConfig, allowedOrigins []string, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		timing:       Timing{PingPeriod: cfg.PingPeriod, PongWait: cfg.PongWait},
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "websocket.handler")),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := infrastructure.EnsureTraceID(r.Context())
	traceID := infrastructure.GetTraceID(ctx)

	if !websocket.IsWebSocketUpgrade(r) {
		h.errorHandler.HandleError(w, r, apierrors.ErrWebSocketUpgrade)
		return
	}

	// Upgrade writes its own error response on failure
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "WebSocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("origin", r.Header.Get("Origin")))
		return
	}

	client := NewClient(h.hub, gorillaConn{conn}, traceID, h.timing, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
