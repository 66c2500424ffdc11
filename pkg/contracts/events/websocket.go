// Package events contains the event contracts pushed to dashboard clients
// over WebSocket.
package events

import (
	"time"

	"deliveryboard/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Board messages
	MessageTypeBoardUpdated  MessageType = "board:updated"
	MessageTypeRefreshFailed MessageType = "board:refresh_failed"

	// Sent once to each client after it registers
	MessageTypeConnection MessageType = "connection"
)

// Hello is the payload of the connection message
type Hello struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
}

// BoardUpdate is sent after a report kind publishes a new snapshot. Clients
// refetch the board for Kind; the counts let them update badges without a
// round trip.
type BoardUpdate struct {
	Kind        domain.RecordKind     `json:"kind"`
	Counts      map[domain.Bucket]int `json:"counts"`
	Source      string                `json:"source,omitempty"`
	Today       domain.Date           `json:"today"`
	RefreshedAt time.Time             `json:"refreshed_at"`
}

// RefreshFailure is sent when a refresh kept the previous snapshot
type RefreshFailure struct {
	Kind  domain.RecordKind `json:"kind"`
	Error string            `json:"error"`
}

// NewBoardUpdate summarizes snap
func NewBoardUpdate(snap *domain.ReportSnapshot) BoardUpdate {
	return BoardUpdate{
		Kind:        snap.Kind,
		Counts:      snap.Result.Counts(),
		Source:      snap.Source.Name,
		Today:       snap.Today,
		RefreshedAt: snap.RefreshedAt,
	}
}
