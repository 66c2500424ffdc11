package websocket

import (
	"deliveryboard/pkg/contracts/domain"
	"deliveryboard/pkg/contracts/events"
)

// Notifier forwards board events to the hub
type Notifier struct {
	hub *Hub
}

// NewNotifier returns a Notifier broadcasting on hub
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

// BoardUpdated broadcasts a freshly published snapshot
func (n *Notifier) BoardUpdated(snapshot *domain.ReportSnapshot) {
	if snapshot == nil {
		return
	}
	n.hub.Broadcast(TypeBoardUpdated, events.NewBoardUpdate(snapshot))
}

// RefreshFailed broadcasts a refresh that kept the previous snapshot
func (n *Notifier) RefreshFailed(kind domain.RecordKind, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	n.hub.Broadcast(TypeRefreshFailed, events.RefreshFailure{Kind: kind, Error: msg})
}
