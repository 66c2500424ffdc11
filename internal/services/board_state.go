package services

import (
	"sync/atomic"

	"deliveryboard/pkg/contracts/domain"
)

// BoardState holds the currently published snapshot of every record kind.
// Readers never block; a publish replaces the whole snapshot at once.
type BoardState struct {
	snapshots map[domain.RecordKind]*atomic.Pointer[domain.ReportSnapshot]
}

// NewBoardState creates an empty state for every known kind
func NewBoardState() *BoardState {
	s := &BoardState{snapshots: make(map[domain.RecordKind]*atomic.Pointer[domain.ReportSnapshot], len(domain.Kinds))}
	for _, kind := range domain.Kinds {
		s.snapshots[kind] = &atomic.Pointer[domain.ReportSnapshot]{}
	}
	return s
}

// Load returns the published snapshot of kind, or nil if none
func (s *BoardState) Load(kind domain.RecordKind) *domain.ReportSnapshot {
	p, ok := s.snapshots[kind]
	if !ok {
		return nil
	}
	return p.Load()
}

// Publish makes snap the current snapshot of its kind
func (s *BoardState) Publish(snap *domain.ReportSnapshot) {
	if p, ok := s.snapshots[snap.Kind]; ok {
		p.Store(snap)
	}
}

// Counts returns bucket sizes per kind; unpublished kinds report zeros
func (s *BoardState) Counts() map[domain.RecordKind]map[domain.Bucket]int {
	out := make(map[domain.RecordKind]map[domain.Bucket]int, len(s.snapshots))
	for kind, p := range s.snapshots {
		if snap := p.Load(); snap != nil {
			out[kind] = snap.Result.Counts()
		} else {
			out[kind] = domain.EmptyResult().Counts()
		}
	}
	return out
}
