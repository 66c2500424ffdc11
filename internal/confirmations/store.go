// Package confirmations persists the human answers to "did this arrive?".
//
// Entries are keyed by record id and only ever inserted or overwritten;
// the board never deletes them, so an answer survives regenerations of the
// source report as long as the record keeps its id.
package confirmations

import (
	"context"
	"errors"

	"deliveryboard/pkg/contracts/domain"
)

// ErrClosed is returned by operations on a closed store
var ErrClosed = errors.New("confirmation store is closed")

// Store is the confirmation persistence port
type Store interface {
	// LoadAll returns a point-in-time snapshot of record id -> arrived
	LoadAll(ctx context.Context) (map[string]bool, error)
	// Upsert inserts or overwrites the entry of one record
	Upsert(ctx context.Context, entry domain.ConfirmationEntry) error
	// List returns every stored entry, most recent first
	List(ctx context.Context) ([]domain.ConfirmationEntry, error)
	Close() error
}
