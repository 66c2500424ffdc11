package http

import (
	"context"

	"deliveryboard/pkg/contracts/domain"
)

// BoardServiceInterface is what the board handler needs from the board service
type BoardServiceInterface interface {
	Result(kind domain.RecordKind) domain.ClassificationResult
	Snapshot(kind domain.RecordKind) *domain.ReportSnapshot
	Refresh(ctx context.Context, kind domain.RecordKind) (*domain.ReportSnapshot, error)
	Confirm(ctx context.Context, entry domain.ConfirmationEntry) (*domain.ReportSnapshot, error)
	Confirmations(ctx context.Context) ([]domain.ConfirmationEntry, error)
}
