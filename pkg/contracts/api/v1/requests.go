// Package api contains API contract definitions for the delivery board.
// Version v1 represents the current stable API version.
package api

import (
	"deliveryboard/pkg/contracts/domain"
)

// ConfirmRequest records a human answer for one record.
// Arrived is a pointer so a missing field fails validation instead of
// silently meaning "not arrived".
type ConfirmRequest struct {
	ID      string `json:"id" validate:"required,max=256"`
	Arrived *bool  `json:"arrived" validate:"required"`
	Kind    string `json:"kind" validate:"required,recordkind"`
}

// ConfirmResponse acknowledges a stored confirmation. Bucket is where the
// record landed after re-classification, empty when it is not on the board.
type ConfirmResponse struct {
	Status  string                `json:"status"`
	ID      string                `json:"id"`
	Arrived bool                  `json:"arrived"`
	Kind    domain.RecordKind     `json:"kind"`
	Bucket  domain.Bucket         `json:"bucket,omitempty"`
	Counts  map[domain.Bucket]int `json:"counts,omitempty"`
}

// ConfirmationList is the body of GET /api/confirmacoes
type ConfirmationList struct {
	Status string                     `json:"status"`
	Data   []domain.ConfirmationEntry `json:"data"`
	Count  int                        `json:"count"`
}
