package service

import (
	"go-retail-pos/internal/model"

	"github.com/google/uuid"
)

// Mutation outcomes: an admin's mutation commits immediately, a non-admin's
// is captured as a pending approval request.
const (
	StatusCommitted = "committed"
	StatusPending   = "pending"
)

// MutationResult tells the caller what happened to their mutation attempt.
type MutationResult struct {
	Status    string         `json:"status"`
	Product   *model.Product `json:"product,omitempty"`
	RequestID *uuid.UUID     `json:"request_id,omitempty"`
}

func committed(p *model.Product) *MutationResult {
	return &MutationResult{Status: StatusCommitted, Product: p}
}

func pending(requestID uuid.UUID) *MutationResult {
	return &MutationResult{Status: StatusPending, RequestID: &requestID}
}
