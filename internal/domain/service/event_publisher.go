package service

import (
	"context"
	"time"
)

// ModerationEvent announces that a proposal reached a terminal status.
type ModerationEvent struct {
	RequestID       string    `json:"request_id,omitempty"` // For distributed tracing
	ProposalID      string    `json:"proposal_id"`
	Action          string    `json:"action"`
	Status          string    `json:"status"`
	ShelterID       string    `json:"shelter_id,omitempty"`
	ShelterName     string    `json:"shelter_name"`
	CreatorID       string    `json:"creator_id"`
	ReviewerID      string    `json:"reviewer_id"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	ReviewedAt      time.Time `json:"reviewed_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishModerationEvent publishes a review outcome for async processing
	PublishModerationEvent(ctx context.Context, event *ModerationEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
