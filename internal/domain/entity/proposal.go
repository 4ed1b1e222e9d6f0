package entity

import (
	"time"

	"github.com/pkg/errors"
)

// UnknownCreator replaces the creator of proposals whose author deleted their account.
const UnknownCreator = "unknown"

// ProposalAction is the kind of change a proposal requests.
type ProposalAction string

const (
	ProposalActionCreate ProposalAction = "create"
	ProposalActionUpdate ProposalAction = "update"
	ProposalActionDelete ProposalAction = "delete"
)

// IsValid checks if the action is one of create, update or delete.
func (a ProposalAction) IsValid() bool {
	switch a {
	case ProposalActionCreate, ProposalActionUpdate, ProposalActionDelete:
		return true
	default:
		return false
	}
}

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusApproved ProposalStatus = "approved"
	ProposalStatusRejected ProposalStatus = "rejected"
)

// IsValid checks if the status is a known value.
func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusPending, ProposalStatusApproved, ProposalStatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s ProposalStatus) IsTerminal() bool {
	return s == ProposalStatusApproved || s == ProposalStatusRejected
}

// Shape errors returned by Proposal.Validate.
var (
	ErrInvalidAction      = errors.New("invalid proposal action")
	ErrUnexpectedShelter  = errors.New("create proposals must not reference a shelter")
	ErrMissingShelter     = errors.New("update and delete proposals require a shelter id")
	ErrMissingPayload     = errors.New("create and update proposals require a payload")
	ErrUnexpectedPayload  = errors.New("delete proposals must not carry a payload")
	ErrInconsistentReview = errors.New("review fields must be set iff the proposal is reviewed")
)

// Proposal is a user-submitted change request against the shelter catalog.
type Proposal struct {
	ID              string         `json:"id"`
	Action          ProposalAction `json:"action"`
	ShelterID       *string        `json:"shelter_id"`
	Payload         map[string]any `json:"payload,omitempty"`
	Comment         *string        `json:"comment,omitempty"`
	Status          ProposalStatus `json:"status"`
	CreatorID       string         `json:"creator_id"`
	CreatedAt       time.Time      `json:"created_at"`
	ReviewerID      *string        `json:"reviewer_id,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
	ShelterSnapshot *Shelter       `json:"shelter_snapshot,omitempty"`
	ShelterName     string         `json:"shelter_name"`
}

// TargetShelterID returns the referenced shelter id or an empty string for creates.
func (p *Proposal) TargetShelterID() string {
	if p.ShelterID == nil {
		return ""
	}

	return *p.ShelterID
}

// Validate checks the shape invariants tying action, shelter id, payload and review fields.
func (p *Proposal) Validate() error {
	switch p.Action {
	case ProposalActionCreate:
		if p.ShelterID != nil {
			return ErrUnexpectedShelter
		}
		if p.Payload == nil {
			return ErrMissingPayload
		}
	case ProposalActionUpdate:
		if p.ShelterID == nil || *p.ShelterID == "" {
			return ErrMissingShelter
		}
		if p.Payload == nil {
			return ErrMissingPayload
		}
	case ProposalActionDelete:
		if p.ShelterID == nil || *p.ShelterID == "" {
			return ErrMissingShelter
		}
		if p.Payload != nil {
			return ErrUnexpectedPayload
		}
	default:
		return ErrInvalidAction
	}

	reviewed := p.ReviewerID != nil && p.ReviewedAt != nil
	if p.Status == ProposalStatusPending && (p.ReviewerID != nil || p.ReviewedAt != nil) {
		return ErrInconsistentReview
	}
	if p.Status.IsTerminal() && !reviewed {
		return ErrInconsistentReview
	}

	return nil
}
