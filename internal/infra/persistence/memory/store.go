// Package memory provides mutex-guarded in-memory repositories for local runs and tests.
package memory

import (
	"sync"

	"refugis/internal/domain/entity"
)

// Store holds every collection in process memory. Records are copied on the way in and out.
type Store struct {
	mu sync.RWMutex

	shelters    map[string]*entity.Shelter
	proposals   map[string]*entity.Proposal
	doubts      map[string]*entity.Doubt
	answers     map[string]map[string]*entity.Answer
	experiences map[string]*entity.Experience
	renovations map[string]*entity.Renovation
	index       *entity.CoordinateIndex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		shelters:    make(map[string]*entity.Shelter),
		proposals:   make(map[string]*entity.Proposal),
		doubts:      make(map[string]*entity.Doubt),
		answers:     make(map[string]map[string]*entity.Answer),
		experiences: make(map[string]*entity.Experience),
		renovations: make(map[string]*entity.Renovation),
	}
}

// PutDoubt seeds a doubt.
func (s *Store) PutDoubt(doubt *entity.Doubt) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *doubt
	s.doubts[doubt.ID] = &copied
}

// PutAnswer seeds an answer under a doubt.
func (s *Store) PutAnswer(doubtID string, answer *entity.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.answers[doubtID] == nil {
		s.answers[doubtID] = make(map[string]*entity.Answer)
	}
	copied := *answer
	s.answers[doubtID][answer.ID] = &copied
}

// AnswerCount returns how many answers a doubt still has.
func (s *Store) AnswerCount(doubtID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.answers[doubtID])
}

// PutExperience seeds an experience.
func (s *Store) PutExperience(experience *entity.Experience) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.experiences[experience.ID] = copyExperience(experience)
}

// PutRenovation seeds a renovation.
func (s *Store) PutRenovation(renovation *entity.Renovation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.renovations[renovation.ID] = copyRenovation(renovation)
}

func copyExperience(e *entity.Experience) *entity.Experience {
	out := *e
	out.MediaKeys = append([]string(nil), e.MediaKeys...)

	return &out
}

func copyRenovation(r *entity.Renovation) *entity.Renovation {
	out := *r
	out.Participants = append([]string(nil), r.Participants...)

	return &out
}

func copyProposal(p *entity.Proposal) *entity.Proposal {
	out := *p
	out.ShelterID = copyString(p.ShelterID)
	out.Comment = copyString(p.Comment)
	out.ReviewerID = copyString(p.ReviewerID)
	out.RejectionReason = copyString(p.RejectionReason)
	if p.ReviewedAt != nil {
		reviewedAt := *p.ReviewedAt
		out.ReviewedAt = &reviewedAt
	}
	if p.Payload != nil {
		out.Payload, _ = copyValue(p.Payload).(map[string]any)
	}
	out.ShelterSnapshot = p.ShelterSnapshot.Clone()

	return &out
}

func copyIndex(idx *entity.CoordinateIndex) *entity.CoordinateIndex {
	out := *idx
	out.Entries = make([]entity.CoordinateEntry, len(idx.Entries))
	for i, entry := range idx.Entries {
		entry.Surname = copyString(entry.Surname)
		out.Entries[i] = entry
	}

	return &out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s

	return &v
}

func copyValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, item := range typed {
			out[k] = copyValue(item)
		}

		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = copyValue(item)
		}

		return out
	default:
		return v
	}
}
