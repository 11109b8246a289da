package usecase

import (
	"context"

	"github.com/xavierca1/leadbridge/internal/entity"
)

// AddLead assigns an id and today's date and appends the lead with no meetings.
func (s *Store) AddLead(ctx context.Context, input AddLeadInput) (entity.Lead, error) {
	lead, err := entity.NewLead(
		s.newID(),
		entity.Today(s.now()),
		input.Name,
		input.Phone,
		input.Tag,
		input.Status,
		input.LastContactDate,
		input.Notes,
	)
	if err != nil {
		return entity.Lead{}, err
	}

	_, err = s.mutate(ctx, func() (*change, error) {
		s.leads = append(s.leads, *lead)
		return &change{
			event:   ChangeEvent{Type: EventLeadCreated, Entity: "lead", ID: lead.ID, LeadID: lead.ID},
			persist: true,
		}, nil
	})
	if err != nil && !NotPersisted(err) {
		return entity.Lead{}, err
	}

	return lead.Clone(), err
}

// UpdateLead merges the set fields of patch into the lead. found is false,
// and nothing changes, when no lead has that id.
func (s *Store) UpdateLead(ctx context.Context, id string, patch entity.LeadPatch) (updated entity.Lead, found bool, err error) {
	if err := patch.Validate(); err != nil {
		return entity.Lead{}, false, err
	}

	found, err = s.mutate(ctx, func() (*change, error) {
		i := s.leadIndexLocked(id)
		if i < 0 {
			return nil, nil
		}
		patch.Apply(&s.leads[i])
		updated = s.leads[i].Clone()
		return &change{
			event:   ChangeEvent{Type: EventLeadUpdated, Entity: "lead", ID: id, LeadID: id},
			persist: true,
		}, nil
	})
	return updated, found, err
}

func (s *Store) GetLead(id string) (entity.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.leadIndexLocked(id)
	if i < 0 {
		return entity.Lead{}, false
	}
	return s.leads[i].Clone(), true
}

// Leads returns every lead in insertion order.
func (s *Store) Leads() []entity.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneLeads(s.leads)
}
