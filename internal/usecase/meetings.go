package usecase

import (
	"context"

	"github.com/xavierca1/leadbridge/internal/entity"
)

// AddMeeting appends a meeting to the lead named by input.LeadID. When no
// such lead exists nothing happens and added is false.
func (s *Store) AddMeeting(ctx context.Context, input AddMeetingInput) (meeting entity.Meeting, added bool, err error) {
	meeting = entity.Meeting{
		ID:     s.newID(),
		Type:   input.Type,
		Status: input.Status,
		LeadID: input.LeadID,
	}
	if input.Date != nil {
		d := *input.Date
		meeting.Date = &d
	}
	if err := meeting.Validate(); err != nil {
		return entity.Meeting{}, false, err
	}

	added, err = s.mutate(ctx, func() (*change, error) {
		i := s.leadIndexLocked(meeting.LeadID)
		if i < 0 {
			return nil, nil
		}
		s.leads[i].Meetings = append(s.leads[i].Meetings, meeting.Clone())
		return &change{
			event:   ChangeEvent{Type: EventMeetingCreated, Entity: "meeting", ID: meeting.ID, LeadID: meeting.LeadID},
			persist: true,
		}, nil
	})
	if !added || (err != nil && !NotPersisted(err)) {
		return entity.Meeting{}, false, err
	}
	return meeting, true, err
}

// UpdateMeeting finds the owning lead by scanning every lead's meetings.
// Each check sees the merged meeting under the store lock; an error from a
// check aborts the update.
func (s *Store) UpdateMeeting(ctx context.Context, id string, patch entity.MeetingPatch, checks ...func(next entity.Meeting) error) (updated entity.Meeting, found bool, err error) {
	if err := patch.Validate(); err != nil {
		return entity.Meeting{}, false, err
	}

	found, err = s.mutate(ctx, func() (*change, error) {
		li, mi := s.meetingIndexLocked(id)
		if li < 0 {
			return nil, nil
		}
		next := s.leads[li].Meetings[mi].Clone()
		patch.Apply(&next)
		for _, check := range checks {
			if err := check(next); err != nil {
				return nil, err
			}
		}
		s.leads[li].Meetings[mi] = next
		updated = next.Clone()
		return &change{
			event:   ChangeEvent{Type: EventMeetingUpdated, Entity: "meeting", ID: id, LeadID: s.leads[li].ID},
			persist: true,
		}, nil
	})
	return updated, found, err
}

// DeleteMeeting removes the meeting from its owning lead only.
func (s *Store) DeleteMeeting(ctx context.Context, id string) (bool, error) {
	return s.mutate(ctx, func() (*change, error) {
		li, mi := s.meetingIndexLocked(id)
		if li < 0 {
			return nil, nil
		}
		lead := &s.leads[li]
		meetings := make([]entity.Meeting, 0, len(lead.Meetings)-1)
		meetings = append(meetings, lead.Meetings[:mi]...)
		meetings = append(meetings, lead.Meetings[mi+1:]...)
		lead.Meetings = meetings
		return &change{
			event:   ChangeEvent{Type: EventMeetingDeleted, Entity: "meeting", ID: id, LeadID: lead.ID},
			persist: true,
		}, nil
	})
}

func (s *Store) GetMeeting(id string) (entity.Meeting, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	li, mi := s.meetingIndexLocked(id)
	if li < 0 {
		return entity.Meeting{}, false
	}
	return s.leads[li].Meetings[mi].Clone(), true
}

// GetMeetingsByLead returns the lead's meetings, or an empty slice if the lead does not exist.
func (s *Store) GetMeetingsByLead(leadID string) []entity.Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.leadIndexLocked(leadID)
	if i < 0 {
		return []entity.Meeting{}
	}
	return s.leads[i].Clone().Meetings
}

func (s *Store) meetingIndexLocked(id string) (leadIdx, meetingIdx int) {
	for li := range s.leads {
		if mi := s.leads[li].MeetingIndex(id); mi >= 0 {
			return li, mi
		}
	}
	return -1, -1
}
