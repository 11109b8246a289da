package entity

import "fmt"

type LeadTag string

const (
	LeadTagHot  LeadTag = "hot"
	LeadTagNew  LeadTag = "new"
	LeadTagCold LeadTag = "cold"
)

func (t LeadTag) IsValid() bool {
	switch t {
	case LeadTagHot, LeadTagNew, LeadTagCold:
		return true
	}
	return false
}

// LeadStatus is the pipeline stage of a lead.
type LeadStatus string

const (
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusQualified   LeadStatus = "qualified"
	LeadStatusNegotiation LeadStatus = "negotiation"
	LeadStatusClosed      LeadStatus = "closed"
	LeadStatusLost        LeadStatus = "lost"
)

func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusContacted, LeadStatusQualified, LeadStatusNegotiation, LeadStatusClosed, LeadStatusLost:
		return true
	}
	return false
}

type Lead struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Tag             LeadTag    `json:"tag"`
	Status          LeadStatus `json:"status"`
	LastContactDate string     `json:"lastContactDate"`
	DateAdded       string     `json:"dateAdded"`
	Notes           string     `json:"notes"`
	Meetings        []Meeting  `json:"meetings"`
}

// NewLead builds a lead with its generated fields already assigned.
func NewLead(id, dateAdded, name, phone string, tag LeadTag, status LeadStatus, lastContactDate, notes string) (*Lead, error) {
	lead := &Lead{
		ID:              id,
		Name:            name,
		Phone:           phone,
		Tag:             tag,
		Status:          status,
		LastContactDate: lastContactDate,
		DateAdded:       dateAdded,
		Notes:           notes,
		Meetings:        []Meeting{},
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	var errs ValidationErrors

	if l.ID == "" {
		errs = append(errs, ValidationError{"id", "is required"})
	}
	if !l.Tag.IsValid() {
		errs = append(errs, ValidationError{"tag", "must be one of hot, new, cold"})
	}
	if !l.Status.IsValid() {
		errs = append(errs, ValidationError{"status", "must be one of contacted, qualified, negotiation, closed, lost"})
	}
	if l.LastContactDate != "" && !IsValidDate(l.LastContactDate) {
		errs = append(errs, ValidationError{"lastContactDate", "must be a valid date (YYYY-MM-DD)"})
	}
	if l.DateAdded != "" && !IsValidDate(l.DateAdded) {
		errs = append(errs, ValidationError{"dateAdded", "must be a valid date (YYYY-MM-DD)"})
	}
	for i := range l.Meetings {
		if err := l.Meetings[i].Validate(); err != nil {
			errs = append(errs, ValidationError{"meetings", fmt.Sprintf("meeting %q: %v", l.Meetings[i].ID, err)})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Clone returns a copy that shares no memory with l.
func (l Lead) Clone() Lead {
	out := l
	out.Meetings = make([]Meeting, len(l.Meetings))
	for i, m := range l.Meetings {
		out.Meetings[i] = m.Clone()
	}
	return out
}

// MeetingIndex returns the position of the meeting in l.Meetings or -1.
func (l *Lead) MeetingIndex(meetingID string) int {
	for i := range l.Meetings {
		if l.Meetings[i].ID == meetingID {
			return i
		}
	}
	return -1
}
