package entity

import (
	"bytes"
	"encoding/json"
)

// NullableString distinguishes an absent JSON key from an explicit null.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// SetString is a convenience for building patches in code.
func SetString(s string) NullableString {
	return NullableString{Set: true, Value: &s}
}

// ClearString builds a patch value that stores null.
func ClearString() NullableString {
	return NullableString{Set: true}
}

// LeadPatch holds the fields to change on a lead. Nil fields are left alone.
type LeadPatch struct {
	Name            *string     `json:"name,omitempty"`
	Phone           *string     `json:"phone,omitempty"`
	Tag             *LeadTag    `json:"tag,omitempty"`
	Status          *LeadStatus `json:"status,omitempty"`
	LastContactDate *string     `json:"lastContactDate,omitempty"`
	DateAdded       *string     `json:"dateAdded,omitempty"`
	Notes           *string     `json:"notes,omitempty"`
}

func (p LeadPatch) Validate() error {
	var errs ValidationErrors

	if p.Tag != nil && !p.Tag.IsValid() {
		errs = append(errs, ValidationError{"tag", "must be one of hot, new, cold"})
	}
	if p.Status != nil && !p.Status.IsValid() {
		errs = append(errs, ValidationError{"status", "must be one of contacted, qualified, negotiation, closed, lost"})
	}
	if p.LastContactDate != nil && *p.LastContactDate != "" && !IsValidDate(*p.LastContactDate) {
		errs = append(errs, ValidationError{"lastContactDate", "must be a valid date (YYYY-MM-DD)"})
	}
	if p.DateAdded != nil && !IsValidDate(*p.DateAdded) {
		errs = append(errs, ValidationError{"dateAdded", "must be a valid date (YYYY-MM-DD)"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (p LeadPatch) Apply(l *Lead) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Phone != nil {
		l.Phone = *p.Phone
	}
	if p.Tag != nil {
		l.Tag = *p.Tag
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.LastContactDate != nil {
		l.LastContactDate = *p.LastContactDate
	}
	if p.DateAdded != nil {
		l.DateAdded = *p.DateAdded
	}
	if p.Notes != nil {
		l.Notes = *p.Notes
	}
}

type TaskPatch struct {
	Title     *string `json:"title,omitempty"`
	DueDate   *string `json:"dueDate,omitempty"`
	LeadID    *string `json:"leadId,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func (p TaskPatch) Validate() error {
	var errs ValidationErrors

	if p.DueDate != nil {
		if _, err := ParseDueDate(*p.DueDate); err != nil {
			errs = append(errs, ValidationError{"dueDate", "must be a valid datetime (YYYY-MM-DDTHH:MM:SS)"})
		}
	}
	if p.LeadID != nil && *p.LeadID == "" {
		errs = append(errs, ValidationError{"leadId", "must not be empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.LeadID != nil {
		t.LeadID = *p.LeadID
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// MeetingPatch cannot move a meeting to another lead; delete and re-add instead.
type MeetingPatch struct {
	Type   *MeetingType   `json:"type,omitempty"`
	Status *MeetingStatus `json:"status,omitempty"`
	Date   NullableString `json:"date"`
}

func (p MeetingPatch) Validate() error {
	var errs ValidationErrors

	if p.Type != nil && !p.Type.IsValid() {
		errs = append(errs, ValidationError{"type", ErrInvalidMeetingType.Error()})
	}
	if p.Status != nil && !p.Status.IsValid() {
		errs = append(errs, ValidationError{"status", ErrInvalidMeetingStatus.Error()})
	}
	if p.Date.Set && p.Date.Value != nil && !IsValidDate(*p.Date.Value) {
		errs = append(errs, ValidationError{"date", "must be a valid date (YYYY-MM-DD) or null"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (p MeetingPatch) Apply(m *Meeting) {
	if p.Type != nil {
		m.Type = *p.Type
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.Date.Set {
		if p.Date.Value == nil {
			m.Date = nil
		} else {
			d := *p.Date.Value
			m.Date = &d
		}
	}
}
