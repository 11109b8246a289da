package entity

type MeetingType string

const (
	MeetingTypeBOM MeetingType = "BOM"
	MeetingTypeBIT MeetingType = "BIT"
	MeetingTypePT  MeetingType = "PT"
	MeetingTypeWG1 MeetingType = "WG 1"
	MeetingTypeWG2 MeetingType = "WG 2"
	MeetingTypeWG3 MeetingType = "WG 3"
)

// MeetingTypes lists every type in display priority order.
var MeetingTypes = []MeetingType{
	MeetingTypeBOM,
	MeetingTypeBIT,
	MeetingTypePT,
	MeetingTypeWG1,
	MeetingTypeWG2,
	MeetingTypeWG3,
}

func (t MeetingType) IsValid() bool {
	return t.Priority() > 0
}

// Priority ranks types for list views, starting at 1. Unknown types get 0.
func (t MeetingType) Priority() int {
	for i, mt := range MeetingTypes {
		if mt == t {
			return i + 1
		}
	}
	return 0
}

type MeetingStatus string

const (
	MeetingStatusNone          MeetingStatus = ""
	MeetingStatusBOM           MeetingStatus = "BOM"
	MeetingStatusBIT           MeetingStatus = "BIT"
	MeetingStatusPT            MeetingStatus = "PT"
	MeetingStatusShow          MeetingStatus = "Show"
	MeetingStatusNotInterested MeetingStatus = "Not Interested"
	MeetingStatusCode          MeetingStatus = "code"
	MeetingStatusWG1           MeetingStatus = "WG 1"
	MeetingStatusWG2           MeetingStatus = "WG 2"
	MeetingStatusWG3           MeetingStatus = "WG 3"
)

func (s MeetingStatus) IsValid() bool {
	switch s {
	case MeetingStatusNone, MeetingStatusBOM, MeetingStatusBIT, MeetingStatusPT,
		MeetingStatusShow, MeetingStatusNotInterested, MeetingStatusCode,
		MeetingStatusWG1, MeetingStatusWG2, MeetingStatusWG3:
		return true
	}
	return false
}

// StatusOptions returns the statuses a meeting of type t may be set to.
// The store itself does not enforce this; callers that accept user input do.
func StatusOptions(t MeetingType) []MeetingStatus {
	switch t {
	case MeetingTypeBOM:
		return []MeetingStatus{MeetingStatusBOM, MeetingStatusShow, MeetingStatusNotInterested}
	case MeetingTypeBIT:
		return []MeetingStatus{MeetingStatusBIT, MeetingStatusShow, MeetingStatusNotInterested}
	case MeetingTypePT:
		return []MeetingStatus{MeetingStatusPT, MeetingStatusShow, MeetingStatusNotInterested}
	case MeetingTypeWG1, MeetingTypeWG2, MeetingTypeWG3:
		return []MeetingStatus{MeetingStatusCode, MeetingStatusWG1, MeetingStatusWG2, MeetingStatusWG3}
	default:
		return []MeetingStatus{MeetingStatusShow, MeetingStatusNotInterested}
	}
}

// AllowsStatus reports whether s is a legal status for type t. "None" is always legal.
func AllowsStatus(t MeetingType, s MeetingStatus) bool {
	if s == MeetingStatusNone {
		return true
	}
	for _, opt := range StatusOptions(t) {
		if opt == s {
			return true
		}
	}
	return false
}

// DefaultStatus is the status a new meeting starts with.
func DefaultStatus(t MeetingType) MeetingStatus {
	if AllowsStatus(t, MeetingStatus(t)) {
		return MeetingStatus(t)
	}
	return MeetingStatusNone
}

type Meeting struct {
	ID     string        `json:"id"`
	Type   MeetingType   `json:"type"`
	Status MeetingStatus `json:"status"`
	Date   *string       `json:"date"`
	LeadID string        `json:"leadId"`
}

func (m *Meeting) Validate() error {
	var errs ValidationErrors

	if m.ID == "" {
		errs = append(errs, ValidationError{"id", "is required"})
	}
	if !m.Type.IsValid() {
		errs = append(errs, ValidationError{"type", ErrInvalidMeetingType.Error()})
	}
	if !m.Status.IsValid() {
		errs = append(errs, ValidationError{"status", ErrInvalidMeetingStatus.Error()})
	}
	if m.Date != nil && !IsValidDate(*m.Date) {
		errs = append(errs, ValidationError{"date", "must be a valid date (YYYY-MM-DD) or null"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (m Meeting) Clone() Meeting {
	out := m
	if m.Date != nil {
		d := *m.Date
		out.Date = &d
	}
	return out
}
