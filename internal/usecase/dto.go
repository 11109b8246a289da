package usecase

import "github.com/xavierca1/leadbridge/internal/entity"

type AddLeadInput struct {
	Name            string            `json:"name"`
	Phone           string            `json:"phone"`
	Tag             entity.LeadTag    `json:"tag"`
	Status          entity.LeadStatus `json:"status"`
	LastContactDate string            `json:"lastContactDate"`
	Notes           string            `json:"notes"`
}

type AddTaskInput struct {
	Title     string `json:"title"`
	DueDate   string `json:"dueDate"`
	LeadID    string `json:"leadId"`
	Completed bool   `json:"completed"`
}

type AddMeetingInput struct {
	Type   entity.MeetingType   `json:"type"`
	Status entity.MeetingStatus `json:"status"`
	Date   *string              `json:"date"`
	LeadID string               `json:"leadId"`
}

// Snapshot is the whole persisted state, used for export, import and reset.
type Snapshot struct {
	Leads      []entity.Lead `json:"leads"`
	Tasks      []entity.Task `json:"tasks"`
	VPNEnabled bool          `json:"vpnEnabled"`
}
