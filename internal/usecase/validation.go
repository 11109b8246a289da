package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xavierca1/leadbridge/internal/entity"
)

var nonDigits = regexp.MustCompile(`\D`)

// PhoneDigits strips formatting from a phone number, e.g. "+1 (555) 123-4567" -> "15551234567".
func PhoneDigits(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// ChatLink is the wa.me deep link for a lead's phone, or "" when the number has too few digits.
func ChatLink(phone string) string {
	digits := PhoneDigits(phone)
	if len(digits) < 7 {
		return ""
	}
	return "https://wa.me/" + digits
}

// ValidateMeetingInput applies the per-type status rule the UI enforces.
// The Store does not call this.
func ValidateMeetingInput(t entity.MeetingType, s entity.MeetingStatus) entity.ValidationErrors {
	var errs entity.ValidationErrors

	if !t.IsValid() {
		errs = append(errs, entity.ValidationError{Field: "type", Message: "must be one of BOM, BIT, PT, WG 1, WG 2, WG 3"})
		return errs
	}
	if !s.IsValid() {
		errs = append(errs, entity.ValidationError{Field: "status", Message: "is not a known meeting status"})
	} else if !entity.AllowsStatus(t, s) {
		opts := make([]string, 0, 4)
		for _, o := range entity.StatusOptions(t) {
			opts = append(opts, string(o))
		}
		errs = append(errs, entity.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("must be one of %s for %s meetings", strings.Join(opts, ", "), t),
		})
	}

	return errs
}

func validateSnapshot(snap Snapshot) error {
	var errs entity.ValidationErrors

	leadIDs := make(map[string]bool, len(snap.Leads))
	meetingIDs := make(map[string]bool)
	for i := range snap.Leads {
		lead := &snap.Leads[i]
		if leadIDs[lead.ID] {
			errs = append(errs, entity.ValidationError{Field: "leads", Message: fmt.Sprintf("duplicate lead id %q", lead.ID)})
		}
		leadIDs[lead.ID] = true

		if err := lead.Validate(); err != nil {
			errs = append(errs, entity.ValidationError{Field: "leads", Message: fmt.Sprintf("lead %q: %v", lead.ID, err)})
		}
		for _, m := range lead.Meetings {
			if m.LeadID != lead.ID {
				errs = append(errs, entity.ValidationError{Field: "meetings", Message: fmt.Sprintf("meeting %q is stored under lead %q but references %q", m.ID, lead.ID, m.LeadID)})
			}
			if meetingIDs[m.ID] {
				errs = append(errs, entity.ValidationError{Field: "meetings", Message: fmt.Sprintf("duplicate meeting id %q", m.ID)})
			}
			meetingIDs[m.ID] = true
		}
	}

	taskIDs := make(map[string]bool, len(snap.Tasks))
	for i := range snap.Tasks {
		task := &snap.Tasks[i]
		if taskIDs[task.ID] {
			errs = append(errs, entity.ValidationError{Field: "tasks", Message: fmt.Sprintf("duplicate task id %q", task.ID)})
		}
		taskIDs[task.ID] = true

		if err := task.Validate(); err != nil {
			errs = append(errs, entity.ValidationError{Field: "tasks", Message: fmt.Sprintf("task %q: %v", task.ID, err)})
		}
		if !leadIDs[task.LeadID] {
			errs = append(errs, entity.ValidationError{Field: "tasks", Message: fmt.Sprintf("task %q references unknown lead %q", task.ID, task.LeadID)})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
