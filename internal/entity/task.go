package entity

import "time"

type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	DueDate   string `json:"dueDate"`
	LeadID    string `json:"leadId"`
	Completed bool   `json:"completed"`
}

func NewTask(id, title, dueDate, leadID string) (*Task, error) {
	task := &Task{
		ID:      id,
		Title:   title,
		DueDate: dueDate,
		LeadID:  leadID,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

func (t *Task) Validate() error {
	var errs ValidationErrors

	if t.ID == "" {
		errs = append(errs, ValidationError{"id", "is required"})
	}
	if t.LeadID == "" {
		errs = append(errs, ValidationError{"leadId", "is required"})
	}
	if t.DueDate != "" {
		if _, err := ParseDueDate(t.DueDate); err != nil {
			errs = append(errs, ValidationError{"dueDate", "must be a valid datetime (YYYY-MM-DDTHH:MM:SS)"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Due returns the parsed due date. ok is false when the stored value does not parse.
func (t Task) Due() (due time.Time, ok bool) {
	due, err := ParseDueDate(t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

func (t Task) IsOverdue(now time.Time) bool {
	if t.Completed {
		return false
	}
	due, ok := t.Due()
	return ok && due.Before(now)
}
