package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/xavierca1/leadbridge/internal/entity"
)

// AddTask appends a task for an existing lead.
func (s *Store) AddTask(ctx context.Context, input AddTaskInput) (entity.Task, error) {
	task, err := entity.NewTask(s.newID(), input.Title, input.DueDate, input.LeadID)
	if err != nil {
		return entity.Task{}, err
	}
	task.Completed = input.Completed

	_, err = s.mutate(ctx, func() (*change, error) {
		if s.leadIndexLocked(task.LeadID) < 0 {
			return nil, unknownLead(task.LeadID)
		}
		s.tasks = append(s.tasks, *task)
		return &change{
			event:   ChangeEvent{Type: EventTaskCreated, Entity: "task", ID: task.ID, LeadID: task.LeadID},
			persist: true,
		}, nil
	})
	if err != nil && !NotPersisted(err) {
		return entity.Task{}, err
	}

	return *task, err
}

func (s *Store) UpdateTask(ctx context.Context, id string, patch entity.TaskPatch) (updated entity.Task, found bool, err error) {
	if err := patch.Validate(); err != nil {
		return entity.Task{}, false, err
	}

	found, err = s.mutate(ctx, func() (*change, error) {
		i := s.taskIndexLocked(id)
		if i < 0 {
			return nil, nil
		}
		if patch.LeadID != nil && s.leadIndexLocked(*patch.LeadID) < 0 {
			return nil, unknownLead(*patch.LeadID)
		}
		patch.Apply(&s.tasks[i])
		updated = s.tasks[i]
		return &change{
			event:   ChangeEvent{Type: EventTaskUpdated, Entity: "task", ID: id, LeadID: updated.LeadID},
			persist: true,
		}, nil
	})
	return updated, found, err
}

func (s *Store) ToggleTaskCompletion(ctx context.Context, id string) (updated entity.Task, found bool, err error) {
	found, err = s.mutate(ctx, func() (*change, error) {
		i := s.taskIndexLocked(id)
		if i < 0 {
			return nil, nil
		}
		s.tasks[i].Completed = !s.tasks[i].Completed
		updated = s.tasks[i]
		return &change{
			event:   ChangeEvent{Type: EventTaskToggled, Entity: "task", ID: id, LeadID: updated.LeadID},
			persist: true,
		}, nil
	})
	return updated, found, err
}

func (s *Store) GetTask(id string) (entity.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.taskIndexLocked(id)
	if i < 0 {
		return entity.Task{}, false
	}
	return s.tasks[i], true
}

// GetLeadTasks returns the lead's tasks in insertion order.
func (s *Store) GetLeadTasks(leadID string) []entity.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []entity.Task{}
	for _, t := range s.tasks {
		if t.LeadID == leadID {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) Tasks() []entity.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneTasks(s.tasks)
}

// OverdueTasks returns incomplete tasks due before now, in insertion order.
func (s *Store) OverdueTasks(now time.Time) []entity.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entity.Task
	for _, t := range s.tasks {
		if t.IsOverdue(now) {
			out = append(out, t)
		}
	}
	return out
}

func unknownLead(id string) error {
	return &DomainError{
		Code:    "UNKNOWN_LEAD",
		Message: fmt.Sprintf("lead %q does not exist", id),
		Err:     entity.ErrLeadNotFound,
	}
}
