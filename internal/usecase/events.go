package usecase

import (
	"context"
	"errors"
	"time"
)

type EventType string

const (
	EventLeadCreated    EventType = "lead.created"
	EventLeadUpdated    EventType = "lead.updated"
	EventTaskCreated    EventType = "task.created"
	EventTaskUpdated    EventType = "task.updated"
	EventTaskToggled    EventType = "task.toggled"
	EventMeetingCreated EventType = "meeting.created"
	EventMeetingUpdated EventType = "meeting.updated"
	EventMeetingDeleted EventType = "meeting.deleted"
	EventSettingsUpdate EventType = "settings.updated"
	EventStoreReset     EventType = "store.reset"
	EventStoreRestored  EventType = "store.restored"
	EventStoreReloaded  EventType = "store.reloaded"
)

// ChangeEvent tells listeners which entity changed so they can re-read it.
// It carries identifiers only, never entity bodies.
type ChangeEvent struct {
	Type   EventType `json:"type"`
	Entity string    `json:"entity"`
	ID     string    `json:"id,omitempty"`
	LeadID string    `json:"leadId,omitempty"`
	Origin string    `json:"origin,omitempty"`
	At     time.Time `json:"at"`
}

// MultiPublisher fans one event out to several publishers and joins their errors.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(ctx context.Context, event ChangeEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublisherFunc adapts a function to EventPublisher.
type PublisherFunc func(ctx context.Context, event ChangeEvent) error

func (f PublisherFunc) Publish(ctx context.Context, event ChangeEvent) error {
	return f(ctx, event)
}
