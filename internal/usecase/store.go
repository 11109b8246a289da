package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/leadbridge/internal/entity"
)

// Keys under which the state is mirrored in the KeyValueStore.
const (
	KeyLeads      = "leads"
	KeyTasks      = "tasks"
	KeyVPNEnabled = "vpnEnabled"
)

// Store owns the leads, tasks and settings of one session and is the only
// sanctioned way to change them. Every persisted change is mirrored to the
// KeyValueStore before the call returns. Reads return copies.
type Store struct {
	mu       sync.RWMutex
	kv       KeyValueStore
	leads    []entity.Lead
	tasks    []entity.Task
	settings entity.Settings
	closed   bool

	now    func() time.Time
	newID  IDGenerator
	events EventPublisher
	logger *slog.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) { s.newID = gen }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Store) { s.events = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// OpenStore hydrates a Store from kv. Keys that are absent fall back to the
// sample data, which is then written back so the mirror is complete.
// A value that is present but does not decode is an error.
func OpenStore(ctx context.Context, kv KeyValueStore, opts ...Option) (*Store, error) {
	s := &Store{
		kv:     kv,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, seeded, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.replaceLocked(snap)

	if seeded {
		if err := s.persistLocked(ctx); err != nil {
			return nil, err
		}
	}

	s.logger.Info("store opened", "leads", len(s.leads), "tasks", len(s.tasks), "seeded", seeded)
	return s, nil
}

// Close flushes the final snapshot. Mutations after Close fail with ErrStoreClosed.
// The KeyValueStore is left open; it belongs to the caller.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.persistLocked(ctx); err != nil {
		return err
	}
	s.logger.Info("store closed", "leads", len(s.leads), "tasks", len(s.tasks))
	return nil
}

// Snapshot returns a deep copy of the persisted part of the state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Leads:      cloneLeads(s.leads),
		Tasks:      cloneTasks(s.tasks),
		VPNEnabled: s.settings.VPNEnabled,
	}
}

// Restore replaces the whole state with snap after checking it is consistent.
func (s *Store) Restore(ctx context.Context, snap Snapshot) error {
	snap = Snapshot{Leads: cloneLeads(snap.Leads), Tasks: cloneTasks(snap.Tasks), VPNEnabled: snap.VPNEnabled}
	normalize(&snap)
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	_, err := s.mutate(ctx, func() (*change, error) {
		s.replaceLocked(snap)
		return &change{event: ChangeEvent{Type: EventStoreRestored, Entity: "store"}, persist: true}, nil
	})
	return err
}

// Reset discards everything and goes back to the sample data.
func (s *Store) Reset(ctx context.Context) error {
	snap := Snapshot{Leads: SampleLeads(), Tasks: SampleTasks()}

	_, err := s.mutate(ctx, func() (*change, error) {
		s.replaceLocked(snap)
		s.settings.WebViewSession = false
		s.settings.SelectedLeadID = ""
		return &change{event: ChangeEvent{Type: EventStoreReset, Entity: "store"}, persist: true}, nil
	})
	return err
}

// Reload re-reads the mirror, e.g. after another process edited it.
// Nothing is written back.
func (s *Store) Reload(ctx context.Context) error {
	snap, _, err := s.load(ctx)
	if err != nil {
		return err
	}

	_, err = s.mutate(ctx, func() (*change, error) {
		s.replaceLocked(snap)
		return &change{event: ChangeEvent{Type: EventStoreReloaded, Entity: "store"}}, nil
	})
	return err
}

type change struct {
	event   ChangeEvent
	persist bool
}

// mutate runs fn under the write lock. A nil change means fn found nothing
// to do. Persisted changes are written before the lock is released; the
// event is published after, so listeners may read the store.
func (s *Store) mutate(ctx context.Context, fn func() (*change, error)) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrStoreClosed
	}

	c, err := fn()
	if err != nil || c == nil {
		s.mu.Unlock()
		return false, err
	}

	var perr error
	ev := c.event
	if c.persist {
		perr = s.persistLocked(ctx)
		if errors.Is(perr, ErrStaleMirror) && s.resyncLocked(ctx) {
			ev = ChangeEvent{Type: EventStoreReloaded, Entity: "store"}
		}
	}
	s.mu.Unlock()

	ev.At = s.now()
	s.publish(ctx, ev)
	return true, perr
}

// resyncLocked replaces memory with what another process wrote, discarding
// the change that failed to persist.
func (s *Store) resyncLocked(ctx context.Context) bool {
	snap, _, err := s.load(ctx)
	if err != nil {
		s.logger.Error("reload after conflicting write failed", "error", err)
		return false
	}
	s.replaceLocked(snap)
	s.logger.Warn("store changed by another process, local change dropped", "leads", len(s.leads), "tasks", len(s.tasks))
	return true
}

func (s *Store) publish(ctx context.Context, ev ChangeEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("change event not delivered", "type", ev.Type, "id", ev.ID, "error", err)
	}
}

func (s *Store) persistLocked(ctx context.Context) error {
	leads, err := json.Marshal(s.leads)
	if err != nil {
		return &TechnicalError{Code: "ENCODE_FAILED", Message: "failed to encode leads", Err: err}
	}
	tasks, err := json.Marshal(s.tasks)
	if err != nil {
		return &TechnicalError{Code: "ENCODE_FAILED", Message: "failed to encode tasks", Err: err}
	}
	vpn, err := json.Marshal(s.settings.VPNEnabled)
	if err != nil {
		return &TechnicalError{Code: "ENCODE_FAILED", Message: "failed to encode vpn flag", Err: err}
	}

	err = s.kv.PutMany(ctx, map[string][]byte{
		KeyLeads:      leads,
		KeyTasks:      tasks,
		KeyVPNEnabled: vpn,
	})
	if errors.Is(err, ErrStaleMirror) {
		return &TechnicalError{Code: "STALE_STORE", Message: "store was changed by another process", Err: err}
	}
	if err != nil {
		s.logger.Error("failed to persist store", "error", err)
		return &TechnicalError{Code: "PERSIST_FAILED", Message: "failed to persist store", Err: err}
	}
	return nil
}

func (s *Store) load(ctx context.Context) (Snapshot, bool, error) {
	var snap Snapshot
	seeded := false

	found, err := s.readKey(ctx, KeyLeads, &snap.Leads)
	if err != nil {
		return Snapshot{}, false, err
	}
	if !found {
		snap.Leads = SampleLeads()
		seeded = true
	}

	found, err = s.readKey(ctx, KeyTasks, &snap.Tasks)
	if err != nil {
		return Snapshot{}, false, err
	}
	if !found {
		snap.Tasks = SampleTasks()
		seeded = true
	}

	found, err = s.readKey(ctx, KeyVPNEnabled, &snap.VPNEnabled)
	if err != nil {
		return Snapshot{}, false, err
	}
	if !found {
		seeded = true
	}

	normalize(&snap)
	return snap, seeded, nil
}

func (s *Store) readKey(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, &TechnicalError{Code: "READ_FAILED", Message: fmt.Sprintf("failed to read %q", key), Err: err}
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode persisted %q: %w", key, err)
	}
	return true, nil
}

func (s *Store) replaceLocked(snap Snapshot) {
	s.leads = snap.Leads
	s.tasks = snap.Tasks
	s.settings.VPNEnabled = snap.VPNEnabled
}

func (s *Store) leadIndexLocked(id string) int {
	for i := range s.leads {
		if s.leads[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) taskIndexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// normalize makes nil collections empty so snapshots compare and encode the same way.
func normalize(snap *Snapshot) {
	if snap.Leads == nil {
		snap.Leads = []entity.Lead{}
	}
	if snap.Tasks == nil {
		snap.Tasks = []entity.Task{}
	}
	for i := range snap.Leads {
		if snap.Leads[i].Meetings == nil {
			snap.Leads[i].Meetings = []entity.Meeting{}
		}
	}
}

func cloneLeads(in []entity.Lead) []entity.Lead {
	if in == nil {
		return nil
	}
	out := make([]entity.Lead, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func cloneTasks(in []entity.Task) []entity.Task {
	if in == nil {
		return nil
	}
	out := make([]entity.Task, len(in))
	copy(out, in)
	return out
}
