package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadbridge/internal/entity"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

// memoryKV is an in-memory KeyValueStore that counts writes.
type memoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
	puts int
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string][]byte)}
}

func (m *memoryKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) PutMany(ctx context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.data[k] = v
	}
	m.puts++
	return nil
}

func (m *memoryKV) Ping(ctx context.Context) error { return nil }
func (m *memoryKV) Close() error                   { return nil }

func (m *memoryKV) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// MockKV lets tests inject persistence failures.
type MockKV struct {
	mock.Mock
}

func (m *MockKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	raw, _ := args.Get(0).([]byte)
	return raw, args.Bool(1), args.Error(2)
}

func (m *MockKV) PutMany(ctx context.Context, entries map[string][]byte) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockKV) Ping(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *MockKV) Close() error                   { return m.Called().Error(0) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []usecase.ChangeEvent
}

func (r *recordingPublisher) Publish(ctx context.Context, ev usecase.ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) types() []usecase.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]usecase.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

var fixedNow = time.Date(2024, 5, 6, 9, 30, 0, 0, time.Local)

func sequentialIDs() usecase.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func openTestStore(t *testing.T, kv usecase.KeyValueStore, opts ...usecase.Option) *usecase.Store {
	t.Helper()
	base := []usecase.Option{
		usecase.WithClock(func() time.Time { return fixedNow }),
		usecase.WithIDGenerator(sequentialIDs()),
	}
	s, err := usecase.OpenStore(context.Background(), kv, append(base, opts...)...)
	require.NoError(t, err)
	return s
}

func annInput() usecase.AddLeadInput {
	return usecase.AddLeadInput{
		Name:            "Ann",
		Phone:           "555-0001",
		Tag:             entity.LeadTagNew,
		Status:          entity.LeadStatusContacted,
		LastContactDate: "2024-01-01",
		Notes:           "",
	}
}

func TestOpenStoreSeedsSampleData(t *testing.T) {
	kv := newMemoryKV()
	s := openTestStore(t, kv)

	assert.Len(t, s.Leads(), 5)
	assert.Len(t, s.Tasks(), 4)
	assert.False(t, s.Settings().VPNEnabled)

	assert.Equal(t, 1, kv.writes())
	for _, key := range []string{usecase.KeyLeads, usecase.KeyTasks, usecase.KeyVPNEnabled} {
		_, ok, _ := kv.Get(context.Background(), key)
		assert.True(t, ok, key)
	}
}

func TestOpenStoreRejectsMalformedData(t *testing.T) {
	kv := newMemoryKV()
	kv.data[usecase.KeyLeads] = []byte(`{"not":"a list"`)

	_, err := usecase.OpenStore(context.Background(), kv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"leads"`)
}

func TestAddLeadAssignsGeneratedFields(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, newMemoryKV())

	lead, err := s.AddLead(ctx, annInput())
	require.NoError(t, err)

	got, ok := s.GetLead(lead.ID)
	require.True(t, ok)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, fixedNow.UTC().Format(entity.DateLayout), got.DateAdded)
	assert.Equal(t, []entity.Meeting{}, got.Meetings)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "555-0001", got.Phone)
	assert.Equal(t, entity.LeadTagNew, got.Tag)
	assert.Equal(t, entity.LeadStatusContacted, got.Status)
	assert.Equal(t, "2024-01-01", got.LastContactDate)
	assert.Equal(t, lead, got)

	all := s.Leads()
	assert.Equal(t, lead.ID, all[len(all)-1].ID)
}

func TestAddLeadRejectsBadShape(t *testing.T) {
	s := openTestStore(t, newMemoryKV())
	in := annInput()
	in.Tag = "lukewarm"

	_, err := s.AddLead(context.Background(), in)
	require.Error(t, err)
	assert.True(t, entity.IsValidationError(err))
	assert.Len(t, s.Leads(), 5)
}

func TestDefaultIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	s, err := usecase.OpenStore(ctx, newMemoryKV())
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		lead, err := s.AddLead(ctx, annInput())
		require.NoError(t, err)
		require.False(t, seen[lead.ID], "duplicate id %s", lead.ID)
		seen[lead.ID] = true
	}
}

func TestUpdateLeadMergesPartialFields(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, newMemoryKV())
	lead, err := s.AddLead(ctx, annInput())
	require.NoError(t, err)

	notes := "called back"
	status := entity.LeadStatusQualified
	updated, found, err := s.UpdateLead(ctx, lead.ID, entity.LeadPatch{Notes: &notes, Status: &status})
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, "called back", updated.Notes)
	assert.Equal(t, entity.LeadStatusQualified, updated.Status)
	assert.Equal(t, lead.Name, updated.Name)
	assert.Equal(t, lead.Phone, updated.Phone)
	assert.Equal(t, lead.Tag, updated.Tag)
	assert.Equal(t, lead.DateAdded, updated.DateAdded)
}

func TestUpdateUnknownIDsAreSilentNoOps(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	s := openTestStore(t, kv)
	before := s.Snapshot()
	writes := kv.writes()

	name := "Ghost"
	_, found, err := s.UpdateLead(ctx, "missing", entity.LeadPatch{Name: &name})
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = s.UpdateTask(ctx, "missing", entity.TaskPatch{Title: &name})
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = s.ToggleTaskCompletion(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = s.UpdateMeeting(ctx, "missing", entity.MeetingPatch{})
	require.NoError(t, err)
	assert.False(t, found)

	deleted, err := s.DeleteMeeting(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, writes, kv.writes())
}

func TestGetLeadMiss(t *testing.T) {
	s := openTestStore(t, newMemoryKV())
	_, ok := s.GetLead("nope")
	assert.False(t, ok)
	assert.Equal(t, []entity.Meeting{}, s.GetMeetingsByLead("nope"))
}

func TestGetLeadTasksKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, newMemoryKV())
	lead, err := s.AddLead(ctx, annInput())
	require.NoError(t, err)

	first, err := s.AddTask(ctx, usecase.AddTaskInput{Title: "late", DueDate: "2024-06-01T10:00:00", LeadID: lead.ID})
	require.NoError(t, err)
	_, err = s.AddTask(ctx, usecase.AddTaskInput{Title: "other lead", DueDate: "2024-05-01T10:00:00", LeadID: "1"})
	require.NoError(t, err)
	second, err := s.AddTask(ctx, usecase.AddTaskInput{Title: "early", DueDate: "2024-05-07T10:00:00", LeadID: lead.ID})
	require.NoError(t, err)

	tasks := s.GetLeadTasks(lead.ID)
	require.Len(t, tasks, 2)
	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, second.ID, tasks[1].ID)
}

func TestAddTaskRequiresExistingLead(t *testing.T) {
	s := openTestStore(t, newMemoryKV())

	_, err := s.AddTask(context.Background(), usecase.AddTaskInput{Title: "x", DueDate: "2024-06-01T10:00:00", LeadID: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrLeadNotFound))
	assert.True(t, usecase.IsDomainError(err))
	assert.Len(t, s.Tasks(), 4)
}

func TestToggleTaskCompletion(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, newMemoryKV())

	task, found, err := s.ToggleTaskCompletion(ctx, "1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, task.Completed)

	task, _, err = s.ToggleTaskCompletion(ctx, "1")
	require.NoError(t, err)
	assert.False(t, task.Completed)
}

func TestMeetingLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, newMemoryKV())
	lead, err := s.AddLead(ctx, annInput())
	require.NoError(t, err)

	meeting, added, err := s.AddMeeting(ctx, usecase.AddMeetingInput{
		Type:   entity.MeetingTypeBOM,
		Status: entity.MeetingStatusBOM,
		Date:   nil,
		LeadID: lead.ID,
	})
	require.NoError(t, err)
	require.True(t, added)
	assert.Len(t, s.GetMeetingsByLead(lead.ID), 1)

	other, added, err := s.AddMeeting(ctx, usecase.AddMeetingInput{Type: entity.MeetingTypePT, Status: entity.MeetingStatusPT, LeadID: "1"})
	require.NoError(t, err)
	require.True(t, added)

	date := "2024-05-10"
	updated, found, err := s.UpdateMeeting(ctx, meeting.ID, entity.MeetingPatch{Date: entity.SetString(date)})
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, updated.Date)
	assert.Equal(t, date, *updated.Date)
	assert.Equal(t, entity.MeetingStatusBOM, updated.Status)

	deleted, err := s.DeleteMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, s.GetMeetingsByLead(lead.ID))

	remaining := s.GetMeetingsByLead("1")
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].ID)
}

func TestAddMeetingForUnknownLeadIsDropped(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	s := openTestStore(t, kv)
	writes := kv.writes()

	_, added, err := s.AddMeeting(ctx, usecase.AddMeetingInput{Type: entity.MeetingTypeBIT, LeadID: "nope"})
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, writes, kv.writes())
}

func TestStoreDoesNotEnforceStatusPerType(t *testing.T) {
	s := openTestStore(t, newMemoryKV())

	_, added, err := s.AddMeeting(context.Background(), usecase.AddMeetingInput{
		Type:   entity.MeetingTypeWG1,
		Status: entity.MeetingStatusShow,
		LeadID: "1",
	})
	require.NoError(t, err)
	assert.True(t, added)
}

func TestReopenReproducesState(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	s := openTestStore(t, kv)

	lead, err := s.AddLead(ctx, annInput())
	require.NoError(t, err)
	d := "2024-07-01"
	_, _, err = s.AddMeeting(ctx, usecase.AddMeetingInput{Type: entity.MeetingTypeBIT, Status: entity.MeetingStatusShow, Date: &d, LeadID: lead.ID})
	require.NoError(t, err)
	_, err = s.AddTask(ctx, usecase.AddTaskInput{Title: "call", DueDate: "2024-05-07T10:00:00", LeadID: lead.ID})
	require.NoError(t, err)
	_, err = s.ToggleVPN(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	reopened := openTestStore(t, kv)
	assert.Equal(t, s.Snapshot(), reopened.Snapshot())
	assert.True(t, reopened.Settings().VPNEnabled)
}

func TestSessionFlagsAreNotPersisted(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	s := openTestStore(t, kv)
	writes := kv.writes()

	require.NoError(t, s.OpenWebViewSession(ctx))
	assert.True(t, s.Settings().WebViewSession)
	require.NoError(t, s.SelectLead(ctx, "2"))
	assert.Equal(t, "2", s.Settings().SelectedLeadID)
	require.NoError(t, s.ClearWebViewSession(ctx))
	assert.False(t, s.Settings().WebViewSession)

	assert.Equal(t, writes, kv.writes())

	err := s.SelectLead(ctx, "nope")
	assert.True(t, errors.Is(err, entity.ErrLeadNotFound))
}

func TestUpdateMeetingChecksMergedMeeting(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	s := openTestStore(t, kv)

	m, _, err := s.AddMeeting(ctx, usecase.AddMeetingInput{Type: entity.MeetingTypeBOM, Status: entity.MeetingStatusBOM, LeadID: "1"})
	require.NoError(t, err)

	allowedPair := func(next entity.Meeting) error {
		if errs := usecase.ValidateMeetingInput(next.Type, next.Status); len(errs) > 0 {
			return errs
		}
		return nil
	}

	show := entity.MeetingStatusShow
	_, found, err := s.UpdateMeeting(ctx, m.ID, entity.MeetingPatch{Status: &show}, allowedPair)
	require.NoError(t, err)
	require.True(t, found)

	// a type change is checked against the status stored by the previous update
	var seen entity.Meeting
	wg1 := entity.MeetingTypeWG1
	writes := kv.writes()
	_, found, err = s.UpdateMeeting(ctx, m.ID, entity.MeetingPatch{Type: &wg1}, func(next entity.Meeting) error {
		seen = next
		return allowedPair(next)
	})
	require.Error(t, err)
	assert.True(t, entity.IsValidationError(err))
	assert.False(t, found)
	assert.Equal(t, entity.MeetingTypeWG1, seen.Type)
	assert.Equal(t, entity.MeetingStatusShow, seen.Status)

	got, ok := s.GetMeeting(m.ID)
	require.True(t, ok)
	assert.Equal(t, entity.MeetingTypeBOM, got.Type)
	assert.Equal(t, entity.MeetingStatusShow, got.Status)
	assert.Equal(t, writes, kv.writes(), "rejected update must not persist")
}

// conflictKV fails the next write as if another process had written first.
type conflictKV struct {
	*memoryKV
	conflict bool
}

func (c *conflictKV) PutMany(ctx context.Context, entries map[string][]byte) error {
	if c.conflict {
		c.conflict = false
		return fmt.Errorf("bump revision: %w", usecase.ErrStaleMirror)
	}
	return c.memoryKV.PutMany(ctx, entries)
}

func TestStaleWriteReloadsAndDropsChange(t *testing.T) {
	ctx := context.Background()
	kv := &conflictKV{memoryKV: newMemoryKV()}
	pub := &recordingPublisher{}
	s := openTestStore(t, kv, usecase.WithPublisher(pub))

	kv.mu.Lock()
	kv.data[usecase.KeyLeads] = []byte(`[{"id":"x","name":"Imported","phone":"","tag":"new","status":"contacted","lastContactDate":"","dateAdded":"2024-01-01","notes":"","meetings":[]}]`)
	kv.data[usecase.KeyTasks] = []byte(`[]`)
	kv.mu.Unlock()
	kv.conflict = true

	_, err := s.ToggleVPN(ctx)
	require.ErrorIs(t, err, usecase.ErrStaleMirror)
	assert.False(t, usecase.NotPersisted(err))
	assert.False(t, s.Settings().VPNEnabled)
	require.Len(t, s.Leads(), 1)
	assert.Equal(t, "Imported", s.Leads()[0].Name)
	assert.Equal(t, usecase.EventStoreReloaded, pub.types()[len(pub.types())-1])

	lead, err := s.AddLead(ctx, annInput())
	require.NoError(t, err)
	assert.NotEmpty(t, lead.ID)
	assert.Len(t, s.Leads(), 2)
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	kv := new(MockKV)
	kv.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)
	kv.On("PutMany", mock.Anything, mock.Anything).Return(nil).Once()
	kv.On("PutMany", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	s := openTestStore(t, kv)

	lead, err := s.AddLead(ctx, annInput())
	require.Error(t, err)
	assert.True(t, usecase.IsTechnicalError(err))
	assert.True(t, usecase.NotPersisted(err))
	assert.NotEmpty(t, lead.ID)

	_, ok := s.GetLead(lead.ID)
	assert.True(t, ok)
	kv.AssertNumberOfCalls(t, "PutMany", 2)
}

func TestReadFailureFailsOpen(t *testing.T) {
	kv := new(MockKV)
	kv.On("Get", mock.Anything, usecase.KeyLeads).Return(nil, false, errors.New("io error"))

	_, err := usecase.OpenStore(context.Background(), kv)
	require.Error(t, err)
	assert.True(t, usecase.IsTechnicalError(err))
}

func TestClosedStoreRejectsMutations(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	s := openTestStore(t, kv)

	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))

	_, err := s.AddLead(ctx, annInput())
	assert.ErrorIs(t, err, usecase.ErrStoreClosed)
	_, err = s.ToggleVPN(ctx)
	assert.ErrorIs(t, err, usecase.ErrStoreClosed)

	assert.Len(t, s.Leads(), 5)
}

func TestMutationsPublishEvents(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s := openTestStore(t, newMemoryKV(), usecase.WithPublisher(pub))

	lead, err := s.AddLead(ctx, annInput())
	require.NoError(t, err)
	_, _, err = s.AddMeeting(ctx, usecase.AddMeetingInput{Type: entity.MeetingTypeBOM, LeadID: lead.ID})
	require.NoError(t, err)
	_, _, err = s.ToggleTaskCompletion(ctx, "1")
	require.NoError(t, err)
	_, _, err = s.UpdateLead(ctx, "missing", entity.LeadPatch{})
	require.NoError(t, err)
	_, err = s.ToggleVPN(ctx)
	require.NoError(t, err)

	assert.Equal(t, []usecase.EventType{
		usecase.EventLeadCreated,
		usecase.EventMeetingCreated,
		usecase.EventTaskToggled,
		usecase.EventSettingsUpdate,
	}, pub.types())
	assert.Equal(t, fixedNow, pub.events[0].At)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	failing := usecase.PublisherFunc(func(ctx context.Context, ev usecase.ChangeEvent) error {
		return errors.New("broker down")
	})
	s := openTestStore(t, newMemoryKV(), usecase.WithPublisher(failing))

	_, err := s.AddLead(context.Background(), annInput())
	assert.NoError(t, err)
}

func TestRestoreAndReset(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	s := openTestStore(t, kv)

	snap := usecase.Snapshot{
		Leads: []entity.Lead{{ID: "a", Name: "Ann", Tag: entity.LeadTagHot, Status: entity.LeadStatusClosed, DateAdded: "2024-01-01"}},
		Tasks: []entity.Task{{ID: "t", Title: "x", DueDate: "2024-01-02T09:00:00", LeadID: "a"}},
	}
	require.NoError(t, s.Restore(ctx, snap))
	assert.Len(t, s.Leads(), 1)
	assert.Equal(t, []entity.Meeting{}, s.Leads()[0].Meetings)

	bad := usecase.Snapshot{Tasks: []entity.Task{{ID: "t", LeadID: "ghost"}}}
	err := s.Restore(ctx, bad)
	require.Error(t, err)
	assert.True(t, entity.IsValidationError(err))
	assert.Len(t, s.Leads(), 1)

	require.NoError(t, s.Reset(ctx))
	assert.Len(t, s.Leads(), 5)
	assert.Len(t, s.Tasks(), 4)
}

func TestReloadPicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	s := openTestStore(t, kv)
	other := openTestStore(t, kv)

	_, err := other.AddLead(ctx, annInput())
	require.NoError(t, err)
	assert.Len(t, s.Leads(), 5)

	writes := kv.writes()
	require.NoError(t, s.Reload(ctx))
	assert.Len(t, s.Leads(), 6)
	assert.Equal(t, writes, kv.writes())
}

func TestOverdueTasks(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, newMemoryKV())
	_, _, err := s.ToggleTaskCompletion(ctx, "3")
	require.NoError(t, err)

	now := time.Date(2023, 9, 26, 0, 0, 0, 0, time.Local)
	overdue := s.OverdueTasks(now)

	ids := make([]string, len(overdue))
	for i, task := range overdue {
		ids[i] = task.ID
	}
	assert.Equal(t, []string{"1"}, ids)
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, newMemoryKV())
	_, _, err := s.AddMeeting(ctx, usecase.AddMeetingInput{Type: entity.MeetingTypeBOM, LeadID: "1"})
	require.NoError(t, err)

	lead, _ := s.GetLead("1")
	lead.Name = "changed"
	lead.Meetings[0].Status = entity.MeetingStatusShow

	again, _ := s.GetLead("1")
	assert.Equal(t, "John Smith", again.Name)
	assert.Equal(t, entity.MeetingStatusNone, again.Meetings[0].Status)
}
