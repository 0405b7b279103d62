package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"meetdesk/internal/reminders/domain"
)

// MockReminderRepository is a mock implementation of domain.Repository.
type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) SaveBatch(ctx context.Context, reminders []*domain.Reminder) error {
	args := m.Called(ctx, reminders)
	return args.Error(0)
}

func (m *MockReminderRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reminder), args.Error(1)
}

func (m *MockReminderRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockReminderRepository) CountByMeeting(ctx context.Context, meetingRef uuid.UUID) (int, error) {
	args := m.Called(ctx, meetingRef)
	return args.Int(0), args.Error(1)
}

func (m *MockReminderRepository) FindByMeeting(ctx context.Context, meetingRef uuid.UUID) ([]*domain.Reminder, error) {
	args := m.Called(ctx, meetingRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reminder), args.Error(1)
}

// MockUnitOfWork is a mock implementation of application.UnitOfWork.
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func passthroughUoW(ctx context.Context) *MockUnitOfWork {
	uow := new(MockUnitOfWork)
	uow.On("Begin", mock.Anything).Return(ctx, nil)
	uow.On("Commit", mock.Anything).Return(nil).Maybe()
	uow.On("Rollback", mock.Anything).Return(nil).Maybe()
	return uow
}

func TestQueueManager_EnqueueCampaign(t *testing.T) {
	ctx := context.Background()
	repo := new(MockReminderRepository)
	uow := passthroughUoW(ctx)
	meetingID := uuid.New()

	// Monday 2025-06-02: the next 7 business days are Tue Jun 3 .. Wed Jun 11.
	clock := func() time.Time { return time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC) }

	repo.On("CountByMeeting", mock.Anything, meetingID).Return(0, nil)

	var saved []*domain.Reminder
	repo.On("SaveBatch", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).([]*domain.Reminder)
	}).Return(nil)

	manager := NewQueueManager(repo, uow, testLogger()).WithClock(clock)
	result, err := manager.EnqueueCampaign(ctx, meetingID, []string{"a@example.com", "b@example.com"}, "Reminder", "<p>hi</p>", 7)
	require.NoError(t, err)

	assert.Equal(t, 14, result.Enqueued, "2 recipients x 7 business days")
	require.Len(t, saved, 14)

	first := saved[0]
	assert.Equal(t, time.Date(2025, 6, 3, 7, 30, 0, 0, time.UTC), first.ScheduledAt())
	require.NotNil(t, first.MeetingRef())
	assert.Equal(t, meetingID, *first.MeetingRef())

	last := saved[len(saved)-1]
	assert.Equal(t, time.Date(2025, 6, 11, 7, 30, 0, 0, time.UTC), last.ScheduledAt(), "weekends skipped")

	assert.Equal(t, first.ScheduledAt(), result.FirstDue)
	assert.Equal(t, last.ScheduledAt(), result.LastDue)
	uow.AssertCalled(t, "Commit", mock.Anything)
}

func TestQueueManager_EnqueueCampaign_AlreadyExists(t *testing.T) {
	ctx := context.Background()
	repo := new(MockReminderRepository)
	uow := passthroughUoW(ctx)
	meetingID := uuid.New()

	repo.On("CountByMeeting", mock.Anything, meetingID).Return(5, nil)

	manager := NewQueueManager(repo, uow, testLogger())
	_, err := manager.EnqueueCampaign(ctx, meetingID, []string{"a@example.com"}, "s", "b", 7)

	assert.ErrorIs(t, err, ErrCampaignExists)
	repo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	uow.AssertCalled(t, "Rollback", mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestQueueManager_EnqueueCampaign_NoRecipients(t *testing.T) {
	manager := NewQueueManager(new(MockReminderRepository), new(MockUnitOfWork), testLogger())
	_, err := manager.EnqueueCampaign(context.Background(), uuid.New(), nil, "s", "b", 7)
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestQueueManager_EnqueueCampaign_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := new(MockReminderRepository)
	uow := passthroughUoW(ctx)
	meetingID := uuid.New()

	repo.On("CountByMeeting", mock.Anything, meetingID).Return(0, nil)
	repo.On("SaveBatch", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	manager := NewQueueManager(repo, uow, testLogger())
	_, err := manager.EnqueueCampaign(ctx, meetingID, []string{"a@example.com"}, "s", "b", 7)

	require.Error(t, err)
	uow.AssertCalled(t, "Rollback", mock.Anything)
}
