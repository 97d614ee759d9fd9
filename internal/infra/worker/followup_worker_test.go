package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gamertech/tradein-backend/internal/entity"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) DueFollowups(ctx context.Context, limit int, now time.Time) ([]*entity.Lead, error) {
	args := m.Called(ctx, limit, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) MarkFollowupSent(ctx context.Context, id string, sentAt time.Time) error {
	args := m.Called(ctx, id, sentAt)
	return args.Error(0)
}

func (m *MockLeadRepository) RecordFollowupError(ctx context.Context, id string, detail string) error {
	args := m.Called(ctx, id, detail)
	return args.Error(0)
}

// MockFollowupSender
type MockFollowupSender struct {
	mock.Mock
}

func (m *MockFollowupSender) SendFollowup(to, name string, selections json.RawMessage, cash, credit int) error {
	args := m.Called(to, name, selections, cash, credit)
	return args.Error(0)
}

func dueLead(id, email string, cash, credit int) *entity.Lead {
	name := "Aaron"
	return &entity.Lead{
		ID:           id,
		Email:        email,
		Stage:        entity.StageBrowsing,
		Name:         &name,
		Cash:         &cash,
		Credit:       &credit,
		ConsentEmail: true,
	}
}

func TestFollowupRunMarksSentOnSuccess(t *testing.T) {
	repo := new(MockLeadRepository)
	sender := new(MockFollowupSender)

	repo.On("DueFollowups", mock.Anything, FollowupBatchSize, mock.Anything).
		Return([]*entity.Lead{dueLead("lead-1", "a@example.com", 120, 180)}, nil)
	sender.On("SendFollowup", "a@example.com", "Aaron", mock.Anything, 120, 180).Return(nil)
	repo.On("MarkFollowupSent", mock.Anything, "lead-1", mock.Anything).Return(nil)

	sent, failed := NewFollowupWorker(repo, sender).RunOnce(context.Background())

	assert.Equal(t, 1, sent)
	assert.Equal(t, 0, failed)
	repo.AssertExpectations(t)
	sender.AssertExpectations(t)
	repo.AssertNotCalled(t, "RecordFollowupError", mock.Anything, mock.Anything, mock.Anything)
}

func TestFollowupRunRecordsFailureAndContinues(t *testing.T) {
	repo := new(MockLeadRepository)
	sender := new(MockFollowupSender)

	repo.On("DueFollowups", mock.Anything, FollowupBatchSize, mock.Anything).
		Return([]*entity.Lead{
			dueLead("lead-1", "dead@example.com", 50, 80),
			dueLead("lead-2", "alive@example.com", 120, 180),
		}, nil)

	sender.On("SendFollowup", "dead@example.com", mock.Anything, mock.Anything, 50, 80).
		Return(errors.New("smtp: mailbox unavailable"))
	sender.On("SendFollowup", "alive@example.com", mock.Anything, mock.Anything, 120, 180).
		Return(nil)

	repo.On("RecordFollowupError", mock.Anything, "lead-1", "smtp: mailbox unavailable").Return(nil)
	repo.On("MarkFollowupSent", mock.Anything, "lead-2", mock.Anything).Return(nil)

	sent, failed := NewFollowupWorker(repo, sender).RunOnce(context.Background())

	// The dead mailbox never aborts the rest of the batch.
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "MarkFollowupSent", mock.Anything, "lead-1", mock.Anything)
}

func TestFollowupRunEmptyBatch(t *testing.T) {
	repo := new(MockLeadRepository)
	sender := new(MockFollowupSender)

	repo.On("DueFollowups", mock.Anything, FollowupBatchSize, mock.Anything).
		Return([]*entity.Lead{}, nil)

	sent, failed := NewFollowupWorker(repo, sender).RunOnce(context.Background())

	assert.Zero(t, sent)
	assert.Zero(t, failed)
	sender.AssertNotCalled(t, "SendFollowup", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFollowupRunQueryFailure(t *testing.T) {
	repo := new(MockLeadRepository)
	sender := new(MockFollowupSender)

	repo.On("DueFollowups", mock.Anything, FollowupBatchSize, mock.Anything).
		Return(nil, errors.New("connection refused"))

	sent, failed := NewFollowupWorker(repo, sender).RunOnce(context.Background())

	assert.Zero(t, sent)
	assert.Zero(t, failed)
}
