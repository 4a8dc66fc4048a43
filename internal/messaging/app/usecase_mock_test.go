package app

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/BigT001/studyexpressuk-sub002/internal/messaging/domain"
)

// MockMessageRepo Mock MessageRepository
type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Insert(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
func (m *MockMessageRepo) FindByParticipant(ctx context.Context, accountID string) ([]domain.Message, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMessageRepo) FindThread(ctx context.Context, selfID, counterpartID string) ([]domain.Message, error) {
	args := m.Called(ctx, selfID, counterpartID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMessageRepo) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMessageRepo) MarkThreadRead(ctx context.Context, selfID, counterpartID string, at time.Time) (int64, error) {
	args := m.Called(ctx, selfID, counterpartID, at)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockMessageRepo) MarkMessageRead(ctx context.Context, selfID, messageID string, at time.Time) (int64, error) {
	args := m.Called(ctx, selfID, messageID, at)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockMessageRepo) CountUnreadByCounterpart(ctx context.Context, accountID string) ([]domain.CounterpartUnread, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.CounterpartUnread), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockDirectory Mock Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Lookup(ctx context.Context, accountID string) (*domain.Participant, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Participant), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockInboxPublisher Mock InboxPublisher
type MockInboxPublisher struct {
	mock.Mock
}

func (m *MockInboxPublisher) Publish(channel string, message interface{}) error {
	args := m.Called(channel, message)
	return args.Error(0)
}
