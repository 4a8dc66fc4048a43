package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BigT001/studyexpressuk-sub002/internal/announcement/domain"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
	token "github.com/BigT001/studyexpressuk-sub002/pkg/token"
)

// MockAnnouncementRepo Mock AnnouncementRepository
type MockAnnouncementRepo struct {
	mock.Mock
}

func (m *MockAnnouncementRepo) Insert(ctx context.Context, announcement *domain.Announcement) error {
	args := m.Called(ctx, announcement)
	return args.Error(0)
}
func (m *MockAnnouncementRepo) FindForRole(ctx context.Context, role token.RoleType) ([]domain.Announcement, error) {
	args := m.Called(ctx, role)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Announcement), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockAnnouncementRepo) Delete(ctx context.Context, announcementID string) (int64, error) {
	args := m.Called(ctx, announcementID)
	return args.Get(0).(int64), args.Error(1)
}

// TestAnnouncementUseCase_Create 測試建立公告
func TestAnnouncementUseCase_Create(t *testing.T) {
	logger.Log = logger.SetNewNop()
	ctx := context.Background()

	t.Run("情境 1: 建立成功，nil audience 正規化成空陣列", func(t *testing.T) {
		repo := new(MockAnnouncementRepo)
		uc := NewAnnouncementUseCase(repo)

		repo.On("Insert", ctx, mock.Anything).Return(nil)

		announcement, err := uc.Create(ctx, "admin-1", "Term dates", "New term starts in May.", nil)
		assert.NoError(t, err)
		assert.NotNil(t, announcement.Audience)
		assert.Empty(t, announcement.Audience)
	})

	t.Run("情境 2: 空白標題被擋下", func(t *testing.T) {
		repo := new(MockAnnouncementRepo)
		uc := NewAnnouncementUseCase(repo)

		_, err := uc.Create(ctx, "admin-1", "  ", "body", nil)
		assert.Error(t, err)
		assert.Equal(t, errprocess.Validation, errprocess.KindOf(err))
		repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("情境 3: audience 含未知角色被擋下", func(t *testing.T) {
		repo := new(MockAnnouncementRepo)
		uc := NewAnnouncementUseCase(repo)

		_, err := uc.Create(ctx, "admin-1", "title", "body", []token.RoleType{"SUPERUSER"})
		assert.Error(t, err)
		assert.Equal(t, errprocess.Validation, errprocess.KindOf(err))
	})
}

// TestAnnouncementUseCase_Delete 測試刪除公告
func TestAnnouncementUseCase_Delete(t *testing.T) {
	logger.Log = logger.SetNewNop()
	ctx := context.Background()

	t.Run("情境 1: 刪除成功", func(t *testing.T) {
		repo := new(MockAnnouncementRepo)
		uc := NewAnnouncementUseCase(repo)

		repo.On("Delete", ctx, "ann-1").Return(int64(1), nil)
		assert.NoError(t, uc.Delete(ctx, "ann-1"))
	})

	t.Run("情境 2: 公告不存在回 NotFound", func(t *testing.T) {
		repo := new(MockAnnouncementRepo)
		uc := NewAnnouncementUseCase(repo)

		repo.On("Delete", ctx, "missing").Return(int64(0), nil)
		err := uc.Delete(ctx, "missing")
		assert.Error(t, err)
		assert.Equal(t, errprocess.NotFound, errprocess.KindOf(err))
	})
}

// TestAnnouncementVisibility audience 判斷
func TestAnnouncementVisibility(t *testing.T) {
	t.Run("情境 1: audience 為空所有角色可見", func(t *testing.T) {
		a := domain.Announcement{ID: primitive.NewObjectID()}
		for _, role := range token.AllRoles {
			assert.True(t, a.VisibleTo(role))
		}
	})

	t.Run("情境 2: audience 有指定時只有名單內角色可見", func(t *testing.T) {
		a := domain.Announcement{
			Audience: []token.RoleType{token.RoleStaff, token.RoleCorporate},
		}
		assert.True(t, a.VisibleTo(token.RoleStaff))
		assert.True(t, a.VisibleTo(token.RoleCorporate))
		assert.False(t, a.VisibleTo(token.RoleIndividual))
		assert.False(t, a.VisibleTo(token.RoleAdmin))
	})
}
