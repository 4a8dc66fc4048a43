package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/BigT001/studyexpressuk-sub002/internal/account/domain"
	"github.com/BigT001/studyexpressuk-sub002/pkg/encrypt"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
	token "github.com/BigT001/studyexpressuk-sub002/pkg/token"
)

// MockAccountRepo Mock AccountRepo
type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) CreateAccount(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}
func (m *MockAccountRepo) UpdateAccountStatus(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}
func (m *MockAccountRepo) UpdateAccountRole(ctx context.Context, accountID, role string) (int64, error) {
	args := m.Called(ctx, accountID, role)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockAccountRepo) FindByAccount(ctx context.Context, accountQuery *domain.AccountQuery) (*domain.Account, error) {
	args := m.Called(ctx, accountQuery)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Account), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockAccountRepo) CountAccounts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionRedis 針對 AccountSession 的 Mock
type MockSessionRedis struct {
	mock.Mock
}

func (m *MockSessionRedis) Set(ctx context.Context, key string, value domain.AccountSession, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}
func (m *MockSessionRedis) Get(ctx context.Context, key string) (domain.AccountSession, error) {
	args := m.Called(ctx, key)
	if args.Get(0) != nil {
		return args.Get(0).(domain.AccountSession), args.Error(1)
	}
	return domain.AccountSession{}, args.Error(1)
}
func (m *MockSessionRedis) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
func (m *MockSessionRedis) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}
func (m *MockSessionRedis) GetTTL(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func TestAccountUseCase_Register(t *testing.T) {
	ctx := context.Background()
	email := "learner@example.com"
	password := "!!Securepassword111"

	logger.Log = logger.SetNewNop()

	// **情境 1: 註冊成功**
	t.Run("成功註冊", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		mockRepo.On("FindByAccount", ctx, &domain.AccountQuery{Email: &email}).Return(nil, errors.New("not found")).Once()
		mockRepo.On("CreateAccount", ctx, mock.Anything).Return(nil).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		account, err := uc.Register(ctx, email, password, "Learner", token.RoleIndividual)

		assert.NoError(t, err)
		assert.NotEmpty(t, account.AccountID)
		assert.Equal(t, token.RoleIndividual, account.Role)
		mockRepo.AssertExpectations(t)
	})

	// **情境 2: Email 已存在**
	t.Run("Email 已存在", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		existing := &domain.Account{ID: 1, AccountID: "AAA", Email: email, Role: token.RoleIndividual}
		mockRepo.On("FindByAccount", ctx, &domain.AccountQuery{Email: &email}).Return(existing, nil).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		_, err := uc.Register(ctx, email, password, "Learner", token.RoleIndividual)

		assert.Error(t, err)
		assert.Equal(t, errprocess.Conflict, errprocess.KindOf(err))
		mockRepo.AssertExpectations(t)
	})

	// **情境 3: 未知角色**
	t.Run("未知角色", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		_, err := uc.Register(ctx, email, password, "Learner", token.RoleType("SUPERUSER"))

		assert.Error(t, err)
		assert.Equal(t, errprocess.Validation, errprocess.KindOf(err))
		mockRepo.AssertNotCalled(t, "CreateAccount")
	})

	// **情境 4: 密碼加密失敗**
	t.Run("密碼加密失敗", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		mockHashPassword := func(password string) (string, error) {
			return "", errors.New("hash password error")
		}
		mockRepo.On("FindByAccount", ctx, &domain.AccountQuery{Email: &email}).Return(nil, errors.New("not found")).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, mockHashPassword)
		_, err := uc.Register(ctx, email, password, "Learner", token.RoleIndividual)

		assert.Error(t, err)
		assert.Equal(t, errprocess.Validation, errprocess.KindOf(err))
		mockRepo.AssertExpectations(t)
	})
}

func TestAccountUseCase_Login(t *testing.T) {
	ctx := context.Background()
	email := "learner@example.com"
	password := "!!Securepassword111"
	hashedPassword, _ := encrypt.HashPassword(password)

	logger.Log = logger.SetNewNop()

	// **情境 1: 成功登入**
	t.Run("成功登入", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		existing := &domain.Account{
			AccountID: "AAA",
			Email:     email,
			Password:  hashedPassword,
			Role:      token.RoleStaff,
			Status:    domain.AccountStatusActive,
		}

		mockRepo.On("FindByAccount", ctx, &domain.AccountQuery{Email: &email}).Return(existing, nil).Once()
		mockRedis.On("Set", ctx, existing.AccountID, mock.Anything, time.Hour).Return(nil).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		tok, err := uc.Login(ctx, email, password)

		assert.NoError(t, err)
		assert.NotEmpty(t, tok)
		mockRepo.AssertExpectations(t)
		mockRedis.AssertExpectations(t)
	})

	// **情境 2: 使用者不存在**
	t.Run("使用者不存在", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		mockRepo.On("FindByAccount", ctx, &domain.AccountQuery{Email: &email}).
			Return(nil, errprocess.New(errprocess.NotFound, "no account found with given criteria")).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		tok, err := uc.Login(ctx, email, password)

		assert.Error(t, err)
		assert.Equal(t, errprocess.Unauthenticated, errprocess.KindOf(err))
		assert.Empty(t, tok)
		mockRepo.AssertExpectations(t)
	})

	// **情境 3: 密碼錯誤**
	t.Run("密碼錯誤", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		existing := &domain.Account{
			AccountID: "AAA",
			Email:     email,
			Password:  hashedPassword,
			Role:      token.RoleStaff,
			Status:    domain.AccountStatusActive,
		}
		mockRepo.On("FindByAccount", ctx, &domain.AccountQuery{Email: &email}).Return(existing, nil).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		tok, err := uc.Login(ctx, email, "wrong_password")

		assert.Error(t, err)
		assert.Equal(t, errprocess.Unauthenticated, errprocess.KindOf(err))
		assert.Empty(t, tok)
		mockRepo.AssertExpectations(t)
	})

	// **情境 4: 帳號已停用**
	t.Run("帳號已停用", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		existing := &domain.Account{
			AccountID: "AAA",
			Email:     email,
			Password:  hashedPassword,
			Role:      token.RoleStaff,
			Status:    domain.AccountStatusSuspended,
		}
		mockRepo.On("FindByAccount", ctx, &domain.AccountQuery{Email: &email}).Return(existing, nil).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		tok, err := uc.Login(ctx, email, password)

		assert.Error(t, err)
		assert.Equal(t, errprocess.Forbidden, errprocess.KindOf(err))
		assert.Empty(t, tok)
		mockRepo.AssertExpectations(t)
	})

	// **情境 5: JWT 生成失敗**
	t.Run("JWT 生成失敗", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		existing := &domain.Account{
			AccountID: "AAA",
			Email:     email,
			Password:  hashedPassword,
			Role:      token.RoleStaff,
			Status:    domain.AccountStatusActive,
		}
		mockRepo.On("FindByAccount", ctx, &domain.AccountQuery{Email: &email}).Return(existing, nil).Once()

		// 備份原始的 `GenerateJWTFunc`，測試結束後恢復
		originalGenerateJWT := token.GenerateJWTFunc
		defer func() { token.GenerateJWTFunc = originalGenerateJWT }()

		token.GenerateJWTFunc = func(accountID, email, role, issuer string) (string, error) {
			return "", errors.New("can't GenerateJWT!!!")
		}

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		tok, err := uc.Login(ctx, email, password)

		assert.Error(t, err)
		assert.Empty(t, tok)
		mockRepo.AssertExpectations(t)
	})

	// **情境 6: Redis 存 session 失敗**
	t.Run("Redis 存 session 失敗", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		existing := &domain.Account{
			AccountID: "AAA",
			Email:     email,
			Password:  hashedPassword,
			Role:      token.RoleStaff,
			Status:    domain.AccountStatusActive,
		}
		mockRepo.On("FindByAccount", ctx, &domain.AccountQuery{Email: &email}).Return(existing, nil).Once()
		mockRedis.On("Set", ctx, existing.AccountID, mock.Anything, time.Hour).
			Return(errors.New("redis error")).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		tok, err := uc.Login(ctx, email, password)

		assert.Error(t, err)
		assert.Equal(t, errprocess.Storage, errprocess.KindOf(err))
		assert.Empty(t, tok)
		mockRedis.AssertExpectations(t)
	})
}

func TestAccountUseCase_Logout(t *testing.T) {
	ctx := context.Background()
	tokenStr := "mockToken"
	accountID := "AAA"

	logger.Log = logger.SetNewNop()

	// **情境 1: 解析 Token 失敗**
	t.Run("解析 Token 失敗", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		originalParseJWTFunc := token.ParseJWTFunc
		defer func() { token.ParseJWTFunc = originalParseJWTFunc }()

		token.ParseJWTFunc = func(t string) (*token.Claims, error) {
			return nil, errors.New("invalid token")
		}

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		err := uc.Logout(ctx, tokenStr)

		assert.Error(t, err)
		assert.Equal(t, errprocess.Unauthenticated, errprocess.KindOf(err))
	})

	// **情境 2: 成功登出**
	t.Run("成功登出", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		originalParseJWTFunc := token.ParseJWTFunc
		defer func() { token.ParseJWTFunc = originalParseJWTFunc }()

		token.ParseJWTFunc = func(t string) (*token.Claims, error) {
			return &token.Claims{AccountID: accountID}, nil
		}
		mockRedis.On("Del", ctx, accountID).Return(nil).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		err := uc.Logout(ctx, tokenStr)

		assert.NoError(t, err)
		mockRedis.AssertExpectations(t)
	})
}

func TestAccountUseCase_UpdateRole(t *testing.T) {
	ctx := context.Background()
	accountID := "AAA"

	logger.Log = logger.SetNewNop()

	// **情境 1: 成功變更角色並清除 session**
	t.Run("成功變更角色", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		mockRepo.On("UpdateAccountRole", ctx, accountID, string(token.RoleStaff)).Return(int64(1), nil).Once()
		mockRedis.On("Del", ctx, accountID).Return(nil).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		err := uc.UpdateRole(ctx, accountID, token.RoleStaff)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockRedis.AssertExpectations(t)
	})

	// **情境 2: 帳號不存在**
	t.Run("帳號不存在", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		mockRepo.On("UpdateAccountRole", ctx, accountID, string(token.RoleStaff)).Return(int64(0), nil).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		err := uc.UpdateRole(ctx, accountID, token.RoleStaff)

		assert.Error(t, err)
		assert.Equal(t, errprocess.NotFound, errprocess.KindOf(err))
		mockRepo.AssertExpectations(t)
	})

	// **情境 3: 未知角色**
	t.Run("未知角色", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		err := uc.UpdateRole(ctx, accountID, token.RoleType("OWNER"))

		assert.Error(t, err)
		assert.Equal(t, errprocess.Validation, errprocess.KindOf(err))
		mockRepo.AssertNotCalled(t, "UpdateAccountRole")
	})
}

func TestAccountUseCase_SessionAlive(t *testing.T) {
	ctx := context.Background()
	accountID := "AAA"

	logger.Log = logger.SetNewNop()

	// **情境 1: TTL > 0 代表 session 存活**
	t.Run("session 存活", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		mockRedis.On("GetTTL", ctx, accountID).Return(60, nil).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		assert.True(t, uc.SessionAlive(ctx, accountID))
		mockRedis.AssertExpectations(t)
	})

	// **情境 2: TTL = 0 代表 session 已死**
	t.Run("session 已過期", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		mockRedis.On("GetTTL", ctx, accountID).Return(0, nil).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		assert.False(t, uc.SessionAlive(ctx, accountID))
		mockRedis.AssertExpectations(t)
	})

	// **情境 3: Redis 出錯時視為不存活**
	t.Run("redis 出錯", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		mockRedis.On("GetTTL", ctx, accountID).Return(0, errors.New("redis error")).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		assert.False(t, uc.SessionAlive(ctx, accountID))
		mockRedis.AssertExpectations(t)
	})
}

func TestAccountUseCase_ReconnectSession(t *testing.T) {
	ctx := context.Background()
	accountID := "AAA"

	logger.Log = logger.SetNewNop()

	// **情境 1: 成功延長 session TTL**
	t.Run("成功延長 session", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		originalParseJWTFunc := token.ParseJWTFunc
		defer func() { token.ParseJWTFunc = originalParseJWTFunc }()

		token.ParseJWTFunc = func(t string) (*token.Claims, error) {
			return &token.Claims{AccountID: accountID}, nil
		}
		mockRedis.On("ExtendTTL", ctx, accountID, time.Hour).Return(nil).Once()

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		err := uc.ReconnectSession(ctx, "mockToken")

		assert.NoError(t, err)
		mockRedis.AssertExpectations(t)
	})

	// **情境 2: 解析 Token 失敗就不碰 Redis**
	t.Run("解析 Token 失敗", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		mockRedis := new(MockSessionRedis)

		originalParseJWTFunc := token.ParseJWTFunc
		defer func() { token.ParseJWTFunc = originalParseJWTFunc }()

		token.ParseJWTFunc = func(t string) (*token.Claims, error) {
			return nil, errors.New("invalid token")
		}

		uc := NewAccountUseCase(mockRepo, time.Hour, mockRedis, encrypt.HashPassword)
		err := uc.ReconnectSession(ctx, "badToken")

		assert.Error(t, err)
		assert.Equal(t, errprocess.Unauthenticated, errprocess.KindOf(err))
		mockRedis.AssertNotCalled(t, "ExtendTTL", mock.Anything, mock.Anything, mock.Anything)
	})
}
