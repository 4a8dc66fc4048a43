package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BigT001/studyexpressuk-sub002/internal/account/domain"
	"github.com/BigT001/studyexpressuk-sub002/internal/account/repository"
	"github.com/BigT001/studyexpressuk-sub002/pkg/database"
	"github.com/BigT001/studyexpressuk-sub002/pkg/encrypt"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
	token "github.com/BigT001/studyexpressuk-sub002/pkg/token"
)

// AccountUseCase 這裡封裝了對外提供的應用服務
type AccountUseCase interface {
	Register(ctx context.Context, email, password, displayName string, role token.RoleType) (*domain.Account, error)
	FindAccount(ctx context.Context, param *domain.AccountQuery) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	ForceLogout(ctx context.Context, accountID string) error
	UpdateRole(ctx context.Context, accountID string, role token.RoleType) error
	SessionAlive(ctx context.Context, accountID string) bool
	ReconnectSession(ctx context.Context, token string) error
	CountAccounts(ctx context.Context) (int64, error)
}

type accountUseCase struct {
	accountRepo  repository.AccountRepository
	sessionTTL   time.Duration
	redisRepo    database.RedisRepository[domain.AccountSession]
	hashPassword func(string) (string, error)
}

// NewAccountUseCase 建立一個新的 AccountUseCase
func NewAccountUseCase(accountRepo repository.AccountRepository,
	sessionTTL time.Duration,
	redisRepo database.RedisRepository[domain.AccountSession],
	hashPassword func(string) (string, error),
) AccountUseCase {
	if hashPassword == nil {
		hashPassword = encrypt.HashPassword
	}
	return &accountUseCase{
		accountRepo:  accountRepo,
		sessionTTL:   sessionTTL,
		redisRepo:    redisRepo,
		hashPassword: hashPassword,
	}
}

// Register 建立新帳號。Role 在這裡固定下來，之後只有 UpdateRole 能改。
func (a *accountUseCase) Register(ctx context.Context, email, password, displayName string, role token.RoleType) (*domain.Account, error) {
	if !token.ValidRole(role) {
		return nil, errprocess.New(errprocess.Validation, "unknown role")
	}

	// 檢查 email 是否已存在
	if _, err := a.accountRepo.FindByAccount(ctx, &domain.AccountQuery{Email: &email}); err == nil {
		return nil, errprocess.New(errprocess.Conflict, "email already exists")
	}

	pw, err := a.hashPassword(password)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Validation, "password rejected", err)
	}

	account := domain.Account{
		AccountID:   uuid.New().String(),
		Email:       email,
		Password:    pw,
		DisplayName: displayName,
		Role:        role,
		Status:      domain.AccountStatusActive,
	}

	logger.Log.Info(fmt.Sprintf("usecase Register : %s %s", account.AccountID, account.Role))

	if err := a.accountRepo.CreateAccount(ctx, &account); err != nil {
		return nil, err
	}

	return &account, nil
}

// FindAccount 用查詢條件來尋找帳號
func (a *accountUseCase) FindAccount(ctx context.Context, param *domain.AccountQuery) (*domain.Account, error) {
	return a.accountRepo.FindByAccount(ctx, param)
}

// Login 驗證密碼後簽發 JWT 並寫入 Redis session
func (a *accountUseCase) Login(ctx context.Context, email, password string) (string, error) {
	account, err := a.accountRepo.FindByAccount(ctx, &domain.AccountQuery{Email: &email})
	if err != nil {
		logger.Log.Error("email can't find!!!")
		return "", errprocess.New(errprocess.Unauthenticated, "account not found")
	}

	if account.Status != domain.AccountStatusActive {
		return "", errprocess.New(errprocess.Forbidden, "account is not active")
	}

	if err = account.IsPasswordMatch(password); err != nil {
		logger.Log.Error("password can't match!!!")
		return "", errprocess.New(errprocess.Unauthenticated, "password mismatch")
	}

	t, err := token.GenerateJWTWrapper(account.AccountID, account.Email, string(account.Role))
	if err != nil {
		return "", errprocess.Wrap(errprocess.Unknown, "sign token", err)
	}

	now := time.Now()
	session := domain.AccountSession{
		Token:        t,
		AccountID:    account.AccountID,
		Role:         string(account.Role),
		CreatedAt:    now,
		LastActivity: now,
		ExpiredAt:    now.Add(a.sessionTTL),
	}

	if err := a.redisRepo.Set(ctx, account.AccountID, session, a.sessionTTL); err != nil {
		return "", errprocess.Wrap(errprocess.Storage, "store session", err)
	}

	return t, nil
}

// Logout 刪除 session，JWT 即使未過期也會被 guard 擋下
func (a *accountUseCase) Logout(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		logger.Log.Error("Logout err :", zap.String("err", err.Error()))
		return errprocess.Wrap(errprocess.Unauthenticated, "invalid token", err)
	}
	logger.Log.Debug("logout", zap.String("account token info", fmt.Sprintf("%v", tokenInfo)))

	return a.redisRepo.Del(ctx, tokenInfo.AccountID)
}

// ForceLogout 管理端直接把該帳號的 session 清除
func (a *accountUseCase) ForceLogout(ctx context.Context, accountID string) error {
	return a.redisRepo.Del(ctx, accountID)
}

// UpdateRole 管理端變更帳號角色，並砍掉舊 session 讓新角色重新登入生效
func (a *accountUseCase) UpdateRole(ctx context.Context, accountID string, role token.RoleType) error {
	if !token.ValidRole(role) {
		return errprocess.New(errprocess.Validation, "unknown role")
	}

	affected, err := a.accountRepo.UpdateAccountRole(ctx, accountID, string(role))
	if err != nil {
		return err
	}
	if affected == 0 {
		return errprocess.New(errprocess.NotFound, "account not found")
	}

	// 角色已變更，舊 token 內的 role 不再可信
	return a.redisRepo.Del(ctx, accountID)
}

// SessionAlive guard 在每個請求上呼叫，只讀不延長 TTL
func (a *accountUseCase) SessionAlive(ctx context.Context, accountID string) bool {
	ttl, err := a.redisRepo.GetTTL(ctx, accountID)
	if err != nil {
		return false
	}
	return ttl > 0
}

// ReconnectSession 重新連線時延長 session
func (a *accountUseCase) ReconnectSession(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		logger.Log.Error("ReconnectSession err :", zap.String("err", err.Error()))
		return errprocess.Wrap(errprocess.Unauthenticated, "invalid token", err)
	}
	logger.Log.Debug("ReconnectSession", zap.String("account token info", fmt.Sprintf("%v", tokenInfo)))

	return a.redisRepo.ExtendTTL(ctx, tokenInfo.AccountID, a.sessionTTL)
}

// CountAccounts 管理端 dashboard 用
func (a *accountUseCase) CountAccounts(ctx context.Context) (int64, error) {
	return a.accountRepo.CountAccounts(ctx)
}
