package domain

import (
	"time"

	"github.com/BigT001/studyexpressuk-sub002/pkg/encrypt"
	"github.com/BigT001/studyexpressuk-sub002/pkg/token"
)

// AccountStatus 用來表示帳號狀態
type AccountStatus int

// 状态: 0=active, 1=suspended, 2=deleted
const (
	// AccountStatusActive 帳號可登入
	AccountStatusActive AccountStatus = iota
	// AccountStatusSuspended 帳號被停用
	AccountStatusSuspended
	// AccountStatusDeleted 帳號已刪除
	AccountStatusDeleted
)

// Account 平台帳號。Role 在建立時指定，之後只能由管理端變更。
type Account struct {
	ID          int64
	AccountID   string
	Email       string
	Password    string
	DisplayName string
	Role        token.RoleType
	Status      AccountStatus
}

// AccountSession 登入後存在 Redis 的 Session
type AccountSession struct {
	Token        string    `json:"Token"`
	AccountID    string    `json:"AccountID"`
	Role         string    `json:"Role"`
	CreatedAt    time.Time `json:"CreatedAt"`
	LastActivity time.Time `json:"LastActivity"`
	ExpiredAt    time.Time `json:"ExpiredAt"`
}

// IsPasswordMatch 密碼驗證
func (a *Account) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(a.Password, inputPwd)
}

// IsExpired 檢查 Session 是否已過期
func (s *AccountSession) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}

// AccountQuery join conditions are used to query accounts
type AccountQuery struct {
	ID        *int64  `db:"id"`
	AccountID *string `db:"account_id"`
	Email     *string `db:"email"`
	Role      *string `db:"role"`
}
