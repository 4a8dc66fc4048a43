package app

import (
	"context"

	token "github.com/BigT001/studyexpressuk-sub002/pkg/token"
)

// UnreadCounter 未讀訊息總數來源
type UnreadCounter interface {
	UnreadTotal(ctx context.Context, selfID string) (int64, error)
}

// EnrollmentCounter 生效報名數來源
type EnrollmentCounter interface {
	CountActiveEnrollments(ctx context.Context, accountID string) (int64, error)
	CountCourses(ctx context.Context) (int64, error)
}

// AccountCounter 帳號總數來源
type AccountCounter interface {
	CountAccounts(ctx context.Context) (int64, error)
}

// Summary 依角色組出來的儀表板摘要
type Summary struct {
	UnreadMessages    int64 `json:"unread_messages"`
	ActiveEnrollments int64 `json:"active_enrollments"`
	// 以下只有 ADMIN 會帶
	TotalAccounts *int64 `json:"total_accounts,omitempty"`
	TotalCourses  *int64 `json:"total_courses,omitempty"`
}

// DashboardUseCase 純組裝，不自己持有任何狀態
type DashboardUseCase interface {
	Summarize(ctx context.Context, accountID string, role token.RoleType) (*Summary, error)
}

type dashboardUseCase struct {
	unread      UnreadCounter
	enrollments EnrollmentCounter
	accounts    AccountCounter
}

// NewDashboardUseCase 建立 DashboardUseCase
func NewDashboardUseCase(unread UnreadCounter, enrollments EnrollmentCounter, accounts AccountCounter) DashboardUseCase {
	return &dashboardUseCase{
		unread:      unread,
		enrollments: enrollments,
		accounts:    accounts,
	}
}

func (d *dashboardUseCase) Summarize(ctx context.Context, accountID string, role token.RoleType) (*Summary, error) {
	unread, err := d.unread.UnreadTotal(ctx, accountID)
	if err != nil {
		return nil, err
	}

	active, err := d.enrollments.CountActiveEnrollments(ctx, accountID)
	if err != nil {
		return nil, err
	}

	summary := Summary{
		UnreadMessages:    unread,
		ActiveEnrollments: active,
	}

	if role == token.RoleAdmin {
		accounts, err := d.accounts.CountAccounts(ctx)
		if err != nil {
			return nil, err
		}
		courses, err := d.enrollments.CountCourses(ctx)
		if err != nil {
			return nil, err
		}
		summary.TotalAccounts = &accounts
		summary.TotalCourses = &courses
	}

	return &summary, nil
}
