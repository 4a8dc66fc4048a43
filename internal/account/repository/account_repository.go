package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/BigT001/studyexpressuk-sub002/internal/account/domain"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	"github.com/BigT001/studyexpressuk-sub002/pkg/token"
)

// AccountRepository definition get Account info
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *domain.Account) error
	UpdateAccountStatus(ctx context.Context, account *domain.Account) error
	UpdateAccountRole(ctx context.Context, accountID, role string) (int64, error)
	FindByAccount(ctx context.Context, accountQuery *domain.AccountQuery) (*domain.Account, error)
	CountAccounts(ctx context.Context) (int64, error)
}

type accountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository create an AccountRepository
func NewAccountRepository(db *pgxpool.Pool) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO account(account_id, email, password, display_name, role, status) VALUES ($1, $2, $3, $4, $5, $6)",
		account.AccountID, account.Email, account.Password, account.DisplayName, string(account.Role), account.Status)
	if err != nil {
		return errprocess.Wrap(errprocess.Storage, "insert account", err)
	}
	return nil
}

func (r *accountRepository) UpdateAccountStatus(ctx context.Context, account *domain.Account) error {
	_, err := r.db.Exec(ctx, "UPDATE account SET status = $1 WHERE account_id = $2", account.Status, account.AccountID)
	if err != nil {
		return errprocess.Wrap(errprocess.Storage, "update account status", err)
	}
	return nil
}

func (r *accountRepository) UpdateAccountRole(ctx context.Context, accountID, role string) (int64, error) {
	tag, err := r.db.Exec(ctx, "UPDATE account SET role = $1 WHERE account_id = $2", role, accountID)
	if err != nil {
		return 0, errprocess.Wrap(errprocess.Storage, "update account role", err)
	}
	return tag.RowsAffected(), nil
}

func (r *accountRepository) FindByAccount(ctx context.Context, accountQuery *domain.AccountQuery) (*domain.Account, error) {
	queryStr := "SELECT id, account_id, email, password, display_name, role, status FROM account WHERE 1=1"
	params := []interface{}{}
	paramCount := 1

	if accountQuery.Email != nil {
		queryStr += fmt.Sprintf(" AND email = $%d", paramCount)
		params = append(params, *accountQuery.Email)
		paramCount++
	}
	if accountQuery.AccountID != nil {
		queryStr += fmt.Sprintf(" AND account_id = $%d", paramCount)
		params = append(params, *accountQuery.AccountID)
		paramCount++
	}
	if accountQuery.Role != nil {
		queryStr += fmt.Sprintf(" AND role = $%d", paramCount)
		params = append(params, *accountQuery.Role)
		paramCount++
	}
	if accountQuery.ID != nil {
		queryStr += fmt.Sprintf(" AND id = $%d", paramCount)
		params = append(params, *accountQuery.ID)
		paramCount++
	}

	row := r.db.QueryRow(ctx, queryStr, params...)
	var account domain.Account
	var role string
	err := row.Scan(&account.ID, &account.AccountID, &account.Email, &account.Password, &account.DisplayName, &role, &account.Status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errprocess.New(errprocess.NotFound, "no account found with given criteria")
		}
		return nil, errprocess.Wrap(errprocess.Storage, "query account", err)
	}
	account.Role = token.RoleType(role)

	return &account, nil
}

func (r *accountRepository) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM account WHERE status <> $1", domain.AccountStatusDeleted).Scan(&count); err != nil {
		return 0, errprocess.Wrap(errprocess.Storage, "count accounts", err)
	}
	return count, nil
}
