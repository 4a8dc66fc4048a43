package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BigT001/studyexpressuk-sub002/internal/payment/domain"
	"github.com/BigT001/studyexpressuk-sub002/internal/payment/repository"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
)

// CheckoutProvider 外部金流。我們只關心建立結帳與它回傳的導向網址，
// 其餘細節都在對方那端。
type CheckoutProvider interface {
	CreateCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error)
}

// CoursePricer 查課程價格，避免 payment 直接依賴 course 的儲存層
type CoursePricer interface {
	PriceOf(ctx context.Context, courseID string) (amount int64, currency string, err error)
}

// Checkout InitiateCheckout 的回傳：本地付款紀錄加上金流導向網址
type Checkout struct {
	Payment     *domain.Payment `json:"payment"`
	RedirectURL string          `json:"redirect_url"`
}

// PaymentUseCase 付款的應用服務
type PaymentUseCase interface {
	InitiateCheckout(ctx context.Context, accountID, courseID string) (*Checkout, error)
	// ConfirmPayment webhook 進來的對帳，重複呼叫不是錯誤
	ConfirmPayment(ctx context.Context, reference string, outcome domain.PaymentStatus) error
	ListMyPayments(ctx context.Context, accountID string) ([]domain.Payment, error)
	ListAllPayments(ctx context.Context) ([]domain.Payment, error)
}

type paymentUseCase struct {
	paymentRepo repository.PaymentRepository
	provider    CheckoutProvider
	pricer      CoursePricer
	now         func() time.Time
}

// NewPaymentUseCase 建立 PaymentUseCase
func NewPaymentUseCase(paymentRepo repository.PaymentRepository,
	provider CheckoutProvider,
	pricer CoursePricer,
) PaymentUseCase {
	return &paymentUseCase{
		paymentRepo: paymentRepo,
		provider:    provider,
		pricer:      pricer,
		now:         time.Now,
	}
}

// InitiateCheckout 先向金流建立結帳，成功才落地 pending 付款
func (p *paymentUseCase) InitiateCheckout(ctx context.Context, accountID, courseID string) (*Checkout, error) {
	amount, currency, err := p.pricer.PriceOf(ctx, courseID)
	if err != nil {
		return nil, err
	}

	reference := uuid.New().String()
	session, err := p.provider.CreateCheckout(ctx, domain.CheckoutRequest{
		Reference: reference,
		AccountID: accountID,
		CourseID:  courseID,
		Amount:    amount,
		Currency:  currency,
	})
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "create checkout", err)
	}

	now := p.now().UTC()
	payment := domain.Payment{
		AccountID: accountID,
		CourseID:  courseID,
		Amount:    amount,
		Currency:  currency,
		Reference: session.Reference,
		Status:    domain.PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.paymentRepo.Insert(ctx, &payment); err != nil {
		return nil, err
	}

	logger.Log.Info(fmt.Sprintf("usecase InitiateCheckout : %s %s", payment.Reference, accountID))
	return &Checkout{Payment: &payment, RedirectURL: session.RedirectURL}, nil
}

// ConfirmPayment 終態只會寫進一次，之後的重送影響 0 筆就結束
func (p *paymentUseCase) ConfirmPayment(ctx context.Context, reference string, outcome domain.PaymentStatus) error {
	if !domain.ValidOutcome(outcome) {
		return errprocess.New(errprocess.Validation, "outcome must be succeeded or failed")
	}

	affected, err := p.paymentRepo.SettleIfPending(ctx, reference, outcome, p.now().UTC())
	if err != nil {
		return err
	}
	if affected > 0 {
		logger.Log.Info(fmt.Sprintf("usecase ConfirmPayment : %s -> %s", reference, outcome))
		return nil
	}

	// 影響 0 筆：可能是重送，也可能是根本沒這筆
	if _, err := p.paymentRepo.FindByReference(ctx, reference); err != nil {
		return err
	}
	return nil
}

func (p *paymentUseCase) ListMyPayments(ctx context.Context, accountID string) ([]domain.Payment, error) {
	return p.paymentRepo.FindByAccount(ctx, accountID)
}

func (p *paymentUseCase) ListAllPayments(ctx context.Context) ([]domain.Payment, error) {
	return p.paymentRepo.FindAll(ctx)
}
