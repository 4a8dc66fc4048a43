package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus 付款狀態，succeeded / failed 是終態
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// ValidOutcome webhook 只能回報終態
func ValidOutcome(status PaymentStatus) bool {
	return status == PaymentSucceeded || status == PaymentFailed
}

// Payment definition payment record
type Payment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AccountID string             `bson:"account_id" json:"account_id"`
	CourseID  string             `bson:"course_id" json:"course_id"`
	// Amount 以最小幣值單位儲存（如 pence）
	Amount   int64  `bson:"amount" json:"amount"`
	Currency string `bson:"currency" json:"currency"`
	// Reference 對外金流的對帳編號，webhook 用它找回這筆付款
	Reference string        `bson:"reference" json:"reference"`
	Status    PaymentStatus `bson:"status" json:"status"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}

// CheckoutRequest 送往外部金流的建立參數
type CheckoutRequest struct {
	Reference string `json:"reference"`
	AccountID string `json:"account_id"`
	CourseID  string `json:"course_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// CheckoutSession 外部金流回傳的結帳資訊
type CheckoutSession struct {
	Reference   string `json:"reference"`
	RedirectURL string `json:"redirect_url"`
}
