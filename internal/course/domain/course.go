package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrollmentStatus 報名狀態
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

// Course definition course info
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	StartAt     time.Time          `bson:"start_at" json:"start_at"`
	EndAt       time.Time          `bson:"end_at" json:"end_at"`
	Capacity    int                `bson:"capacity" json:"capacity"`
	// Price 以最小幣值單位儲存（如 pence）
	Price     int64     `bson:"price" json:"price"`
	Currency  string    `bson:"currency" json:"currency"`
	Published bool      `bson:"published" json:"published"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Validate 建立課程前的基本檢查
func (c *Course) Validate() string {
	if strings.TrimSpace(c.Title) == "" {
		return "title must not be blank"
	}
	if c.Capacity <= 0 {
		return "capacity must be positive"
	}
	if c.Price < 0 {
		return "price must not be negative"
	}
	if !c.EndAt.IsZero() && !c.StartAt.IsZero() && c.EndAt.Before(c.StartAt) {
		return "end time is before start time"
	}
	return ""
}

// CourseUpdate 部分更新，nil 欄位不動
type CourseUpdate struct {
	Title       *string
	Description *string
	Category    *string
	StartAt     *time.Time
	EndAt       *time.Time
	Capacity    *int
	Price       *int64
	Currency    *string
	Published   *bool
}

// Enrollment definition enrollment info
type Enrollment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID    primitive.ObjectID `bson:"course_id" json:"course_id"`
	AccountID   string             `bson:"account_id" json:"account_id"`
	Status      EnrollmentStatus   `bson:"status" json:"status"`
	EnrolledAt  time.Time          `bson:"enrolled_at" json:"enrolled_at"`
	CancelledAt *time.Time         `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
}

// EnrollmentEvent 發到 Kafka 的報名事件
type EnrollmentEvent struct {
	Event        string    `json:"event"`
	EnrollmentID string    `json:"enrollment_id"`
	CourseID     string    `json:"course_id"`
	AccountID    string    `json:"account_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

const (
	EventEnrolled  = "enrolled"
	EventCancelled = "cancelled"
)
