package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/BigT001/studyexpressuk-sub002/internal/course/domain"
	"github.com/BigT001/studyexpressuk-sub002/internal/course/repository"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
)

// EnrollmentEventWriter 報名事件的出口，*kafka.Writer 直接滿足這個介面
type EnrollmentEventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// CourseUseCase 課程與報名的應用服務
type CourseUseCase interface {
	CreateCourse(ctx context.Context, course *domain.Course) error
	UpdateCourse(ctx context.Context, courseID string, upd *domain.CourseUpdate) error
	GetCourse(ctx context.Context, courseID string) (*domain.Course, error)
	ListPublished(ctx context.Context) ([]domain.Course, error)
	Enroll(ctx context.Context, accountID, courseID string) (*domain.Enrollment, error)
	CancelEnrollment(ctx context.Context, accountID, enrollmentID string) error
	ListMyEnrollments(ctx context.Context, accountID string) ([]domain.Enrollment, error)
	ListCourseEnrollments(ctx context.Context, courseID string) ([]domain.Enrollment, error)
	CountActiveEnrollments(ctx context.Context, accountID string) (int64, error)
	CountCourses(ctx context.Context) (int64, error)
}

type courseUseCase struct {
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	events         EnrollmentEventWriter
	now            func() time.Time
}

// NewCourseUseCase 建立 CourseUseCase，events 可以是 nil（不發事件）
func NewCourseUseCase(courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	events EnrollmentEventWriter,
) CourseUseCase {
	return &courseUseCase{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		events:         events,
		now:            time.Now,
	}
}

func (c *courseUseCase) CreateCourse(ctx context.Context, course *domain.Course) error {
	if msg := course.Validate(); msg != "" {
		return errprocess.New(errprocess.Validation, msg)
	}

	now := c.now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	if err := c.courseRepo.Insert(ctx, course); err != nil {
		return err
	}

	logger.Log.Info(fmt.Sprintf("usecase CreateCourse : %s %s", course.ID.Hex(), course.Title))
	return nil
}

func (c *courseUseCase) UpdateCourse(ctx context.Context, courseID string, upd *domain.CourseUpdate) error {
	matched, err := c.courseRepo.Update(ctx, courseID, upd)
	if err != nil {
		return err
	}
	if matched == 0 {
		return errprocess.New(errprocess.NotFound, "course not found")
	}
	return nil
}

func (c *courseUseCase) GetCourse(ctx context.Context, courseID string) (*domain.Course, error) {
	return c.courseRepo.FindByID(ctx, courseID)
}

func (c *courseUseCase) ListPublished(ctx context.Context) ([]domain.Course, error) {
	return c.courseRepo.FindPublished(ctx)
}

// Enroll 報名。同一帳號同一課程只能有一筆生效報名，額滿擋下。
func (c *courseUseCase) Enroll(ctx context.Context, accountID, courseID string) (*domain.Enrollment, error) {
	course, err := c.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	// 未上架的課程對報名者等同不存在
	if !course.Published {
		return nil, errprocess.New(errprocess.NotFound, "course not found")
	}

	exists, err := c.enrollmentRepo.HasActive(ctx, course.ID, accountID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errprocess.New(errprocess.Conflict, "already enrolled")
	}

	active, err := c.enrollmentRepo.CountActiveByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	if active >= int64(course.Capacity) {
		return nil, errprocess.New(errprocess.Conflict, "course is full")
	}

	enrollment := domain.Enrollment{
		CourseID:   course.ID,
		AccountID:  accountID,
		Status:     domain.EnrollmentActive,
		EnrolledAt: c.now().UTC(),
	}
	if err := c.enrollmentRepo.Insert(ctx, &enrollment); err != nil {
		return nil, err
	}

	c.publishEvent(ctx, domain.EventEnrolled, &enrollment)
	return &enrollment, nil
}

// CancelEnrollment 取消報名，只有本人能取消，重複取消不是錯誤
func (c *courseUseCase) CancelEnrollment(ctx context.Context, accountID, enrollmentID string) error {
	enrollment, err := c.enrollmentRepo.FindByID(ctx, enrollmentID)
	if err != nil {
		return err
	}
	if enrollment.AccountID != accountID {
		return errprocess.New(errprocess.Forbidden, "not the enrollment owner")
	}

	affected, err := c.enrollmentRepo.Cancel(ctx, enrollment.ID, c.now().UTC())
	if err != nil {
		return err
	}
	if affected == 0 {
		// 已經取消過了
		return nil
	}

	c.publishEvent(ctx, domain.EventCancelled, enrollment)
	return nil
}

func (c *courseUseCase) ListMyEnrollments(ctx context.Context, accountID string) ([]domain.Enrollment, error) {
	return c.enrollmentRepo.FindByAccount(ctx, accountID)
}

func (c *courseUseCase) ListCourseEnrollments(ctx context.Context, courseID string) ([]domain.Enrollment, error) {
	return c.enrollmentRepo.FindByCourse(ctx, courseID)
}

func (c *courseUseCase) CountActiveEnrollments(ctx context.Context, accountID string) (int64, error) {
	return c.enrollmentRepo.CountActiveByAccount(ctx, accountID)
}

func (c *courseUseCase) CountCourses(ctx context.Context) (int64, error) {
	return c.courseRepo.CountCourses(ctx)
}

// publishEvent 事件發送失敗只記 log，不影響主流程
func (c *courseUseCase) publishEvent(ctx context.Context, event string, enrollment *domain.Enrollment) {
	if c.events == nil {
		return
	}

	payload, err := json.Marshal(domain.EnrollmentEvent{
		Event:        event,
		EnrollmentID: enrollment.ID.Hex(),
		CourseID:     enrollment.CourseID.Hex(),
		AccountID:    enrollment.AccountID,
		OccurredAt:   c.now().UTC(),
	})
	if err != nil {
		logger.Log.Error("marshal enrollment event", zap.String("err", err.Error()))
		return
	}

	err = c.events.WriteMessages(ctx, kafka.Message{
		Key:   []byte(enrollment.CourseID.Hex()),
		Value: payload,
	})
	if err != nil {
		logger.Log.Error("publish enrollment event",
			zap.String("enrollment_id", enrollment.ID.Hex()),
			zap.String("err", err.Error()))
	}
}
