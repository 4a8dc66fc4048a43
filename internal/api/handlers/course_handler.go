package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/BigT001/studyexpressuk-sub002/internal/course/app"
	"github.com/BigT001/studyexpressuk-sub002/internal/course/domain"
	"github.com/BigT001/studyexpressuk-sub002/pkg/middlewares"
)

// CourseHandler 处理课程与报名相关的 HTTP 请求
type CourseHandler struct {
	courseUC app.CourseUseCase
}

// NewCourseHandler 创建新的 CourseHandler
func NewCourseHandler(courseUC app.CourseUseCase) *CourseHandler {
	return &CourseHandler{
		courseUC: courseUC,
	}
}

type courseRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	Capacity    *int       `json:"capacity"`
	Price       *int64     `json:"price"`
	Currency    *string    `json:"currency"`
	Published   *bool      `json:"published"`
}

// CreateCourse 建立课程
// @Summary 建立课程
// @Tags Courses
// @Accept json
// @Produce json
// @Success 201 {object} string "建立成功"
// @Failure 400 {object} string "请求错误"
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req courseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	course := domain.Course{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.StartAt != nil {
		course.StartAt = *req.StartAt
	}
	if req.EndAt != nil {
		course.EndAt = *req.EndAt
	}
	if req.Capacity != nil {
		course.Capacity = *req.Capacity
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.Currency != nil {
		course.Currency = *req.Currency
	}
	if req.Published != nil {
		course.Published = *req.Published
	}

	if err := h.courseUC.CreateCourse(c.UserContext(), &course); err != nil {
		return respondError(c, "create course", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"course": course})
}

// UpdateCourse 更新课程，只动有带的栏位
// @Summary 更新课程
// @Tags Courses
// @Accept json
// @Param courseId path string true "课程 ID"
// @Success 200 {object} string "更新成功"
// @Failure 404 {object} string "课程不存在"
// @Router /courses/{courseId} [put]
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	type request struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Category    *string    `json:"category"`
		StartAt     *time.Time `json:"start_at"`
		EndAt       *time.Time `json:"end_at"`
		Capacity    *int       `json:"capacity"`
		Price       *int64     `json:"price"`
		Currency    *string    `json:"currency"`
		Published   *bool      `json:"published"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	upd := domain.CourseUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Capacity:    req.Capacity,
		Price:       req.Price,
		Currency:    req.Currency,
		Published:   req.Published,
	}

	if err := h.courseUC.UpdateCourse(c.UserContext(), c.Params("courseId"), &upd); err != nil {
		return respondError(c, "update course", err)
	}
	return c.JSON(fiber.Map{"message": "course updated"})
}

// ListPublished 上架课程列表
// @Summary 上架课程列表
// @Tags Courses
// @Produce json
// @Success 200 {object} string "课程列表"
// @Router /courses [get]
func (h *CourseHandler) ListPublished(c *fiber.Ctx) error {
	courses, err := h.courseUC.ListPublished(c.UserContext())
	if err != nil {
		return respondError(c, "list courses", err)
	}
	return c.JSON(fiber.Map{"courses": courses})
}

// GetCourse 课程明细
// @Summary 课程明细
// @Tags Courses
// @Param courseId path string true "课程 ID"
// @Success 200 {object} string "课程内容"
// @Failure 404 {object} string "课程不存在"
// @Router /courses/{courseId} [get]
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	course, err := h.courseUC.GetCourse(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return respondError(c, "get course", err)
	}
	return c.JSON(fiber.Map{"course": course})
}

// Enroll 报名课程
// @Summary 报名课程
// @Tags Courses
// @Param courseId path string true "课程 ID"
// @Success 201 {object} string "报名成功"
// @Failure 404 {object} string "课程不存在或未上架"
// @Failure 409 {object} string "重复报名或额满"
// @Router /courses/{courseId}/enroll [post]
func (h *CourseHandler) Enroll(c *fiber.Ctx) error {
	identity := middlewares.IdentityFromCtx(c)

	enrollment, err := h.courseUC.Enroll(c.UserContext(), identity.AccountID, c.Params("courseId"))
	if err != nil {
		return respondError(c, "enroll", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"enrollment": enrollment})
}

// CancelEnrollment 取消报名
// @Summary 取消报名
// @Description 只有本人能取消，重复取消不是错误
// @Tags Courses
// @Param enrollmentId path string true "报名 ID"
// @Success 200 {object} string "取消成功"
// @Failure 403 {object} string "非本人"
// @Router /enrollments/{enrollmentId}/cancel [post]
func (h *CourseHandler) CancelEnrollment(c *fiber.Ctx) error {
	identity := middlewares.IdentityFromCtx(c)

	if err := h.courseUC.CancelEnrollment(c.UserContext(), identity.AccountID, c.Params("enrollmentId")); err != nil {
		return respondError(c, "cancel enrollment", err)
	}
	return c.JSON(fiber.Map{"message": "enrollment cancelled"})
}

// ListMyEnrollments 我的报名
// @Summary 我的报名
// @Tags Courses
// @Success 200 {object} string "报名列表"
// @Router /enrollments/my [get]
func (h *CourseHandler) ListMyEnrollments(c *fiber.Ctx) error {
	identity := middlewares.IdentityFromCtx(c)

	enrollments, err := h.courseUC.ListMyEnrollments(c.UserContext(), identity.AccountID)
	if err != nil {
		return respondError(c, "list my enrollments", err)
	}
	return c.JSON(fiber.Map{"enrollments": enrollments})
}

// ListCourseEnrollments 课程报名名单
// @Summary 课程报名名单
// @Tags Courses
// @Param courseId path string true "课程 ID"
// @Success 200 {object} string "报名列表"
// @Router /courses/{courseId}/enrollments [get]
func (h *CourseHandler) ListCourseEnrollments(c *fiber.Ctx) error {
	enrollments, err := h.courseUC.ListCourseEnrollments(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return respondError(c, "list course enrollments", err)
	}
	return c.JSON(fiber.Map{"enrollments": enrollments})
}
