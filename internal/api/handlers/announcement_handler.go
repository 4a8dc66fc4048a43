package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BigT001/studyexpressuk-sub002/internal/announcement/app"
	"github.com/BigT001/studyexpressuk-sub002/pkg/middlewares"
	token "github.com/BigT001/studyexpressuk-sub002/pkg/token"
)

// AnnouncementHandler 处理公告相关的 HTTP 请求
type AnnouncementHandler struct {
	announcementUC app.AnnouncementUseCase
}

// NewAnnouncementHandler 创建新的 AnnouncementHandler
func NewAnnouncementHandler(announcementUC app.AnnouncementUseCase) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcementUC: announcementUC,
	}
}

// Create 发布公告
// @Summary 发布公告
// @Description audience 留空代表所有角色可见
// @Tags Announcements
// @Accept json
// @Produce json
// @Success 201 {object} string "发布成功"
// @Failure 400 {object} string "请求错误"
// @Router /announcements [post]
func (h *AnnouncementHandler) Create(c *fiber.Ctx) error {
	type request struct {
		Title    string   `json:"title"`
		Body     string   `json:"body"`
		Audience []string `json:"audience"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	audience := make([]token.RoleType, 0, len(req.Audience))
	for _, r := range req.Audience {
		audience = append(audience, token.RoleType(r))
	}

	identity := middlewares.IdentityFromCtx(c)

	announcement, err := h.announcementUC.Create(c.UserContext(), identity.AccountID, req.Title, req.Body, audience)
	if err != nil {
		return respondError(c, "create announcement", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"announcement": announcement})
}

// List 自己角色可见的公告
// @Summary 公告列表
// @Description 新的在前
// @Tags Announcements
// @Produce json
// @Success 200 {object} string "公告列表"
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c *fiber.Ctx) error {
	identity := middlewares.IdentityFromCtx(c)

	announcements, err := h.announcementUC.ListForRole(c.UserContext(), identity.Role)
	if err != nil {
		return respondError(c, "list announcements", err)
	}
	return c.JSON(fiber.Map{"announcements": announcements})
}

// Delete 删除公告
// @Summary 删除公告
// @Tags Announcements
// @Param announcementId path string true "公告 ID"
// @Success 200 {object} string "删除成功"
// @Failure 404 {object} string "公告不存在"
// @Router /announcements/{announcementId} [delete]
func (h *AnnouncementHandler) Delete(c *fiber.Ctx) error {
	if err := h.announcementUC.Delete(c.UserContext(), c.Params("announcementId")); err != nil {
		return respondError(c, "delete announcement", err)
	}
	return c.JSON(fiber.Map{"message": "announcement deleted"})
}
