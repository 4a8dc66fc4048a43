package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BigT001/studyexpressuk-sub002/internal/dashboard/app"
	"github.com/BigT001/studyexpressuk-sub002/pkg/middlewares"
)

// DashboardHandler 处理仪表板相关的 HTTP 请求
type DashboardHandler struct {
	dashboardUC app.DashboardUseCase
}

// NewDashboardHandler 创建新的 DashboardHandler
func NewDashboardHandler(dashboardUC app.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{
		dashboardUC: dashboardUC,
	}
}

// Summary 依角色组出的摘要
// @Summary 仪表板摘要
// @Description 未读讯息数与生效报名数，ADMIN 额外带帐号与课程总数
// @Tags Dashboard
// @Produce json
// @Success 200 {object} string "摘要"
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	identity := middlewares.IdentityFromCtx(c)

	summary, err := h.dashboardUC.Summarize(c.UserContext(), identity.AccountID, identity.Role)
	if err != nil {
		return respondError(c, "dashboard summary", err)
	}
	return c.JSON(summary)
}
