package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/BigT001/studyexpressuk-sub002/internal/account/app"
	"github.com/BigT001/studyexpressuk-sub002/internal/account/domain"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
	"github.com/BigT001/studyexpressuk-sub002/pkg/middlewares"
	token "github.com/BigT001/studyexpressuk-sub002/pkg/token"
)

// AccountHandler 处理帐号相关的 HTTP 请求
type AccountHandler struct {
	accountUC  app.AccountUseCase
	sessionTTL time.Duration
}

// NewAccountHandler 创建新的 AccountHandler
func NewAccountHandler(accountUC app.AccountUseCase, sessionTTL time.Duration) *AccountHandler {
	return &AccountHandler{
		accountUC:  accountUC,
		sessionTTL: sessionTTL,
	}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// Register 注册新帐号
// @Summary 注册新帐号
// @Description 开放注册，只接受 INDIVIDUAL 与 CORPORATE 角色
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册请求"
// @Success 201 {object} string "注册成功"
// @Failure 400 {object} string "请求错误"
// @Failure 409 {object} string "Email 已存在"
// @Router /account/register [post]
func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	role := token.RoleType(req.Role)
	// 管理端角色不開放自助註冊
	if role != token.RoleIndividual && role != token.RoleCorporate {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	account, err := h.accountUC.Register(c.UserContext(), req.Email, req.Password, req.DisplayName, role)
	if err != nil {
		return respondError(c, "account register", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"account_id": account.AccountID,
		"email":      account.Email,
		"role":       account.Role,
	})
}

// CreateAccount 管理端建立任意角色帐号
// @Summary 管理端建立帐号
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body registerRequest true "建立请求"
// @Success 201 {object} string "建立成功"
// @Failure 400 {object} string "请求错误"
// @Router /admin/accounts [post]
func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	account, err := h.accountUC.Register(c.UserContext(), req.Email, req.Password, req.DisplayName, token.RoleType(req.Role))
	if err != nil {
		return respondError(c, "admin create account", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"account_id": account.AccountID,
		"email":      account.Email,
		"role":       account.Role,
	})
}

// Login 帐号登录
// @Summary 帐号登录
// @Description 以邮箱和密码登录，成功后写入 session cookie
// @Tags Accounts
// @Accept json
// @Produce json
// @Success 200 {object} string "登录成功"
// @Failure 401 {object} string "登录失败"
// @Router /account/login [post]
func (h *AccountHandler) Login(c *fiber.Ctx) error {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	logger.Log.Debug("Login", zap.String("email", req.Email))

	t, err := h.accountUC.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, "account login", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieToken,
		Value:    t,
		Expires:  time.Now().Add(h.sessionTTL),
		HTTPOnly: true,
	})

	return c.JSON(fiber.Map{"token": t, "message": "login success"})
}

// Logout 帐号登出
// @Summary 帐号登出
// @Description 注销会话，JWT 即使未过期也会被挡下
// @Tags Accounts
// @Success 200 {object} string "注销成功"
// @Failure 401 {object} string "未登录"
// @Router /account/logout [post]
func (h *AccountHandler) Logout(c *fiber.Ctx) error {
	t := middlewares.ExtractToken(c)
	if err := h.accountUC.Logout(c.UserContext(), t); err != nil {
		return respondError(c, "account logout", err)
	}

	c.ClearCookie(middlewares.CookieToken)
	return c.JSON(fiber.Map{"message": "logout success"})
}

// ForceLogout 管理端强制登出指定帐号
// @Summary 管理端强制登出
// @Tags Accounts
// @Param accountId path string true "帐号 ID"
// @Success 200 {object} string "注销成功"
// @Router /admin/accounts/{accountId}/logout [post]
func (h *AccountHandler) ForceLogout(c *fiber.Ctx) error {
	accountID := c.Params("accountId")
	if err := h.accountUC.ForceLogout(c.UserContext(), accountID); err != nil {
		return respondError(c, "account force logout", err)
	}
	return c.JSON(fiber.Map{"message": "logout success"})
}

// UpdateRole 管理端变更帐号角色
// @Summary 管理端变更角色
// @Tags Accounts
// @Accept json
// @Param accountId path string true "帐号 ID"
// @Success 200 {object} string "变更成功"
// @Failure 404 {object} string "帐号不存在"
// @Router /admin/accounts/{accountId}/role [put]
func (h *AccountHandler) UpdateRole(c *fiber.Ctx) error {
	type request struct {
		Role string `json:"role"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	accountID := c.Params("accountId")
	if err := h.accountUC.UpdateRole(c.UserContext(), accountID, token.RoleType(req.Role)); err != nil {
		return respondError(c, "account update role", err)
	}
	return c.JSON(fiber.Map{"message": "role updated"})
}

// Find 查找帐号信息
// @Summary 查找帐号信息
// @Description 依邮箱查找帐号
// @Tags Accounts
// @Param email query string true "帐号邮箱"
// @Success 200 {object} string "帐号信息"
// @Failure 404 {object} string "未找到帐号"
// @Router /admin/accounts/find [get]
func (h *AccountHandler) Find(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is required"})
	}

	account, err := h.accountUC.FindAccount(c.UserContext(), &domain.AccountQuery{Email: &email})
	if err != nil {
		if errprocess.KindOf(err) == errprocess.NotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return respondError(c, "account find", err)
	}

	return c.JSON(fiber.Map{
		"account": fiber.Map{
			"account_id":   account.AccountID,
			"email":        account.Email,
			"display_name": account.DisplayName,
			"role":         account.Role,
			"status":       account.Status,
		},
	})
}
