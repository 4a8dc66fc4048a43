package handlers

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
	"github.com/BigT001/studyexpressuk-sub002/pkg/middlewares"
)

// ConnectCheck check api connect start
// @Summary Check platform API status
// @Description Returns a simple confirmation message
// @Tags Shared
// @Success 200 {string} string "platform api start!"
// @Router / [get]
func ConnectCheck(c *fiber.Ctx) error {
	return c.SendString("platform api start!")
}

// DebugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Description Enable or disable debug logging for a service
// @Tags Shared
// @Param service query string true "Service name"
// @Param status query bool true "Debug status"
// @Success 200 {string} string "Service debug mode updated"
// @Failure 400 {string} string "Invalid status value"
// @Router /debug [post]
func DebugLogFlag(c *fiber.Ctx) error {
	// prase payload
	query, err := url.ParseQuery(string(c.Context().QueryArgs().QueryString()))
	service := query.Get("service")
	statusStr := query.Get("status")
	logger.Log.Info("debug", zap.String("status", statusStr))
	status, err := strconv.ParseBool(statusStr)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	switch service {
	default:
		logger.Log.SetDebugMode(status)
	}
	return c.SendString(fmt.Sprintf("service[%s]: debug mode is : %t", service, status))
}

// respondError 記錄操作、帳號與失敗分類，回給呼叫端的只有通用訊息，
// 儲存層的錯誤內文不出站
func respondError(c *fiber.Ctx, op string, err error) error {
	status := errprocess.HTTPStatus(err)
	identity := middlewares.IdentityFromCtx(c)
	logger.Log.Error(op,
		zap.String("account_id", identity.AccountID),
		zap.Int("status", status),
		zap.String("err", err.Error()))
	return c.Status(status).JSON(fiber.Map{"error": statusMessage(status)})
}

func statusMessage(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "invalid request"
	case fiber.StatusUnauthorized:
		return "Unauthenticated"
	case fiber.StatusForbidden:
		return "Forbidden"
	case fiber.StatusNotFound:
		return "not found"
	case fiber.StatusConflict:
		return "conflict"
	default:
		return "internal error"
	}
}
