package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BigT001/studyexpressuk-sub002/internal/messaging/app"
	"github.com/BigT001/studyexpressuk-sub002/pkg/middlewares"
)

// MessageHandler 处理私讯相关的 HTTP 请求
type MessageHandler struct {
	messagingUC app.MessagingUseCase
}

// NewMessageHandler 创建新的 MessageHandler
func NewMessageHandler(messagingUC app.MessagingUseCase) *MessageHandler {
	return &MessageHandler{
		messagingUC: messagingUC,
	}
}

// ListConversations 会话列表
// @Summary 会话列表
// @Description 依对方分组，带最后一则讯息与未读数，最后讯息时间降序
// @Tags Messages
// @Produce json
// @Success 200 {object} string "会话列表"
// @Failure 500 {object} string "服务器错误"
// @Router /messages/conversations [get]
func (h *MessageHandler) ListConversations(c *fiber.Ctx) error {
	identity := middlewares.IdentityFromCtx(c)

	summaries, err := h.messagingUC.ListConversations(c.UserContext(), identity.AccountID)
	if err != nil {
		return respondError(c, "list conversations", err)
	}
	return c.JSON(fiber.Map{"conversations": summaries})
}

// AdminListConversations 管理端查看任意帐号的会话列表
// @Summary 管理端会话列表
// @Tags Messages
// @Param accountId path string true "帐号 ID"
// @Success 200 {object} string "会话列表"
// @Router /admin/messages/conversations/{accountId} [get]
func (h *MessageHandler) AdminListConversations(c *fiber.Ctx) error {
	accountID := c.Params("accountId")

	summaries, err := h.messagingUC.ListConversations(c.UserContext(), accountID)
	if err != nil {
		return respondError(c, "admin list conversations", err)
	}
	return c.JSON(fiber.Map{"conversations": summaries})
}

// SendMessage 发送私讯
// @Summary 发送私讯
// @Tags Messages
// @Accept json
// @Produce json
// @Success 201 {object} string "已送出的讯息"
// @Failure 400 {object} string "内容空白或收件人无效"
// @Failure 404 {object} string "收件人不存在"
// @Router /messages [post]
func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	type request struct {
		RecipientID string `json:"recipient_id"`
		Content     string `json:"content"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	identity := middlewares.IdentityFromCtx(c)

	msg, err := h.messagingUC.SendMessage(c.UserContext(), identity.AccountID, req.RecipientID, req.Content)
	if err != nil {
		return respondError(c, "send message", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg})
}

// SendToThread 对既有对话发送私讯，收件人走路径参数
// @Summary 对话内发送私讯
// @Tags Messages
// @Accept json
// @Produce json
// @Param counterpartId path string true "对方帐号 ID"
// @Success 201 {object} string "已送出的讯息"
// @Failure 400 {object} string "内容空白"
// @Failure 404 {object} string "对方不存在"
// @Router /messages/thread/{counterpartId} [post]
func (h *MessageHandler) SendToThread(c *fiber.Ctx) error {
	type request struct {
		Content string `json:"content"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	identity := middlewares.IdentityFromCtx(c)
	counterpartID := c.Params("counterpartId")

	msg, err := h.messagingUC.SendMessage(c.UserContext(), identity.AccountID, counterpartID, req.Content)
	if err != nil {
		return respondError(c, "send to thread", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg})
}

// GetThread 取得与对方的完整对话
// @Summary 取得对话
// @Description 时间升序，读取的同时把整串标为已读
// @Tags Messages
// @Param counterpartId path string true "对方帐号 ID"
// @Success 200 {object} string "对话内容"
// @Router /messages/thread/{counterpartId} [get]
func (h *MessageHandler) GetThread(c *fiber.Ctx) error {
	identity := middlewares.IdentityFromCtx(c)
	counterpartID := c.Params("counterpartId")

	messages, err := h.messagingUC.GetThread(c.UserContext(), identity.AccountID, counterpartID)
	if err != nil {
		return respondError(c, "get thread", err)
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// MarkThreadRead 把与对方的整串对话标为已读
// @Summary 整串标为已读
// @Description 幂等，重复呼叫影响 0 笔
// @Tags Messages
// @Param counterpartId path string true "对方帐号 ID"
// @Success 200 {object} string "影响笔数"
// @Router /messages/thread/{counterpartId}/read [post]
func (h *MessageHandler) MarkThreadRead(c *fiber.Ctx) error {
	identity := middlewares.IdentityFromCtx(c)
	counterpartID := c.Params("counterpartId")

	affected, err := h.messagingUC.MarkThreadRead(c.UserContext(), identity.AccountID, counterpartID)
	if err != nil {
		return respondError(c, "mark thread read", err)
	}
	return c.JSON(fiber.Map{"affected": affected})
}

// MarkMessageRead 单则标为已读
// @Summary 单则标为已读
// @Description 只有收件人能标，幂等
// @Tags Messages
// @Param messageId path string true "讯息 ID"
// @Success 200 {object} string "影响笔数"
// @Failure 403 {object} string "非收件人"
// @Failure 404 {object} string "讯息不存在"
// @Router /messages/{messageId}/read [post]
func (h *MessageHandler) MarkMessageRead(c *fiber.Ctx) error {
	identity := middlewares.IdentityFromCtx(c)
	messageID := c.Params("messageId")

	affected, err := h.messagingUC.MarkMessageRead(c.UserContext(), identity.AccountID, messageID)
	if err != nil {
		return respondError(c, "mark message read", err)
	}
	return c.JSON(fiber.Map{"affected": affected})
}
