package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BigT001/studyexpressuk-sub002/internal/payment/app"
	"github.com/BigT001/studyexpressuk-sub002/internal/payment/domain"
	"github.com/BigT001/studyexpressuk-sub002/pkg/middlewares"
)

// PaymentHandler 处理付款相关的 HTTP 请求
type PaymentHandler struct {
	paymentUC app.PaymentUseCase
}

// NewPaymentHandler 创建新的 PaymentHandler
func NewPaymentHandler(paymentUC app.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{
		paymentUC: paymentUC,
	}
}

// Checkout 建立结帐
// @Summary 建立结帐
// @Description 向外部金流建立结帐，回传导向网址与 pending 付款纪录
// @Tags Payments
// @Accept json
// @Produce json
// @Success 201 {object} string "结帐已建立"
// @Failure 404 {object} string "课程不存在"
// @Router /payments/checkout [post]
func (h *PaymentHandler) Checkout(c *fiber.Ctx) error {
	type request struct {
		CourseID string `json:"course_id"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	identity := middlewares.IdentityFromCtx(c)

	checkout, err := h.paymentUC.InitiateCheckout(c.UserContext(), identity.AccountID, req.CourseID)
	if err != nil {
		return respondError(c, "initiate checkout", err)
	}
	return c.Status(fiber.StatusCreated).JSON(checkout)
}

// Webhook 金流回呼
// @Summary 金流回呼
// @Description 外部金流回报付款结果，重送是幂等的，终态不会被改写
// @Tags Payments
// @Accept json
// @Success 200 {object} string "已处理"
// @Failure 404 {object} string "reference 不存在"
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	type request struct {
		Reference string `json:"reference"`
		Outcome   string `json:"outcome"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	if err := h.paymentUC.ConfirmPayment(c.UserContext(), req.Reference, domain.PaymentStatus(req.Outcome)); err != nil {
		return respondError(c, "confirm payment", err)
	}
	return c.JSON(fiber.Map{"message": "ok"})
}

// ListMyPayments 我的付款纪录
// @Summary 我的付款纪录
// @Tags Payments
// @Produce json
// @Success 200 {object} string "付款列表"
// @Router /payments/my [get]
func (h *PaymentHandler) ListMyPayments(c *fiber.Ctx) error {
	identity := middlewares.IdentityFromCtx(c)

	payments, err := h.paymentUC.ListMyPayments(c.UserContext(), identity.AccountID)
	if err != nil {
		return respondError(c, "list my payments", err)
	}
	return c.JSON(fiber.Map{"payments": payments})
}

// ListAllPayments 管理端付款纪录
// @Summary 管理端付款纪录
// @Tags Payments
// @Produce json
// @Success 200 {object} string "付款列表"
// @Router /admin/payments [get]
func (h *PaymentHandler) ListAllPayments(c *fiber.Ctx) error {
	payments, err := h.paymentUC.ListAllPayments(c.UserContext())
	if err != nil {
		return respondError(c, "list all payments", err)
	}
	return c.JSON(fiber.Map{"payments": payments})
}
