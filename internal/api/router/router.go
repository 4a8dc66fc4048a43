package router

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"

	"github.com/BigT001/studyexpressuk-sub002/internal/api/handlers"
	messagingapp "github.com/BigT001/studyexpressuk-sub002/internal/messaging/app"
	"github.com/BigT001/studyexpressuk-sub002/pkg/middlewares"
	token "github.com/BigT001/studyexpressuk-sub002/pkg/token"
)

// Handlers 路由需要的所有 handler
type Handlers struct {
	Account      *handlers.AccountHandler
	Message      *handlers.MessageHandler
	Course       *handlers.CourseHandler
	Announcement *handlers.AnnouncementHandler
	Payment      *handlers.PaymentHandler
	Dashboard    *handlers.DashboardHandler
	InboxWS      *messagingapp.InboxWebsocketHandler
}

// RegisterRoutes 注册平台路由
// @title StudyExpress UK Platform API
// @version 1.0
// @description API documentation for the StudyExpress UK platform
// @host localhost:8080
// @BasePath /
func RegisterRoutes(app *fiber.App, alive middlewares.SessionChecker, h Handlers) {
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/", handlers.ConnectCheck)
	app.Post("/debug", handlers.DebugLogFlag)

	// 不需要凭证的入口
	accountRoutes := app.Group("/account")
	accountRoutes.Post("/register", h.Account.Register)
	accountRoutes.Post("/login", h.Account.Login)

	// 金流回呼走 reference 对帐，不带平台凭证
	app.Post("/payments/webhook", h.Payment.Webhook)

	// 登出需要有效凭证
	accountRoutes.Use(middlewares.RequireRoles(alive))
	accountRoutes.Post("/logout", h.Account.Logout)

	// 私讯：所有登入角色
	messageRoutes := app.Group("/messages", middlewares.RequireRoles(alive))
	messageRoutes.Get("/conversations", h.Message.ListConversations)
	messageRoutes.Post("/", h.Message.SendMessage)
	messageRoutes.Get("/thread/:counterpartId", h.Message.GetThread)
	messageRoutes.Post("/thread/:counterpartId", h.Message.SendToThread)
	messageRoutes.Post("/thread/:counterpartId/read", h.Message.MarkThreadRead)
	messageRoutes.Post("/:messageId/read", h.Message.MarkMessageRead)

	// 课程：浏览开放给所有登入角色，维护只给管理端
	courseRoutes := app.Group("/courses", middlewares.RequireRoles(alive))
	courseRoutes.Get("/", h.Course.ListPublished)
	courseRoutes.Get("/:courseId", h.Course.GetCourse)
	courseRoutes.Post("/:courseId/enroll", h.Course.Enroll)
	courseRoutes.Post("/", middlewares.RequireRoles(alive, token.RoleAdmin, token.RoleSubAdmin), h.Course.CreateCourse)
	courseRoutes.Put("/:courseId", middlewares.RequireRoles(alive, token.RoleAdmin, token.RoleSubAdmin), h.Course.UpdateCourse)
	courseRoutes.Get("/:courseId/enrollments",
		middlewares.RequireRoles(alive, token.RoleAdmin, token.RoleSubAdmin, token.RoleStaff),
		h.Course.ListCourseEnrollments)

	enrollmentRoutes := app.Group("/enrollments", middlewares.RequireRoles(alive))
	enrollmentRoutes.Get("/my", h.Course.ListMyEnrollments)
	enrollmentRoutes.Post("/:enrollmentId/cancel", h.Course.CancelEnrollment)

	// 公告：发布限管理端，删除只给 ADMIN
	announcementRoutes := app.Group("/announcements")
	announcementRoutes.Get("/", middlewares.RequireRoles(alive), h.Announcement.List)
	announcementRoutes.Post("/", middlewares.RequireRoles(alive, token.RoleAdmin, token.RoleSubAdmin), h.Announcement.Create)
	announcementRoutes.Delete("/:announcementId", middlewares.RequireRoles(alive, token.RoleAdmin), h.Announcement.Delete)

	// 付款
	paymentRoutes := app.Group("/payments", middlewares.RequireRoles(alive))
	paymentRoutes.Post("/checkout", h.Payment.Checkout)
	paymentRoutes.Get("/my", h.Payment.ListMyPayments)

	app.Get("/dashboard/summary", middlewares.RequireRoles(alive), h.Dashboard.Summary)

	// 管理端
	adminRoutes := app.Group("/admin", middlewares.RequireRoles(alive, token.RoleAdmin, token.RoleSubAdmin))
	adminRoutes.Post("/accounts", h.Account.CreateAccount)
	adminRoutes.Get("/accounts/find", h.Account.Find)
	adminRoutes.Post("/accounts/:accountId/logout", h.Account.ForceLogout)
	adminRoutes.Put("/accounts/:accountId/role", h.Account.UpdateRole)
	adminRoutes.Get("/messages/conversations/:accountId", h.Message.AdminListConversations)
	adminRoutes.Get("/payments", h.Payment.ListAllPayments)

	// 即时通知 websocket
	app.Get("/ws", middlewares.RequireRoles(alive), websocket.New(func(c *websocket.Conn) {
		h.InboxWS.HandleConnection(context.Background(), c)
	}))
}
