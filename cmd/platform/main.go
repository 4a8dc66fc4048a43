package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"

	accountapp "github.com/BigT001/studyexpressuk-sub002/internal/account/app"
	accountdomain "github.com/BigT001/studyexpressuk-sub002/internal/account/domain"
	accountrepo "github.com/BigT001/studyexpressuk-sub002/internal/account/repository"
	announcementapp "github.com/BigT001/studyexpressuk-sub002/internal/announcement/app"
	announcementrepo "github.com/BigT001/studyexpressuk-sub002/internal/announcement/repository"
	"github.com/BigT001/studyexpressuk-sub002/internal/api/handlers"
	"github.com/BigT001/studyexpressuk-sub002/internal/api/router"
	courseapp "github.com/BigT001/studyexpressuk-sub002/internal/course/app"
	courserepo "github.com/BigT001/studyexpressuk-sub002/internal/course/repository"
	dashboardapp "github.com/BigT001/studyexpressuk-sub002/internal/dashboard/app"
	messagingapp "github.com/BigT001/studyexpressuk-sub002/internal/messaging/app"
	messagingdomain "github.com/BigT001/studyexpressuk-sub002/internal/messaging/domain"
	messagingrepo "github.com/BigT001/studyexpressuk-sub002/internal/messaging/repository"
	paymentapp "github.com/BigT001/studyexpressuk-sub002/internal/payment/app"
	paymentrepo "github.com/BigT001/studyexpressuk-sub002/internal/payment/repository"
	"github.com/BigT001/studyexpressuk-sub002/pkg/config"
	"github.com/BigT001/studyexpressuk-sub002/pkg/database"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
	testtool "github.com/BigT001/studyexpressuk-sub002/pkg/test_tool"
)

// accountDirectory 把帳號服務接成 messaging 的快照查詢
type accountDirectory struct {
	accounts accountapp.AccountUseCase
}

func (d *accountDirectory) Lookup(ctx context.Context, accountID string) (*messagingdomain.Participant, error) {
	account, err := d.accounts.FindAccount(ctx, &accountdomain.AccountQuery{AccountID: &accountID})
	if err != nil {
		return nil, err
	}
	return &messagingdomain.Participant{
		AccountID:   account.AccountID,
		DisplayName: account.DisplayName,
		Email:       account.Email,
		Role:        string(account.Role),
	}, nil
}

// coursePricer 把課程服務接成 payment 的價格查詢，未上架的課程不給結帳
type coursePricer struct {
	courses courseapp.CourseUseCase
}

func (p *coursePricer) PriceOf(ctx context.Context, courseID string) (int64, string, error) {
	course, err := p.courses.GetCourse(ctx, courseID)
	if err != nil {
		return 0, "", err
	}
	if !course.Published {
		return 0, "", errprocess.New(errprocess.NotFound, "course not found")
	}
	return course.Price, course.Currency, nil
}

// dashboardCourseCounts 儀表板需要的兩個課程端計數都來自 course usecase
type dashboardCourseCounts struct {
	courses courseapp.CourseUseCase
}

func (d *dashboardCourseCounts) CountActiveEnrollments(ctx context.Context, accountID string) (int64, error) {
	return d.courses.CountActiveEnrollments(ctx, accountID)
}

func (d *dashboardCourseCounts) CountCourses(ctx context.Context) (int64, error) {
	return d.courses.CountCourses(ctx)
}

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ServiceName, config.EnvConfig.ServiceLogPath)
	cfg := config.LoadConfig[config.Platform](config.EnvConfig.ServiceName, config.EnvConfig.ServiceYAMLPath)
	testtool.StartPprof()

	ctx := context.Background()

	// 1. PostgreSQL (帳號)
	pgURI := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.PostgreSQL.User, cfg.PostgreSQL.Password,
		cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    pgURI,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s:%d]", cfg.PostgreSQL.Host, cfg.PostgreSQL.Port)),
			zap.Error(err),
		)
	}
	defer pool.Close()

	// 2. MongoDB (訊息、課程、公告、付款)
	mongoURI := fmt.Sprintf("mongodb://%s:%s@%s:%d",
		cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    mongoURI,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		},
		cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal("Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", mongoURI)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// 3. Redis (session 與訊息推播共用一條連線)
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	sessionRepo := database.NewRedisRepositoryFromClient[accountdomain.AccountSession](redisClient)

	// 4. Kafka (報名事件)。沒接上只記 warning，報名照常運作。
	var enrollmentEvents courseapp.EnrollmentEventWriter
	kafkaWriter, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		RetryCount:    cfg.Kafka.RetryCount,
		RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
	})
	if err != nil {
		logger.Log.Warn("kafka writer unavailable, enrollment events disabled", zap.Error(err))
	} else {
		enrollmentEvents = kafkaWriter
		defer kafkaWriter.Close()
	}

	// 5. 初始化 Repository
	accountRepo := accountrepo.NewAccountRepository(pool)
	msgRepo := messagingrepo.NewMongoMessageRepository(mongo.Database)
	inboxPubSub := messagingrepo.NewInboxPubSub(redisClient)
	courseRepo := courserepo.NewMongoCourseRepository(mongo.Database)
	enrollmentRepo := courserepo.NewMongoEnrollmentRepository(mongo.Database)
	announcementRepo := announcementrepo.NewMongoAnnouncementRepository(mongo.Database)
	paymentRepo := paymentrepo.NewMongoPaymentRepository(mongo.Database)
	checkoutProvider := paymentrepo.NewHTTPCheckoutProvider(
		cfg.Checkout.BaseURL, time.Duration(cfg.Checkout.Timeout)*time.Second)

	// 6. 初始化 UseCases
	accountUC := accountapp.NewAccountUseCase(accountRepo, cfg.SessionTTL, sessionRepo, nil)
	courseUC := courseapp.NewCourseUseCase(courseRepo, enrollmentRepo, enrollmentEvents)
	messagingUC := messagingapp.NewMessagingUseCase(msgRepo, &accountDirectory{accounts: accountUC}, inboxPubSub)
	announcementUC := announcementapp.NewAnnouncementUseCase(announcementRepo)
	paymentUC := paymentapp.NewPaymentUseCase(paymentRepo, checkoutProvider, &coursePricer{courses: courseUC})
	dashboardUC := dashboardapp.NewDashboardUseCase(messagingUC, &dashboardCourseCounts{courses: courseUC}, accountUC)

	// 7. 啟動 Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file, // 将日志输出到文件
	}))

	// guard 在每個請求上查 session 還活著沒，登出後 JWT 立即失效
	router.RegisterRoutes(r, accountUC.SessionAlive, router.Handlers{
		Account:      handlers.NewAccountHandler(accountUC, cfg.SessionTTL),
		Message:      handlers.NewMessageHandler(messagingUC),
		Course:       handlers.NewCourseHandler(courseUC),
		Announcement: handlers.NewAnnouncementHandler(announcementUC),
		Payment:      handlers.NewPaymentHandler(paymentUC),
		Dashboard:    handlers.NewDashboardHandler(dashboardUC),
		InboxWS:      messagingapp.NewInboxWebsocketHandler(messagingUC, inboxPubSub, accountUC),
	})

	// Listen
	port := ":" + cfg.Port
	log.Printf("Platform Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
