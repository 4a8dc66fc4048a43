package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BigT001/studyexpressuk-sub002/internal/messaging/domain"
	"github.com/BigT001/studyexpressuk-sub002/pkg/database"
	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
	testtool "github.com/BigT001/studyexpressuk-sub002/pkg/test_tool"
)

var msgRepo MessageRepository

// TestMain 初始化測試環境
func TestMain(m *testing.M) {
	ctx := context.Background()
	logger.Log = logger.SetNewNop()

	// **啟動 MongoDB**
	mongoContainer, mongoHost, mongoPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "mongo:latest",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start MongoDB container: %v", err)
	}
	fmt.Printf("✅ MongoDB running at %s:%s\n", mongoHost, mongoPort)

	mongo, err := database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    fmt.Sprintf("mongodb://%s:%s", mongoHost, mongoPort),
		RetryCount:    5,
		RetryInterval: 5 * time.Second,
	}, "test_messaging_db")
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}

	msgRepo = NewMongoMessageRepository(mongo.Database)

	code := m.Run()

	mongo.Close(ctx)
	_ = mongoContainer.Terminate(ctx)

	os.Exit(code)
}

func seedMessage(t *testing.T, sender, recipient, content string, at time.Time) *domain.Message {
	t.Helper()
	msg := &domain.Message{
		SenderID:    sender,
		RecipientID: recipient,
		Sender:      domain.Participant{AccountID: sender, DisplayName: "name-" + sender},
		Recipient:   domain.Participant{AccountID: recipient, DisplayName: "name-" + recipient},
		Content:     content,
		CreatedAt:   at,
	}
	err := msgRepo.Insert(context.Background(), msg)
	assert.NoError(t, err)
	assert.False(t, msg.ID.IsZero())
	return msg
}

func TestInsertAndFindThread(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	seedMessage(t, "it-alice", "it-self", "first", base)
	seedMessage(t, "it-self", "it-alice", "second", base.Add(time.Minute))
	seedMessage(t, "it-bob", "it-self", "other thread", base.Add(2*time.Minute))

	thread, err := msgRepo.FindThread(ctx, "it-self", "it-alice")
	assert.NoError(t, err)
	assert.Len(t, thread, 2)
	// 時間升序
	assert.Equal(t, "first", thread[0].Content)
	assert.Equal(t, "second", thread[1].Content)
}

func TestFindByParticipant(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

	seedMessage(t, "it-carol", "it-dave", "to dave", base)
	seedMessage(t, "it-dave", "it-carol", "to carol", base.Add(time.Minute))
	seedMessage(t, "it-erin", "it-frank", "unrelated", base.Add(2*time.Minute))

	msgs, err := msgRepo.FindByParticipant(ctx, "it-carol")
	assert.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestMarkThreadReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 4, 3, 8, 0, 0, 0, time.UTC)

	seedMessage(t, "it-gina", "it-henry", "unread 1", base)
	seedMessage(t, "it-gina", "it-henry", "unread 2", base.Add(time.Minute))
	// henry 寄的不該被動到
	seedMessage(t, "it-henry", "it-gina", "own message", base.Add(2*time.Minute))

	affected, err := msgRepo.MarkThreadRead(ctx, "it-henry", "it-gina", time.Now().UTC())
	assert.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	// 第二次呼叫影響 0 筆，不是錯誤
	affected, err = msgRepo.MarkThreadRead(ctx, "it-henry", "it-gina", time.Now().UTC())
	assert.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	thread, err := msgRepo.FindThread(ctx, "it-henry", "it-gina")
	assert.NoError(t, err)
	for _, m := range thread {
		if m.RecipientID == "it-henry" {
			assert.NotNil(t, m.ReadAt)
		} else {
			assert.Nil(t, m.ReadAt)
		}
	}
}

func TestMarkMessageReadOnlyTouchesRecipientRow(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 4, 4, 8, 0, 0, 0, time.UTC)

	msg := seedMessage(t, "it-ivan", "it-judy", "single", base)

	// 寄件人不能標已讀
	affected, err := msgRepo.MarkMessageRead(ctx, "it-ivan", msg.ID.Hex(), time.Now().UTC())
	assert.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	// 收件人可以
	affected, err = msgRepo.MarkMessageRead(ctx, "it-judy", msg.ID.Hex(), time.Now().UTC())
	assert.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	got, err := msgRepo.FindByID(ctx, msg.ID.Hex())
	assert.NoError(t, err)
	assert.NotNil(t, got.ReadAt)
}

func TestCountUnreadByCounterpart(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 4, 5, 8, 0, 0, 0, time.UTC)

	seedMessage(t, "it-kate", "it-luke", "k1", base)
	seedMessage(t, "it-kate", "it-luke", "k2", base.Add(time.Minute))
	seedMessage(t, "it-mary", "it-luke", "m1", base.Add(2*time.Minute))

	unreads, err := msgRepo.CountUnreadByCounterpart(ctx, "it-luke")
	assert.NoError(t, err)

	counts := map[string]int{}
	for _, u := range unreads {
		counts[u.CounterpartID] = u.UnreadCount
	}
	assert.Equal(t, 2, counts["it-kate"])
	assert.Equal(t, 1, counts["it-mary"])
}

func TestFindByIDValidatesHex(t *testing.T) {
	ctx := context.Background()

	_, err := msgRepo.FindByID(ctx, "not-a-hex-id")
	assert.Error(t, err)

	_, err = msgRepo.FindByID(ctx, "ffffffffffffffffffffffff")
	assert.Error(t, err)
}
