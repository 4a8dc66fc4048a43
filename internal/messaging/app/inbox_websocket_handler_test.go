package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/BigT001/studyexpressuk-sub002/internal/messaging/domain"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
)

// MockSessionExtender Mock SessionExtender
type MockSessionExtender struct {
	mock.Mock
}

func (m *MockSessionExtender) ReconnectSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// overlapWriter 偵測是否有兩個 goroutine 同時進到 WriteMessage
type overlapWriter struct {
	busy    int32
	overlap int32
	writes  int32
}

func (w *overlapWriter) WriteMessage(messageType int, data []byte) error {
	if !atomic.CompareAndSwapInt32(&w.busy, 0, 1) {
		atomic.StoreInt32(&w.overlap, 1)
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt32(&w.writes, 1)
	atomic.StoreInt32(&w.busy, 0)
	return nil
}

func TestSafeConnSerializesWrites(t *testing.T) {
	logger.Log = logger.SetNewNop()

	w := &overlapWriter{}
	ws := &safeConn{w: w}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				assert.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("payload")))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), atomic.LoadInt32(&w.overlap))
	assert.Equal(t, int32(80), atomic.LoadInt32(&w.writes))
}

func TestBuildActionResponse(t *testing.T) {
	ctx := context.Background()
	self := "user-1"

	logger.Log = logger.SetNewNop()

	// **情境 1: 儲存層失敗只回通用訊息，內部錯誤內文不出站**
	t.Run("儲存層失敗只回通用訊息", func(t *testing.T) {
		mockRepo := new(MockMessageRepo)
		cause := errors.New("mongo: connection reset by peer")
		mockRepo.On("FindByParticipant", ctx, self).
			Return(nil, errprocess.Wrap(errprocess.Storage, "find messages", cause)).Once()

		uc := NewMessagingUseCase(mockRepo, new(MockDirectory), nil)
		h := NewInboxWebsocketHandler(uc, nil, nil)

		resp := h.buildActionResponse(ctx, self, domain.WSRequest{Action: string(domain.ListConversations)})

		assert.False(t, resp.Success)
		assert.Equal(t, "internal error", resp.Error)
		assert.NotContains(t, resp.Error, "mongo")
		mockRepo.AssertExpectations(t)
	})

	// **情境 2: 內容空白回 invalid request**
	t.Run("空白內容回 invalid request", func(t *testing.T) {
		uc := NewMessagingUseCase(new(MockMessageRepo), new(MockDirectory), nil)
		h := NewInboxWebsocketHandler(uc, nil, nil)

		resp := h.buildActionResponse(ctx, self, domain.WSRequest{
			Action:        string(domain.SendMessage),
			CounterpartID: "user-2",
			Content:       "   ",
		})

		assert.False(t, resp.Success)
		assert.Equal(t, "invalid request", resp.Error)
	})

	// **情境 3: 成功動作帶回 payload**
	t.Run("標整串已讀成功", func(t *testing.T) {
		mockRepo := new(MockMessageRepo)
		mockRepo.On("MarkThreadRead", ctx, self, "user-2", mock.Anything).Return(int64(3), nil).Once()

		uc := NewMessagingUseCase(mockRepo, new(MockDirectory), nil)
		h := NewInboxWebsocketHandler(uc, nil, nil)

		resp := h.buildActionResponse(ctx, self, domain.WSRequest{
			Action:        string(domain.ReadThread),
			CounterpartID: "user-2",
		})

		assert.True(t, resp.Success)
		assert.Empty(t, resp.Error)
		assert.Equal(t, int64(3), resp.Payload["marked"])
		mockRepo.AssertExpectations(t)
	})

	// **情境 4: 不認得的 action**
	t.Run("不認得的 action", func(t *testing.T) {
		uc := NewMessagingUseCase(new(MockMessageRepo), new(MockDirectory), nil)
		h := NewInboxWebsocketHandler(uc, nil, nil)

		resp := h.buildActionResponse(ctx, self, domain.WSRequest{Action: "dance"})

		assert.False(t, resp.Success)
		assert.Equal(t, "unknown action", resp.Payload["error"])
	})
}

func TestRefreshSession(t *testing.T) {
	ctx := context.Background()

	logger.Log = logger.SetNewNop()

	// **情境 1: 連線帶憑證就延長 session**
	t.Run("有憑證就延長", func(t *testing.T) {
		sessions := new(MockSessionExtender)
		sessions.On("ReconnectSession", ctx, "raw-token").Return(nil).Once()

		h := NewInboxWebsocketHandler(nil, nil, sessions)
		h.refreshSession(ctx, "raw-token")

		sessions.AssertExpectations(t)
	})

	// **情境 2: 延長失敗不中斷連線，只記 log**
	t.Run("延長失敗只記 log", func(t *testing.T) {
		sessions := new(MockSessionExtender)
		sessions.On("ReconnectSession", ctx, "raw-token").Return(errors.New("redis down")).Once()

		h := NewInboxWebsocketHandler(nil, nil, sessions)
		h.refreshSession(ctx, "raw-token")

		sessions.AssertExpectations(t)
	})

	// **情境 3: 沒接 extender 或沒憑證時安全跳過**
	t.Run("nil extender 安全跳過", func(t *testing.T) {
		h := NewInboxWebsocketHandler(nil, nil, nil)
		h.refreshSession(ctx, "raw-token")

		sessions := new(MockSessionExtender)
		h = NewInboxWebsocketHandler(nil, nil, sessions)
		h.refreshSession(ctx, "")
		sessions.AssertNotCalled(t, "ReconnectSession", mock.Anything, mock.Anything)
	})
}
