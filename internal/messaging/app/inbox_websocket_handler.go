package app

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/BigT001/studyexpressuk-sub002/internal/messaging/domain"
	"github.com/BigT001/studyexpressuk-sub002/internal/messaging/repository"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
	"github.com/BigT001/studyexpressuk-sub002/pkg/middlewares"
)

// InboxSubscriber 長連線期間訂閱自己的 inbox channel
type InboxSubscriber interface {
	Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error
}

// SessionExtender 連線成功視同回鍋，延長一輪 session TTL。nil 時跳過。
type SessionExtender interface {
	ReconnectSession(ctx context.Context, token string) error
}

// messageWriter 底層 websocket 連線的寫入面
type messageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// safeConn 同一條連線會被 read loop、訂閱 callback 跟 ping goroutine
// 同時寫，底層連線只允許單一 writer，全部寫入都走這把鎖
type safeConn struct {
	mu sync.Mutex
	w  messageWriter
}

func (s *safeConn) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.WriteMessage(messageType, data)
}

// InboxWebsocketHandler 推播即時訊息並處理前端動作
type InboxWebsocketHandler struct {
	messagingUC MessagingUseCase
	inboxSub    InboxSubscriber
	sessions    SessionExtender
}

// NewInboxWebsocketHandler create InboxWebsocketHandler
func NewInboxWebsocketHandler(messagingUC MessagingUseCase, inboxSub InboxSubscriber, sessions SessionExtender) *InboxWebsocketHandler {
	return &InboxWebsocketHandler{
		messagingUC: messagingUC,
		inboxSub:    inboxSub,
		sessions:    sessions,
	}
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *InboxWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	tokenAccount := conn.Locals(middlewares.TokenAccountID)
	accountID, ok := tokenAccount.(string)
	logger.Log.Info("websocket handle accountID", zap.String("accountID", accountID), zap.String("ok", strconv.FormatBool(ok)))

	// 回鍋連線延長 session
	credential, _ := conn.Locals(middlewares.TokenCredential).(string)
	h.refreshSession(ctx, credential)

	ws := &safeConn{w: conn}
	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		logger.Log.Info("websocket close", zap.String("accountID", accountID))
		conn.Close()
		cancel()
	}()

	//client發出close
	//fiber會自動處理(在read msg 回傳err),故需要SetCloseHandler另外接出
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	conn.SetPongHandler(func(appData string) error {
		logger.Log.Infof("Received PONG:", appData)
		return nil
	})

	conn.SetPingHandler(func(appData string) error {
		logger.Log.Infof("Received PING:", appData)
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	//啟用sub訂閱自己的 inbox
	if h.inboxSub != nil {
		h.inboxSub.Subscribe(ctxClose, repository.InboxChannel(accountID), func(resp domain.WSResponse) {
			h.sendResponse(ws, resp)
		})
	}

	// 定期發送 Ping
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := ws.WriteMessage(websocket.PingMessage, []byte("ping message")); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				logger.Log.Infof("Ping goroutine cancelled for account:", accountID)
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Errorf("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, ws, accountID, mt, message)
	}
}

// refreshSession 連線成功視同回鍋，把 session TTL 延長一輪；
// 延長失敗不擋連線，guard 已經驗過憑證
func (h *InboxWebsocketHandler) refreshSession(ctx context.Context, credential string) {
	if h.sessions == nil || credential == "" {
		return
	}
	if err := h.sessions.ReconnectSession(ctx, credential); err != nil {
		logger.Log.Errorf("reconnect session error:", err)
	}
}

func (h *InboxWebsocketHandler) execWebsocketAction(ctx context.Context, ws *safeConn, accountID string, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, ws, accountID, msg)
	default:
		h.sendError(ws, "unknown message types")
	}
}

func (h *InboxWebsocketHandler) textMessageAction(ctx context.Context, ws *safeConn, accountID string, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Errorf("json unmarshal error:", err)
		return
	}
	h.sendResponse(ws, h.buildActionResponse(ctx, accountID, req))
}

// buildActionResponse 執行前端動作。失敗只回分類對應的通用訊息，
// 內部錯誤內文不出站，跟 HTTP 端同一套規矩
func (h *InboxWebsocketHandler) buildActionResponse(ctx context.Context, accountID string, req domain.WSRequest) domain.WSResponse {
	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}

	var err error
	switch req.Action {
	//傳送訊息，寫入後推播給收件人
	case string(domain.SendMessage):
		var sent *domain.Message
		sent, err = h.messagingUC.SendMessage(ctx, accountID, req.CounterpartID, req.Content)
		if err == nil {
			resp.Success = true
			resp.Payload["message_id"] = sent.ID.Hex()
			resp.Payload["created_at"] = sent.CreatedAt
		}

	//把某個對話標成已讀
	case string(domain.ReadThread):
		var affected int64
		affected, err = h.messagingUC.MarkThreadRead(ctx, accountID, req.CounterpartID)
		if err == nil {
			resp.Success = true
			resp.Payload["marked"] = affected
		}

	//重新拉一次對話摘要
	case string(domain.ListConversations):
		var summaries []domain.ConversationSummary
		summaries, err = h.messagingUC.ListConversations(ctx, accountID)
		if err == nil {
			resp.Success = true
			resp.Payload["conversations"] = summaries
		}

	default:
		resp.Action = "error"
		resp.Payload["error"] = "unknown action"
		return resp
	}

	if err != nil {
		logger.Log.Error("websocket err ", zap.String("AccountID", accountID), zap.String("Action", req.Action), zap.String("err", err.Error()))
		resp.Error = actionErrorMessage(err)
	}
	return resp
}

// actionErrorMessage 錯誤分類對應的通用訊息，對齊 HTTP 端的 statusMessage
func actionErrorMessage(err error) string {
	switch errprocess.KindOf(err) {
	case errprocess.Validation:
		return "invalid request"
	case errprocess.Unauthenticated:
		return "Unauthenticated"
	case errprocess.Forbidden:
		return "Forbidden"
	case errprocess.NotFound:
		return "not found"
	case errprocess.Conflict:
		return "conflict"
	default:
		return "internal error"
	}
}

// sendResponse - 發送 JSON 給前端
func (h *InboxWebsocketHandler) sendResponse(ws *safeConn, resp domain.WSResponse) {
	b, _ := json.Marshal(resp)
	if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}

func (h *InboxWebsocketHandler) sendError(ws *safeConn, errorMsg string) {
	resp := domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{
			"error": errorMsg,
		},
	}
	h.sendResponse(ws, resp)
}
