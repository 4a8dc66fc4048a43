package app

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/BigT001/studyexpressuk-sub002/internal/messaging/domain"
	"github.com/BigT001/studyexpressuk-sub002/internal/messaging/repository"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
)

// Directory 查詢寄送對象的帳號快照，messaging 不直接碰帳號儲存層
type Directory interface {
	Lookup(ctx context.Context, accountID string) (*domain.Participant, error)
}

// InboxPublisher 寄出後推播給收件人，nil 時跳過推播
type InboxPublisher interface {
	Publish(channel string, message interface{}) error
}

// MessagingUseCase 這裡封裝了對外提供的應用服務
type MessagingUseCase interface {
	ListConversations(ctx context.Context, selfID string) ([]domain.ConversationSummary, error)
	SendMessage(ctx context.Context, selfID, counterpartID, content string) (*domain.Message, error)
	GetThread(ctx context.Context, selfID, counterpartID string) ([]domain.Message, error)
	MarkThreadRead(ctx context.Context, selfID, counterpartID string) (int64, error)
	MarkMessageRead(ctx context.Context, selfID, messageID string) (int64, error)
	UnreadTotal(ctx context.Context, selfID string) (int64, error)
}

type messagingUseCase struct {
	msgRepo   repository.MessageRepository
	directory Directory
	inboxPub  InboxPublisher
}

// NewMessagingUseCase 建立一個新的 MessagingUseCase
func NewMessagingUseCase(msgRepo repository.MessageRepository,
	directory Directory,
	inboxPub InboxPublisher,
) MessagingUseCase {
	return &messagingUseCase{
		msgRepo:   msgRepo,
		directory: directory,
		inboxPub:  inboxPub,
	}
}

// ListConversations 把 selfID 參與的所有訊息重算成對話摘要。
// 單趟掃描：每個對話對象保留最後一則訊息（running max）並累計未讀數。
// 儲存層失敗時整份列表失敗，不回傳半套結果。
func (m *messagingUseCase) ListConversations(ctx context.Context, selfID string) ([]domain.ConversationSummary, error) {
	messages, err := m.msgRepo.FindByParticipant(ctx, selfID)
	if err != nil {
		return nil, err
	}

	byCounterpart := make(map[string]*domain.ConversationSummary)
	for i := range messages {
		msg := &messages[i]

		counterpartID := msg.SenderID
		if msg.SenderID == selfID {
			counterpartID = msg.RecipientID
		}

		summary, ok := byCounterpart[counterpartID]
		if !ok {
			summary = &domain.ConversationSummary{
				CounterpartID: counterpartID,
				Counterpart:   msg.Counterpart(selfID),
			}
			byCounterpart[counterpartID] = summary
		}

		if msg.CreatedAt.After(summary.LastMessageAt) {
			summary.LastContent = msg.Content
			summary.LastSenderID = msg.SenderID
			summary.LastMessageAt = msg.CreatedAt
			// 快照跟著最新一則走
			summary.Counterpart = msg.Counterpart(selfID)
		}

		if msg.IsUnreadBy(selfID) {
			summary.UnreadCount++
		}
	}

	summaries := make([]domain.ConversationSummary, 0, len(byCounterpart))
	for _, s := range byCounterpart {
		summaries = append(summaries, *s)
	}

	// 最後訊息時間降序，同時間以對象 id 升序保持穩定輸出
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].LastMessageAt.Equal(summaries[j].LastMessageAt) {
			return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
		}
		return summaries[i].CounterpartID < summaries[j].CounterpartID
	})

	return summaries, nil
}

// SendMessage 寄出一則訊息，寄送當下定格雙方快照
func (m *messagingUseCase) SendMessage(ctx context.Context, selfID, counterpartID, content string) (*domain.Message, error) {
	if domain.IsBlank(content) {
		return nil, errprocess.New(errprocess.Validation, "content is empty")
	}
	if counterpartID == "" || counterpartID == selfID {
		return nil, errprocess.New(errprocess.Validation, "invalid counterpart")
	}

	sender, err := m.directory.Lookup(ctx, selfID)
	if err != nil {
		return nil, err
	}
	recipient, err := m.directory.Lookup(ctx, counterpartID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		SenderID:    selfID,
		RecipientID: counterpartID,
		Sender:      *sender,
		Recipient:   *recipient,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}

	if err := m.msgRepo.Insert(ctx, msg); err != nil {
		return nil, err
	}

	// 推播失敗不影響已寫入的訊息
	if m.inboxPub != nil {
		if err := m.inboxPub.Publish(repository.InboxChannel(counterpartID), msg); err != nil {
			logger.Log.Error("inbox publish err", zap.String("recipient", counterpartID), zap.Error(err))
		}
	}

	return msg, nil
}

// GetThread 取回兩人之間的訊息（時間升序），並順手把對方寄來的標成已讀
func (m *messagingUseCase) GetThread(ctx context.Context, selfID, counterpartID string) ([]domain.Message, error) {
	if _, err := m.msgRepo.MarkThreadRead(ctx, selfID, counterpartID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return m.msgRepo.FindThread(ctx, selfID, counterpartID)
}

// MarkThreadRead 把對方寄來且未讀的訊息標成已讀。重複呼叫影響 0 筆，不是錯誤。
func (m *messagingUseCase) MarkThreadRead(ctx context.Context, selfID, counterpartID string) (int64, error) {
	return m.msgRepo.MarkThreadRead(ctx, selfID, counterpartID, time.Now().UTC())
}

// MarkMessageRead 單筆標已讀。只有收件人能標，已讀過的回 0。
func (m *messagingUseCase) MarkMessageRead(ctx context.Context, selfID, messageID string) (int64, error) {
	msg, err := m.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return 0, err
	}

	if msg.RecipientID != selfID {
		return 0, errprocess.New(errprocess.Forbidden, "not the recipient")
	}

	if msg.ReadAt != nil {
		return 0, nil
	}

	return m.msgRepo.MarkMessageRead(ctx, selfID, messageID, time.Now().UTC())
}

// UnreadTotal dashboard 用的未讀總數
func (m *messagingUseCase) UnreadTotal(ctx context.Context, selfID string) (int64, error) {
	unreads, err := m.msgRepo.CountUnreadByCounterpart(ctx, selfID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, u := range unreads {
		total += int64(u.UnreadCount)
	}
	return total, nil
}
