package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participant 訊息上冗餘的帳號快照，寄送當下定格，之後帳號改名也不回寫
type Participant struct {
	AccountID   string `bson:"account_id" json:"account_id"`
	DisplayName string `bson:"display_name" json:"display_name"`
	Email       string `bson:"email" json:"email"`
	Role        string `bson:"role" json:"role"`
	AvatarURL   string `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
}

// Message 一則一對一訊息。send 建立，mark-read 設定一次 ReadAt，永不刪除。
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID    string             `bson:"sender_id" json:"sender_id"`
	RecipientID string             `bson:"recipient_id" json:"recipient_id"`
	Sender      Participant        `bson:"sender" json:"sender"`
	Recipient   Participant        `bson:"recipient" json:"recipient"`
	Content     string             `bson:"content" json:"content"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	ReadAt      *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
}

// IsUnreadBy 對 accountID 而言這則訊息是否未讀
func (m *Message) IsUnreadBy(accountID string) bool {
	return m.RecipientID == accountID && m.ReadAt == nil
}

// Counterpart 以 selfID 的視角取得對方快照
func (m *Message) Counterpart(selfID string) Participant {
	if m.SenderID == selfID {
		return m.Recipient
	}
	return m.Sender
}

// IsBlank content 全空白視同空
func IsBlank(content string) bool {
	return strings.TrimSpace(content) == ""
}

// ConversationSummary 每個對話對象一列，listing 時重算，從不落盤
type ConversationSummary struct {
	CounterpartID string      `json:"counterpart_id"`
	Counterpart   Participant `json:"counterpart"`
	LastContent   string      `json:"last_content"`
	LastSenderID  string      `json:"last_sender_id"`
	LastMessageAt time.Time   `json:"last_message_at"`
	UnreadCount   int         `json:"unread_count"`
}

// CounterpartUnread aggregation 輸出，每個寄件人的未讀數
type CounterpartUnread struct {
	CounterpartID string    `bson:"_id" json:"counterpart_id"`
	UnreadCount   int       `bson:"unread_count" json:"unread_count"`
	LastUnreadAt  time.Time `bson:"last_unread_at" json:"last_unread_at"`
}
