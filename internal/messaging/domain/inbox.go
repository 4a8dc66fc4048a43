package domain

// Action websocket request action
type Action string

const (
	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// ReadThread websocket action read_thread
	ReadThread Action = "read_thread"
	// ListConversations websocket action list_conversations
	ListConversations Action = "list_conversations"
	// NotifyMessage websocket action notify_message，由 pub/sub 推給收件人
	NotifyMessage Action = "notify_message"
)

// WSRequest websocket Request
type WSRequest struct {
	Action        string `json:"action"`
	CounterpartID string `json:"counterpart_id"`
	Content       string `json:"content"`
	MessageID     string `json:"message_id"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
