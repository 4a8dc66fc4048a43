package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/BigT001/studyexpressuk-sub002/internal/messaging/domain"
	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
)

// InboxChannel channel name for an account's inbox
func InboxChannel(accountID string) string {
	return "inbox:user:" + accountID
}

// InboxPubSub definition redis pub/sub for message fan-out
type InboxPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewInboxPubSub create InboxPubSub
func NewInboxPubSub(client *redis.Client) *InboxPubSub {
	return &InboxPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish 將 message 序列化後，發布到指定 channel
func (r *InboxPubSub) Publish(channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, channel, data).Err()
}

// Subscribe 訂閱自己 account ID 的 inbox channel，收到訊息後呼叫 handler
func (r *InboxPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	sub := r.client.Subscribe(r.ctx, channel)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var result domain.Message
				if err := json.Unmarshal([]byte(m.Payload), &result); err != nil {
					logger.Log.Error("inbox sub err :", zap.String("err", fmt.Sprintf("failed to unmarshal message: %v", err)))
					continue
				}

				resp := domain.WSResponse{
					Action:  string(domain.NotifyMessage),
					Success: true,
					Payload: map[string]interface{}{
						"message_id": result.ID.Hex(),
						"sender_id":  result.SenderID,
						"sender":     result.Sender,
						"content":    result.Content,
						"created_at": result.CreatedAt,
					},
				}
				handler(resp)
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", channel))
				// 當 ctx 被取消時，退出循環並關閉訂閱
				sub.Close()
			}
		}
	}()
	return nil
}
