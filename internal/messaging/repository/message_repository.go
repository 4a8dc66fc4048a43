package repository

import (
	"time"

	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BigT001/studyexpressuk-sub002/internal/messaging/domain"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
)

// MessageRepository definition message persistence
type MessageRepository interface {
	// Insert 寫入一筆訊息並回填 ID
	Insert(ctx context.Context, msg *domain.Message) error
	// FindByParticipant 找出 accountID 參與的所有訊息（寄或收）
	FindByParticipant(ctx context.Context, accountID string) ([]domain.Message, error)
	// FindThread 兩人之間的訊息，時間升序
	FindThread(ctx context.Context, selfID, counterpartID string) ([]domain.Message, error)
	// FindByID 依 hex id 查單筆
	FindByID(ctx context.Context, messageID string) (*domain.Message, error)
	// MarkThreadRead 把對方寄來且未讀的訊息標成已讀，回傳筆數
	MarkThreadRead(ctx context.Context, selfID, counterpartID string, at time.Time) (int64, error)
	// MarkMessageRead 單筆標已讀，只動 recipient=selfID 且未讀的列
	MarkMessageRead(ctx context.Context, selfID, messageID string, at time.Time) (int64, error)
	// CountUnreadByCounterpart 每個寄件人的未讀數
	CountUnreadByCounterpart(ctx context.Context, accountID string) ([]domain.CounterpartUnread, error)
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll: db.Collection("messages"),
	}
}

func (r *messageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	res, err := r.coll.InsertOne(ctx, msg)
	if err != nil {
		return errprocess.Wrap(errprocess.Storage, "insert message", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid
	}
	return nil
}

func (r *messageRepository) FindByParticipant(ctx context.Context, accountID string) ([]domain.Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"sender_id": accountID},
		{"recipient_id": accountID},
	}}
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "find messages by participant", err)
	}
	var messages []domain.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "decode messages", err)
	}
	return messages, nil
}

func (r *messageRepository) FindThread(ctx context.Context, selfID, counterpartID string) ([]domain.Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"sender_id": selfID, "recipient_id": counterpartID},
		{"sender_id": counterpartID, "recipient_id": selfID},
	}}
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "find thread", err)
	}
	var messages []domain.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "decode thread", err)
	}
	return messages, nil
}

func (r *messageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	oid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return nil, errprocess.New(errprocess.Validation, "malformed message id")
	}
	var msg domain.Message
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return nil, errprocess.New(errprocess.NotFound, "message not found")
	}
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "find message", err)
	}
	return &msg, nil
}

func (r *messageRepository) MarkThreadRead(ctx context.Context, selfID, counterpartID string, at time.Time) (int64, error) {
	filter := bson.M{
		"sender_id":    counterpartID,
		"recipient_id": selfID,
		"read_at":      bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"read_at": at}}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, errprocess.Wrap(errprocess.Storage, "mark thread read", err)
	}
	return res.ModifiedCount, nil
}

func (r *messageRepository) MarkMessageRead(ctx context.Context, selfID, messageID string, at time.Time) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return 0, errprocess.New(errprocess.Validation, "malformed message id")
	}
	filter := bson.M{
		"_id":          oid,
		"recipient_id": selfID,
		"read_at":      bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"read_at": at}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, errprocess.Wrap(errprocess.Storage, "mark message read", err)
	}
	return res.ModifiedCount, nil
}

func (r *messageRepository) CountUnreadByCounterpart(ctx context.Context, accountID string) ([]domain.CounterpartUnread, error) {
	pipeline := mongo.Pipeline{
		// 1. 只看自己是收件人且未讀的訊息
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "recipient_id", Value: accountID},
			{Key: "read_at", Value: bson.D{{Key: "$exists", Value: false}}},
		}}},
		// 2. 按寄件人分組，計算未讀數量與最後未讀時間
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$sender_id"},
			{Key: "unread_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "last_unread_at", Value: bson.D{{Key: "$max", Value: "$created_at"}}},
		}}},
		// 3. 最後未讀時間降序
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "last_unread_at", Value: -1},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "aggregate unread", err)
	}

	var results []domain.CounterpartUnread
	if err := cur.All(ctx, &results); err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "decode unread aggregation", err)
	}

	return results, nil
}
