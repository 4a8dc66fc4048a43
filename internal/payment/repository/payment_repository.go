package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BigT001/studyexpressuk-sub002/internal/payment/domain"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
)

// PaymentRepository definition payment persistence
type PaymentRepository interface {
	Insert(ctx context.Context, payment *domain.Payment) error
	FindByReference(ctx context.Context, reference string) (*domain.Payment, error)
	// SettleIfPending 只把 pending 的付款轉成終態，回傳影響筆數
	SettleIfPending(ctx context.Context, reference string, status domain.PaymentStatus, at time.Time) (int64, error)
	FindByAccount(ctx context.Context, accountID string) ([]domain.Payment, error)
	FindAll(ctx context.Context) ([]domain.Payment, error)
}

type paymentRepository struct {
	coll *mongo.Collection
}

// NewMongoPaymentRepository create a PaymentRepository
func NewMongoPaymentRepository(db *mongo.Database) PaymentRepository {
	return &paymentRepository{
		coll: db.Collection("payments"),
	}
}

func (r *paymentRepository) Insert(ctx context.Context, payment *domain.Payment) error {
	res, err := r.coll.InsertOne(ctx, payment)
	if err != nil {
		return errprocess.Wrap(errprocess.Storage, "insert payment", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		payment.ID = oid
	}
	return nil
}

func (r *paymentRepository) FindByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.coll.FindOne(ctx, bson.M{"reference": reference}).Decode(&payment)
	if err == mongo.ErrNoDocuments {
		return nil, errprocess.New(errprocess.NotFound, "payment not found")
	}
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "find payment", err)
	}
	return &payment, nil
}

func (r *paymentRepository) SettleIfPending(ctx context.Context, reference string, status domain.PaymentStatus, at time.Time) (int64, error) {
	filter := bson.M{
		"reference": reference,
		"status":    domain.PaymentPending,
	}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": at,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, errprocess.Wrap(errprocess.Storage, "settle payment", err)
	}
	return res.ModifiedCount, nil
}

func (r *paymentRepository) FindByAccount(ctx context.Context, accountID string) ([]domain.Payment, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := r.coll.Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "find payments by account", err)
	}
	var payments []domain.Payment
	if err := cur.All(ctx, &payments); err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "decode payments", err)
	}
	return payments, nil
}

func (r *paymentRepository) FindAll(ctx context.Context) ([]domain.Payment, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "find payments", err)
	}
	var payments []domain.Payment
	if err := cur.All(ctx, &payments); err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "decode payments", err)
	}
	return payments, nil
}
