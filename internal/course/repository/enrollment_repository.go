package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BigT001/studyexpressuk-sub002/internal/course/domain"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
)

// EnrollmentRepository definition enrollment persistence
type EnrollmentRepository interface {
	Insert(ctx context.Context, enrollment *domain.Enrollment) error
	FindByID(ctx context.Context, enrollmentID string) (*domain.Enrollment, error)
	// HasActive accountID 在該課程是否已有生效報名
	HasActive(ctx context.Context, courseID primitive.ObjectID, accountID string) (bool, error)
	// CountActiveByCourse 該課程目前生效報名數，用來對 capacity
	CountActiveByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error)
	CountActiveByAccount(ctx context.Context, accountID string) (int64, error)
	// Cancel 只動仍然 active 的列，回傳影響筆數
	Cancel(ctx context.Context, enrollmentID primitive.ObjectID, at time.Time) (int64, error)
	FindByAccount(ctx context.Context, accountID string) ([]domain.Enrollment, error)
	FindByCourse(ctx context.Context, courseID string) ([]domain.Enrollment, error)
}

type enrollmentRepository struct {
	coll *mongo.Collection
}

// NewMongoEnrollmentRepository create a EnrollmentRepository
func NewMongoEnrollmentRepository(db *mongo.Database) EnrollmentRepository {
	return &enrollmentRepository{
		coll: db.Collection("enrollments"),
	}
}

func (r *enrollmentRepository) Insert(ctx context.Context, enrollment *domain.Enrollment) error {
	res, err := r.coll.InsertOne(ctx, enrollment)
	if err != nil {
		return errprocess.Wrap(errprocess.Storage, "insert enrollment", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		enrollment.ID = oid
	}
	return nil
}

func (r *enrollmentRepository) FindByID(ctx context.Context, enrollmentID string) (*domain.Enrollment, error) {
	oid, err := primitive.ObjectIDFromHex(enrollmentID)
	if err != nil {
		return nil, errprocess.New(errprocess.Validation, "malformed enrollment id")
	}
	var enrollment domain.Enrollment
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&enrollment)
	if err == mongo.ErrNoDocuments {
		return nil, errprocess.New(errprocess.NotFound, "enrollment not found")
	}
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "find enrollment", err)
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) HasActive(ctx context.Context, courseID primitive.ObjectID, accountID string) (bool, error) {
	filter := bson.M{
		"course_id":  courseID,
		"account_id": accountID,
		"status":     domain.EnrollmentActive,
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return false, errprocess.Wrap(errprocess.Storage, "count active enrollment", err)
	}
	return n > 0, nil
}

func (r *enrollmentRepository) CountActiveByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"course_id": courseID,
		"status":    domain.EnrollmentActive,
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errprocess.Wrap(errprocess.Storage, "count course enrollments", err)
	}
	return n, nil
}

func (r *enrollmentRepository) CountActiveByAccount(ctx context.Context, accountID string) (int64, error) {
	filter := bson.M{
		"account_id": accountID,
		"status":     domain.EnrollmentActive,
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errprocess.Wrap(errprocess.Storage, "count account enrollments", err)
	}
	return n, nil
}

func (r *enrollmentRepository) Cancel(ctx context.Context, enrollmentID primitive.ObjectID, at time.Time) (int64, error) {
	filter := bson.M{
		"_id":    enrollmentID,
		"status": domain.EnrollmentActive,
	}
	update := bson.M{"$set": bson.M{
		"status":       domain.EnrollmentCancelled,
		"cancelled_at": at,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, errprocess.Wrap(errprocess.Storage, "cancel enrollment", err)
	}
	return res.ModifiedCount, nil
}

func (r *enrollmentRepository) FindByAccount(ctx context.Context, accountID string) ([]domain.Enrollment, error) {
	opts := options.Find().SetSort(bson.M{"enrolled_at": -1})
	cur, err := r.coll.Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "find enrollments by account", err)
	}
	var enrollments []domain.Enrollment
	if err := cur.All(ctx, &enrollments); err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "decode enrollments", err)
	}
	return enrollments, nil
}

func (r *enrollmentRepository) FindByCourse(ctx context.Context, courseID string) ([]domain.Enrollment, error) {
	oid, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, errprocess.New(errprocess.Validation, "malformed course id")
	}
	opts := options.Find().SetSort(bson.M{"enrolled_at": -1})
	cur, err := r.coll.Find(ctx, bson.M{"course_id": oid}, opts)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "find enrollments by course", err)
	}
	var enrollments []domain.Enrollment
	if err := cur.All(ctx, &enrollments); err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "decode enrollments", err)
	}
	return enrollments, nil
}
