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

// CourseRepository definition course persistence
type CourseRepository interface {
	Insert(ctx context.Context, course *domain.Course) error
	// Update 回傳符合條件的筆數，0 表示課程不存在
	Update(ctx context.Context, courseID string, upd *domain.CourseUpdate) (int64, error)
	FindByID(ctx context.Context, courseID string) (*domain.Course, error)
	// FindPublished 上架中的課程，開課時間升序
	FindPublished(ctx context.Context) ([]domain.Course, error)
	CountCourses(ctx context.Context) (int64, error)
}

type courseRepository struct {
	coll *mongo.Collection
}

// NewMongoCourseRepository create a CourseRepository
func NewMongoCourseRepository(db *mongo.Database) CourseRepository {
	return &courseRepository{
		coll: db.Collection("courses"),
	}
}

func (r *courseRepository) Insert(ctx context.Context, course *domain.Course) error {
	res, err := r.coll.InsertOne(ctx, course)
	if err != nil {
		return errprocess.Wrap(errprocess.Storage, "insert course", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		course.ID = oid
	}
	return nil
}

func (r *courseRepository) Update(ctx context.Context, courseID string, upd *domain.CourseUpdate) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return 0, errprocess.New(errprocess.Validation, "malformed course id")
	}

	// 只更新有給值的欄位
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.StartAt != nil {
		set["start_at"] = *upd.StartAt
	}
	if upd.EndAt != nil {
		set["end_at"] = *upd.EndAt
	}
	if upd.Capacity != nil {
		set["capacity"] = *upd.Capacity
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Currency != nil {
		set["currency"] = *upd.Currency
	}
	if upd.Published != nil {
		set["published"] = *upd.Published
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return 0, errprocess.Wrap(errprocess.Storage, "update course", err)
	}
	return res.MatchedCount, nil
}

func (r *courseRepository) FindByID(ctx context.Context, courseID string) (*domain.Course, error) {
	oid, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, errprocess.New(errprocess.Validation, "malformed course id")
	}
	var course domain.Course
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&course)
	if err == mongo.ErrNoDocuments {
		return nil, errprocess.New(errprocess.NotFound, "course not found")
	}
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "find course", err)
	}
	return &course, nil
}

func (r *courseRepository) FindPublished(ctx context.Context) ([]domain.Course, error) {
	opts := options.Find().SetSort(bson.M{"start_at": 1})
	cur, err := r.coll.Find(ctx, bson.M{"published": true}, opts)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "find published courses", err)
	}
	var courses []domain.Course
	if err := cur.All(ctx, &courses); err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "decode courses", err)
	}
	return courses, nil
}

func (r *courseRepository) CountCourses(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errprocess.Wrap(errprocess.Storage, "count courses", err)
	}
	return n, nil
}
