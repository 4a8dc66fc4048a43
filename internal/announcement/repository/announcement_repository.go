package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BigT001/studyexpressuk-sub002/internal/announcement/domain"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	token "github.com/BigT001/studyexpressuk-sub002/pkg/token"
)

// AnnouncementRepository definition announcement persistence
type AnnouncementRepository interface {
	Insert(ctx context.Context, announcement *domain.Announcement) error
	// FindForRole audience 為空或含該角色的公告，新的在前
	FindForRole(ctx context.Context, role token.RoleType) ([]domain.Announcement, error)
	// Delete 回傳刪除筆數，0 表示公告不存在
	Delete(ctx context.Context, announcementID string) (int64, error)
}

type announcementRepository struct {
	coll *mongo.Collection
}

// NewMongoAnnouncementRepository create a AnnouncementRepository
func NewMongoAnnouncementRepository(db *mongo.Database) AnnouncementRepository {
	return &announcementRepository{
		coll: db.Collection("announcements"),
	}
}

func (r *announcementRepository) Insert(ctx context.Context, announcement *domain.Announcement) error {
	res, err := r.coll.InsertOne(ctx, announcement)
	if err != nil {
		return errprocess.Wrap(errprocess.Storage, "insert announcement", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		announcement.ID = oid
	}
	return nil
}

func (r *announcementRepository) FindForRole(ctx context.Context, role token.RoleType) ([]domain.Announcement, error) {
	filter := bson.M{"$or": []bson.M{
		{"audience": bson.M{"$size": 0}},
		{"audience": string(role)},
	}}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "find announcements", err)
	}
	var announcements []domain.Announcement
	if err := cur.All(ctx, &announcements); err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "decode announcements", err)
	}
	return announcements, nil
}

func (r *announcementRepository) Delete(ctx context.Context, announcementID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(announcementID)
	if err != nil {
		return 0, errprocess.New(errprocess.Validation, "malformed announcement id")
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, errprocess.Wrap(errprocess.Storage, "delete announcement", err)
	}
	return res.DeletedCount, nil
}
