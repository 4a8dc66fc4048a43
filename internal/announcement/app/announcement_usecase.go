package app

import (
	"context"
	"fmt"
	"time"

	"github.com/BigT001/studyexpressuk-sub002/internal/announcement/domain"
	"github.com/BigT001/studyexpressuk-sub002/internal/announcement/repository"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
	token "github.com/BigT001/studyexpressuk-sub002/pkg/token"
)

// AnnouncementUseCase 公告的應用服務
type AnnouncementUseCase interface {
	Create(ctx context.Context, authorID, title, body string, audience []token.RoleType) (*domain.Announcement, error)
	ListForRole(ctx context.Context, role token.RoleType) ([]domain.Announcement, error)
	Delete(ctx context.Context, announcementID string) error
}

type announcementUseCase struct {
	repo repository.AnnouncementRepository
	now  func() time.Time
}

// NewAnnouncementUseCase 建立 AnnouncementUseCase
func NewAnnouncementUseCase(repo repository.AnnouncementRepository) AnnouncementUseCase {
	return &announcementUseCase{
		repo: repo,
		now:  time.Now,
	}
}

func (a *announcementUseCase) Create(ctx context.Context, authorID, title, body string, audience []token.RoleType) (*domain.Announcement, error) {
	if audience == nil {
		audience = []token.RoleType{}
	}
	announcement := domain.Announcement{
		Title:     title,
		Body:      body,
		Audience:  audience,
		AuthorID:  authorID,
		CreatedAt: a.now().UTC(),
	}
	if msg := announcement.Validate(); msg != "" {
		return nil, errprocess.New(errprocess.Validation, msg)
	}

	if err := a.repo.Insert(ctx, &announcement); err != nil {
		return nil, err
	}

	logger.Log.Info(fmt.Sprintf("usecase CreateAnnouncement : %s by %s", announcement.ID.Hex(), authorID))
	return &announcement, nil
}

func (a *announcementUseCase) ListForRole(ctx context.Context, role token.RoleType) ([]domain.Announcement, error) {
	if !token.ValidRole(role) {
		return nil, errprocess.New(errprocess.Validation, "unknown role")
	}
	return a.repo.FindForRole(ctx, role)
}

func (a *announcementUseCase) Delete(ctx context.Context, announcementID string) error {
	deleted, err := a.repo.Delete(ctx, announcementID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return errprocess.New(errprocess.NotFound, "announcement not found")
	}
	return nil
}
