package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BigT001/studyexpressuk-sub002/pkg"
	token "github.com/BigT001/studyexpressuk-sub002/pkg/token"
)

// Announcement definition announcement info
type Announcement struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title string             `bson:"title" json:"title"`
	Body  string             `bson:"body" json:"body"`
	// Audience 空陣列代表所有角色都看得到
	Audience  []token.RoleType `bson:"audience" json:"audience"`
	AuthorID  string           `bson:"author_id" json:"author_id"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
}

// Validate 建立公告前的基本檢查
func (a *Announcement) Validate() string {
	if strings.TrimSpace(a.Title) == "" {
		return "title must not be blank"
	}
	if strings.TrimSpace(a.Body) == "" {
		return "body must not be blank"
	}
	for _, r := range a.Audience {
		if !token.ValidRole(r) {
			return "unknown role in audience"
		}
	}
	return ""
}

// VisibleTo audience 為空或包含該角色時可見
func (a *Announcement) VisibleTo(role token.RoleType) bool {
	if len(a.Audience) == 0 {
		return true
	}
	audience := make([]string, 0, len(a.Audience))
	for _, r := range a.Audience {
		audience = append(audience, string(r))
	}
	return pkg.Contains(audience, string(role))
}
