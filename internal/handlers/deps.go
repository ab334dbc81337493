package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"blogapi/internal/models"
	"blogapi/internal/query"
	"blogapi/internal/token"
)

// UserStore is the user persistence the handlers need. Implemented by
// store.UserStore and memory.UserStore.
type UserStore interface {
	FindByEmail(email string) (*models.User, error)
	FindByID(id uuid.UUID) (*models.User, error)
	Create(name, email, plain string, roles ...models.Role) (*models.User, error)
	CheckPassword(user *models.User, plain string) bool
}

// PostStore is the post persistence the handlers need.
type PostStore interface {
	List(q query.PostQuery) ([]models.Post, int, error)
	FindByID(id uuid.UUID) (*models.Post, error)
	Create(p *models.Post) (*models.Post, error)
	Update(id uuid.UUID, changes models.PostChanges) (*models.Post, error)
	Delete(id uuid.UUID) error
}

// CommentStore is the comment persistence the handlers need.
type CommentStore interface {
	ListByPost(postID uuid.UUID) ([]models.Comment, error)
	Create(postID, userID uuid.UUID, body string) (*models.Comment, error)
}

// Tokens issues and revokes bearer tokens. Implemented by token.Manager.
type Tokens interface {
	Issue(userID uuid.UUID) (string, error)
	Revoke(ctx context.Context, claims *token.Claims) error
	TTL() time.Duration
}

// ListCache caches encoded listing pages. Implemented by cache.ListCache;
// a nil ListCache disables caching.
type ListCache interface {
	Generation(ctx context.Context) (int64, bool)
	Get(ctx context.Context, gen int64, key string) ([]byte, bool)
	Set(ctx context.Context, gen int64, key string, body []byte)
	Invalidate(ctx context.Context)
}
