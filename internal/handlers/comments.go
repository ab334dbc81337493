package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogapi/internal/apperr"
	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/policy"
)

// Comments groups the comment handlers.
type Comments struct {
	posts    PostStore
	comments CommentStore
}

// NewComments creates a new Comments handler group.
func NewComments(posts PostStore, comments CommentStore) *Comments {
	return &Comments{posts: posts, comments: comments}
}

// commentResponse is the body of a created comment.
type commentResponse struct {
	ID        uuid.UUID          `json:"id"`
	PostID    uuid.UUID          `json:"post_id"`
	User      models.UserSummary `json:"user"`
	Body      string             `json:"body"`
	CreatedAt time.Time          `json:"created_at"`
}

// Store adds a comment by the actor to the post named in the URL. Any
// authenticated user may comment.
func (h *Comments) Store(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, r, apperr.ErrUnauthenticated)
		return
	}

	post, err := findPost(h.posts, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := policy.Authorize(actor, policy.ActionCreateComment, post); err != nil {
		writeError(w, r, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	// The post may have been deleted since it was resolved; the store
	// reports that as not found.
	c, err := h.comments.Create(post.ID, actor.ID, req.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, commentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		User:      actor.Summary(),
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	})
}
