// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogapi/internal/apperr"
	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/policy"
	"blogapi/internal/query"
)

// Posts groups the post resource handlers. Mutating handlers resolve the
// post, then authorize, then validate the payload, then persist.
type Posts struct {
	posts    PostStore
	comments CommentStore
	cache    ListCache
}

// NewPosts creates a new Posts handler group. cache may be nil.
func NewPosts(posts PostStore, comments CommentStore, cache ListCache) *Posts {
	return &Posts{posts: posts, comments: comments, cache: cache}
}

// postPage is the paginated collection shape of GET /posts.
type postPage struct {
	Data  []models.Post `json:"data"`
	Links query.Links   `json:"links"`
	Meta  query.Meta    `json:"meta"`
}

// postComment is a comment as nested in a post.
type postComment struct {
	ID        uuid.UUID          `json:"id"`
	Body      string             `json:"body"`
	User      models.UserSummary `json:"user"`
	CreatedAt time.Time          `json:"created_at"`
}

// postDetail is a post with its comments, returned by GET /posts/{id}.
type postDetail struct {
	models.Post
	Comments []postComment `json:"comments"`
}

// Index lists posts with optional search, category, author_id, from/to,
// sort, page, and per_page parameters.
func (h *Posts) Index(w http.ResponseWriter, r *http.Request) {
	if err := policy.Authorize(middleware.ActorFromCtx(r.Context()), policy.ActionReadPost, nil); err != nil {
		writeError(w, r, err)
		return
	}

	q, err := query.Parse(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	key := q.CacheKey()
	gen, cacheable := int64(0), false
	if h.cache != nil {
		gen, cacheable = h.cache.Generation(ctx)
		if cacheable {
			if body, ok := h.cache.Get(ctx, gen, key); ok {
				writeRawJSON(w, http.StatusOK, body)
				return
			}
		}
	}

	posts, total, err := h.posts.List(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	meta, links := q.Paginate(r.URL.Path, total)

	body, err := json.Marshal(postPage{Data: posts, Links: links, Meta: meta})
	if err != nil {
		writeError(w, r, fmt.Errorf("encode post page: %w", err))
		return
	}
	if cacheable {
		h.cache.Set(ctx, gen, key, body)
	}
	writeRawJSON(w, http.StatusOK, body)
}

// Show returns a post with its author and comments, oldest comment first.
func (h *Posts) Show(w http.ResponseWriter, r *http.Request) {
	post, err := h.resolve(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := policy.Authorize(middleware.ActorFromCtx(r.Context()), policy.ActionReadPost, post); err != nil {
		writeError(w, r, err)
		return
	}

	comments, err := h.comments.ListByPost(post.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	detail := postDetail{Post: *post, Comments: make([]postComment, 0, len(comments))}
	for _, c := range comments {
		detail.Comments = append(detail.Comments, postComment{
			ID:        c.ID,
			Body:      c.Body,
			User:      c.User,
			CreatedAt: c.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, dataBody{Data: detail})
}

// Store creates a post owned by the actor. The role check runs before the
// payload is read, so a user without a posting role gets 403 whatever they
// send.
func (h *Posts) Store(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if err := policy.Authorize(actor, policy.ActionCreatePost, nil); err != nil {
		writeError(w, r, err)
		return
	}

	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validateCreate(); err != nil {
		writeError(w, r, err)
		return
	}

	post, err := h.posts.Create(&models.Post{
		Title:    *req.Title,
		Content:  *req.Content,
		Category: *req.Category,
		AuthorID: actor.ID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.invalidate(r)

	slog.Info("post created", "post_id", post.ID, "author_id", actor.ID)
	writeJSON(w, http.StatusCreated, dataBody{Data: post})
}

// Update applies a partial update. Only admins and the post's author may
// update it; the author itself never changes.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, r, apperr.ErrUnauthenticated)
		return
	}

	post, err := h.resolve(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := policy.Authorize(actor, policy.ActionUpdatePost, post); err != nil {
		writeError(w, r, err)
		return
	}

	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validateUpdate(); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.posts.Update(post.ID, req.changes())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.invalidate(r)

	writeJSON(w, http.StatusOK, dataBody{Data: updated})
}

// Destroy deletes a post and its comments. Only admins and the post's
// author may delete it.
func (h *Posts) Destroy(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, r, apperr.ErrUnauthenticated)
		return
	}

	post, err := h.resolve(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := policy.Authorize(actor, policy.ActionDeletePost, post); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.posts.Delete(post.ID); err != nil {
		writeError(w, r, err)
		return
	}
	h.invalidate(r)

	slog.Info("post deleted", "post_id", post.ID, "actor_id", actor.ID)
	writeJSON(w, http.StatusOK, messageBody{Message: "Post deleted"})
}

// resolve loads the post named by the {id} URL parameter. A malformed id
// resolves to nothing, like an unknown one.
func (h *Posts) resolve(r *http.Request) (*models.Post, error) {
	return findPost(h.posts, chi.URLParam(r, "id"))
}

func (h *Posts) invalidate(r *http.Request) {
	if h.cache != nil {
		h.cache.Invalidate(r.Context())
	}
}

func findPost(posts PostStore, rawID string) (*models.Post, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	post, err := posts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.ErrNotFound
	}
	return post, nil
}
