// Package memory provides in-process implementations of the user, post, and
// comment stores. All three share one Store so posts resolve their author
// and deleting a post drops its comments, the same guarantees the
// PostgreSQL schema gives through foreign keys.
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"blogapi/internal/apperr"
	"blogapi/internal/models"
	"blogapi/internal/password"
	"blogapi/internal/query"
)

// Store holds every record behind a single lock.
type Store struct {
	mu sync.RWMutex

	users        map[uuid.UUID]*models.User
	userByEmail  map[string]uuid.UUID
	posts        map[uuid.UUID]*models.Post
	commentsByID map[uuid.UUID][]models.Comment

	now func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:        make(map[uuid.UUID]*models.User),
		userByEmail:  make(map[string]uuid.UUID),
		posts:        make(map[uuid.UUID]*models.Post),
		commentsByID: make(map[uuid.UUID][]models.Comment),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the user store view.
func (s *Store) Users() *UserStore { return &UserStore{s: s} }

// Posts returns the post store view.
func (s *Store) Posts() *PostStore { return &PostStore{s: s} }

// Comments returns the comment store view.
func (s *Store) Comments() *CommentStore { return &CommentStore{s: s} }

// UserStore mirrors store.UserStore.
type UserStore struct{ s *Store }

// FindByEmail returns nil if no user has the address. Matching is exact,
// as with the unique index in PostgreSQL.
func (u *UserStore) FindByEmail(email string) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	id, ok := u.s.userByEmail[email]
	if !ok {
		return nil, nil
	}
	return cloneUser(u.s.users[id]), nil
}

// FindByID returns nil if the user does not exist.
func (u *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(user), nil
}

// Create stores a new user. A duplicate email yields apperr.ErrConflict.
func (u *UserStore) Create(name, email, plain string, roles ...models.Role) (*models.User, error) {
	hash, err := password.Hash(plain)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if _, ok := models.ParseRole(string(r)); !ok {
			return nil, fmt.Errorf("assign role: unknown role %q", r)
		}
	}

	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, taken := u.s.userByEmail[email]; taken {
		return nil, fmt.Errorf("create user %s: %w", email, apperr.ErrConflict)
	}

	now := u.s.now()
	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Roles:        models.Roles{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, r := range roles {
		addRole(user, r)
	}
	u.s.users[user.ID] = user
	u.s.userByEmail[email] = user.ID
	return cloneUser(user), nil
}

// AssignRole grants a role to a user. Assigning a role twice is a no-op.
func (u *UserStore) AssignRole(userID uuid.UUID, role models.Role) error {
	if _, ok := models.ParseRole(string(role)); !ok {
		return fmt.Errorf("assign role: unknown role %q", role)
	}

	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[userID]
	if !ok {
		return fmt.Errorf("assign role to %s: %w", userID, apperr.ErrNotFound)
	}
	addRole(user, role)
	return nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (u *UserStore) CheckPassword(user *models.User, plain string) bool {
	return password.Check(user.PasswordHash, plain)
}

func addRole(user *models.User, role models.Role) {
	if user.Roles.Has(role) {
		return
	}
	user.Roles = append(user.Roles, role)
	sort.Slice(user.Roles, func(i, j int) bool { return user.Roles[i] < user.Roles[j] })
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Roles = append(models.Roles{}, u.Roles...)
	return &c
}

// PostStore mirrors store.PostStore.
type PostStore struct{ s *Store }

// List filters, orders, and pages posts with the same clause list the SQL
// store renders, so both backends agree on every query.
func (p *PostStore) List(q query.PostQuery) ([]models.Post, int, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	matched := make([]*models.Post, 0, len(p.s.posts))
	for _, post := range p.s.posts {
		c := p.s.withAuthor(post)
		if q.Match(c) {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return q.Less(matched[i], matched[j]) })

	total := len(matched)
	start := min(q.Offset(), total)
	end := min(start+q.Limit(), total)

	page := make([]models.Post, 0, end-start)
	for _, post := range matched[start:end] {
		page = append(page, *post)
	}
	return page, total, nil
}

// FindByID returns nil if the post does not exist.
func (p *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	post, ok := p.s.posts[id]
	if !ok {
		return nil, nil
	}
	return p.s.withAuthor(post), nil
}

// Create stores a new post owned by post.AuthorID. An unknown author yields
// apperr.ErrNotFound.
func (p *PostStore) Create(post *models.Post) (*models.Post, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if _, ok := p.s.users[post.AuthorID]; !ok {
		return nil, fmt.Errorf("create post: author %s: %w", post.AuthorID, apperr.ErrNotFound)
	}

	now := p.s.now()
	stored := &models.Post{
		ID:        uuid.New(),
		Title:     post.Title,
		Content:   post.Content,
		Category:  post.Category,
		AuthorID:  post.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.s.posts[stored.ID] = stored
	return p.s.withAuthor(stored), nil
}

// Update applies the non-nil fields of changes. The author never changes.
func (p *PostStore) Update(id uuid.UUID, changes models.PostChanges) (*models.Post, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	post, ok := p.s.posts[id]
	if !ok {
		return nil, fmt.Errorf("update post %s: %w", id, apperr.ErrNotFound)
	}
	changes.Apply(post)
	post.UpdatedAt = p.s.now()
	return p.s.withAuthor(post), nil
}

// Delete removes a post and its comments.
func (p *PostStore) Delete(id uuid.UUID) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if _, ok := p.s.posts[id]; !ok {
		return fmt.Errorf("delete post %s: %w", id, apperr.ErrNotFound)
	}
	delete(p.s.posts, id)
	delete(p.s.commentsByID, id)
	return nil
}

// withAuthor returns a copy of post with Author resolved. Callers hold mu.
func (s *Store) withAuthor(post *models.Post) *models.Post {
	c := *post
	if u, ok := s.users[post.AuthorID]; ok {
		c.Author = u.Summary()
	}
	return &c
}

// CommentStore mirrors store.CommentStore.
type CommentStore struct{ s *Store }

// ListByPost returns the comments on a post, oldest first.
func (c *CommentStore) ListByPost(postID uuid.UUID) ([]models.Comment, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	stored := c.s.commentsByID[postID]
	out := make([]models.Comment, 0, len(stored))
	for _, cm := range stored {
		if u, ok := c.s.users[cm.UserID]; ok {
			cm.User = u.Summary()
		}
		out = append(out, cm)
	}
	return out, nil
}

// Create appends a comment. A missing post or user yields apperr.ErrNotFound.
func (c *CommentStore) Create(postID, userID uuid.UUID, body string) (*models.Comment, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.posts[postID]; !ok {
		return nil, fmt.Errorf("create comment on post %s: %w", postID, apperr.ErrNotFound)
	}
	user, ok := c.s.users[userID]
	if !ok {
		return nil, fmt.Errorf("create comment by %s: %w", userID, apperr.ErrNotFound)
	}

	cm := models.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		UserID:    userID,
		Body:      body,
		CreatedAt: c.s.now(),
	}
	c.s.commentsByID[postID] = append(c.s.commentsByID[postID], cm)
	cm.User = user.Summary()
	return &cm, nil
}
