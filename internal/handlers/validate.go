package handlers

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"blogapi/internal/apperr"
	"blogapi/internal/models"
)

// Validation limits for user, post, and comment fields.
const (
	maxNameLen     = 255
	maxEmailLen    = 255
	minPasswordLen = 6
	maxTitleLen    = 255
	maxContentLen  = 100_000
	maxCategoryLen = 100
	maxCommentLen  = 5_000
)

const msgEmailTaken = "The email has already been taken."

// registerRequest is the body of POST /register.
type registerRequest struct {
	Name                 string  `json:"name"`
	Email                string  `json:"email"`
	Password             string  `json:"password"`
	PasswordConfirmation string  `json:"password_confirmation"`
	Role                 *string `json:"role"`
}

// normalize trims the name and canonicalizes the email.
func (req *registerRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
}

// validate checks the registration fields and returns the role to assign.
func (req *registerRequest) validate() (models.Role, *apperr.ValidationError) {
	v := apperr.NewValidationError()

	requireString(v, "name", req.Name, maxNameLen)
	if requireString(v, "email", req.Email, maxEmailLen) && !validEmail(req.Email) {
		v.Add("email", "The email must be a valid email address.")
	}

	switch {
	case req.Password == "":
		v.Add("password", "The password field is required.")
	case utf8.RuneCountInString(req.Password) < minPasswordLen:
		v.Add("password", "The password must be at least 6 characters.")
	}
	if req.Password != "" && req.Password != req.PasswordConfirmation {
		v.Add("password", "The password confirmation does not match.")
	}

	role := models.RoleAuthor
	if req.Role != nil && strings.TrimSpace(*req.Role) != "" {
		r, ok := models.ParseRole(strings.TrimSpace(*req.Role))
		if !ok {
			v.Add("role", "The selected role is invalid.")
		}
		role = r
	}
	return role, v
}

// loginRequest is the body of POST /login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *loginRequest) validate() error {
	v := apperr.NewValidationError()
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" {
		v.Add("email", "The email field is required.")
	} else if !validEmail(req.Email) {
		v.Add("email", "The email must be a valid email address.")
	}
	if req.Password == "" {
		v.Add("password", "The password field is required.")
	}
	return v.OrNil()
}

// postRequest is the body of POST /posts and PUT /posts/{id}. Nil fields
// were absent from the payload. author_id is deliberately not a field.
type postRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

// validateCreate requires every field.
func (req *postRequest) validateCreate() error {
	v := apperr.NewValidationError()
	requirePtr(v, "title", req.Title, maxTitleLen)
	requirePtr(v, "content", req.Content, maxContentLen)
	requirePtr(v, "category", req.Category, maxCategoryLen)
	return v.OrNil()
}

// validateUpdate accepts any subset; present fields must be non-empty.
func (req *postRequest) validateUpdate() error {
	v := apperr.NewValidationError()
	if req.Title != nil {
		requirePtr(v, "title", req.Title, maxTitleLen)
	}
	if req.Content != nil {
		requirePtr(v, "content", req.Content, maxContentLen)
	}
	if req.Category != nil {
		requirePtr(v, "category", req.Category, maxCategoryLen)
	}
	return v.OrNil()
}

func (req *postRequest) changes() models.PostChanges {
	return models.PostChanges{Title: req.Title, Content: req.Content, Category: req.Category}
}

// commentRequest is the body of POST /posts/{id}/comments.
type commentRequest struct {
	Body string `json:"body"`
}

func (req *commentRequest) validate() error {
	v := apperr.NewValidationError()
	req.Body = strings.TrimSpace(req.Body)
	requireString(v, "body", req.Body, maxCommentLen)
	return v.OrNil()
}

// requireString adds a message if s is blank or longer than limit runes and
// reports whether s passed.
func requireString(v *apperr.ValidationError, field, s string, limit int) bool {
	if strings.TrimSpace(s) == "" {
		v.Add(field, "The "+field+" field is required.")
		return false
	}
	if utf8.RuneCountInString(s) > limit {
		v.Add(field, "The "+field+" may not be greater than "+strconv.Itoa(limit)+" characters.")
		return false
	}
	return true
}

// requirePtr trims *p in place and validates it as required.
func requirePtr(v *apperr.ValidationError, field string, p *string, limit int) {
	if p == nil {
		v.Add(field, "The "+field+" field is required.")
		return
	}
	*p = strings.TrimSpace(*p)
	requireString(v, field, *p, limit)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// validEmail accepts a bare RFC 5322 address and rejects display-name forms
// such as "Ann <ann@test.com>".
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, "@")
}
