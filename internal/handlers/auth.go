package handlers

import (
	"fmt"
	"net/http"

	"blogapi/internal/apperr"
	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/token"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	users  UserStore
	tokens Tokens
}

// NewAuth creates a new Auth handler group.
func NewAuth(users UserStore, tokens Tokens) *Auth {
	return &Auth{users: users, tokens: tokens}
}

// tokenResponse is returned by login, and embedded in the registration
// response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type registerResponse struct {
	User *models.User `json:"user"`
	tokenResponse
}

// Register creates an account with the requested role (author by default)
// and logs it in.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.normalize()

	role, v := req.validate()
	if _, emailBad := v.Fields["email"]; !emailBad && req.Email != "" {
		existing, err := a.users.FindByEmail(req.Email)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if existing != nil {
			v.Add("email", msgEmailTaken)
		}
	}
	if err := v.OrNil(); err != nil {
		writeError(w, r, err)
		return
	}

	// A concurrent registration with the same email surfaces as ErrConflict.
	user, err := a.users.Create(req.Name, req.Email, req.Password, role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tok, err := a.issue(user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{User: user, tokenResponse: tok})
}

// Login exchanges credentials for a bearer token.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.users.FindByEmail(req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		writeError(w, r, errInvalidCredentials)
		return
	}

	tok, err := a.issue(user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

// Logout revokes the token the request was authenticated with.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		writeError(w, r, apperr.ErrUnauthenticated)
		return
	}
	if err := a.tokens.Revoke(r.Context(), claims); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Successfully logged out"})
}

// Me returns the authenticated user.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, r, apperr.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, actor)
}

func (a *Auth) issue(user *models.User) (tokenResponse, error) {
	raw, err := a.tokens.Issue(user.ID)
	if err != nil {
		return tokenResponse{}, fmt.Errorf("issue token: %w", err)
	}
	return tokenResponse{
		AccessToken: raw,
		TokenType:   token.Type,
		ExpiresIn:   int(a.tokens.TTL().Seconds()),
	}, nil
}
