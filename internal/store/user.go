// Package store provides database access methods for all blog entities.
// Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"blogapi/internal/apperr"
	"blogapi/internal/models"
	"blogapi/internal/password"
)

// PostgreSQL error codes the stores translate into apperr values.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// userSelect loads a user with its roles folded into a comma-separated list.
const userSelect = `
	SELECT u.id, u.name, u.email, u.password_hash, u.created_at, u.updated_at,
	       COALESCE((
	           SELECT string_agg(r.name, ',' ORDER BY r.name)
	           FROM user_roles ur JOIN roles r ON r.id = ur.role_id
	           WHERE ur.user_id = u.id
	       ), '')
	FROM users u`

func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var roles string
	if err := scanner.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &roles); err != nil {
		return nil, err
	}
	u.Roles = splitRoles(roles)
	return u, nil
}

func splitRoles(s string) models.Roles {
	if s == "" {
		return models.Roles{}
	}
	parts := strings.Split(s, ",")
	roles := make(models.Roles, len(parts))
	for i, p := range parts {
		roles[i] = models.Role(p)
	}
	return roles
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(userSelect+` WHERE u.email = $1`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(userSelect+` WHERE u.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// Create inserts a new user with a bcrypt-hashed password and assigns the
// given roles. A duplicate email yields an error wrapping apperr.ErrConflict.
func (s *UserStore) Create(name, email, plain string, roles ...models.Role) (*models.User, error) {
	hash, err := password.Hash(plain)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("create user: begin: %w", err)
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRow(`
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`, name, email, hash).Scan(&id)
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return nil, fmt.Errorf("create user %s: %w", email, apperr.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	for _, role := range roles {
		if err := assignRole(tx, id, role); err != nil {
			return nil, err
		}
	}

	u, err := scanUser(tx.QueryRow(userSelect+` WHERE u.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("create user: reload: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create user: commit: %w", err)
	}
	return u, nil
}

// AssignRole grants a role to a user. Assigning a role twice is a no-op.
func (s *UserStore) AssignRole(userID uuid.UUID, role models.Role) error {
	return assignRole(s.db, userID, role)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func assignRole(db querier, userID uuid.UUID, role models.Role) error {
	res, err := db.Exec(`
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1::uuid, id FROM roles WHERE name = $2
		ON CONFLICT DO NOTHING
	`, userID, string(role))
	if err != nil {
		return fmt.Errorf("assign role %s: %w", role, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1)`, string(role)).Scan(&exists); err != nil {
			return fmt.Errorf("assign role %s: %w", role, err)
		}
		if !exists {
			return fmt.Errorf("assign role: unknown role %q", role)
		}
	}
	return nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, plain string) bool {
	return password.Check(user.PasswordHash, plain)
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
