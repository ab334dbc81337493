package database

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"blogapi/internal/models"
)

// Accounts is the slice of a user store the seeder needs. Implemented by
// store.UserStore and memory.UserStore.
type Accounts interface {
	FindByEmail(email string) (*models.User, error)
	Create(name, email, plain string, roles ...models.Role) (*models.User, error)
	AssignRole(userID uuid.UUID, role models.Role) error
}

// Seed makes sure an admin account with the given email exists. A missing
// account is created; an existing one without the admin role is granted it.
// An existing password is never overwritten.
func Seed(users Accounts, email, password string) error {
	existing, err := users.FindByEmail(email)
	if err != nil {
		return fmt.Errorf("seed check admin: %w", err)
	}

	if existing == nil {
		if _, err := users.Create("Admin", email, password, models.RoleAdmin); err != nil {
			return fmt.Errorf("seed create admin: %w", err)
		}
		slog.Info("database seeded with admin user", "email", email)
		return nil
	}

	if existing.IsAdmin() {
		slog.Info("database already seeded, skipping")
		return nil
	}
	if err := users.AssignRole(existing.ID, models.RoleAdmin); err != nil {
		return fmt.Errorf("seed grant admin: %w", err)
	}
	slog.Info("granted admin role to existing user", "email", email)
	return nil
}
