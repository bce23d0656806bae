package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleDonor = "donor"
	RoleAdmin = "admin"
)

// User is a donor account. Users are created either explicitly or lazily by
// the webhook reconciliation engine when a successful callback carries an
// email with no matching account.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	LastName  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail canonicalizes an email address for lookups and writes.
// Every store access goes through this so "User@X.com " and "user@x.com"
// resolve to the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser creates a donor account with a normalized email.
func NewUser(email, name, lastName string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Email:     NormalizeEmail(email),
		Name:      strings.TrimSpace(name),
		LastName:  strings.TrimSpace(lastName),
		Role:      RoleDonor,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Update replaces the name fields, ignoring blank values.
func (u *User) Update(name, lastName string) {
	if strings.TrimSpace(name) != "" {
		u.Name = strings.TrimSpace(name)
	}
	if strings.TrimSpace(lastName) != "" {
		u.LastName = strings.TrimSpace(lastName)
	}
	u.UpdatedAt = time.Now().UTC()
}
