package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sinatle/donation/internal/domain"
	"github.com/sinatle/donation/internal/service"
)

// UserStore implements service.UserStore over PostgreSQL.
type UserStore struct {
	db *pgxpool.Pool
}

var _ service.UserStore = (*UserStore)(nil)

func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, name, last_name, role, created_at, updated_at`

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.LastName, user.Role,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, last_name = $3, role = $4, updated_at = $5
		WHERE id = $1
	`
	_, err := s.db.Exec(ctx, query,
		user.ID, user.Name, user.LastName, user.Role, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanOne(s.db.QueryRow(ctx, query, id))
}

// GetByEmail matches case-insensitively; emails are stored normalized but
// the index covers lower(email) so a raw lookup still hits.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return s.scanOne(s.db.QueryRow(ctx, query, email))
}

func (s *UserStore) scanOne(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.LastName, &user.Role,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}
