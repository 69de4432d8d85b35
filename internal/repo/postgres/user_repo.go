package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// FindActive returns the user only if it exists and is not soft-deleted.
func (r *UserRepo) FindActive(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.User{}, ErrUserNotFound
	}

	var user model.User
	err := r.pool.QueryRow(ctx, `
SELECT
	id,
	username,
	email,
	is_verified,
	is_deleted,
	last_seen,
	created_at,
	updated_at
FROM users
WHERE id = $1 AND is_deleted = FALSE
LIMIT 1
`, userID).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.IsVerified,
		&user.IsDeleted,
		&user.LastSeen,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("find user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) TouchLastSeen(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE users
SET last_seen = NOW(), updated_at = NOW()
WHERE id = $1 AND is_deleted = FALSE
`, userID); err != nil {
		return fmt.Errorf("touch last seen: %w", err)
	}

	return nil
}
