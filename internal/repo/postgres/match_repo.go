package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
)

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchAlreadyExists   = errors.New("match already exists for pair")
	ErrMatchVersionConflict = errors.New("match version conflict")
)

const uniqueViolationCode = "23505"

type MatchRepo struct {
	pool *pgxpool.Pool
}

type MatchedRecord struct {
	ID           int64
	TargetUserID int64
	DisplayName  string
	City         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// FindByPair returns the non-deleted match record for the unordered pair.
func (r *MatchRepo) FindByPair(ctx context.Context, userID, targetID int64) (model.Match, error) {
	if userID <= 0 || targetID <= 0 {
		return model.Match{}, fmt.Errorf("invalid pair")
	}
	if r.pool == nil {
		return model.Match{}, ErrMatchNotFound
	}

	userA, userB := model.NormalizePair(userID, targetID)

	var m model.Match
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, status, is_deleted, version, created_at, updated_at
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2 AND is_deleted = FALSE
LIMIT 1
`, userA, userB).Scan(
		&m.ID,
		&m.UserAID,
		&m.UserBID,
		&m.Status,
		&m.IsDeleted,
		&m.Version,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("find match by pair: %w", err)
	}

	likes, err := r.likesFor(ctx, m.ID)
	if err != nil {
		return model.Match{}, err
	}
	m.Likes = likes

	return m, nil
}

// FindByParticipant returns every non-deleted match the user takes part
// in, like events included.
func (r *MatchRepo) FindByParticipant(ctx context.Context, userID int64) ([]model.Match, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []model.Match{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_a_id, user_b_id, status, is_deleted, version, created_at, updated_at
FROM matches
WHERE (user_a_id = $1 OR user_b_id = $1) AND is_deleted = FALSE
ORDER BY updated_at DESC, id DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list matches by participant: %w", err)
	}
	defer rows.Close()

	items := make([]model.Match, 0, 16)
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(
			&m.ID,
			&m.UserAID,
			&m.UserBID,
			&m.Status,
			&m.IsDeleted,
			&m.Version,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	for i := range items {
		likes, err := r.likesFor(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Likes = likes
	}

	return items, nil
}

// Create inserts a fresh match record with its like events. A concurrent
// insert for the same pair surfaces as ErrMatchAlreadyExists so the
// caller can re-read and retry.
func (r *MatchRepo) Create(ctx context.Context, m model.Match) (model.Match, error) {
	if m.UserAID <= 0 || m.UserBID <= 0 || m.UserAID == m.UserBID {
		return model.Match{}, fmt.Errorf("invalid match participants")
	}
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}

	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(txCtx, `
INSERT INTO matches (user_a_id, user_b_id, status, is_deleted, version, created_at, updated_at)
VALUES ($1, $2, $3, FALSE, 1, $4, $4)
RETURNING id, version
`, m.UserAID, m.UserBID, m.Status, m.CreatedAt.UTC()).Scan(&m.ID, &m.Version)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
				return ErrMatchAlreadyExists
			}
			return fmt.Errorf("insert match: %w", err)
		}

		return insertLikes(txCtx, tx, m.ID, m.Likes)
	})
	if err != nil {
		return model.Match{}, err
	}

	return m, nil
}

// Save persists the transitioned match. The update is conditional on the
// version read by the caller; zero affected rows means another writer got
// there first and the whole read-transition-persist sequence must be
// retried. Like events are inserted idempotently in the same transaction
// so a retried save never duplicates one.
func (r *MatchRepo) Save(ctx context.Context, m model.Match) (model.Match, error) {
	if m.ID <= 0 {
		return model.Match{}, fmt.Errorf("invalid match id")
	}
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}

	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(txCtx, `
UPDATE matches
SET status = $1, is_deleted = $2, updated_at = $3, version = version + 1
WHERE id = $4 AND version = $5
`, m.Status, m.IsDeleted, m.UpdatedAt.UTC(), m.ID, m.Version)
		if err != nil {
			return fmt.Errorf("update match: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrMatchVersionConflict
		}

		return insertLikes(txCtx, tx, m.ID, m.Likes)
	})
	if err != nil {
		return model.Match{}, err
	}

	m.Version++
	return m, nil
}

// ListMatchedForUser returns the user's mutual matches joined with the
// counterpart profile, most recently updated first.
func (r *MatchRepo) ListMatchedForUser(ctx context.Context, userID int64, limit int) ([]MatchedRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MatchedRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END AS target_user_id,
	COALESCE(p.display_name, ''),
	COALESCE(p.city, ''),
	m.created_at,
	m.updated_at
FROM matches m
LEFT JOIN profiles p ON p.user_id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE
	(m.user_a_id = $1 OR m.user_b_id = $1)
	AND m.status = 'matched'
	AND m.is_deleted = FALSE
ORDER BY m.updated_at DESC, m.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matched for user: %w", err)
	}
	defer rows.Close()

	items := make([]MatchedRecord, 0, limit)
	for rows.Next() {
		var item MatchedRecord
		if err := rows.Scan(
			&item.ID,
			&item.TargetUserID,
			&item.DisplayName,
			&item.City,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan matched record: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matched records: %w", rows.Err())
	}

	return items, nil
}

func (r *MatchRepo) FindByID(ctx context.Context, matchID int64) (model.Match, error) {
	if matchID <= 0 {
		return model.Match{}, fmt.Errorf("invalid match id")
	}
	if r.pool == nil {
		return model.Match{}, ErrMatchNotFound
	}

	var m model.Match
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, status, is_deleted, version, created_at, updated_at
FROM matches
WHERE id = $1 AND is_deleted = FALSE
LIMIT 1
`, matchID).Scan(
		&m.ID,
		&m.UserAID,
		&m.UserBID,
		&m.Status,
		&m.IsDeleted,
		&m.Version,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("find match: %w", err)
	}

	likes, err := r.likesFor(ctx, m.ID)
	if err != nil {
		return model.Match{}, err
	}
	m.Likes = likes

	return m, nil
}

// PurgeDeletedBefore removes soft-deleted matches (and their like
// events, via FK cascade) whose last update is older than cutoff.
func (r *MatchRepo) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM matches
WHERE is_deleted = TRUE AND updated_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge deleted matches: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *MatchRepo) likesFor(ctx context.Context, matchID int64) ([]model.LikeEvent, error) {
	rows, err := r.pool.Query(ctx, `
SELECT user_id, created_at
FROM match_likes
WHERE match_id = $1
ORDER BY created_at ASC, user_id ASC
`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list match likes: %w", err)
	}
	defer rows.Close()

	likes := make([]model.LikeEvent, 0, 2)
	for rows.Next() {
		var like model.LikeEvent
		if err := rows.Scan(&like.UserID, &like.At); err != nil {
			return nil, fmt.Errorf("scan match like: %w", err)
		}
		likes = append(likes, like)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate match likes: %w", rows.Err())
	}

	return likes, nil
}

func insertLikes(ctx context.Context, tx pgx.Tx, matchID int64, likes []model.LikeEvent) error {
	for _, like := range likes {
		if _, err := tx.Exec(ctx, `
INSERT INTO match_likes (match_id, user_id, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (match_id, user_id) DO NOTHING
`, matchID, like.UserID, like.At.UTC()); err != nil {
			return fmt.Errorf("insert match like: %w", err)
		}
	}
	return nil
}
