package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// CandidateQuery is the storage-level view of a candidate search: the
// caller has already translated ages to birthdate bounds and merged the
// requester into the excluded set.
type CandidateQuery struct {
	Gender            enums.Gender
	City              string
	EarliestBirthdate time.Time
	LatestBirthdate   time.Time
	ExcludedUserIDs   []int64
	Limit             int
	Offset            int
}

func (r *ProfileRepo) FindOne(ctx context.Context, userID int64) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.Profile{}, ErrProfileNotFound
	}

	var (
		p    model.Profile
		lat  *float64
		lon  *float64
		city *string
	)
	err := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	display_name,
	birthdate,
	gender,
	COALESCE(bio, ''),
	lat,
	lon,
	city,
	looking_for,
	is_deleted,
	created_at,
	updated_at
FROM profiles
WHERE user_id = $1 AND is_deleted = FALSE
LIMIT 1
`, userID).Scan(
		&p.UserID,
		&p.DisplayName,
		&p.Birthdate,
		&p.Gender,
		&p.Bio,
		&lat,
		&lon,
		&city,
		&p.LookingFor,
		&p.IsDeleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("find profile: %w", err)
	}

	if lat != nil && lon != nil && city != nil {
		p.Location = &model.Location{Lat: *lat, Lon: *lon, City: *city}
	}

	photos, err := r.photosFor(ctx, p.UserID)
	if err != nil {
		return model.Profile{}, err
	}
	p.Photos = photos

	return p, nil
}

// Upsert creates or fully replaces the profile row and its photo list.
func (r *ProfileRepo) Upsert(ctx context.Context, p model.Profile) error {
	if p.UserID <= 0 {
		return fmt.Errorf("invalid profile payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	var (
		lat  *float64
		lon  *float64
		city *string
	)
	if p.Location != nil {
		lat = &p.Location.Lat
		lon = &p.Location.Lon
		city = &p.Location.City
	}

	return WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(txCtx, `
INSERT INTO profiles (
	user_id,
	display_name,
	birthdate,
	gender,
	bio,
	lat,
	lon,
	city,
	looking_for,
	is_deleted,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, NOW(), NOW())
ON CONFLICT (user_id) DO UPDATE SET
	display_name = EXCLUDED.display_name,
	birthdate = EXCLUDED.birthdate,
	gender = EXCLUDED.gender,
	bio = EXCLUDED.bio,
	lat = EXCLUDED.lat,
	lon = EXCLUDED.lon,
	city = EXCLUDED.city,
	looking_for = EXCLUDED.looking_for,
	updated_at = NOW()
`, p.UserID, p.DisplayName, p.Birthdate.UTC(), p.Gender, p.Bio, lat, lon, city, p.LookingFor); err != nil {
			return fmt.Errorf("upsert profile: %w", err)
		}

		if _, err := tx.Exec(txCtx, `
DELETE FROM profile_photos WHERE user_id = $1
`, p.UserID); err != nil {
			return fmt.Errorf("clear profile photos: %w", err)
		}

		for i, url := range p.Photos {
			if _, err := tx.Exec(txCtx, `
INSERT INTO profile_photos (user_id, position, url)
VALUES ($1, $2, $3)
`, p.UserID, i, url); err != nil {
				return fmt.Errorf("insert profile photo: %w", err)
			}
		}

		return nil
	})
}

func (r *ProfileRepo) SoftDelete(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE profiles
SET is_deleted = TRUE, updated_at = NOW()
WHERE user_id = $1
`, userID); err != nil {
		return fmt.Errorf("soft delete profile: %w", err)
	}

	return nil
}

// ListCandidates returns one page of non-deleted profiles matching the
// filter minus the excluded ids, newest profile first with a stable
// user-id tiebreak, plus the total count over the same view.
func (r *ProfileRepo) ListCandidates(ctx context.Context, q CandidateQuery) ([]model.Profile, int, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if r.pool == nil {
		return []model.Profile{}, 0, nil
	}

	where, args := buildCandidateWhere(q)

	var total int
	countQuery := "SELECT COUNT(*) FROM profiles p " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}

	pageArgs := append(append([]any{}, args...), q.Limit, q.Offset)
	pageQuery := `
SELECT
	p.user_id,
	p.display_name,
	p.birthdate,
	p.gender,
	COALESCE(p.bio, ''),
	p.lat,
	p.lon,
	p.city,
	p.looking_for,
	p.is_deleted,
	p.created_at,
	p.updated_at
FROM profiles p ` + where + `
ORDER BY p.created_at DESC, p.user_id DESC
LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)

	rows, err := r.pool.Query(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	items := make([]model.Profile, 0, q.Limit)
	for rows.Next() {
		var (
			p    model.Profile
			lat  *float64
			lon  *float64
			city *string
		)
		if err := rows.Scan(
			&p.UserID,
			&p.DisplayName,
			&p.Birthdate,
			&p.Gender,
			&p.Bio,
			&lat,
			&lon,
			&city,
			&p.LookingFor,
			&p.IsDeleted,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan candidate: %w", err)
		}
		if lat != nil && lon != nil && city != nil {
			p.Location = &model.Location{Lat: *lat, Lon: *lon, City: *city}
		}
		items = append(items, p)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate candidates: %w", rows.Err())
	}

	for i := range items {
		photos, err := r.photosFor(ctx, items[i].UserID)
		if err != nil {
			return nil, 0, err
		}
		items[i].Photos = photos
	}

	return items, total, nil
}

func buildCandidateWhere(q CandidateQuery) (string, []any) {
	clauses := []string{"p.is_deleted = FALSE"}
	args := make([]any, 0, 5)

	if q.Gender != "" {
		args = append(args, q.Gender)
		clauses = append(clauses, "p.gender = $"+strconv.Itoa(len(args)))
	}
	if q.City != "" {
		args = append(args, q.City)
		clauses = append(clauses, "p.city = $"+strconv.Itoa(len(args)))
	}
	if !q.EarliestBirthdate.IsZero() {
		args = append(args, q.EarliestBirthdate.UTC())
		clauses = append(clauses, "p.birthdate >= $"+strconv.Itoa(len(args)))
	}
	if !q.LatestBirthdate.IsZero() {
		args = append(args, q.LatestBirthdate.UTC())
		clauses = append(clauses, "p.birthdate <= $"+strconv.Itoa(len(args)))
	}
	if len(q.ExcludedUserIDs) > 0 {
		args = append(args, q.ExcludedUserIDs)
		clauses = append(clauses, "NOT (p.user_id = ANY($"+strconv.Itoa(len(args))+"))")
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (r *ProfileRepo) photosFor(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
SELECT url
FROM profile_photos
WHERE user_id = $1
ORDER BY position ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list profile photos: %w", err)
	}
	defer rows.Close()

	photos := make([]string, 0, 4)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan profile photo: %w", err)
		}
		photos = append(photos, url)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate profile photos: %w", rows.Err())
	}

	return photos, nil
}
