package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// Create stores the message, its attachments and the initial read mark
// (the sender), and bumps the parent match in the same transaction.
func (r *MessageRepo) Create(ctx context.Context, msg model.Message) (model.Message, error) {
	if msg.MatchID <= 0 || msg.SenderID <= 0 {
		return model.Message{}, fmt.Errorf("invalid message payload")
	}
	if r.pool == nil {
		return model.Message{}, fmt.Errorf("postgres pool is nil")
	}

	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(txCtx, `
INSERT INTO messages (match_id, sender_id, body, sent_at, edited, is_deleted)
VALUES ($1, $2, $3, $4, FALSE, FALSE)
RETURNING id
`, msg.MatchID, msg.SenderID, msg.Text, msg.SentAt.UTC()).Scan(&msg.ID)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		for i, att := range msg.Attachments {
			if _, err := tx.Exec(txCtx, `
INSERT INTO message_attachments (message_id, position, url, kind)
VALUES ($1, $2, $3, $4)
`, msg.ID, i, att.URL, att.Kind); err != nil {
				return fmt.Errorf("insert message attachment: %w", err)
			}
		}

		for _, userID := range msg.ReadBy {
			if _, err := tx.Exec(txCtx, `
INSERT INTO message_reads (message_id, user_id)
VALUES ($1, $2)
ON CONFLICT (message_id, user_id) DO NOTHING
`, msg.ID, userID); err != nil {
				return fmt.Errorf("insert message read mark: %w", err)
			}
		}

		if _, err := tx.Exec(txCtx, `
UPDATE matches SET updated_at = NOW(), version = version + 1 WHERE id = $1
`, msg.MatchID); err != nil {
			return fmt.Errorf("touch match on message: %w", err)
		}

		return nil
	})
	if err != nil {
		return model.Message{}, err
	}

	return msg, nil
}

// ListByMatch returns up to limit non-deleted messages of the match,
// newest first. A beforeID cursor restricts the page to older messages.
func (r *MessageRepo) ListByMatch(ctx context.Context, matchID, beforeID int64, limit int) ([]model.Message, error) {
	if matchID <= 0 {
		return nil, fmt.Errorf("invalid match id")
	}
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []model.Message{}, nil
	}

	query := `
SELECT id, match_id, sender_id, body, sent_at, edited, is_deleted
FROM messages
WHERE match_id = $1 AND is_deleted = FALSE
`
	args := []any{matchID}
	if beforeID > 0 {
		query += " AND id < $2"
		args = append(args, beforeID)
	}
	query += fmt.Sprintf(" ORDER BY sent_at DESC, id DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]model.Message, 0, limit)
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.MatchID,
			&msg.SenderID,
			&msg.Text,
			&msg.SentAt,
			&msg.Edited,
			&msg.IsDeleted,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, msg)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	for i := range items {
		if err := r.loadExtras(ctx, &items[i]); err != nil {
			return nil, err
		}
	}

	return items, nil
}

func (r *MessageRepo) FindByID(ctx context.Context, messageID int64) (model.Message, error) {
	if messageID <= 0 {
		return model.Message{}, fmt.Errorf("invalid message id")
	}
	if r.pool == nil {
		return model.Message{}, ErrMessageNotFound
	}

	var msg model.Message
	err := r.pool.QueryRow(ctx, `
SELECT id, match_id, sender_id, body, sent_at, edited, is_deleted
FROM messages
WHERE id = $1 AND is_deleted = FALSE
LIMIT 1
`, messageID).Scan(
		&msg.ID,
		&msg.MatchID,
		&msg.SenderID,
		&msg.Text,
		&msg.SentAt,
		&msg.Edited,
		&msg.IsDeleted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Message{}, ErrMessageNotFound
		}
		return model.Message{}, fmt.Errorf("find message: %w", err)
	}

	if err := r.loadExtras(ctx, &msg); err != nil {
		return model.Message{}, err
	}

	return msg, nil
}

// MarkRead adds the reader to the message's read set; repeated marks are
// no-ops.
func (r *MessageRepo) MarkRead(ctx context.Context, messageID, userID int64) error {
	if messageID <= 0 || userID <= 0 {
		return fmt.Errorf("invalid read mark payload")
	}
	if r.pool == nil {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO message_reads (message_id, user_id)
VALUES ($1, $2)
ON CONFLICT (message_id, user_id) DO NOTHING
`, messageID, userID); err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}

	return nil
}

// PurgeDeletedBefore removes soft-deleted messages older than cutoff.
func (r *MessageRepo) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM messages
WHERE is_deleted = TRUE AND sent_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge deleted messages: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *MessageRepo) loadExtras(ctx context.Context, msg *model.Message) error {
	attRows, err := r.pool.Query(ctx, `
SELECT url, kind
FROM message_attachments
WHERE message_id = $1
ORDER BY position ASC
`, msg.ID)
	if err != nil {
		return fmt.Errorf("list message attachments: %w", err)
	}
	defer attRows.Close()

	attachments := make([]model.Attachment, 0, 2)
	for attRows.Next() {
		var att model.Attachment
		if err := attRows.Scan(&att.URL, &att.Kind); err != nil {
			return fmt.Errorf("scan message attachment: %w", err)
		}
		attachments = append(attachments, att)
	}
	if attRows.Err() != nil {
		return fmt.Errorf("iterate message attachments: %w", attRows.Err())
	}
	msg.Attachments = attachments

	readRows, err := r.pool.Query(ctx, `
SELECT user_id
FROM message_reads
WHERE message_id = $1
ORDER BY user_id ASC
`, msg.ID)
	if err != nil {
		return fmt.Errorf("list message reads: %w", err)
	}
	defer readRows.Close()

	readBy := make([]int64, 0, 2)
	for readRows.Next() {
		var userID int64
		if err := readRows.Scan(&userID); err != nil {
			return fmt.Errorf("scan message read: %w", err)
		}
		readBy = append(readBy, userID)
	}
	if readRows.Err() != nil {
		return fmt.Errorf("iterate message reads: %w", readRows.Err())
	}
	msg.ReadBy = readBy

	return nil
}
