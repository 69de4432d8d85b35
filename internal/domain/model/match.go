package model

import (
	"time"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
)

// Match holds the relationship state of an unordered user pair.
// UserAID < UserBID by construction; the pair is the natural key and at
// most one non-deleted record exists per pair.
type Match struct {
	ID        int64             `json:"id"`
	UserAID   int64             `json:"user_a_id"`
	UserBID   int64             `json:"user_b_id"`
	Status    enums.MatchStatus `json:"status"`
	Likes     []LikeEvent       `json:"likes"`
	IsDeleted bool              `json:"is_deleted"`
	Version   int64             `json:"-"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// LikeEvent is append-only; a user holds at most one per match.
type LikeEvent struct {
	UserID int64     `json:"user_id"`
	At     time.Time `json:"at"`
}

// NormalizePair orders an unordered user pair for storage.
func NormalizePair(userID, targetID int64) (int64, int64) {
	if userID > targetID {
		return targetID, userID
	}
	return userID, targetID
}

func (m *Match) HasParticipant(userID int64) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// OtherParticipant returns the counterpart of userID in the pair.
func (m *Match) OtherParticipant(userID int64) int64 {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

func (m *Match) HasLikeFrom(userID int64) bool {
	for _, like := range m.Likes {
		if like.UserID == userID {
			return true
		}
	}
	return false
}
