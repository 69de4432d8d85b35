package rules

import (
	"time"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
)

// ApplyLike records a like from likerID on the match and recomputes the
// status. It reports whether the match changed.
//
// A repeated like from the same user is a no-op. The status moves to
// matched only from pending and only once both participants hold a like
// event; rejected and blocked are never overwritten. Status depends on
// set membership of the like events, not on their order, so concurrent
// likes from both sides converge to the same result.
func ApplyLike(m *model.Match, likerID int64, at time.Time) bool {
	if m == nil || !m.HasParticipant(likerID) {
		return false
	}
	if m.HasLikeFrom(likerID) {
		return false
	}

	m.Likes = append(m.Likes, model.LikeEvent{UserID: likerID, At: at})

	if m.Status == enums.MatchStatusPending && m.HasLikeFrom(m.UserAID) && m.HasLikeFrom(m.UserBID) {
		m.Status = enums.MatchStatusMatched
	}

	m.UpdatedAt = at
	return true
}

// ApplyDislike drives the match to rejected. Like events are kept for
// audit. Reports whether the match changed; disliking an already
// rejected match is a no-op.
func ApplyDislike(m *model.Match, at time.Time) bool {
	if m == nil {
		return false
	}
	if m.Status == enums.MatchStatusRejected {
		return false
	}

	m.Status = enums.MatchStatusRejected
	m.UpdatedAt = at
	return true
}

// NewPendingMatch builds the record created on the first like between a
// pair: pending with a single like event from the initiator.
func NewPendingMatch(userID, targetID int64, at time.Time) model.Match {
	a, b := model.NormalizePair(userID, targetID)
	return model.Match{
		UserAID:   a,
		UserBID:   b,
		Status:    enums.MatchStatusPending,
		Likes:     []model.LikeEvent{{UserID: userID, At: at}},
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// NewRejectedMatch builds the record created on a first-contact dislike:
// rejected with no like events.
func NewRejectedMatch(userID, targetID int64, at time.Time) model.Match {
	a, b := model.NormalizePair(userID, targetID)
	return model.Match{
		UserAID:   a,
		UserBID:   b,
		Status:    enums.MatchStatusRejected,
		Likes:     []model.LikeEvent{},
		CreatedAt: at,
		UpdatedAt: at,
	}
}
