package handlers

import (
	"errors"
	"net/http"

	identitysvc "github.com/olzhas-sembi/dating-backend/internal/services/identity"
	swipesvc "github.com/olzhas-sembi/dating-backend/internal/services/swipes"
	"github.com/olzhas-sembi/dating-backend/internal/transport/http/dto"
	httperrors "github.com/olzhas-sembi/dating-backend/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Like(w http.ResponseWriter, r *http.Request) {
	caller, ok := identitysvc.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.LikeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id is required")
		return
	}

	result, err := h.service.RecordLike(r.Context(), caller.UserID, req.TargetID)
	if err != nil {
		h.writeSwipeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LikeResponse{
		OK:          true,
		MatchID:     result.Match.ID,
		Status:      string(result.Match.Status),
		MutualMatch: result.MutualMatch,
	})
}

func (h *SwipeHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	caller, ok := identitysvc.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.DislikeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id is required")
		return
	}

	ok, err := h.service.RecordDislike(r.Context(), caller.UserID, req.TargetID)
	if err != nil {
		h.writeSwipeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DislikeResponse{OK: ok})
}

func (h *SwipeHandler) writeSwipeError(w http.ResponseWriter, err error) {
	var tooFast swipesvc.TooFastError

	switch {
	case errors.Is(err, swipesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
	case errors.Is(err, swipesvc.ErrInvalidOperation):
		writeBadRequest(w, "INVALID_OPERATION", "cannot swipe on yourself")
	case errors.Is(err, swipesvc.ErrTargetNotFound):
		writeNotFound(w, "TARGET_NOT_FOUND", "target user not found")
	case errors.Is(err, swipesvc.ErrConflictRetryExhausted):
		writeConflict(w, "CONFLICT_RETRY_EXHAUSTED", "match is being updated concurrently, retry")
	case errors.As(err, &tooFast):
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
			Code:          "TOO_FAST",
			Message:       "too many like actions, slow down",
			RetryAfterSec: tooFast.RetryAfterSec,
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
	}
}
