package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	identitysvc "github.com/olzhas-sembi/dating-backend/internal/services/identity"
	matchessvc "github.com/olzhas-sembi/dating-backend/internal/services/matches"
	"github.com/olzhas-sembi/dating-backend/internal/transport/http/dto"
	httperrors "github.com/olzhas-sembi/dating-backend/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identitysvc.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a non-negative integer")
			return
		}
		limit = value
	}

	items, err := h.service.List(r.Context(), caller.UserID, limit)
	if err != nil {
		if errors.Is(err, matchessvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid match list request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to list matches")
		return
	}

	matches := make([]dto.MatchItemResponse, 0, len(items))
	for _, item := range items {
		matches = append(matches, dto.MatchItemResponse{
			MatchID:     item.MatchID,
			UserID:      item.UserID,
			DisplayName: item.DisplayName,
			City:        item.City,
			MatchedAt:   item.MatchedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchListResponse{Matches: matches})
}
