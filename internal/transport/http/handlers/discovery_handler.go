package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
	discoverysvc "github.com/olzhas-sembi/dating-backend/internal/services/discovery"
	identitysvc "github.com/olzhas-sembi/dating-backend/internal/services/identity"
	"github.com/olzhas-sembi/dating-backend/internal/transport/http/dto"
	httperrors "github.com/olzhas-sembi/dating-backend/internal/transport/http/errors"
)

type DiscoveryHandler struct {
	service *discoverysvc.Service
}

func NewDiscoveryHandler(service *discoverysvc.Service) *DiscoveryHandler {
	return &DiscoveryHandler{service: service}
}

func (h *DiscoveryHandler) Search(w http.ResponseWriter, r *http.Request) {
	caller, ok := identitysvc.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DISCOVERY_SERVICE_UNAVAILABLE", "discovery service is unavailable")
		return
	}

	filters, err := parseSearchFilters(r)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.service.Search(r.Context(), caller.UserID, filters)
	if err != nil {
		switch {
		case errors.Is(err, discoverysvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid search filters")
		case errors.Is(err, discoverysvc.ErrNotFound):
			writeNotFound(w, "USER_NOT_FOUND", "requesting user not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to search profiles")
		}
		return
	}

	candidates := make([]dto.CandidateResponse, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		candidates = append(candidates, dto.CandidateResponse{
			UserID:      c.UserID,
			DisplayName: c.DisplayName,
			Age:         c.Age,
			Gender:      string(c.Gender),
			City:        c.City,
			Bio:         c.Bio,
			PhotoURLs:   c.PhotoURLs,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.SearchResponse{
		Candidates: candidates,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		HasMore:    result.HasMore,
	})
}

func parseSearchFilters(r *http.Request) (discoverysvc.Filters, error) {
	q := r.URL.Query()
	filters := discoverysvc.Filters{
		Gender: enums.Gender(strings.TrimSpace(q.Get("gender"))),
		City:   strings.TrimSpace(q.Get("city")),
	}

	fields := []struct {
		name   string
		target *int
	}{
		{name: "min_age", target: &filters.MinAge},
		{name: "max_age", target: &filters.MaxAge},
		{name: "page", target: &filters.Page},
		{name: "limit", target: &filters.Limit},
	}
	for _, field := range fields {
		raw := strings.TrimSpace(q.Get(field.name))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return discoverysvc.Filters{}, errors.New(field.name + " must be a non-negative integer")
		}
		*field.target = value
	}

	return filters, nil
}
