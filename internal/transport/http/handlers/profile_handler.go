package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
	identitysvc "github.com/olzhas-sembi/dating-backend/internal/services/identity"
	profilesvc "github.com/olzhas-sembi/dating-backend/internal/services/profiles"
	"github.com/olzhas-sembi/dating-backend/internal/transport/http/dto"
	httperrors "github.com/olzhas-sembi/dating-backend/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *profilesvc.Service
}

func NewProfileHandler(service *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := identitysvc.FromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || userID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	view, err := h.service.Get(r.Context(), userID)
	if err != nil {
		h.writeProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toProfileResponse(view))
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := identitysvc.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	view, err := h.service.Get(r.Context(), caller.UserID)
	if err != nil {
		h.writeProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toProfileResponse(view))
}

func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	caller, ok := identitysvc.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.SaveProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	birthdate, err := time.Parse("2006-01-02", req.Birthdate)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "birthdate must be YYYY-MM-DD")
		return
	}

	input := profilesvc.SaveInput{
		DisplayName: req.DisplayName,
		Birthdate:   birthdate,
		Gender:      enums.Gender(req.Gender),
		Bio:         req.Bio,
		Photos:      req.Photos,
		LookingFor:  req.LookingFor,
	}
	if req.Location != nil {
		input.Location = &model.Location{
			Lat:  req.Location.Lat,
			Lon:  req.Location.Lon,
			City: req.Location.City,
		}
	}

	saved, err := h.service.Save(r.Context(), caller.UserID, input)
	if err != nil {
		h.writeProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toProfileResponse(profilesvc.View{
		Profile:   saved,
		PhotoURLs: []string{},
	}))
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := identitysvc.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	if err := h.service.Delete(r.Context(), caller.UserID); err != nil {
		h.writeProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func (h *ProfileHandler) writeProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "profile validation failed")
	case errors.Is(err, profilesvc.ErrNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to process profile request")
	}
}

func toProfileResponse(view profilesvc.View) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		UserID:      view.Profile.UserID,
		DisplayName: view.Profile.DisplayName,
		Birthdate:   view.Profile.Birthdate.UTC().Format("2006-01-02"),
		Gender:      string(view.Profile.Gender),
		Bio:         view.Profile.Bio,
		PhotoURLs:   view.PhotoURLs,
		LookingFor:  view.Profile.LookingFor,
	}
	if resp.PhotoURLs == nil {
		resp.PhotoURLs = []string{}
	}
	if resp.LookingFor == nil {
		resp.LookingFor = []string{}
	}
	if view.Profile.Location != nil {
		resp.Location = &dto.LocationPayload{
			Lat:  view.Profile.Location.Lat,
			Lon:  view.Profile.Location.Lon,
			City: view.Profile.Location.City,
		}
	}
	return resp
}
