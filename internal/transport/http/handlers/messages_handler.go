package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
	identitysvc "github.com/olzhas-sembi/dating-backend/internal/services/identity"
	messagessvc "github.com/olzhas-sembi/dating-backend/internal/services/messages"
	"github.com/olzhas-sembi/dating-backend/internal/transport/http/dto"
	httperrors "github.com/olzhas-sembi/dating-backend/internal/transport/http/errors"
)

type MessagesHandler struct {
	service *messagessvc.Service
}

func NewMessagesHandler(service *messagessvc.Service) *MessagesHandler {
	return &MessagesHandler{service: service}
}

func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	caller, ok := identitysvc.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	matchID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || matchID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	attachments := make([]model.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, model.Attachment{URL: a.URL, Kind: a.Kind})
	}

	msg, err := h.service.Send(r.Context(), caller.UserID, matchID, messagessvc.SendInput{
		Text:        req.Text,
		Attachments: attachments,
	})
	if err != nil {
		h.writeMessageError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toMessageResponse(msg))
}

func (h *MessagesHandler) History(w http.ResponseWriter, r *http.Request) {
	caller, ok := identitysvc.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	matchID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || matchID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	var beforeID int64
	if raw := strings.TrimSpace(r.URL.Query().Get("before_id")); raw != "" {
		beforeID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || beforeID <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "before_id must be a positive integer")
			return
		}
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a non-negative integer")
			return
		}
	}

	page, err := h.service.History(r.Context(), caller.UserID, matchID, beforeID, limit)
	if err != nil {
		h.writeMessageError(w, err)
		return
	}

	messages := make([]dto.MessageResponse, 0, len(page.Messages))
	for _, msg := range page.Messages {
		messages = append(messages, toMessageResponse(msg))
	}

	httperrors.Write(w, http.StatusOK, dto.MessagePageResponse{
		Messages: messages,
		HasMore:  page.HasMore,
	})
}

func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := identitysvc.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	messageID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || messageID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid message id")
		return
	}

	if err := h.service.MarkRead(r.Context(), caller.UserID, messageID); err != nil {
		h.writeMessageError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func (h *MessagesHandler) writeMessageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, messagessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid message request")
	case errors.Is(err, messagessvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "match or message not found")
	case errors.Is(err, messagessvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "not a participant of this match")
	case errors.Is(err, messagessvc.ErrInvalidOperation):
		writeConflict(w, "CONVERSATION_NOT_OPEN", "messages are allowed in matched conversations only")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to process message request")
	}
}

func toMessageResponse(msg model.Message) dto.MessageResponse {
	attachments := make([]dto.AttachmentPayload, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		attachments = append(attachments, dto.AttachmentPayload{URL: a.URL, Kind: a.Kind})
	}
	readBy := msg.ReadBy
	if readBy == nil {
		readBy = []int64{}
	}

	return dto.MessageResponse{
		ID:          msg.ID,
		MatchID:     msg.MatchID,
		SenderID:    msg.SenderID,
		Text:        msg.Text,
		Attachments: attachments,
		ReadBy:      readBy,
		SentAt:      msg.SentAt,
	}
}
