package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
	pgrepo "github.com/olzhas-sembi/dating-backend/internal/repo/postgres"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("not a participant")
	ErrInvalidOperation = errors.New("conversation is not open")
)

const (
	maxTextLen       = 2000
	defaultPageLimit = 50
)

type Store interface {
	Create(ctx context.Context, msg model.Message) (model.Message, error)
	ListByMatch(ctx context.Context, matchID, beforeID int64, limit int) ([]model.Message, error)
	FindByID(ctx context.Context, messageID int64) (model.Message, error)
	MarkRead(ctx context.Context, messageID, userID int64) error
}

type MatchStore interface {
	FindByID(ctx context.Context, matchID int64) (model.Match, error)
}

type MessageEvent struct {
	ID          string
	MessageID   int64
	MatchID     int64
	SenderID    int64
	RecipientID int64
	At          time.Time
}

// Notifier receives outbound message events after a successful commit.
type Notifier interface {
	MessageSent(ctx context.Context, event MessageEvent)
}

type SendInput struct {
	Text        string
	Attachments []model.Attachment
}

// Page is one slice of conversation history in chronological order.
type Page struct {
	Messages []model.Message
	HasMore  bool
}

type Service struct {
	store      Store
	matchStore MatchStore
	notifier   Notifier
	now        func() time.Time
}

func NewService(store Store, matchStore MatchStore, notifier Notifier) *Service {
	return &Service{
		store:      store,
		matchStore: matchStore,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Send stores a message in an open conversation. Only participants of a
// non-deleted matched record may write; the sender is pre-added to the
// read set.
func (s *Service) Send(ctx context.Context, senderID, matchID int64, in SendInput) (model.Message, error) {
	if senderID <= 0 || matchID <= 0 {
		return model.Message{}, ErrValidation
	}

	text := strings.TrimSpace(in.Text)
	if text == "" && len(in.Attachments) == 0 {
		return model.Message{}, ErrValidation
	}
	if len([]rune(text)) > maxTextLen {
		return model.Message{}, ErrValidation
	}
	if s.store == nil || s.matchStore == nil {
		return model.Message{}, fmt.Errorf("message dependencies are not configured")
	}

	m, err := s.openConversation(ctx, senderID, matchID)
	if err != nil {
		return model.Message{}, err
	}

	created, err := s.store.Create(ctx, model.Message{
		MatchID:     matchID,
		SenderID:    senderID,
		Text:        text,
		Attachments: in.Attachments,
		ReadBy:      []int64{senderID},
		SentAt:      s.now().UTC(),
	})
	if err != nil {
		return model.Message{}, fmt.Errorf("create message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.MessageSent(ctx, MessageEvent{
			ID:          uuid.NewString(),
			MessageID:   created.ID,
			MatchID:     matchID,
			SenderID:    senderID,
			RecipientID: m.OtherParticipant(senderID),
			At:          s.now().UTC(),
		})
	}

	return created, nil
}

// History returns one page of conversation history, oldest message
// first. beforeID of zero starts from the newest message; otherwise the
// page holds messages strictly older than that id.
func (s *Service) History(ctx context.Context, userID, matchID, beforeID int64, limit int) (Page, error) {
	if userID <= 0 || matchID <= 0 || beforeID < 0 {
		return Page{}, ErrValidation
	}
	if s.store == nil || s.matchStore == nil {
		return Page{}, fmt.Errorf("message dependencies are not configured")
	}

	if _, err := s.openConversation(ctx, userID, matchID); err != nil {
		return Page{}, err
	}

	if limit <= 0 || limit > defaultPageLimit {
		limit = defaultPageLimit
	}

	page, err := s.store.ListByMatch(ctx, matchID, beforeID, limit)
	if err != nil {
		return Page{}, fmt.Errorf("list messages: %w", err)
	}

	// Storage yields newest-first for the cursor; readers want
	// chronological order.
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}

	return Page{Messages: page, HasMore: len(page) == limit}, nil
}

// MarkRead adds the reader to the message's read set. Repeated calls
// are no-ops.
func (s *Service) MarkRead(ctx context.Context, userID, messageID int64) error {
	if userID <= 0 || messageID <= 0 {
		return ErrValidation
	}
	if s.store == nil || s.matchStore == nil {
		return fmt.Errorf("message dependencies are not configured")
	}

	msg, err := s.store.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMessageNotFound) {
			return ErrNotFound
		}
		return err
	}

	if _, err := s.openConversation(ctx, userID, msg.MatchID); err != nil {
		return err
	}

	if err := s.store.MarkRead(ctx, messageID, userID); err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}

	return nil
}

func (s *Service) openConversation(ctx context.Context, userID, matchID int64) (model.Match, error) {
	m, err := s.matchStore.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return model.Match{}, ErrNotFound
		}
		return model.Match{}, err
	}

	if !m.HasParticipant(userID) {
		return model.Match{}, ErrForbidden
	}
	if m.Status != enums.MatchStatusMatched {
		return model.Match{}, ErrInvalidOperation
	}

	return m, nil
}
