package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clarity-ai/clarity/internal/config"
	"github.com/clarity-ai/clarity/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistoryService owns the per-chat append-only message log. Every mutating
// operation persists the whole chat document and lets the store notify
// observers; there is no atomicity across chats.
type HistoryService struct {
	store domain.ChatStore
	now   func() time.Time
	newID func() string
}

func NewHistoryService(store domain.ChatStore) *HistoryService {
	return &HistoryService{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// NewChat creates a chat seeded with the synthetic greeting, so a chat's
// message list is never empty.
func (s *HistoryService) NewChat(ctx context.Context, userID string) (*domain.Chat, error) {
	now := s.now()
	chat := &domain.Chat{
		ID:     s.newID(),
		UserID: userID,
		Title:  config.DefaultChatTitle,
		Messages: []domain.Message{{
			ID:        s.newID(),
			Role:      domain.RoleAssistant,
			Text:      config.GreetingText,
			CreatedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.SaveChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

// AppendUserTurn appends a finished user message. A submission with neither
// text nor an attachment is rejected without touching the store. The append
// runs through the store's atomic update, so concurrent turns on one chat
// never lose each other.
func (s *HistoryService) AppendUserTurn(ctx context.Context, chatID, text, image, audio string) (string, error) {
	if strings.TrimSpace(text) == "" && image == "" && audio == "" {
		return "", domain.ErrInvalidInput
	}

	msg := domain.Message{
		ID:        s.newID(),
		Role:      domain.RoleUser,
		Text:      text,
		Image:     image,
		Audio:     audio,
		CreatedAt: s.now(),
	}

	err := s.store.UpdateChat(ctx, chatID, func(chat *domain.Chat) error {
		chat.Messages = append(chat.Messages, msg)
		chat.UpdatedAt = msg.CreatedAt
		if chat.Title == config.DefaultChatTitle && strings.TrimSpace(text) != "" {
			chat.Title = deriveTitle(text)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("append user turn: %w", err)
	}
	return msg.ID, nil
}

// AppendPendingAssistantTurn reserves the reply's position while the model
// call is in flight.
func (s *HistoryService) AppendPendingAssistantTurn(ctx context.Context, chatID string) (string, error) {
	msg := domain.Message{
		ID:        s.newID(),
		Role:      domain.RoleAssistant,
		Pending:   true,
		CreatedAt: s.now(),
	}

	err := s.store.UpdateChat(ctx, chatID, func(chat *domain.Chat) error {
		chat.Messages = append(chat.Messages, msg)
		chat.UpdatedAt = msg.CreatedAt
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("append pending turn: %w", err)
	}
	return msg.ID, nil
}

// ResolveAssistantTurn fills a pending placeholder and clears its pending
// flag. A placeholder that was already removed is a silent no-op.
func (s *HistoryService) ResolveAssistantTurn(ctx context.Context, chatID, messageID, text, image, audio string, usage domain.TokenUsage, cost decimal.Decimal) error {
	err := s.store.UpdateChat(ctx, chatID, func(chat *domain.Chat) error {
		msg := chat.Message(messageID)
		if msg == nil {
			return domain.ErrNoChange
		}
		msg.Text = text
		if image != "" {
			msg.Image = image
		}
		if audio != "" {
			msg.Audio = audio
		}
		msg.Usage = usage
		msg.Cost = cost
		msg.Pending = false
		chat.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return fmt.Errorf("resolve assistant turn: %w", err)
	}
	return nil
}

// AttachAudio adds a synthesized speech reference to an already resolved
// message. No-op if the message is gone.
func (s *HistoryService) AttachAudio(ctx context.Context, chatID, messageID, audio string) error {
	err := s.store.UpdateChat(ctx, chatID, func(chat *domain.Chat) error {
		msg := chat.Message(messageID)
		if msg == nil {
			return domain.ErrNoChange
		}
		msg.Audio = audio
		return nil
	})
	if err != nil {
		return fmt.Errorf("attach audio: %w", err)
	}
	return nil
}

// RemoveTurn rolls a message back, typically a pending placeholder after a
// failed request. The user message of the failed turn stays.
func (s *HistoryService) RemoveTurn(ctx context.Context, chatID, messageID string) error {
	err := s.store.UpdateChat(ctx, chatID, func(chat *domain.Chat) error {
		kept := make([]domain.Message, 0, len(chat.Messages))
		found := false
		for _, m := range chat.Messages {
			if m.ID == messageID {
				found = true
				continue
			}
			kept = append(kept, m)
		}
		if !found {
			return domain.ErrNoChange
		}
		chat.Messages = kept
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove turn: %w", err)
	}
	return nil
}

func (s *HistoryService) ListChats(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	return s.store.ListChats(ctx, userID)
}

func (s *HistoryService) LoadChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	return s.store.GetChat(ctx, chatID)
}

func (s *HistoryService) DeleteChat(ctx context.Context, chatID string) error {
	return s.store.DeleteChat(ctx, chatID)
}

// Subscribe registers an observer for chat change notifications, e.g. a
// sidebar list refresh.
func (s *HistoryService) Subscribe(fn func(chatID string)) {
	s.store.Subscribe(fn)
}

func deriveTitle(text string) string {
	title := strings.TrimSpace(text)
	runes := []rune(title)
	if len(runes) > config.MaxTitleLen {
		title = string(runes[:config.MaxTitleLen]) + "..."
	}
	return title
}
