package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/clarity-ai/clarity/internal/domain"
)

// Memory keeps chats and settings in process memory. It backs the local
// build variant and every test.
type Memory struct {
	broadcaster

	mu       sync.RWMutex
	chats    map[string]*domain.Chat
	settings map[string]domain.Settings
}

func NewMemory() *Memory {
	return &Memory{
		chats:    make(map[string]*domain.Chat),
		settings: make(map[string]domain.Settings),
	}
}

func (m *Memory) SaveChat(ctx context.Context, chat *domain.Chat) error {
	m.mu.Lock()
	m.chats[chat.ID] = copyChat(chat)
	m.mu.Unlock()

	m.publish(chat.ID)
	return nil
}

func (m *Memory) GetChat(ctx context.Context, id string) (*domain.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chat, ok := m.chats[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyChat(chat), nil
}

// UpdateChat runs fn on a copy of the chat while holding the write lock, so
// concurrent updates of one chat serialize instead of overwriting each other.
func (m *Memory) UpdateChat(ctx context.Context, id string, fn func(*domain.Chat) error) error {
	m.mu.Lock()
	chat, ok := m.chats[id]
	if !ok {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	cp := copyChat(chat)
	if err := fn(cp); err != nil {
		m.mu.Unlock()
		if errors.Is(err, domain.ErrNoChange) {
			return nil
		}
		return err
	}
	m.chats[id] = cp
	m.mu.Unlock()

	m.publish(id)
	return nil
}

func (m *Memory) DeleteChat(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.chats[id]
	delete(m.chats, id)
	m.mu.Unlock()

	if !ok {
		return domain.ErrNotFound
	}
	m.publish(id)
	return nil
}

func (m *Memory) ListChats(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	m.mu.RLock()
	summaries := make([]domain.ChatSummary, 0, len(m.chats))
	for _, c := range m.chats {
		if c.UserID != userID {
			continue
		}
		summaries = append(summaries, domain.ChatSummary{
			ID:           c.ID,
			UserID:       c.UserID,
			Title:        c.Title,
			MessageCount: len(c.Messages),
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		})
	}
	m.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (m *Memory) GetSettings(ctx context.Context, userID string) (domain.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[userID], nil
}

func (m *Memory) SaveSettings(ctx context.Context, userID string, s domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[userID] = s
	return nil
}

// copyChat guards against callers mutating stored state through shared
// slices.
func copyChat(c *domain.Chat) *domain.Chat {
	cp := *c
	cp.Messages = make([]domain.Message, len(c.Messages))
	copy(cp.Messages, c.Messages)
	return &cp
}
