package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a chat. Image and Audio hold inline media
// references ("data:<mime>;base64,<payload>"). A message is created either
// as a finished user turn or as a pending assistant placeholder that is
// resolved exactly once; after that it is immutable until the whole chat is
// deleted.
type Message struct {
	ID        string          `json:"id"`
	Role      Role            `json:"role"`
	Text      string          `json:"text"`
	Image     string          `json:"image,omitempty"`
	Audio     string          `json:"audio,omitempty"`
	Pending   bool            `json:"pending,omitempty"`
	Usage     TokenUsage      `json:"usage,omitempty"`
	Cost      decimal.Decimal `json:"cost"`
	CreatedAt time.Time       `json:"created_at"`
}

// TokenUsage records the token counts reported by the model for the call
// that produced a message.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
}

type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatSummary is the sidebar view of a chat.
type ChatSummary struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Message returns the message with the given id, or nil.
func (c *Chat) Message(id string) *Message {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return &c.Messages[i]
		}
	}
	return nil
}

// TotalCost sums the recorded cost of every message in the chat.
func (c *Chat) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, m := range c.Messages {
		total = total.Add(m.Cost)
	}
	return total
}
