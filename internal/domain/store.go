package domain

import "context"

// ChatStore is the persistence boundary for chats and settings. The core
// only needs read-by-id, write-by-id, ordered listing, and a notify-on-change
// signal; backends are in-memory or Postgres, selected at composition time.
// Writes are last-write-wins; the change signal is a publish step, not a
// two-phase commit.
type ChatStore interface {
	SaveChat(ctx context.Context, chat *Chat) error
	GetChat(ctx context.Context, id string) (*Chat, error)
	// UpdateChat applies fn to the stored chat atomically: concurrent updates
	// of one chat serialize, none are lost. fn returning ErrNoChange abandons
	// the update without error or notification.
	UpdateChat(ctx context.Context, id string, fn func(*Chat) error) error
	DeleteChat(ctx context.Context, id string) error
	// ListChats returns summaries ordered by most-recent-activity descending,
	// ties broken by newer creation first.
	ListChats(ctx context.Context, userID string) ([]ChatSummary, error)

	GetSettings(ctx context.Context, userID string) (Settings, error)
	SaveSettings(ctx context.Context, userID string, s Settings) error

	// Subscribe registers an observer invoked with a chat id after every
	// persisted chat mutation.
	Subscribe(fn func(chatID string))
}
