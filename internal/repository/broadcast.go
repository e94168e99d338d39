package repository

import "sync"

// broadcaster fans a chat id out to registered observers. Observers must be
// idempotent: a change may be announced more than once (local publish plus a
// Postgres NOTIFY round-trip).
type broadcaster struct {
	mu   sync.RWMutex
	subs []func(chatID string)
}

func (b *broadcaster) Subscribe(fn func(chatID string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

func (b *broadcaster) publish(chatID string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, fn := range b.subs {
		fn(chatID)
	}
}
