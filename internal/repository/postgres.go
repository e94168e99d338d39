package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clarity-ai/clarity/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const chatChannel = "chat_updates"

// Postgres stores each chat as a single JSONB document row and broadcasts
// changes over LISTEN/NOTIFY so other server instances (and tabs connected
// to them) can refresh. Writes are last-write-wins; no conflict resolution
// beyond the change signal.
type Postgres struct {
	broadcaster

	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) SaveChat(ctx context.Context, chat *domain.Chat) error {
	doc, err := json.Marshal(chat)
	if err != nil {
		return fmt.Errorf("marshal chat document: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO chats (id, user_id, title, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    document = EXCLUDED.document,
		    updated_at = EXCLUDED.updated_at`,
		chat.ID, chat.UserID, chat.Title, doc, chat.CreatedAt, chat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save chat: %w", err)
	}

	if _, err := p.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, chatChannel, chat.ID); err != nil {
		slog.Warn("chat change notify failed", "chat_id", chat.ID, "error", err)
	}

	p.publish(chat.ID)
	return nil
}

func (p *Postgres) GetChat(ctx context.Context, id string) (*domain.Chat, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx, `SELECT document FROM chats WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get chat: %w", err)
	}

	var chat domain.Chat
	if err := json.Unmarshal(doc, &chat); err != nil {
		return nil, fmt.Errorf("unmarshal chat document: %w", err)
	}
	return &chat, nil
}

// UpdateChat applies fn to the chat document inside a transaction that holds
// the row lock, so concurrent updates of one chat serialize across server
// instances too.
func (p *Postgres) UpdateChat(ctx context.Context, id string, fn func(*domain.Chat) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin chat update: %w", err)
	}
	defer tx.Rollback(ctx)

	var doc []byte
	err = tx.QueryRow(ctx, `SELECT document FROM chats WHERE id = $1 FOR UPDATE`, id).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock chat row: %w", err)
	}

	var chat domain.Chat
	if err := json.Unmarshal(doc, &chat); err != nil {
		return fmt.Errorf("unmarshal chat document: %w", err)
	}

	if err := fn(&chat); err != nil {
		if errors.Is(err, domain.ErrNoChange) {
			return nil
		}
		return err
	}

	updated, err := json.Marshal(&chat)
	if err != nil {
		return fmt.Errorf("marshal chat document: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE chats
		SET title = $2, document = $3, updated_at = $4
		WHERE id = $1`,
		id, chat.Title, updated, chat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update chat: %w", err)
	}

	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, chatChannel, id); err != nil {
		slog.Warn("chat change notify failed", "chat_id", id, "error", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit chat update: %w", err)
	}

	p.publish(id)
	return nil
}

func (p *Postgres) DeleteChat(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := p.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, chatChannel, id); err != nil {
		slog.Warn("chat change notify failed", "chat_id", id, "error", err)
	}

	p.publish(id)
	return nil
}

func (p *Postgres) ListChats(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, user_id, title, jsonb_array_length(document->'messages'), created_at, updated_at
		FROM chats
		WHERE user_id = $1
		ORDER BY updated_at DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var summaries []domain.ChatSummary
	for rows.Next() {
		var s domain.ChatSummary
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.MessageCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan chat summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (p *Postgres) GetSettings(ctx context.Context, userID string) (domain.Settings, error) {
	var s domain.Settings
	err := p.pool.QueryRow(ctx,
		`SELECT language, persona FROM user_settings WHERE user_id = $1`, userID).
		Scan(&s.Language, &s.Persona)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Settings{}, nil
		}
		return domain.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

func (p *Postgres) SaveSettings(ctx context.Context, userID string, s domain.Settings) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO user_settings (user_id, language, persona, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE
		SET language = EXCLUDED.language,
		    persona = EXCLUDED.persona,
		    updated_at = now()`,
		userID, s.Language, s.Persona)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Listen blocks on the chat change channel until ctx is cancelled, fanning
// notifications out to subscribers. Run it in its own goroutine; it picks up
// writes made by other server instances.
func (p *Postgres) Listen(ctx context.Context) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+chatChannel); err != nil {
		return fmt.Errorf("listen on %s: %w", chatChannel, err)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		p.publish(n.Payload)
	}
}
