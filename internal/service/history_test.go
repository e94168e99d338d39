package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/clarity-ai/clarity/internal/config"
	"github.com/clarity-ai/clarity/internal/domain"
	"github.com/clarity-ai/clarity/internal/repository"
	"github.com/clarity-ai/clarity/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHistory(t *testing.T) (*service.HistoryService, *domain.Chat) {
	t.Helper()
	svc := service.NewHistoryService(repository.NewMemory())
	chat, err := svc.NewChat(context.Background(), "u1")
	require.NoError(t, err)
	return svc, chat
}

func TestNewChatSeedsGreeting(t *testing.T) {
	_, chat := newHistory(t)

	assert.Equal(t, config.DefaultChatTitle, chat.Title)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, domain.RoleAssistant, chat.Messages[0].Role)
	assert.Equal(t, config.GreetingText, chat.Messages[0].Text)
	assert.False(t, chat.Messages[0].Pending)
}

func TestAppendUserTurnRejectsEmptySubmission(t *testing.T) {
	ctx := context.Background()
	svc, chat := newHistory(t)

	_, err := svc.AppendUserTurn(ctx, chat.ID, "   ", "", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	got, err := svc.LoadChat(ctx, chat.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
}

func TestAppendUserTurnAttachmentOnly(t *testing.T) {
	ctx := context.Background()
	svc, chat := newHistory(t)

	_, err := svc.AppendUserTurn(ctx, chat.ID, "", "data:image/png;base64,aGk=", "")
	require.NoError(t, err)

	got, err := svc.LoadChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "data:image/png;base64,aGk=", got.Messages[1].Image)
	// No text, so the default title stays.
	assert.Equal(t, config.DefaultChatTitle, got.Title)
}

func TestAppendUserTurnDerivesTitle(t *testing.T) {
	ctx := context.Background()
	svc, chat := newHistory(t)

	long := strings.Repeat("x", config.MaxTitleLen+10)
	_, err := svc.AppendUserTurn(ctx, chat.ID, long, "", "")
	require.NoError(t, err)

	got, err := svc.LoadChat(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", config.MaxTitleLen)+"...", got.Title)

	// A later message does not retitle the chat.
	_, err = svc.AppendUserTurn(ctx, chat.ID, "second message", "", "")
	require.NoError(t, err)
	got, err = svc.LoadChat(ctx, chat.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "second message", got.Title)
}

func TestAppendUserTurnChatNotFound(t *testing.T) {
	svc := service.NewHistoryService(repository.NewMemory())
	_, err := svc.AppendUserTurn(context.Background(), "missing", "hi", "", "")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPendingTurnLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, chat := newHistory(t)

	_, err := svc.AppendUserTurn(ctx, chat.ID, "What is 2+2?", "", "")
	require.NoError(t, err)

	pendingID, err := svc.AppendPendingAssistantTurn(ctx, chat.ID)
	require.NoError(t, err)

	got, err := svc.LoadChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	assert.True(t, got.Messages[2].Pending)
	assert.Empty(t, got.Messages[2].Text)

	usage := domain.TokenUsage{PromptTokens: 12, CompletionTokens: 3}
	cost := service.CalculateCost(usage)
	require.NoError(t, svc.ResolveAssistantTurn(ctx, chat.ID, pendingID, "4", "", "", usage, cost))

	got, err = svc.LoadChat(ctx, chat.ID)
	require.NoError(t, err)
	msg := got.Message(pendingID)
	require.NotNil(t, msg)
	assert.False(t, msg.Pending)
	assert.Equal(t, "4", msg.Text)
	assert.Equal(t, usage, msg.Usage)
	assert.True(t, msg.Cost.Equal(cost))
}

func TestResolveRemovedTurnIsNoOp(t *testing.T) {
	ctx := context.Background()
	svc, chat := newHistory(t)

	pendingID, err := svc.AppendPendingAssistantTurn(ctx, chat.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RemoveTurn(ctx, chat.ID, pendingID))

	err = svc.ResolveAssistantTurn(ctx, chat.ID, pendingID, "late reply", "", "", domain.TokenUsage{}, decimal.Zero)
	require.NoError(t, err)

	got, err := svc.LoadChat(ctx, chat.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
}

func TestRemoveTurnKeepsUserMessage(t *testing.T) {
	ctx := context.Background()
	svc, chat := newHistory(t)

	userID, err := svc.AppendUserTurn(ctx, chat.ID, "hello", "", "")
	require.NoError(t, err)
	pendingID, err := svc.AppendPendingAssistantTurn(ctx, chat.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveTurn(ctx, chat.ID, pendingID))

	got, err := svc.LoadChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.NotNil(t, got.Message(userID))
	assert.Nil(t, got.Message(pendingID))
}

func TestAttachAudio(t *testing.T) {
	ctx := context.Background()
	svc, chat := newHistory(t)

	pendingID, err := svc.AppendPendingAssistantTurn(ctx, chat.ID)
	require.NoError(t, err)
	require.NoError(t, svc.ResolveAssistantTurn(ctx, chat.ID, pendingID, "answer", "", "", domain.TokenUsage{}, decimal.Zero))

	require.NoError(t, svc.AttachAudio(ctx, chat.ID, pendingID, "data:audio/wav;base64,aGk="))

	got, err := svc.LoadChat(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "data:audio/wav;base64,aGk=", got.Message(pendingID).Audio)
}

func TestConcurrentAppendsKeepEveryMessage(t *testing.T) {
	ctx := context.Background()
	svc, chat := newHistory(t)

	const writers = 100
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.AppendUserTurn(ctx, chat.ID, fmt.Sprintf("message %d", i), "", "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := svc.LoadChat(ctx, chat.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, writers+1) // greeting plus every append

	seen := make(map[string]bool, len(got.Messages))
	for _, m := range got.Messages {
		assert.False(t, seen[m.ID], "duplicate message %s", m.ID)
		seen[m.ID] = true
	}
}

func TestConcurrentResolveAndAppend(t *testing.T) {
	ctx := context.Background()
	svc, chat := newHistory(t)

	const turns = 50
	pendingIDs := make([]string, turns)
	for i := range pendingIDs {
		id, err := svc.AppendPendingAssistantTurn(ctx, chat.ID)
		require.NoError(t, err)
		pendingIDs[i] = id
	}

	// Resolutions racing fresh appends, as when the dispatcher settles one
	// turn while another request arrives.
	var wg sync.WaitGroup
	for i, id := range pendingIDs {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			err := svc.ResolveAssistantTurn(ctx, chat.ID, id, "done", "", "", domain.TokenUsage{}, decimal.Zero)
			assert.NoError(t, err)
		}(id)
		go func(i int) {
			defer wg.Done()
			_, err := svc.AppendUserTurn(ctx, chat.ID, fmt.Sprintf("follow-up %d", i), "", "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := svc.LoadChat(ctx, chat.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1+2*turns)
	for _, id := range pendingIDs {
		msg := got.Message(id)
		require.NotNil(t, msg)
		assert.False(t, msg.Pending)
		assert.Equal(t, "done", msg.Text)
	}
}

func TestDeleteChat(t *testing.T) {
	ctx := context.Background()
	svc, chat := newHistory(t)

	require.NoError(t, svc.DeleteChat(ctx, chat.ID))
	_, err := svc.LoadChat(ctx, chat.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
