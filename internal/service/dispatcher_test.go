package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/clarity-ai/clarity/internal/domain"
	"github.com/clarity-ai/clarity/internal/repository"
	"github.com/clarity-ai/clarity/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcherFixture(t *testing.T, model service.ModelClient, notify func(string, domain.ViewSignal)) (*service.Dispatcher, *service.HistoryService, string, string) {
	t.Helper()
	history := service.NewHistoryService(repository.NewMemory())
	chat, err := history.NewChat(context.Background(), "u1")
	require.NoError(t, err)
	pendingID, err := history.AppendPendingAssistantTurn(context.Background(), chat.ID)
	require.NoError(t, err)

	return service.NewDispatcher(history, model, 0, notify), history, chat.ID, pendingID
}

func TestDispatchFreeformResolvesPlaceholder(t *testing.T) {
	ctx := context.Background()
	d, history, chatID, pendingID := newDispatcherFixture(t, &stubModel{}, nil)

	usage := domain.TokenUsage{PromptTokens: 100, CompletionTokens: 50}
	err := d.DispatchFreeform(ctx, chatID, pendingID, &service.FreeformResult{
		Response: "the answer",
		Usage:    usage,
	}, false)
	require.NoError(t, err)

	chat, err := history.LoadChat(ctx, chatID)
	require.NoError(t, err)
	msg := chat.Message(pendingID)
	require.NotNil(t, msg)
	assert.False(t, msg.Pending)
	assert.Equal(t, "the answer", msg.Text)
	assert.Equal(t, usage, msg.Usage)
	assert.True(t, msg.Cost.Equal(service.CalculateCost(usage)))
	assert.Empty(t, msg.Audio)
}

func TestDispatchFreeformSpeakAttachesAudio(t *testing.T) {
	ctx := context.Background()
	model := &stubModel{
		synthesizeSpeak: func(ctx context.Context, text string) (string, error) {
			return "data:audio/wav;base64,aGk=", nil
		},
	}
	d, history, chatID, pendingID := newDispatcherFixture(t, model, nil)

	err := d.DispatchFreeform(ctx, chatID, pendingID, &service.FreeformResult{Response: "spoken"}, true)
	require.NoError(t, err)

	chat, err := history.LoadChat(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, "data:audio/wav;base64,aGk=", chat.Message(pendingID).Audio)
}

func TestDispatchFreeformSpeechFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	model := &stubModel{
		synthesizeSpeak: func(ctx context.Context, text string) (string, error) {
			return "", errors.New("tts unavailable")
		},
	}
	d, history, chatID, pendingID := newDispatcherFixture(t, model, nil)

	err := d.DispatchFreeform(ctx, chatID, pendingID, &service.FreeformResult{Response: "still fine"}, true)
	require.NoError(t, err)

	chat, err := history.LoadChat(ctx, chatID)
	require.NoError(t, err)
	msg := chat.Message(pendingID)
	assert.Equal(t, "still fine", msg.Text)
	assert.Empty(t, msg.Audio)
}

func TestDispatchCapabilityAnnouncesViewSwitch(t *testing.T) {
	ctx := context.Background()

	var gotUser string
	var gotSig domain.ViewSignal
	notify := func(userID string, sig domain.ViewSignal) {
		gotUser = userID
		gotSig = sig
	}
	d, history, chatID, pendingID := newDispatcherFixture(t, &stubModel{}, notify)

	result := &domain.CapabilityResult{
		Kind:      domain.CapabilityHomework,
		InputText: "what is 7*8?",
		Homework: &domain.HomeworkHelp{
			Steps:       []domain.HomeworkStep{{Title: "Multiply", Explanation: "7 times 8."}},
			FinalAnswer: "56",
		},
	}
	usage := domain.TokenUsage{PromptTokens: 20, CompletionTokens: 8}
	require.NoError(t, d.DispatchCapability(ctx, "u1", chatID, pendingID, result, usage))

	chat, err := history.LoadChat(ctx, chatID)
	require.NoError(t, err)
	msg := chat.Message(pendingID)
	assert.Equal(t, "56", msg.Text)
	assert.Equal(t, usage, msg.Usage)

	assert.Equal(t, "u1", gotUser)
	assert.Equal(t, domain.CapabilityHomework, gotSig.View)
	require.NotNil(t, gotSig.Data)
	assert.Equal(t, "56", gotSig.Data.Homework.FinalAnswer)
}

func TestDispatchImagineSkipsViewSwitch(t *testing.T) {
	ctx := context.Background()

	notified := false
	notify := func(string, domain.ViewSignal) { notified = true }
	d, history, chatID, pendingID := newDispatcherFixture(t, &stubModel{}, notify)

	result := &domain.CapabilityResult{
		Kind:  domain.CapabilityImagine,
		Image: "data:image/png;base64,aGk=",
	}
	require.NoError(t, d.DispatchCapability(ctx, "u1", chatID, pendingID, result, domain.TokenUsage{}))

	chat, err := history.LoadChat(ctx, chatID)
	require.NoError(t, err)
	msg := chat.Message(pendingID)
	assert.Equal(t, "data:image/png;base64,aGk=", msg.Image)
	assert.False(t, msg.Pending)
	assert.False(t, notified)
}

func TestDispatchIdeaRendersBulletList(t *testing.T) {
	ctx := context.Background()
	d, history, chatID, pendingID := newDispatcherFixture(t, &stubModel{}, nil)

	result := &domain.CapabilityResult{
		Kind:  domain.CapabilityIdea,
		Ideas: &domain.IdeaList{Ideas: []string{"space theme", "retro arcade"}},
	}
	require.NoError(t, d.DispatchCapability(ctx, "u1", chatID, pendingID, result, domain.TokenUsage{}))

	chat, err := history.LoadChat(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, "- space theme\n- retro arcade", chat.Message(pendingID).Text)
}
