package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/clarity-ai/clarity/internal/domain"
)

// Dispatcher handles a resolved model response: it writes the result into
// history, optionally issues a best-effort speech-synthesis call, and
// signals the UI when a capability view should open.
type Dispatcher struct {
	history *HistoryService
	model   ModelClient

	// delay before a view-switch signal is announced, so the chat bubble
	// renders first. Zero announces synchronously.
	delay  time.Duration
	notify func(userID string, sig domain.ViewSignal)
}

func NewDispatcher(history *HistoryService, model ModelClient, delay time.Duration, notify func(userID string, sig domain.ViewSignal)) *Dispatcher {
	if notify == nil {
		notify = func(string, domain.ViewSignal) {}
	}
	return &Dispatcher{history: history, model: model, delay: delay, notify: notify}
}

// DispatchFreeform resolves the placeholder with the conversational reply.
// When speak is set and the reply is non-empty, a speech-synthesis call runs
// afterwards; its failure is logged, never fatal, and the audio attaches to
// the same message.
func (d *Dispatcher) DispatchFreeform(ctx context.Context, chatID, messageID string, res *FreeformResult, speak bool) error {
	cost := CalculateCost(res.Usage)
	if err := d.history.ResolveAssistantTurn(ctx, chatID, messageID, res.Response, "", "", res.Usage, cost); err != nil {
		return fmt.Errorf("resolve freeform turn: %w", err)
	}

	if speak && strings.TrimSpace(res.Response) != "" {
		audio, err := d.model.SynthesizeSpeech(ctx, res.Response)
		if err != nil {
			slog.Warn("speech synthesis failed", "chat_id", chatID, "error", err)
			return nil
		}
		if err := d.history.AttachAudio(ctx, chatID, messageID, audio); err != nil {
			slog.Warn("attach audio failed", "chat_id", chatID, "error", err)
		}
	}
	return nil
}

// DispatchCapability resolves the placeholder with the capability's chat
// rendering and announces the view switch, if any, after the configured
// delay.
func (d *Dispatcher) DispatchCapability(ctx context.Context, userID, chatID, messageID string, result *domain.CapabilityResult, usage domain.TokenUsage) error {
	text := capabilityText(result)
	if err := d.history.ResolveAssistantTurn(ctx, chatID, messageID, text, result.Image, "", usage, CalculateCost(usage)); err != nil {
		return fmt.Errorf("resolve capability turn: %w", err)
	}

	if result.Kind == domain.CapabilityImagine {
		// Generated images land in the chat itself; no view to open.
		return nil
	}

	sig := domain.ViewSignal{View: result.Kind, Data: result}
	if d.delay <= 0 {
		d.notify(userID, sig)
		return nil
	}
	time.AfterFunc(d.delay, func() {
		d.notify(userID, sig)
	})
	return nil
}

// capabilityText is the chat-bubble rendering of a structured capability
// result; the full payload travels in the view-switch signal.
func capabilityText(result *domain.CapabilityResult) string {
	switch result.Kind {
	case domain.CapabilityImagine:
		return ""
	case domain.CapabilityAnalyze:
		if result.Analysis != nil {
			return result.Analysis.RootCause
		}
	case domain.CapabilityExplain:
		if result.Explanation != nil {
			return result.Explanation.Explanation
		}
	case domain.CapabilitySummarize:
		if result.Summary != nil {
			return result.Summary.Summary
		}
	case domain.CapabilityIdea:
		if result.Ideas != nil {
			return "- " + strings.Join(result.Ideas.Ideas, "\n- ")
		}
	case domain.CapabilityHomework:
		if result.Homework != nil {
			return result.Homework.FinalAnswer
		}
	}
	return ""
}
