package service

import (
	"github.com/clarity-ai/clarity/internal/config"
	"github.com/clarity-ai/clarity/internal/domain"
	"github.com/shopspring/decimal"
)

// CalculateCost prices a model call from its token counts using the per-1M
// token rates. The result is recorded on the resolved assistant message.
func CalculateCost(usage domain.TokenUsage) decimal.Decimal {
	promptCost := decimal.NewFromFloat(float64(usage.PromptTokens) * config.PromptPricePerMillion / 1_000_000)
	completionCost := decimal.NewFromFloat(float64(usage.CompletionTokens) * config.CompletionPricePerMillion / 1_000_000)
	return promptCost.Add(completionCost)
}
