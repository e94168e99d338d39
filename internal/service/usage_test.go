package service_test

import (
	"testing"

	"github.com/clarity-ai/clarity/internal/domain"
	"github.com/clarity-ai/clarity/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	assert.True(t, service.CalculateCost(domain.TokenUsage{}).IsZero())

	cost := service.CalculateCost(domain.TokenUsage{
		PromptTokens:     1_000_000,
		CompletionTokens: 1_000_000,
	})
	assert.True(t, cost.Equal(decimal.NewFromFloat(2.8)), "got %s", cost)
}
