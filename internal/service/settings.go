package service

import (
	"context"

	"github.com/clarity-ai/clarity/internal/config"
	"github.com/clarity-ai/clarity/internal/domain"
)

// SettingsService holds each user's response language and persona. Settings
// are read on every request and mutated only through explicit user action;
// they are passed into the orchestrator per call rather than held in a
// global.
type SettingsService struct {
	store domain.ChatStore
}

func NewSettingsService(store domain.ChatStore) *SettingsService {
	return &SettingsService{store: store}
}

func (s *SettingsService) Get(ctx context.Context, userID string) (domain.Settings, error) {
	return s.store.GetSettings(ctx, userID)
}

func (s *SettingsService) Update(ctx context.Context, userID string, settings domain.Settings) error {
	return s.store.SaveSettings(ctx, userID, settings)
}

// Languages returns the list selectable in the settings panel.
func (s *SettingsService) Languages() []string {
	return config.Languages
}
