package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hray3182/diditakeit/internal/kv"
	"github.com/hray3182/diditakeit/internal/models"
)

const (
	SettingsKey       = "settings"
	LastDailyResetKey = "last_daily_reset"
)

type SettingsRepository struct {
	store kv.Store
}

func NewSettingsRepository(store kv.Store) *SettingsRepository {
	return &SettingsRepository{store: store}
}

// Get returns the stored settings merged over the defaults.
func (r *SettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()
	raw, found, err := r.store.Get(ctx, SettingsKey)
	if err != nil {
		return settings, fmt.Errorf("failed to load settings: %w", err)
	}
	if found && raw != "" {
		if err := json.Unmarshal([]byte(raw), &settings); err != nil {
			log.Printf("Failed to parse stored settings, using defaults: %v", err)
			settings = models.DefaultSettings()
		}
	}
	settings.Sanitize()
	return settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings models.Settings) error {
	settings.Sanitize()
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return r.store.Set(ctx, SettingsKey, string(data))
}

func (r *SettingsRepository) LastDailyReset(ctx context.Context) (string, error) {
	raw, _, err := r.store.Get(ctx, LastDailyResetKey)
	if err != nil {
		return "", fmt.Errorf("failed to load last daily reset: %w", err)
	}
	return raw, nil
}

func (r *SettingsRepository) LastDailyResetOp(date string) kv.Op {
	return kv.Put(LastDailyResetKey, date)
}
