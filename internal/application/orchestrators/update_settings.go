package orchestrators

import (
	"context"
	"log/slog"

	"clubhouse/internal/application/syncstore"
	"clubhouse/internal/domain/settings"
)

// SettingsDeps holds dependencies for the settings orchestrator.
type SettingsDeps struct {
	Settings *syncstore.Store
}

// ExecuteUpdateSettings validates and replaces the club configuration.
// POST: The singleton record is replaced wholesale; there is no partial
// update
func ExecuteUpdateSettings(ctx context.Context, updated settings.Settings, deps SettingsDeps) (settings.Settings, error) {
	if err := updated.Validate(); err != nil {
		return settings.Settings{}, err
	}
	if err := deps.Settings.SetData(ctx, updated); err != nil {
		return settings.Settings{}, err
	}
	slog.Info("settings_updated", "club_name", updated.ClubName)
	return updated, nil
}
