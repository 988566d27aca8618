package devapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/louisbranch/yardconsole/internal/services/devapi/storage/sqlite"
)

type defaultSetting struct {
	SettingID   string `json:"settingId"`
	Value       string `json:"value"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
	CreatedAt   string `json:"createdAt"`
}

// defaultSettings back the console select inputs.
var defaultSettings = []defaultSetting{
	{SettingID: "yard_type", Value: "ESTATE", Description: "Estate"},
	{SettingID: "yard_type", Value: "YARD", Description: "Yard"},
	{SettingID: "utc_time", Value: "+07:00", Description: "WIB"},
	{SettingID: "utc_time", Value: "+08:00", Description: "WITA"},
	{SettingID: "utc_time", Value: "+09:00", Description: "WIT"},
	{SettingID: "source_loc", Value: "SAP", Description: "SAP master data"},
	{SettingID: "source_loc", Value: "LOCAL", Description: "Maintained in yard"},
	{SettingID: "scenario_cat", Value: "GATE", Description: "Gate scenarios"},
	{SettingID: "scenario_cat", Value: "YARD", Description: "Yard scenarios"},
}

// SeedDefaults inserts the default settings when none exist yet. It reports
// the number of records written.
func SeedDefaults(ctx context.Context, store Store, now time.Time) (int, error) {
	existing, err := store.List(ctx, "settings")
	if err != nil {
		return 0, fmt.Errorf("list settings: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	settings := defaultCollections()["settings"]
	now = now.UTC()
	for i, setting := range defaultSettings {
		setting.CreatedBy = defaultActor
		setting.CreatedAt = now.Format(time.RFC3339)
		body, err := json.Marshal(setting)
		if err != nil {
			return i, fmt.Errorf("encode setting: %w", err)
		}
		if _, err := store.Insert(ctx, sqlite.Record{
			Resource:  settings.name,
			Key:       settings.key(body),
			Body:      body,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return i, fmt.Errorf("insert setting %s/%s: %w", setting.SettingID, setting.Value, err)
		}
	}
	return len(defaultSettings), nil
}
