package api

import (
	"time"

	"tagsmith/internal/history"
	"tagsmith/internal/inference"
	"tagsmith/internal/tagstore"
)

// FromEffectiveSettings converts resolved settings to the wire format.
// displayName carries the case-preserved sheet spelling.
func FromEffectiveSettings(settings tagstore.EffectiveSettings, displayName string) TagSettings {
	if displayName == "" {
		displayName = settings.Tag
	}
	out := TagSettings{
		Tag:               settings.Tag,
		Name:              displayName,
		Category:          settings.Category,
		Enabled:           settings.Enabled,
		MarkersEnabled:    settings.MarkersEnabled,
		MinMarkerDuration: settings.MinMarkerDuration,
		MaxGap:            settings.MaxGap,
	}
	if settings.RequiredSceneTagDuration != nil {
		text := settings.RequiredSceneTagDuration.String()
		out.RequiredSceneTagDuration = &text
	}
	return out
}

// FromDefaults converts the store's default-row echo.
func FromDefaults(defaults tagstore.Defaults) DefaultSettings {
	return DefaultSettings{
		RequiredSceneTagDuration: defaults.RequiredSceneTagDuration,
		MinMarkerDuration:        defaults.MinMarkerDuration,
		MaxGap:                   defaults.MaxGap,
		MarkersEnabled:           defaults.MarkersEnabled,
	}
}

// FromModelInfo converts inference model metadata.
func FromModelInfo(models []inference.ModelInfo) []ModelInfo {
	if len(models) == 0 {
		return []ModelInfo{}
	}
	out := make([]ModelInfo, 0, len(models))
	for _, model := range models {
		out = append(out, ModelInfo{
			Name:       model.Name,
			Identifier: model.Identifier,
			Version:    model.Version,
			Type:       model.Type,
			Categories: model.Categories,
		})
	}
	return out
}

// FromHistoryEntries converts audit records.
func FromHistoryEntries(entries []history.Entry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		converted := HistoryEntry{
			ID:          entry.ID,
			OperationID: entry.OperationID,
			Tag:         entry.Tag,
			Field:       entry.Field,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			CreatedRow:  entry.CreatedRow,
		}
		if !entry.AppliedAt.IsZero() {
			converted.AppliedAt = entry.AppliedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, converted)
	}
	return out
}
