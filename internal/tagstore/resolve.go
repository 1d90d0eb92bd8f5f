package tagstore

import (
	"tagsmith/internal/tagsheet"
)

// EffectiveSettings is the fully resolved configuration for one tag:
// every blank row field replaced by the default row's value, or absent
// when neither side sets it.
type EffectiveSettings struct {
	Tag                      string
	Category                 string
	Enabled                  bool
	MarkersEnabled           bool
	RequiredSceneTagDuration *tagsheet.Duration
	MinMarkerDuration        *float64
	MaxGap                   *float64
}

// Resolve combines a tag row with the default row. Either argument may be
// nil: a nil row resolves purely from defaults, and a nil default leaves
// unset fields absent. Boolean fields default to true when neither side
// has a recognized token. Pure function; the store calls it against a
// snapshot.
func Resolve(row *tagsheet.TagRow, def *tagsheet.DefaultRow, name string) EffectiveSettings {
	settings := EffectiveSettings{
		Tag:            tagsheet.NormalizeName(name),
		Category:       tagsheet.DefaultCategory,
		Enabled:        true,
		MarkersEnabled: true,
	}
	if row != nil {
		settings.Tag = row.Key
		if row.Category != "" {
			settings.Category = row.Category
		}
	}

	settings.Enabled = resolveBool(rowEnabled(row), defEnabled(def), true)
	settings.MarkersEnabled = resolveBool(rowMarkers(row), defMarkers(def), true)

	if row != nil && row.RequiredSceneTagDuration != nil {
		settings.RequiredSceneTagDuration = row.RequiredSceneTagDuration
	} else if def != nil {
		settings.RequiredSceneTagDuration = def.RequiredSceneTagDuration
	}
	if row != nil && row.MinMarkerDuration != nil {
		settings.MinMarkerDuration = row.MinMarkerDuration
	} else if def != nil {
		settings.MinMarkerDuration = def.MinMarkerDuration
	}
	if row != nil && row.MaxGap != nil {
		settings.MaxGap = row.MaxGap
	} else if def != nil {
		settings.MaxGap = def.MaxGap
	}
	return settings
}

func resolveBool(row, def *bool, fallback bool) bool {
	if row != nil {
		return *row
	}
	if def != nil {
		return *def
	}
	return fallback
}

func rowEnabled(row *tagsheet.TagRow) *bool {
	if row == nil {
		return nil
	}
	return row.Enabled
}

func rowMarkers(row *tagsheet.TagRow) *bool {
	if row == nil {
		return nil
	}
	return row.MarkersEnabled
}

func defEnabled(def *tagsheet.DefaultRow) *bool {
	if def == nil {
		return nil
	}
	return def.Enabled
}

func defMarkers(def *tagsheet.DefaultRow) *bool {
	if def == nil {
		return nil
	}
	return def.MarkersEnabled
}
