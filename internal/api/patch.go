package api

import (
	"encoding/json"
	"fmt"
	"strconv"

	"tagsmith/internal/tagsheet"
	"tagsmith/internal/tagstore"
)

// SettingsPatch is a partial settings update for one tag. JSON keys that
// are absent leave the stored cell alone; keys set to null clear the cell
// so it inherits the default row again.
type SettingsPatch struct {
	fields map[string]json.RawMessage
}

// SettingsUpdateRequest carries per-tag partial updates keyed by tag name.
type SettingsUpdateRequest struct {
	Tags map[string]SettingsPatch `json:"tags"`
}

var settingsPatchKeys = map[string]struct{}{
	"enabled":                     {},
	"markers_enabled":             {},
	"required_scene_tag_duration": {},
	"min_marker_duration":         {},
	"max_gap":                     {},
}

// UnmarshalJSON keeps raw values so absent and null keys stay
// distinguishable.
func (p *SettingsPatch) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if _, ok := settingsPatchKeys[key]; !ok {
			return fmt.Errorf("unknown settings field %q", key)
		}
	}
	p.fields = raw
	return nil
}

// Patch validates the raw values and converts them to a store patch.
func (p SettingsPatch) Patch() (tagstore.Patch, error) {
	var patch tagstore.Patch

	if field, ok, err := p.boolField("enabled"); err != nil {
		return tagstore.Patch{}, err
	} else if ok {
		patch.Enabled = field
	}
	if field, ok, err := p.boolField("markers_enabled"); err != nil {
		return tagstore.Patch{}, err
	} else if ok {
		patch.MarkersEnabled = field
	}
	if field, ok, err := p.durationField("required_scene_tag_duration"); err != nil {
		return tagstore.Patch{}, err
	} else if ok {
		patch.RequiredSceneTagDuration = field
	}
	if field, ok, err := p.numberField("min_marker_duration"); err != nil {
		return tagstore.Patch{}, err
	} else if ok {
		patch.MinMarkerDuration = field
	}
	if field, ok, err := p.numberField("max_gap"); err != nil {
		return tagstore.Patch{}, err
	} else if ok {
		patch.MaxGap = field
	}
	return patch, nil
}

func (p SettingsPatch) raw(key string) (json.RawMessage, bool) {
	value, ok := p.fields[key]
	return value, ok
}

func (p SettingsPatch) boolField(key string) (tagstore.Field, bool, error) {
	raw, ok := p.raw(key)
	if !ok {
		return tagstore.Field{}, false, nil
	}
	if isNull(raw) {
		return tagstore.Clear(), true, nil
	}
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return tagstore.Field{}, false, fmt.Errorf("%s must be a boolean or null", key)
	}
	return tagstore.SetBool(value), true, nil
}

// durationField accepts a string ("35", "35%", "15s") or a bare number of
// seconds.
func (p SettingsPatch) durationField(key string) (tagstore.Field, bool, error) {
	raw, ok := p.raw(key)
	if !ok {
		return tagstore.Field{}, false, nil
	}
	if isNull(raw) {
		return tagstore.Clear(), true, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var number float64
		if err := json.Unmarshal(raw, &number); err != nil {
			return tagstore.Field{}, false, fmt.Errorf("%s must be a string, number, or null", key)
		}
		text = strconv.FormatFloat(number, 'f', -1, 64)
	}

	duration, err := tagsheet.ParseDuration(text)
	if err != nil {
		return tagstore.Field{}, false, fmt.Errorf("%s: %v", key, err)
	}
	if duration == nil {
		return tagstore.Clear(), true, nil
	}
	return tagstore.SetDuration(*duration), true, nil
}

func (p SettingsPatch) numberField(key string) (tagstore.Field, bool, error) {
	raw, ok := p.raw(key)
	if !ok {
		return tagstore.Field{}, false, nil
	}
	if isNull(raw) {
		return tagstore.Clear(), true, nil
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return tagstore.Field{}, false, fmt.Errorf("%s must be a number or null", key)
	}
	return tagstore.SetNumber(value), true, nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// StorePatches converts the request into store patches, reporting the
// first invalid field.
func (r SettingsUpdateRequest) StorePatches() (map[string]tagstore.Patch, error) {
	patches := make(map[string]tagstore.Patch, len(r.Tags))
	for name, patch := range r.Tags {
		converted, err := patch.Patch()
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", name, err)
		}
		patches[name] = converted
	}
	return patches, nil
}

// StatusPatches flattens a status update request into a name->enabled
// map. Explicit tag_statuses entries are applied first, then enables,
// then disables, so a tag in both lists ends up disabled.
func (r StatusUpdateRequest) StatusPatches() map[string]bool {
	statuses := make(map[string]bool, len(r.TagStatuses)+len(r.EnabledTags)+len(r.DisabledTags))
	for name, enabled := range r.TagStatuses {
		statuses[name] = enabled
	}
	for _, name := range r.EnabledTags {
		statuses[name] = true
	}
	for _, name := range r.DisabledTags {
		statuses[name] = false
	}
	return statuses
}
