package api

// TagSettings is the transport representation of one tag's effective
// settings. The "tag" key carries the normalized name; "name" repeats it
// for older consumers.
type TagSettings struct {
	Tag                      string   `json:"tag"`
	Name                     string   `json:"name"`
	Category                 string   `json:"category"`
	Enabled                  bool     `json:"enabled"`
	MarkersEnabled           bool     `json:"markers_enabled"`
	RequiredSceneTagDuration *string  `json:"required_scene_tag_duration"`
	MinMarkerDuration        *float64 `json:"min_marker_duration"`
	MaxGap                   *float64 `json:"max_gap"`
}

// ModelInfo describes a model the inference backend serves.
type ModelInfo struct {
	Name       string   `json:"name"`
	Identifier string   `json:"identifier"`
	Version    string   `json:"version"`
	Type       string   `json:"type"`
	Categories []string `json:"categories"`
}

// DefaultSettings echoes the raw default-row cells.
type DefaultSettings struct {
	RequiredSceneTagDuration string `json:"required_scene_tag_duration"`
	MinMarkerDuration        string `json:"min_marker_duration"`
	MaxGap                   string `json:"max_gap"`
	MarkersEnabled           bool   `json:"markers_enabled"`
}

// AvailableTagsResponse lists tags with their settings plus backend
// context.
type AvailableTagsResponse struct {
	Tags             []TagSettings   `json:"tags"`
	Models           []ModelInfo     `json:"models"`
	LoadedCategories []string        `json:"loaded_categories"`
	Defaults         DefaultSettings `json:"defaults"`
}

// StatusesResponse maps normalized tag names to their enabled flag.
type StatusesResponse struct {
	TagStatuses map[string]bool `json:"tag_statuses"`
	EnabledTags []string        `json:"enabled_tags"`
}

// StatusUpdateRequest updates enabled flags. Either the explicit map or
// the enable/disable lists may be used; when a tag appears in both lists,
// disabling wins.
type StatusUpdateRequest struct {
	TagStatuses  map[string]bool `json:"tag_statuses"`
	EnabledTags  []string        `json:"enabled_tags"`
	DisabledTags []string        `json:"disabled_tags"`
}

// UpdateResult reports the outcome of a settings write.
type UpdateResult struct {
	Status      string `json:"status"`
	Updated     int    `json:"updated"`
	OperationID string `json:"operation_id,omitempty"`
}

// HistoryEntry is one audit record of a settings change.
type HistoryEntry struct {
	ID          int64  `json:"id"`
	OperationID string `json:"operation_id"`
	Tag         string `json:"tag"`
	Field       string `json:"field"`
	OldValue    string `json:"old_value"`
	NewValue    string `json:"new_value"`
	CreatedRow  bool   `json:"created_row"`
	AppliedAt   string `json:"applied_at"`
}

// HistoryResponse wraps a list of audit records.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	SettingsPath string `json:"settings_path"`
	LockFilePath string `json:"lock_file_path"`
	TagCount     int    `json:"tag_count"`
	EnabledCount int    `json:"enabled_count"`
}
