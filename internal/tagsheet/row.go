package tagsheet

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Column names are a compatibility contract with the CSV source; do not
// rename them. ColTagLegacy is accepted on read only.
const (
	ColTagName                  = "tag_name"
	ColTagLegacy                = "tag"
	ColCategory                 = "category"
	ColEnabled                  = "enabled"
	ColMarkersEnabled           = "markers_enabled"
	ColRequiredSceneTagDuration = "RequiredSceneTagDuration"
	ColMinMarkerDuration        = "min_marker_duration"
	ColMaxGap                   = "max_gap"
)

// DefaultKey identifies the sentinel row that supplies fallback values.
const DefaultKey = "__default__"

// DefaultCategory is used when a tag row leaves the category blank.
const DefaultCategory = "Other"

var placeholderNames = map[string]struct{}{
	"*":       {},
	"default": {},
	"unused1": {},
	"unused2": {},
	"unused3": {},
	"unused4": {},
}

// NormalizeName produces the lookup key for a tag: trimmed and lowercased
// with Unicode-aware folding.
func NormalizeName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return cases.Lower(language.Und).String(trimmed)
}

// IsPlaceholder reports whether the normalized name is one of the filler
// tokens that never surface as taggable entries.
func IsPlaceholder(key string) bool {
	_, ok := placeholderNames[key]
	return ok
}

// IsDefaultKey reports whether the normalized name is the sentinel row key.
func IsDefaultKey(key string) bool {
	return key == DefaultKey
}

// ParseBool normalizes the accepted boolean spellings. True tokens are
// {1,true,yes,on}; false tokens are {0,false,no,off}; comparison is
// case-insensitive. Nil is returned for blanks and unrecognized tokens so
// the caller can fall through to a default.
func ParseBool(text string) *bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "true", "yes", "on":
		v := true
		return &v
	case "0", "false", "no", "off":
		v := false
		return &v
	default:
		return nil
	}
}

// BoolOrDefault resolves a boolean cell against a fallback value.
func BoolOrDefault(text string, fallback bool) bool {
	if v := ParseBool(text); v != nil {
		return *v
	}
	return fallback
}

// FormatBool renders a boolean in the sheet's TRUE/FALSE convention.
func FormatBool(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

// TagRow is the typed view of one tag entry. Pointer fields are nil when
// the cell is blank or failed to parse; resolution falls back to the
// default row for those.
type TagRow struct {
	Name                     string
	Key                      string
	Category                 string
	Enabled                  *bool
	MarkersEnabled           *bool
	RequiredSceneTagDuration *Duration
	MinMarkerDuration        *float64
	MaxGap                   *float64
}

// DefaultRow carries the sentinel row's fallback values. It has no name
// or category; categories never inherit.
type DefaultRow struct {
	Enabled                  *bool
	MarkersEnabled           *bool
	RequiredSceneTagDuration *Duration
	MinMarkerDuration        *float64
	MaxGap                   *float64
}

func parseFloatCell(text string) *float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return &value
}

func parseDurationCell(text string) *Duration {
	d, err := ParseDuration(text)
	if err != nil {
		return nil
	}
	return d
}

// FormatFloat renders a numeric cell without trailing zeros.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
