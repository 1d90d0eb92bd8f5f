package tagstore

import (
	"tagsmith/internal/tagsheet"
)

// Field is a tri-state cell update: untouched, set to a value, or
// cleared. A cleared field falls back to the default row on the next
// resolve, which is distinct from a field the patch never mentions.
type Field struct {
	set   bool
	clear bool
	value string
}

// SetValue marks the field to be written with the given cell text.
func SetValue(text string) Field {
	return Field{set: true, value: text}
}

// SetBool marks a boolean field using the sheet's TRUE/FALSE convention.
func SetBool(v bool) Field {
	return SetValue(tagsheet.FormatBool(v))
}

// SetDuration marks a duration field with its canonical textual form.
func SetDuration(d tagsheet.Duration) Field {
	return SetValue(d.String())
}

// SetNumber marks a numeric field.
func SetNumber(v float64) Field {
	return SetValue(tagsheet.FormatFloat(v))
}

// Clear marks the field to be blanked so it inherits the default.
func Clear() Field {
	return Field{set: true, clear: true}
}

// Touched reports whether the patch mentions this field at all.
func (f Field) Touched() bool { return f.set }

// Cleared reports whether the field should be blanked.
func (f Field) Cleared() bool { return f.clear }

// Value returns the cell text to write; empty for cleared fields.
func (f Field) Value() string {
	if f.clear {
		return ""
	}
	return f.value
}

// Patch describes a partial update for one tag. Untouched fields and all
// other rows are left exactly as stored.
type Patch struct {
	Enabled                  Field
	MarkersEnabled           Field
	RequiredSceneTagDuration Field
	MinMarkerDuration        Field
	MaxGap                   Field
}

// IsZero reports whether the patch touches nothing.
func (p Patch) IsZero() bool {
	return !p.Enabled.Touched() &&
		!p.MarkersEnabled.Touched() &&
		!p.RequiredSceneTagDuration.Touched() &&
		!p.MinMarkerDuration.Touched() &&
		!p.MaxGap.Touched()
}

func (p Patch) fields() []patchField {
	return []patchField{
		{tagsheet.ColEnabled, p.Enabled},
		{tagsheet.ColMarkersEnabled, p.MarkersEnabled},
		{tagsheet.ColRequiredSceneTagDuration, p.RequiredSceneTagDuration},
		{tagsheet.ColMinMarkerDuration, p.MinMarkerDuration},
		{tagsheet.ColMaxGap, p.MaxGap},
	}
}

type patchField struct {
	column string
	field  Field
}

// Change records one persisted cell mutation, used for logging and the
// audit history.
type Change struct {
	Tag     string
	Field   string
	Old     string
	New     string
	Created bool
}
