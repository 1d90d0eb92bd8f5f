package logging

// Standardized attribute keys shared across components.
const (
	FieldComponent   = "component"
	FieldEventType   = "event_type"
	FieldErrorHint   = "error_hint"
	FieldImpact      = "impact"
	FieldOperationID = "operation_id"
	FieldTag         = "tag"
)
