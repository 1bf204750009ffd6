package domain

// FieldType is the kind of value a field holds
type FieldType string

const (
	FieldTypeText   FieldType = "TEXT"
	FieldTypeNumber FieldType = "NUMBER"
)

// IsValid checks if the field type is supported
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber:
		return true
	default:
		return false
	}
}

// MetafieldValueType returns the Admin API valueType used to store values of this field type.
// Numbers are stored as strings too so decimals round-trip unchanged.
func (t FieldType) MetafieldValueType() string {
	return "STRING"
}

// SyncState is the state of a product metafield submission
type SyncState string

const (
	SyncStateIdle       SyncState = "IDLE"
	SyncStateSubmitting SyncState = "SUBMITTING"
	SyncStateSucceeded  SyncState = "SUCCEEDED"
	SyncStateFailed     SyncState = "FAILED"
)

// CanTransitionTo checks if a sync state transition is valid
func (s SyncState) CanTransitionTo(next SyncState) bool {
	switch s {
	case SyncStateIdle:
		return next == SyncStateSubmitting
	case SyncStateSubmitting:
		return next == SyncStateSucceeded || next == SyncStateFailed
	case SyncStateSucceeded, SyncStateFailed:
		return next == SyncStateIdle
	default:
		return false
	}
}
