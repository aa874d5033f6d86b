package events

import "time"

// Event types published on the bus.
const (
	TypeLedgerInconsistency = "LEDGER_INCONSISTENCY"
	TypeAccountFlagged      = "ACCOUNT_FLAGGED"
	TypeAccountBanned       = "ACCOUNT_BANNED"
	TypeAccountUnbanned     = "ACCOUNT_UNBANNED"
	TypeRoleChanged         = "ACCOUNT_ROLE_CHANGED"
	TypeCreditsAdjusted     = "CREDITS_ADJUSTED"
	TypeTopUpSettled        = "TOPUP_SETTLED"
	TypeToolConfigUpdated   = "TOOL_CONFIG_UPDATED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "LEDGER_INCONSISTENCY").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
