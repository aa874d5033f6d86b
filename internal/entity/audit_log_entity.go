package entity

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditActionCreate            AuditAction = "create"
	AuditActionUpdate            AuditAction = "update"
	AuditActionDelete            AuditAction = "delete"
	AuditActionLogin             AuditAction = "login"
	AuditActionLogout            AuditAction = "logout"
	AuditActionGeneration        AuditAction = "generation"
	AuditActionCreditTransaction AuditAction = "credit_transaction"
	AuditActionBan               AuditAction = "ban"
	AuditActionUnban             AuditAction = "unban"
	AuditActionRoleChange        AuditAction = "role_change"
)

const (
	AuditEntityAccount     = "account"
	AuditEntityGeneration  = "generation"
	AuditEntityToolConfig  = "tool_config"
	AuditEntityTransaction = "credit_transaction"
)

// Snapshot holds the pre- or post-image of only the fields a mutation touched.
type Snapshot map[string]interface{}

// AuditLog is append-only. ActorId is nil for system actions. EntityId is a
// loose reference so entries outlive the entity they describe.
type AuditLog struct {
	Id          uuid.UUID
	ActorId     *uuid.UUID
	Action      AuditAction
	EntityType  string
	EntityId    string
	BeforeState Snapshot
	AfterState  Snapshot
	Reason      string
	CreatedAt   time.Time
}
