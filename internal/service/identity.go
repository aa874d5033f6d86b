package service

import (
	"ai-contentgen-be/internal/entity"

	"github.com/google/uuid"
)

// Identity is the caller as the identity provider resolved it. The
// orchestrator trusts it as given.
type Identity struct {
	AccountId uuid.UUID
	Role      entity.AccountRole
	IsBanned  bool
}
