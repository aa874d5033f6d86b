package entity

import (
	"time"

	"github.com/google/uuid"
)

type AccountRole string

const (
	AccountRoleUser       AccountRole = "user"
	AccountRoleSupport    AccountRole = "support"
	AccountRoleAdmin      AccountRole = "admin"
	AccountRoleSuperAdmin AccountRole = "super_admin"
)

var roleRank = map[AccountRole]int{
	AccountRoleUser:       0,
	AccountRoleSupport:    1,
	AccountRoleAdmin:      2,
	AccountRoleSuperAdmin: 3,
}

// Valid reports whether r is one of the known roles.
func (r AccountRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants every permission of min.
func (r AccountRole) AtLeast(min AccountRole) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	return rank >= roleRank[min]
}

// Account is the billing identity of a user. Credits is a cached column that
// only the ledger mutates; it always equals the sum of the account's transactions.
type Account struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	Role      AccountRole
	Credits   int
	IsBanned  bool
	BanReason *string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func (a *Account) IsDeleted() bool {
	return a.DeletedAt != nil
}
