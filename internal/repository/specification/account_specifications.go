package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type ByRole struct {
	Role string
}

func (s ByRole) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("role = ?", s.Role)
}

type BannedAccounts struct {
	Banned bool
}

func (s BannedAccounts) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_banned = ?", s.Banned)
}

// AccountSearch matches email or full name, case-insensitively.
type AccountSearch struct {
	Query string
}

func (s AccountSearch) Apply(db *gorm.DB) *gorm.DB {
	if s.Query == "" {
		return db
	}
	like := "%" + s.Query + "%"
	return db.Where("LOWER(email) LIKE LOWER(?) OR LOWER(full_name) LIKE LOWER(?)", like, like)
}

// OwnedByAccount filters rows by their account_id column.
type OwnedByAccount struct {
	AccountID uuid.UUID
}

func (s OwnedByAccount) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("account_id = ?", s.AccountID)
}
