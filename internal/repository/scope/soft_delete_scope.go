package scope

import "gorm.io/gorm"

// IncludeDeleted lifts gorm's soft-delete filter so tombstoned accounts are
// still visible to re-bootstrap and audit lookups.
func IncludeDeleted(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}
