package specification

import "gorm.io/gorm"

// StatDateBetween bounds usage rows by their YYYY-MM-DD date, inclusive.
// Empty ends are open.
type StatDateBetween struct {
	From string
	To   string
}

func (s StatDateBetween) Apply(db *gorm.DB) *gorm.DB {
	if s.From != "" {
		db = db.Where("stat_date >= ?", s.From)
	}
	if s.To != "" {
		db = db.Where("stat_date <= ?", s.To)
	}
	return db
}

type ByTopUpStatus struct {
	Status string
}

func (s ByTopUpStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
