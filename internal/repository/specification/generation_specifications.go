package specification

import (
	"time"

	"gorm.io/gorm"
)

// CacheCandidate narrows generations to completed rows matching a fingerprint
// for one tool. Newest first, so First() returns the latest completion.
type CacheCandidate struct {
	InputHash string
	ToolName  string
}

func (s CacheCandidate) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("input_hash = ? AND tool_name = ? AND status = ?", s.InputHash, s.ToolName, "completed").
		Order("completed_at DESC").
		Order("created_at DESC")
}

type ByToolName struct {
	ToolName string
}

func (s ByToolName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tool_name = ?", s.ToolName)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByProjectRef struct {
	ProjectRef string
}

func (s ByProjectRef) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("project_ref = ?", s.ProjectRef)
}

// CreatedSince keeps rows created at or after Since.
type CreatedSince struct {
	Since time.Time
}

func (s CreatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Since)
}

// ChargeableAttempts counts rows that consumed a rate-limit slot: anything
// not failed before reaching the upstream call.
type ChargeableAttempts struct{}

func (s ChargeableAttempts) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", []string{"pending", "processing", "completed"})
}
