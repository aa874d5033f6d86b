package entity

import (
	"time"

	"github.com/google/uuid"
)

// UsageStat is a per-account, per-day counter row.
type UsageStat struct {
	Id               uuid.UUID
	AccountId        uuid.UUID
	StatDate         string // YYYY-MM-DD, UTC
	GenerationsCount int
	TokensUsed       int
	CacheHits        int
	CacheMisses      int
	UpdatedAt        time.Time
}
