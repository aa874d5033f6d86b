package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Account Management ---

type AdminAccountListRequest struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Search string `query:"search"`
	Role   string `query:"role" validate:"omitempty,oneof=user support admin super_admin"`
	Banned string `query:"banned" validate:"omitempty,oneof=true false"`
}

type AdminAccountResponse struct {
	Id        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	Credits   int        `json:"credits"`
	IsBanned  bool       `json:"is_banned"`
	BanReason *string    `json:"ban_reason,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type BanAccountRequest struct {
	Banned bool   `json:"banned"`
	Reason string `json:"reason" validate:"required_if=Banned true,max=500"`
}

type ChangeRoleRequest struct {
	Role   string `json:"role" validate:"required,oneof=user support admin super_admin"`
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type DeleteAccountRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// --- Credits ---

type AdminCreditRequest struct {
	Amount       int        `json:"amount" validate:"required,min=1,max=1000000"`
	Type         string     `json:"type" validate:"omitempty,oneof=bonus adjustment refund"`
	GenerationId *uuid.UUID `json:"generation_id,omitempty"`
	Reason       string     `json:"reason" validate:"required,max=500"`
}

type AdminCreditResponse struct {
	TransactionId uuid.UUID `json:"transaction_id"`
	AccountId     uuid.UUID `json:"account_id"`
	Amount        int       `json:"amount"`
	Type          string    `json:"type"`
	BalanceAfter  int       `json:"balance_after"`
}

type CreditStatsResponse struct {
	TotalIssued      int64 `json:"total_issued"`
	TotalPurchased   int64 `json:"total_purchased"`
	TotalBonus       int64 `json:"total_bonus"`
	TotalUsed        int64 `json:"total_used"`
	TotalRefunded    int64 `json:"total_refunded"`
	TotalAdjustments int64 `json:"total_adjustments"`
	TransactionCount int64 `json:"transaction_count"`
}

type BalanceDriftResponse struct {
	AccountId    uuid.UUID `json:"account_id"`
	Cached       int       `json:"cached"`
	LedgerSum    int64     `json:"ledger_sum"`
	Transactions int64     `json:"transactions"`
}

// --- Dashboard ---

type DashboardStatsResponse struct {
	TotalAccounts     int64                   `json:"total_accounts"`
	BannedAccounts    int64                   `json:"banned_accounts"`
	Generations       GenerationStatsResponse `json:"generations"`
	Credits           CreditStatsResponse     `json:"credits"`
	GenerationsToday  int64                   `json:"generations_today"`
	CacheHitsToday    int64                   `json:"cache_hits_today"`
	CacheMissesToday  int64                   `json:"cache_misses_today"`
	TokensUsedToday   int64                   `json:"tokens_used_today"`
	RecentGenerations []GenerationResponse    `json:"recent_generations"`
}

type UsageStatResponse struct {
	AccountId        uuid.UUID `json:"account_id"`
	StatDate         string    `json:"stat_date"`
	GenerationsCount int64     `json:"generations_count"`
	TokensUsed       int64     `json:"tokens_used"`
	CacheHits        int64     `json:"cache_hits"`
	CacheMisses      int64     `json:"cache_misses"`
}

type UsageListRequest struct {
	AccountId string `query:"account_id" validate:"omitempty,uuid"`
	From      string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// --- Audit & Logs ---

type AuditListRequest struct {
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
	ActorId    string `query:"actor_id" validate:"omitempty,uuid"`
	Action     string `query:"action"`
	EntityType string `query:"entity_type"`
	EntityId   string `query:"entity_id"`
	From       string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To         string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type AuditLogResponse struct {
	Id          uuid.UUID              `json:"id"`
	ActorId     *uuid.UUID             `json:"actor_id,omitempty"`
	Action      string                 `json:"action"`
	EntityType  string                 `json:"entity_type"`
	EntityId    string                 `json:"entity_id"`
	BeforeState map[string]interface{} `json:"before_state,omitempty"`
	AfterState  map[string]interface{} `json:"after_state,omitempty"`
	Reason      string                 `json:"reason,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

type IncidentLogRequest struct {
	Level string `query:"level"`
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
}
