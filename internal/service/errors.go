package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInsufficientCredits    = errors.New("insufficient credits")
	ErrRateLimited            = errors.New("rate limited")
	ErrAccountBanned          = errors.New("account is not allowed to generate content")
	ErrGenerationUpstream     = errors.New("content generation failed, please try again")
	ErrGenerationCancelled    = errors.New("generation cancelled")
	ErrLedgerInconsistency    = errors.New("ledger inconsistency: generation could not be billed")
	ErrRiskCheckUnavailable   = errors.New("risk check unavailable")
	ErrAccountNotFound        = errors.New("account not found")
	ErrUnknownTool            = errors.New("unknown tool")
	ErrToolDisabled           = errors.New("tool is disabled")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("transaction type not allowed for this operation")
	ErrGenerationNotFound     = errors.New("generation not found")
	ErrGenerationNotRetryable = errors.New("only failed generations can be retried")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrOrderNotFound          = errors.New("top-up order not found")
	ErrInvalidRating          = errors.New("rating must be between 1 and 5")
)

// InsufficientCreditsError carries the numbers behind a top-up prompt.
type InsufficientCreditsError struct {
	Required  int
	Available int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required %d, available %d", e.Required, e.Available)
}

func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}

type RateLimitedError struct {
	Tool       string
	Window     string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited on %s (%s window), retry after %s", e.Tool, e.Window, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// LedgerInconsistencyError records why a successful generation could not be
// billed. It does not unwrap to Cause, so it never matches ErrInsufficientCredits.
type LedgerInconsistencyError struct {
	Cause error
}

func (e *LedgerInconsistencyError) Error() string {
	return ErrLedgerInconsistency.Error() + ": " + e.Cause.Error()
}

func (e *LedgerInconsistencyError) Is(target error) bool {
	return target == ErrLedgerInconsistency
}

const pgCheckViolation = "23514"

// isBalanceCheckViolation reports whether err is the database refusing a
// negative balance.
func isBalanceCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCheckViolation && pgErr.ConstraintName == "chk_accounts_credits_non_negative"
	}
	return false
}
