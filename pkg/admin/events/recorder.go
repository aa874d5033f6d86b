package events

import (
	"context"
	"sync"
	"time"

	pkgEvents "ai-contentgen-be/pkg/events"

	"github.com/google/uuid"
)

// Recorded is one call captured by a Recorder.
type Recorded struct {
	Type      string
	AccountId uuid.UUID
	Detail    map[string]interface{}
}

// Recorder is an in-memory Publisher for tests and for running without a bus.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(t string, accountId uuid.UUID, detail map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Type: t, AccountId: accountId, Detail: detail})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}

// Count returns how many events of type t were recorded.
func (r *Recorder) Count(t string) int {
	n := 0
	for _, e := range r.Events() {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (r *Recorder) PublishLedgerInconsistency(_ context.Context, accountId, generationId uuid.UUID, toolName string, cost int, cause string) {
	r.add(pkgEvents.TypeLedgerInconsistency, accountId, map[string]interface{}{"generation_id": generationId, "tool_name": toolName, "cost": cost, "cause": cause})
}

func (r *Recorder) PublishAccountFlagged(_ context.Context, accountId uuid.UUID, toolName, window string, retryAfter time.Duration) {
	r.add(pkgEvents.TypeAccountFlagged, accountId, map[string]interface{}{"tool_name": toolName, "window": window, "retry_after": retryAfter})
}

func (r *Recorder) PublishAccountBanned(_ context.Context, accountId, actorId uuid.UUID, banned bool) {
	t := pkgEvents.TypeAccountBanned
	if !banned {
		t = pkgEvents.TypeAccountUnbanned
	}
	r.add(t, accountId, map[string]interface{}{"actor_id": actorId})
}

func (r *Recorder) PublishRoleChanged(_ context.Context, accountId, actorId uuid.UUID, oldRole, newRole string) {
	r.add(pkgEvents.TypeRoleChanged, accountId, map[string]interface{}{"actor_id": actorId, "old_role": oldRole, "new_role": newRole})
}

func (r *Recorder) PublishCreditsAdjusted(_ context.Context, accountId, actorId uuid.UUID, amount, balanceAfter int, txType string) {
	r.add(pkgEvents.TypeCreditsAdjusted, accountId, map[string]interface{}{"actor_id": actorId, "amount": amount, "balance_after": balanceAfter, "type": txType})
}

func (r *Recorder) PublishTopUpSettled(_ context.Context, orderId, accountId uuid.UUID, credits int, grossAmount int64) {
	r.add(pkgEvents.TypeTopUpSettled, accountId, map[string]interface{}{"order_id": orderId, "credits": credits, "gross_amount": grossAmount})
}

func (r *Recorder) PublishToolConfigUpdated(_ context.Context, toolName string, actorId uuid.UUID, changed []string) {
	r.add(pkgEvents.TypeToolConfigUpdated, uuid.Nil, map[string]interface{}{"tool_name": toolName, "actor_id": actorId, "changed": changed})
}
