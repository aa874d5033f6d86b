package nats

import (
	"encoding/json"
	"testing"
	"time"

	"ai-contentgen-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "contentgen.ledger_inconsistency", Subject(events.TypeLedgerInconsistency))
}

func TestDecodeEnvelope(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(envelope{
		Type:       events.TypeTopUpSettled,
		OccurredAt: at,
		Data:       map[string]interface{}{"credits": 50},
	})
	require.NoError(t, err)

	evt, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, events.TypeTopUpSettled, evt.EventType())
	assert.True(t, at.Equal(evt.Timestamp()))
	assert.EqualValues(t, 50, evt.Payload()["credits"])

	_, err = Decode([]byte("not json"))
	assert.Error(t, err)
}
