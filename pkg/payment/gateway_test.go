package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	sig := Signature("order-1", "200", "10000.00", "server-key")

	assert.Len(t, sig, 128)
	assert.True(t, VerifySignature("order-1", "200", "10000.00", "server-key", sig))
	assert.False(t, VerifySignature("order-1", "200", "10001.00", "server-key", sig))
	assert.False(t, VerifySignature("order-1", "200", "10000.00", "other-key", sig))
	assert.False(t, VerifySignature("order-1", "200", "10000.00", "", sig))
	assert.False(t, VerifySignature("order-1", "200", "10000.00", "server-key", ""))
}
