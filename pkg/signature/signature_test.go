package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignIsDeterministic(t *testing.T) {
	s := NewSigner("secret", "salt")

	assert.Equal(t, s.Sign("company-1"), s.Sign("company-1"))
	assert.NotEqual(t, s.Sign("company-1"), s.Sign("company-2"))
}

func TestSaltChangesSignature(t *testing.T) {
	a := NewSigner("secret", "salt-a")
	b := NewSigner("secret", "salt-b")

	assert.NotEqual(t, a.Sign("company-1"), b.Sign("company-1"))
}

func TestVerify(t *testing.T) {
	s := NewSigner("secret", "salt")

	assert.True(t, s.Verify("company-1", s.Sign("company-1")))
	assert.False(t, s.Verify("company-1", s.Sign("company-2")))
	assert.False(t, s.Verify("company-1", "deadbeef"))
	assert.False(t, s.Verify("company-1", ""))
}
