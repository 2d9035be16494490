// Package signature implements the keyed-hash authentication used by the
// inbound webhook and the poll trigger endpoint.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Header carries the request signature.
const Header = "X-Bookflow-Signature"

// Signer signs and verifies request payloads with HMAC-SHA256. The salt is
// mixed into the signed data so two deployments with the same secret still
// produce distinct signatures.
type Signer struct {
	secret []byte
	salt   string
}

// NewSigner creates a signer from the shared secret and salt.
func NewSigner(secret, salt string) *Signer {
	return &Signer{secret: []byte(secret), salt: salt}
}

// Sign returns the hex-encoded HMAC-SHA256 of "salt|data".
func (s *Signer) Sign(data string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(s.salt + "|" + data))

	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the header value matches the expected signature for
// data. Comparison is constant-time.
func (s *Signer) Verify(data, headerValue string) bool {
	if headerValue == "" {
		return false
	}

	return hmac.Equal([]byte(s.Sign(data)), []byte(headerValue))
}
