package unleashed

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Signer computes the api-auth-signature header.
// The signature covers the raw query string only; method, path and body
// are not part of it.
type Signer struct {
	key []byte
}

// NewSigner creates a signer for the given API key.
func NewSigner(apiKey string) *Signer {
	return &Signer{key: []byte(apiKey)}
}

// Sign returns base64(HMAC-SHA256(key, query)) using the standard alphabet.
// query is the text after "?" and is empty when the URL has none.
func (s *Signer) Sign(query string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(query))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
