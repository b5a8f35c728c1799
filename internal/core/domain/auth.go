package domain

import "time"

// TokenClaims represents the JWT payload accepted by the serve endpoints.
type TokenClaims struct {
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// NewTokenClaims creates claims for subject valid for ttl from now.
// A zero ttl yields a token without expiry.
func NewTokenClaims(subject string, now time.Time, ttl time.Duration) *TokenClaims {
	c := &TokenClaims{
		Subject:  subject,
		IssuedAt: now.Unix(),
	}
	if ttl > 0 {
		c.ExpiresAt = now.Add(ttl).Unix()
	}
	return c
}

// IsExpired checks if the token has expired at t
func (c *TokenClaims) IsExpired(t time.Time) bool {
	return c.ExpiresAt != 0 && t.Unix() >= c.ExpiresAt
}
