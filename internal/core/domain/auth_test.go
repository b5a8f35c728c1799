package domain

import (
	"testing"
	"time"
)

func TestNewTokenClaims(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	c := NewTokenClaims("ops", now, time.Hour)

	if c.Subject != "ops" {
		t.Errorf("expected subject ops, got %s", c.Subject)
	}
	if c.IssuedAt != now.Unix() {
		t.Errorf("expected iat %d, got %d", now.Unix(), c.IssuedAt)
	}
	if c.ExpiresAt != now.Add(time.Hour).Unix() {
		t.Errorf("expected exp %d, got %d", now.Add(time.Hour).Unix(), c.ExpiresAt)
	}
}

func TestTokenClaims_IsExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		claims *TokenClaims
		at     time.Time
		want   bool
	}{
		{"valid", NewTokenClaims("ops", now, time.Hour), now.Add(59 * time.Minute), false},
		{"at expiry", NewTokenClaims("ops", now, time.Hour), now.Add(time.Hour), true},
		{"after expiry", NewTokenClaims("ops", now, time.Hour), now.Add(2 * time.Hour), true},
		{"no expiry", NewTokenClaims("ops", now, 0), now.Add(24 * 365 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.claims.IsExpired(tt.at); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}
