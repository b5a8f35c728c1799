package driven

import "github.com/custodia-labs/unleashed-sync/internal/core/domain"

// TokenAdapter signs and verifies the bearer tokens of the serve endpoints.
type TokenAdapter interface {
	GenerateToken(claims *domain.TokenClaims) (string, error)

	// ParseToken returns domain.ErrTokenExpired or domain.ErrInvalidToken
	// when the token is not acceptable.
	ParseToken(token string) (*domain.TokenClaims, error)
}
