package client

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns the exp claim of a JWT without verifying its
// signature. A token without exp yields the zero time.
func TokenExpiry(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// ExpiresWithin reports whether token expires before now+window. Opaque or
// exp-less tokens never do.
func ExpiresWithin(token string, now time.Time, window time.Duration) bool {
	exp, err := TokenExpiry(token)
	if err != nil || exp.IsZero() {
		return false
	}
	return !exp.After(now.Add(window))
}
