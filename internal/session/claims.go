package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt reports the expiry claim of the current token, when the token is
// a JWT carrying one. The claim is read without signature verification and is
// informational only; the backend remains the authority on validity.
func (s *Store) ExpiresAt() (time.Time, bool) {
	claims, ok := s.peekClaims()
	if !ok {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// ViewerHint reports the subject claim of the current token, typically the
// viewer's user id, without signature verification.
func (s *Store) ViewerHint() (string, bool) {
	claims, ok := s.peekClaims()
	if !ok {
		return "", false
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

func (s *Store) peekClaims() (jwt.MapClaims, bool) {
	token, ok := s.Token()
	if !ok {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
