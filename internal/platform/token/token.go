// Package token issues and verifies the signed identity tokens used for
// logins and email-confirmation links. Tokens are stateless HS256 JWTs with a
// fixed expiry; there is no revocation list.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ayeola05/IntegratedCareServer/internal/platform/httperr"
)

// DefaultTTL is the token lifetime used when none is configured. 72h sits in
// the middle of the acceptable short-lived range.
const DefaultTTL = 72 * time.Hour

type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue produces a signed token whose subject is the given id.
func (s *Service) Issue(subjectID uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses a token string and returns the embedded subject id. Any
// signature, format, or expiry failure surfaces as one authentication error
// so callers cannot distinguish the cases.
func (s *Service) Verify(raw string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !parsed.Valid {
		return uuid.Nil, httperr.Authentication("invalid or expired token")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, httperr.Authentication("invalid or expired token")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, httperr.Authentication("invalid or expired token")
	}
	return id, nil
}
