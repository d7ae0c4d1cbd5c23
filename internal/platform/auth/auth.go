// Package auth binds an authenticated Subject to the request context. The
// subject is an explicit discriminated value (patient or practitioner), not an
// ambient user object, and role gating matches on it rather than sniffing for
// fields.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// Role discriminates the two classes of authenticated subjects.
type Role string

const (
	RolePatient      Role = "patient"
	RolePractitioner Role = "practitioner"
)

// Subject is an authenticated patient or practitioner bound to a request.
// It never carries the password hash.
type Subject struct {
	ID        uuid.UUID
	Role      Role
	FirstName string
	LastName  string
	Email     string
	Confirmed bool

	// PatientNumber is the public numeric identifier; patients only.
	PatientNumber int64
	// RegistrationNumber is set for practitioners only.
	RegistrationNumber string
}

// Resolver loads the subject for a verified token's id from the appropriate
// store. Implemented by the patient and practitioner services.
type Resolver interface {
	ResolveSubject(ctx context.Context, id uuid.UUID) (*Subject, error)
}

type contextKey struct{}

// NewContext returns ctx with the subject attached.
func NewContext(ctx context.Context, s *Subject) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the subject bound to ctx, or nil.
func FromContext(ctx context.Context) *Subject {
	s, _ := ctx.Value(contextKey{}).(*Subject)
	return s
}
