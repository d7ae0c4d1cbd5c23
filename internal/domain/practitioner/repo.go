package practitioner

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no practitioner matches the lookup.
var ErrNotFound = errors.New("practitioner not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("practitioner already exists")

// ErrRosterConflict is returned when the patient already sits on a roster —
// this practitioner's or any other's.
var ErrRosterConflict = errors.New("patient already on a roster")

type Repository interface {
	Create(ctx context.Context, p *Practitioner) error
	GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error)
	GetByEmail(ctx context.Context, email string) (*Practitioner, error)
	Update(ctx context.Context, p *Practitioner) error

	// AddToRoster appends the patient to the practitioner's roster in one
	// conditional insert; ErrRosterConflict when any roster already holds the
	// patient.
	AddToRoster(ctx context.Context, practitionerID, patientID uuid.UUID) error
	ListRoster(ctx context.Context, practitionerID uuid.UUID) ([]*RosterPatient, error)
}
