package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no patient matches the lookup.
var ErrNotFound = errors.New("patient not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("patient already exists")

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	GetByNumber(ctx context.Context, number int64) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
}
