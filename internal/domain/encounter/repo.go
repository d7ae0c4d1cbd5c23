package encounter

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no encounter matches the lookup.
var ErrNotFound = errors.New("encounter not found")

type Repository interface {
	Create(ctx context.Context, enc *Encounter) error
	GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Encounter, error)

	CreateAllergy(ctx context.Context, a *Allergy) error
	ListAllergies(ctx context.Context, encounterID uuid.UUID) ([]*Allergy, error)

	CreateDiagnosis(ctx context.Context, d *Diagnosis) error
	ListDiagnoses(ctx context.Context, encounterID uuid.UUID) ([]*Diagnosis, error)

	CreateMedication(ctx context.Context, m *Medication) error
	ListMedications(ctx context.Context, encounterID uuid.UUID) ([]*Medication, error)

	CreateTask(ctx context.Context, t *Task) error
	ListTasks(ctx context.Context, encounterID uuid.UUID) ([]*Task, error)
}
