package practitioner

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayeola05/IntegratedCareServer/internal/platform/auth"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/httperr"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/token"
)

const bcryptCost = 10

// PatientDirectory resolves a public patient number to the internal id.
// Implemented by the patient service.
type PatientDirectory interface {
	FindPatientByNumber(ctx context.Context, number int64) (uuid.UUID, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	tokens   *token.Service
}

func NewService(repo Repository, patients PatientDirectory, tokens *token.Service) *Service {
	return &Service{repo: repo, patients: patients, tokens: tokens}
}

// Register creates a practitioner with a hashed password and returns it with
// a fresh login token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Practitioner, string, error) {
	if in.FirstName == "" || in.LastName == "" || in.RegistrationNumber == "" ||
		in.Specialty == "" || in.WorkAddress == "" || in.WorkPhoneNumber == "" ||
		in.Email == "" || in.Password == "" {
		return nil, "", httperr.Validation("invalid practitioner data")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, "", httperr.Validation("invalid email")
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, "", httperr.Conflict("practitioner already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, "", err
	}

	p := &Practitioner{
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		RegistrationNumber: in.RegistrationNumber,
		Specialty:          in.Specialty,
		WorkAddress:        in.WorkAddress,
		WorkPhoneNumber:    in.WorkPhoneNumber,
		Email:              in.Email,
		PasswordHash:       string(hash),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		// Duplicate email or registration number.
		if errors.Is(err, ErrDuplicate) {
			return nil, "", httperr.Conflict("practitioner already exists")
		}
		return nil, "", err
	}

	tok, err := s.tokens.Issue(p.ID)
	if err != nil {
		return nil, "", err
	}
	return p, tok, nil
}

// Login verifies credentials and issues a token; unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Practitioner, string, error) {
	p, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, "", httperr.Authentication("invalid email or password")
	}
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return nil, "", httperr.Authentication("invalid email or password")
	}

	tok, err := s.tokens.Issue(p.ID)
	if err != nil {
		return nil, "", err
	}
	return p, tok, nil
}

// ConfirmEmail verifies a confirmation token and marks the practitioner
// confirmed.
func (s *Service) ConfirmEmail(ctx context.Context, raw string) (*Practitioner, error) {
	id, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("practitioner not found")
	}
	if err != nil {
		return nil, err
	}

	p.Confirmed = true
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the practitioner by internal id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("practitioner not found")
	}
	return p, err
}

// GetByEmail returns the practitioner with the given email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Practitioner, error) {
	if !strings.Contains(email, "@") {
		return nil, httperr.Validation("provide a valid email")
	}
	p, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("practitioner does not exist")
	}
	return p, err
}

// UpdateProfile applies a partial update; a new password is re-hashed.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*Practitioner, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("practitioner not found")
	}
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		if !strings.Contains(*patch.Email, "@") {
			return nil, httperr.Validation("invalid email")
		}
		p.Email = *patch.Email
	}
	if patch.FirstName != nil {
		p.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		p.LastName = *patch.LastName
	}
	if patch.Specialty != nil {
		p.Specialty = *patch.Specialty
	}
	if patch.WorkAddress != nil {
		p.WorkAddress = *patch.WorkAddress
	}
	if patch.WorkPhoneNumber != nil {
		p.WorkPhoneNumber = *patch.WorkPhoneNumber
	}
	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		p.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, httperr.Conflict("practitioner already exists")
		}
		return nil, err
	}
	return p, nil
}

// AddPatientToRoster appends the patient with the given public number to the
// practitioner's roster and returns the updated roster. The membership guard
// is a single conditional insert at the store, so concurrent adds of the same
// patient cannot both succeed.
func (s *Service) AddPatientToRoster(ctx context.Context, practitionerID uuid.UUID, patientNumber int64) ([]*RosterPatient, error) {
	patientID, err := s.patients.FindPatientByNumber(ctx, patientNumber)
	if err != nil {
		return nil, httperr.NotFound("patient does not exist")
	}

	if err := s.repo.AddToRoster(ctx, practitionerID, patientID); err != nil {
		if errors.Is(err, ErrRosterConflict) {
			return nil, httperr.Conflict("patient already added to a dashboard")
		}
		return nil, err
	}

	return s.repo.ListRoster(ctx, practitionerID)
}

// Roster returns the practitioner's patients.
func (s *Service) Roster(ctx context.Context, practitionerID uuid.UUID) ([]*RosterPatient, error) {
	return s.repo.ListRoster(ctx, practitionerID)
}

// ResolveSubject implements auth.Resolver for practitioner-facing routes.
func (s *Service) ResolveSubject(ctx context.Context, id uuid.UUID) (*auth.Subject, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &auth.Subject{
		ID:                 p.ID,
		Role:               auth.RolePractitioner,
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		Email:              p.Email,
		Confirmed:          p.Confirmed,
		RegistrationNumber: p.RegistrationNumber,
	}, nil
}
