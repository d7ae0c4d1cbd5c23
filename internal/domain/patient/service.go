package patient

import (
	"context"
	crand "crypto/rand"
	"errors"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayeola05/IntegratedCareServer/internal/platform/auth"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/httperr"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/token"
)

const bcryptCost = 10

type Service struct {
	repo   Repository
	tokens *token.Service
}

func NewService(repo Repository, tokens *token.Service) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates a patient with a hashed password and a generated public
// number, and returns the patient together with a fresh login token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Patient, string, error) {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return nil, "", httperr.Validation("invalid patient data")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, "", httperr.Validation("invalid email")
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, "", httperr.Conflict("patient already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, "", err
	}

	p := &Patient{
		PatientNumber: newPatientNumber(),
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		PasswordHash:  string(hash),
	}

	// The generated number can collide; retry with a fresh one before giving
	// up. An email collision still surfaces as a conflict.
	for attempt := 0; ; attempt++ {
		err = s.repo.Create(ctx, p)
		if err == nil {
			break
		}
		if errors.Is(err, ErrDuplicate) && attempt < 2 {
			if _, lookupErr := s.repo.GetByEmail(ctx, in.Email); lookupErr == nil {
				return nil, "", httperr.Conflict("patient already exists")
			}
			p.ID = uuid.Nil
			p.PatientNumber = newPatientNumber()
			continue
		}
		if errors.Is(err, ErrDuplicate) {
			return nil, "", httperr.Conflict("patient already exists")
		}
		return nil, "", err
	}

	tok, err := s.tokens.Issue(p.ID)
	if err != nil {
		return nil, "", err
	}
	return p, tok, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Patient, string, error) {
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

// ConfirmEmail verifies a confirmation token and marks the patient confirmed.
func (s *Service) ConfirmEmail(ctx context.Context, raw string) (*Patient, error) {
	id, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("patient not found")
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

// Get returns the patient by internal id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("patient not found")
	}
	return p, err
}

// GetByNumber returns the patient by public number.
func (s *Service) GetByNumber(ctx context.Context, number int64) (*Patient, error) {
	p, err := s.repo.GetByNumber(ctx, number)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("patient does not exist")
	}
	return p, err
}

// UpdateProfile applies a partial update. Only fields present in the patch
// are written; present-but-empty values overwrite. A new password is
// re-hashed before persisting.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("patient not found")
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
	if patch.DOB != nil {
		p.DOB = patch.DOB
	}
	if patch.Age != nil {
		p.Age = patch.Age
	}
	if patch.Location != nil {
		p.Location = patch.Location
	}
	if patch.Occupation != nil {
		p.Occupation = patch.Occupation
	}
	if patch.Gender != nil {
		p.Gender = patch.Gender
	}
	if patch.MaritalStatus != nil {
		p.MaritalStatus = patch.MaritalStatus
	}
	if patch.Address != nil {
		p.Address = patch.Address
	}
	if patch.PhoneNumber != nil {
		p.PhoneNumber = patch.PhoneNumber
	}
	if patch.NextOfKin != nil {
		p.NextOfKin = patch.NextOfKin
	}
	if patch.NextOfKinRelationship != nil {
		p.NextOfKinRelationship = patch.NextOfKinRelationship
	}
	if patch.NextOfKinContact != nil {
		p.NextOfKinContact = patch.NextOfKinContact
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
			return nil, httperr.Conflict("patient already exists")
		}
		return nil, err
	}
	return p, nil
}

// UpdateBloodData sets the clinical blood fields on a patient looked up by
// public number.
func (s *Service) UpdateBloodData(ctx context.Context, number int64, patch BloodDataPatch) (*Patient, error) {
	p, err := s.repo.GetByNumber(ctx, number)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("patient does not exist")
	}
	if err != nil {
		return nil, err
	}

	if patch.BloodType != nil {
		p.BloodType = patch.BloodType
	}
	if patch.Genotype != nil {
		p.Genotype = patch.Genotype
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ResolveSubject implements auth.Resolver for patient-facing routes.
func (s *Service) ResolveSubject(ctx context.Context, id uuid.UUID) (*auth.Subject, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &auth.Subject{
		ID:            p.ID,
		Role:          auth.RolePatient,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Email:         p.Email,
		Confirmed:     p.Confirmed,
		PatientNumber: p.PatientNumber,
	}, nil
}

// FindPatientByNumber reports the internal id for a public patient number.
// Satisfies the patient-directory interfaces of the encounter and
// practitioner packages.
func (s *Service) FindPatientByNumber(ctx context.Context, number int64) (uuid.UUID, error) {
	p, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// newPatientNumber generates a random ten-digit public identifier. The
// patient_number column is unique, so a rare collision is caught at insert.
func newPatientNumber() int64 {
	max := big.NewInt(9_000_000_000)
	n, err := crand.Int(crand.Reader, max)
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(err)
	}
	return n.Int64() + 1_000_000_000
}
