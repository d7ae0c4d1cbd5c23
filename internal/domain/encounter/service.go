package encounter

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ayeola05/IntegratedCareServer/internal/platform/httperr"
)

// PatientDirectory resolves a public patient number to the internal id.
// Implemented by the patient service.
type PatientDirectory interface {
	FindPatientByNumber(ctx context.Context, number int64) (uuid.UUID, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
}

func NewService(repo Repository, patients PatientDirectory) *Service {
	return &Service{repo: repo, patients: patients}
}

var validSeverities = map[string]bool{
	"mild": true, "moderate": true, "severe": true,
}

// AddEncounter creates a visit linking the acting practitioner and the
// patient with the given public number.
func (s *Service) AddEncounter(ctx context.Context, practitionerID uuid.UUID, patientNumber int64, location, reasonForVisit string) (*Encounter, error) {
	if location == "" || reasonForVisit == "" {
		return nil, httperr.Validation("location and reasonForVisit are required")
	}

	patientID, err := s.patients.FindPatientByNumber(ctx, patientNumber)
	if err != nil {
		return nil, httperr.NotFound("patient does not exist")
	}

	enc := &Encounter{
		PatientID:      patientID,
		PractitionerID: practitionerID,
		Location:       location,
		ReasonForVisit: reasonForVisit,
	}
	if err := s.repo.Create(ctx, enc); err != nil {
		return nil, err
	}

	// Re-read through the join so the practitioner name is populated.
	return s.get(ctx, enc.ID)
}

// MedicalHistory returns all encounters for a patient by internal id, in
// creation order, practitioner names populated.
func (s *Service) MedicalHistory(ctx context.Context, patientID uuid.UUID) ([]*Encounter, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// MedicalHistoryByNumber is the practitioner-facing variant, keyed on the
// public patient number.
func (s *Service) MedicalHistoryByNumber(ctx context.Context, patientNumber int64) ([]*Encounter, error) {
	patientID, err := s.patients.FindPatientByNumber(ctx, patientNumber)
	if err != nil {
		return nil, httperr.NotFound("patient does not exist")
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// refs resolves and cross-checks the references for a new sub-record: the
// encounter must exist, the patient must exist and be the encounter's
// patient, and the acting practitioner must be the encounter's practitioner.
// Sub-records therefore always carry their parent encounter's references.
func (s *Service) refs(ctx context.Context, practitionerID, encounterID uuid.UUID, patientNumber int64) (*Encounter, error) {
	enc, err := s.get(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	patientID, err := s.patients.FindPatientByNumber(ctx, patientNumber)
	if err != nil {
		return nil, httperr.NotFound("patient does not exist")
	}
	if patientID != enc.PatientID {
		return nil, httperr.Validation("patient does not match encounter")
	}
	if practitionerID != enc.PractitionerID {
		return nil, httperr.Validation("practitioner does not match encounter")
	}
	return enc, nil
}

func (s *Service) AddAllergy(ctx context.Context, practitionerID, encounterID uuid.UUID, patientNumber int64, in AllergyInput) (*Allergy, error) {
	if in.Allergen == "" || in.Reaction == "" || in.Severity == "" {
		return nil, httperr.Validation("allergen, reaction and severity are required")
	}
	if !validSeverities[in.Severity] {
		return nil, httperr.Validation("severity must be mild, moderate or severe")
	}

	enc, err := s.refs(ctx, practitionerID, encounterID, patientNumber)
	if err != nil {
		return nil, err
	}

	a := &Allergy{
		subRecord: newSubRecord(enc),
		Allergen:  in.Allergen,
		Reaction:  in.Reaction,
		Severity:  in.Severity,
	}
	if err := s.repo.CreateAllergy(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) AddDiagnosis(ctx context.Context, practitionerID, encounterID uuid.UUID, patientNumber int64, in DiagnosisInput) (*Diagnosis, error) {
	if in.Diagnosis == "" {
		return nil, httperr.Validation("diagnosis is required")
	}

	enc, err := s.refs(ctx, practitionerID, encounterID, patientNumber)
	if err != nil {
		return nil, err
	}

	d := &Diagnosis{
		subRecord: newSubRecord(enc),
		Diagnosis: in.Diagnosis,
	}
	if err := s.repo.CreateDiagnosis(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) AddMedication(ctx context.Context, practitionerID, encounterID uuid.UUID, patientNumber int64, in MedicationInput) (*Medication, error) {
	if in.DrugName == "" || in.Dosage == "" || in.Frequency == "" {
		return nil, httperr.Validation("drugName, dosage and frequency are required")
	}

	enc, err := s.refs(ctx, practitionerID, encounterID, patientNumber)
	if err != nil {
		return nil, err
	}

	m := &Medication{
		subRecord: newSubRecord(enc),
		DrugName:  in.DrugName,
		Dosage:    in.Dosage,
		Frequency: in.Frequency,
	}
	if err := s.repo.CreateMedication(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) AddTask(ctx context.Context, practitionerID, encounterID uuid.UUID, patientNumber int64, in TaskInput) (*Task, error) {
	if in.TaskName == "" {
		return nil, httperr.Validation("taskName is required")
	}

	enc, err := s.refs(ctx, practitionerID, encounterID, patientNumber)
	if err != nil {
		return nil, err
	}

	t := &Task{
		subRecord: newSubRecord(enc),
		TaskName:  in.TaskName,
	}
	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Allergies(ctx context.Context, encounterID uuid.UUID) ([]*Allergy, error) {
	if _, err := s.get(ctx, encounterID); err != nil {
		return nil, err
	}
	return s.repo.ListAllergies(ctx, encounterID)
}

func (s *Service) Diagnoses(ctx context.Context, encounterID uuid.UUID) ([]*Diagnosis, error) {
	if _, err := s.get(ctx, encounterID); err != nil {
		return nil, err
	}
	return s.repo.ListDiagnoses(ctx, encounterID)
}

func (s *Service) Medications(ctx context.Context, encounterID uuid.UUID) ([]*Medication, error) {
	if _, err := s.get(ctx, encounterID); err != nil {
		return nil, err
	}
	return s.repo.ListMedications(ctx, encounterID)
}

func (s *Service) Tasks(ctx context.Context, encounterID uuid.UUID) ([]*Task, error) {
	if _, err := s.get(ctx, encounterID); err != nil {
		return nil, err
	}
	return s.repo.ListTasks(ctx, encounterID)
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	enc, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("encounter not found")
	}
	return enc, err
}

func newSubRecord(enc *Encounter) subRecord {
	return subRecord{
		EncounterID:           enc.ID,
		PatientID:             enc.PatientID,
		PractitionerID:        enc.PractitionerID,
		PractitionerFirstName: enc.PractitionerFirstName,
		PractitionerLastName:  enc.PractitionerLastName,
	}
}
