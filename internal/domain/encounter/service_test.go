package encounter

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ayeola05/IntegratedCareServer/internal/platform/httperr"
)

type mockRepo struct {
	encounters  map[uuid.UUID]*Encounter
	allergies   map[uuid.UUID][]*Allergy
	diagnoses   map[uuid.UUID][]*Diagnosis
	medications map[uuid.UUID][]*Medication
	tasks       map[uuid.UUID][]*Task

	// practitionerName backs the join the real store performs.
	practitionerName map[uuid.UUID][2]string
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		encounters:       make(map[uuid.UUID]*Encounter),
		allergies:        make(map[uuid.UUID][]*Allergy),
		diagnoses:        make(map[uuid.UUID][]*Diagnosis),
		medications:      make(map[uuid.UUID][]*Medication),
		tasks:            make(map[uuid.UUID][]*Task),
		practitionerName: make(map[uuid.UUID][2]string),
	}
}

func (m *mockRepo) Create(_ context.Context, enc *Encounter) error {
	if enc.ID == uuid.Nil {
		enc.ID = uuid.New()
	}
	enc.CreatedAt = time.Now()
	cp := *enc
	m.encounters[enc.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Encounter, error) {
	enc, ok := m.encounters[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *enc
	if name, ok := m.practitionerName[enc.PractitionerID]; ok {
		cp.PractitionerFirstName = name[0]
		cp.PractitionerLastName = name[1]
	}
	return &cp, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Encounter, error) {
	var out []*Encounter
	for id, enc := range m.encounters {
		if enc.PatientID != patientID {
			continue
		}
		cp, _ := m.GetByID(context.Background(), id)
		out = append(out, cp)
	}
	return out, nil
}

func (m *mockRepo) CreateAllergy(_ context.Context, a *Allergy) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	m.allergies[a.EncounterID] = append(m.allergies[a.EncounterID], &cp)
	return nil
}

func (m *mockRepo) ListAllergies(_ context.Context, encounterID uuid.UUID) ([]*Allergy, error) {
	return m.allergies[encounterID], nil
}

func (m *mockRepo) CreateDiagnosis(_ context.Context, d *Diagnosis) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	m.diagnoses[d.EncounterID] = append(m.diagnoses[d.EncounterID], &cp)
	return nil
}

func (m *mockRepo) ListDiagnoses(_ context.Context, encounterID uuid.UUID) ([]*Diagnosis, error) {
	return m.diagnoses[encounterID], nil
}

func (m *mockRepo) CreateMedication(_ context.Context, med *Medication) error {
	if med.ID == uuid.Nil {
		med.ID = uuid.New()
	}
	cp := *med
	m.medications[med.EncounterID] = append(m.medications[med.EncounterID], &cp)
	return nil
}

func (m *mockRepo) ListMedications(_ context.Context, encounterID uuid.UUID) ([]*Medication, error) {
	return m.medications[encounterID], nil
}

func (m *mockRepo) CreateTask(_ context.Context, task *Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	cp := *task
	m.tasks[task.EncounterID] = append(m.tasks[task.EncounterID], &cp)
	return nil
}

func (m *mockRepo) ListTasks(_ context.Context, encounterID uuid.UUID) ([]*Task, error) {
	return m.tasks[encounterID], nil
}

type stubDirectory struct {
	byNumber map[int64]uuid.UUID
}

func (d *stubDirectory) FindPatientByNumber(_ context.Context, number int64) (uuid.UUID, error) {
	id, ok := d.byNumber[number]
	if !ok {
		return uuid.Nil, httperr.NotFound("patient does not exist")
	}
	return id, nil
}

type fixture struct {
	svc            *Service
	repo           *mockRepo
	dir            *stubDirectory
	practitionerID uuid.UUID
	patientID      uuid.UUID
	patientNumber  int64
}

func newFixture() *fixture {
	repo := newMockRepo()
	dir := &stubDirectory{byNumber: make(map[int64]uuid.UUID)}

	f := &fixture{
		svc:            NewService(repo, dir),
		repo:           repo,
		dir:            dir,
		practitionerID: uuid.New(),
		patientID:      uuid.New(),
		patientNumber:  1234567890,
	}
	dir.byNumber[f.patientNumber] = f.patientID
	repo.practitionerName[f.practitionerID] = [2]string{"Ada", "Okafor"}
	return f
}

func (f *fixture) addEncounter(t *testing.T) *Encounter {
	t.Helper()
	enc, err := f.svc.AddEncounter(context.Background(), f.practitionerID, f.patientNumber, "Ward 3", "chest pain")
	if err != nil {
		t.Fatalf("AddEncounter: %v", err)
	}
	return enc
}

func TestAddEncounter(t *testing.T) {
	f := newFixture()

	enc := f.addEncounter(t)
	if enc.PatientID != f.patientID {
		t.Errorf("patient = %s, want %s", enc.PatientID, f.patientID)
	}
	if enc.PractitionerID != f.practitionerID {
		t.Errorf("practitioner = %s, want %s", enc.PractitionerID, f.practitionerID)
	}
	if enc.PractitionerFirstName != "Ada" || enc.PractitionerLastName != "Okafor" {
		t.Errorf("practitioner name = %q %q", enc.PractitionerFirstName, enc.PractitionerLastName)
	}
}

func TestAddEncounterValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AddEncounter(context.Background(), f.practitionerID, f.patientNumber, "", "chest pain")
	if !httperr.IsKind(err, httperr.KindValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestAddEncounterUnknownPatient(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AddEncounter(context.Background(), f.practitionerID, 42, "Ward 3", "chest pain")
	if !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if err.Error() != "patient does not exist" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestAddAllergy(t *testing.T) {
	f := newFixture()
	enc := f.addEncounter(t)

	a, err := f.svc.AddAllergy(context.Background(), f.practitionerID, enc.ID, f.patientNumber, AllergyInput{
		Allergen: "penicillin",
		Reaction: "hives",
		Severity: "severe",
	})
	if err != nil {
		t.Fatalf("AddAllergy: %v", err)
	}

	// Sub-records always carry the parent encounter's references.
	if a.EncounterID != enc.ID || a.PatientID != enc.PatientID || a.PractitionerID != enc.PractitionerID {
		t.Errorf("refs = %s/%s/%s, want %s/%s/%s",
			a.EncounterID, a.PatientID, a.PractitionerID,
			enc.ID, enc.PatientID, enc.PractitionerID)
	}
	if a.PractitionerFirstName != "Ada" {
		t.Errorf("practitioner first name = %q", a.PractitionerFirstName)
	}
}

func TestAddAllergySeverityValidation(t *testing.T) {
	f := newFixture()
	enc := f.addEncounter(t)

	for _, severity := range []string{"mild", "moderate", "severe"} {
		_, err := f.svc.AddAllergy(context.Background(), f.practitionerID, enc.ID, f.patientNumber, AllergyInput{
			Allergen: "dust", Reaction: "sneezing", Severity: severity,
		})
		if err != nil {
			t.Errorf("severity %q rejected: %v", severity, err)
		}
	}

	_, err := f.svc.AddAllergy(context.Background(), f.practitionerID, enc.ID, f.patientNumber, AllergyInput{
		Allergen: "dust", Reaction: "sneezing", Severity: "fatal",
	})
	if !httperr.IsKind(err, httperr.KindValidation) {
		t.Errorf("err = %v, want validation error for bad severity", err)
	}
}

func TestAddSubRecordUnknownEncounter(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AddTask(context.Background(), f.practitionerID, uuid.New(), f.patientNumber, TaskInput{TaskName: "draw blood"})
	if !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if err.Error() != "encounter not found" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestAddSubRecordPatientMismatch(t *testing.T) {
	f := newFixture()
	enc := f.addEncounter(t)

	otherNumber := int64(9876543210)
	f.dir.byNumber[otherNumber] = uuid.New()

	_, err := f.svc.AddDiagnosis(context.Background(), f.practitionerID, enc.ID, otherNumber, DiagnosisInput{Diagnosis: "angina"})
	if !httperr.IsKind(err, httperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if err.Error() != "patient does not match encounter" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestAddSubRecordPractitionerMismatch(t *testing.T) {
	f := newFixture()
	enc := f.addEncounter(t)

	_, err := f.svc.AddMedication(context.Background(), uuid.New(), enc.ID, f.patientNumber, MedicationInput{
		DrugName: "aspirin", Dosage: "75mg", Frequency: "daily",
	})
	if !httperr.IsKind(err, httperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if err.Error() != "practitioner does not match encounter" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestAddSubRecordFieldValidation(t *testing.T) {
	f := newFixture()
	enc := f.addEncounter(t)
	ctx := context.Background()

	if _, err := f.svc.AddMedication(ctx, f.practitionerID, enc.ID, f.patientNumber, MedicationInput{DrugName: "aspirin"}); !httperr.IsKind(err, httperr.KindValidation) {
		t.Errorf("medication missing fields: err = %v", err)
	}
	if _, err := f.svc.AddDiagnosis(ctx, f.practitionerID, enc.ID, f.patientNumber, DiagnosisInput{}); !httperr.IsKind(err, httperr.KindValidation) {
		t.Errorf("empty diagnosis: err = %v", err)
	}
	if _, err := f.svc.AddTask(ctx, f.practitionerID, enc.ID, f.patientNumber, TaskInput{}); !httperr.IsKind(err, httperr.KindValidation) {
		t.Errorf("empty task: err = %v", err)
	}
}

func TestMedicalHistory(t *testing.T) {
	f := newFixture()
	f.addEncounter(t)
	f.addEncounter(t)

	encs, err := f.svc.MedicalHistory(context.Background(), f.patientID)
	if err != nil {
		t.Fatalf("MedicalHistory: %v", err)
	}
	if len(encs) != 2 {
		t.Errorf("history has %d encounters, want 2", len(encs))
	}

	byNumber, err := f.svc.MedicalHistoryByNumber(context.Background(), f.patientNumber)
	if err != nil {
		t.Fatalf("MedicalHistoryByNumber: %v", err)
	}
	if len(byNumber) != 2 {
		t.Errorf("history by number has %d encounters, want 2", len(byNumber))
	}

	if _, err := f.svc.MedicalHistoryByNumber(context.Background(), 42); !httperr.IsKind(err, httperr.KindNotFound) {
		t.Errorf("unknown patient: err = %v", err)
	}
}

func TestListsRequireEncounter(t *testing.T) {
	f := newFixture()
	enc := f.addEncounter(t)

	if _, err := f.svc.AddTask(context.Background(), f.practitionerID, enc.ID, f.patientNumber, TaskInput{TaskName: "draw blood"}); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	tasks, err := f.svc.Tasks(context.Background(), enc.ID)
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("tasks = %d, want 1", len(tasks))
	}

	if _, err := f.svc.Tasks(context.Background(), uuid.New()); !httperr.IsKind(err, httperr.KindNotFound) {
		t.Errorf("unknown encounter: err = %v", err)
	}
	if _, err := f.svc.Allergies(context.Background(), uuid.New()); !httperr.IsKind(err, httperr.KindNotFound) {
		t.Errorf("unknown encounter: err = %v", err)
	}
}
