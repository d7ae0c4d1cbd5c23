package encounter

import (
	"time"

	"github.com/google/uuid"
)

// Encounter is the aggregation root for one clinical visit. Read models carry
// the practitioner's name, joined at query time.
type Encounter struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient"`
	PractitionerID uuid.UUID `db:"practitioner_id" json:"practitioner"`
	Location       string    `db:"location" json:"location"`
	ReasonForVisit string    `db:"reason_for_visit" json:"reasonForVisit"`

	PractitionerFirstName string `db:"practitioner_first_name" json:"practitionerFirstName,omitempty"`
	PractitionerLastName  string `db:"practitioner_last_name" json:"practitionerLastName,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// subRecord carries the references every sub-record shares. They always match
// the parent encounter's patient and practitioner.
type subRecord struct {
	ID             uuid.UUID `db:"id" json:"id"`
	EncounterID    uuid.UUID `db:"encounter_id" json:"encounter"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient"`
	PractitionerID uuid.UUID `db:"practitioner_id" json:"practitioner"`

	PractitionerFirstName string `db:"practitioner_first_name" json:"practitionerFirstName,omitempty"`
	PractitionerLastName  string `db:"practitioner_last_name" json:"practitionerLastName,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Allergy records an allergen observed during an encounter.
type Allergy struct {
	subRecord
	Allergen string `db:"allergen" json:"allergen"`
	Reaction string `db:"reaction" json:"reaction"`
	Severity string `db:"severity" json:"severity"`
}

// Diagnosis records a diagnosis made during an encounter.
type Diagnosis struct {
	subRecord
	Diagnosis string `db:"diagnosis" json:"diagnosis"`
}

// Medication records a prescription issued during an encounter.
type Medication struct {
	subRecord
	DrugName  string `db:"drug_name" json:"drugName"`
	Dosage    string `db:"dosage" json:"dosage"`
	Frequency string `db:"frequency" json:"frequency"`
}

// Task records a care task assigned during an encounter.
type Task struct {
	subRecord
	TaskName string `db:"task_name" json:"taskName"`
}

// AllergyInput, DiagnosisInput, MedicationInput and TaskInput carry the
// domain fields accepted when creating sub-records; the references come from
// the route and the authenticated practitioner.
type AllergyInput struct {
	Allergen string `json:"allergen"`
	Reaction string `json:"reaction"`
	Severity string `json:"severity"`
}

type DiagnosisInput struct {
	Diagnosis string `json:"diagnosis"`
}

type MedicationInput struct {
	DrugName  string `json:"drugName"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

type TaskInput struct {
	TaskName string `json:"taskName"`
}
