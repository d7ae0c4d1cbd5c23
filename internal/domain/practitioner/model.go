package practitioner

import (
	"time"

	"github.com/google/uuid"
)

// Practitioner maps to the practitioner table.
type Practitioner struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	FirstName          string    `db:"first_name" json:"firstName"`
	LastName           string    `db:"last_name" json:"lastName"`
	RegistrationNumber string    `db:"registration_number" json:"registrationNumber"`
	Specialty          string    `db:"specialty" json:"specialty"`
	WorkAddress        string    `db:"work_address" json:"workAddress"`
	WorkPhoneNumber    string    `db:"work_phone_number" json:"workPhoneNumber"`
	Email              string    `db:"email" json:"email"`
	PasswordHash       string    `db:"password_hash" json:"-"`
	Confirmed          bool      `db:"confirmed" json:"confirmed"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time `db:"updated_at" json:"updatedAt"`
}

// Profile is the sanitized shape returned to API callers.
type Profile struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	RegistrationNumber string `json:"registrationNumber"`
	Specialty          string `json:"specialty"`
	WorkAddress        string `json:"workAddress"`
	WorkPhoneNumber    string `json:"workPhoneNumber"`
	Email              string `json:"email"`
	Confirmed          bool   `json:"confirmed"`
}

func (p *Practitioner) Profile() Profile {
	return Profile{
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		RegistrationNumber: p.RegistrationNumber,
		Specialty:          p.Specialty,
		WorkAddress:        p.WorkAddress,
		WorkPhoneNumber:    p.WorkPhoneNumber,
		Email:              p.Email,
		Confirmed:          p.Confirmed,
	}
}

// RosterPatient is one entry of a practitioner's roster, joined from the
// patient table without credentials.
type RosterPatient struct {
	PatientNumber int64     `db:"patient_number" json:"patientId"`
	FirstName     string    `db:"first_name" json:"firstName"`
	LastName      string    `db:"last_name" json:"lastName"`
	Email         string    `db:"email" json:"email"`
	AddedAt       time.Time `db:"created_at" json:"addedAt"`
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	RegistrationNumber string `json:"registrationNumber"`
	Specialty          string `json:"specialty"`
	WorkAddress        string `json:"workAddress"`
	WorkPhoneNumber    string `json:"workPhoneNumber"`
	Email              string `json:"email"`
	Password           string `json:"password"`
}

// ProfilePatch is a partial profile update; present fields overwrite, absent
// fields are untouched.
type ProfilePatch struct {
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	Specialty       *string `json:"specialty"`
	WorkAddress     *string `json:"workAddress"`
	WorkPhoneNumber *string `json:"workPhoneNumber"`
	Email           *string `json:"email"`
	Password        *string `json:"password"`
}
