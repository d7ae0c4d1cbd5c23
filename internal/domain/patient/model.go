package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. The password hash never serializes.
type Patient struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientNumber int64     `db:"patient_number" json:"patientId"`
	FirstName     string    `db:"first_name" json:"firstName"`
	LastName      string    `db:"last_name" json:"lastName"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Confirmed     bool      `db:"confirmed" json:"confirmed"`

	DOB                  *time.Time `db:"dob" json:"dob,omitempty"`
	Age                  *int       `db:"age" json:"age,omitempty"`
	Location             *string    `db:"location" json:"location,omitempty"`
	Occupation           *string    `db:"occupation" json:"occupation,omitempty"`
	Gender               *string    `db:"gender" json:"gender,omitempty"`
	MaritalStatus        *string    `db:"marital_status" json:"maritalStatus,omitempty"`
	Address              *string    `db:"address" json:"address,omitempty"`
	PhoneNumber          *string    `db:"phone_number" json:"phoneNumber,omitempty"`
	NextOfKin            *string    `db:"next_of_kin" json:"nextOfKin,omitempty"`
	NextOfKinRelationship *string   `db:"next_of_kin_relationship" json:"relationshipWithNextOfKin,omitempty"`
	NextOfKinContact     *string    `db:"next_of_kin_contact" json:"contactOfNextOfKin,omitempty"`

	BloodType *string `db:"blood_type" json:"bloodType,omitempty"`
	Genotype  *string `db:"genotype" json:"genotype,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Profile is the sanitized shape returned to API callers on login and
// profile reads.
type Profile struct {
	PatientNumber int64  `json:"patientId"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Confirmed     bool   `json:"confirmed"`
}

func (p *Patient) Profile() Profile {
	return Profile{
		PatientNumber: p.PatientNumber,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Email:         p.Email,
		Confirmed:     p.Confirmed,
	}
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// ProfilePatch is a partial profile update. A field is applied when present
// in the request body, so explicit empty values overwrite — absent fields are
// the only ones left untouched.
type ProfilePatch struct {
	Email                 *string    `json:"email"`
	Password              *string    `json:"password"`
	FirstName             *string    `json:"firstName"`
	LastName              *string    `json:"lastName"`
	DOB                   *time.Time `json:"dob"`
	Age                   *int       `json:"age"`
	Location              *string    `json:"location"`
	Occupation            *string    `json:"occupation"`
	Gender                *string    `json:"gender"`
	MaritalStatus         *string    `json:"maritalStatus"`
	Address               *string    `json:"address"`
	PhoneNumber           *string    `json:"phoneNumber"`
	NextOfKin             *string    `json:"nextOfKin"`
	NextOfKinRelationship *string    `json:"relationshipWithNextOfKin"`
	NextOfKinContact      *string    `json:"contactOfNextOfKin"`
}

// BloodDataPatch updates the clinical blood fields; practitioner-only.
type BloodDataPatch struct {
	BloodType *string `json:"bloodType"`
	Genotype  *string `json:"genotype"`
}
