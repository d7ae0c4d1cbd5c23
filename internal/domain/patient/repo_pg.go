package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `id, patient_number, first_name, last_name, email, password_hash, confirmed,
	dob, age, location, occupation, gender, marital_status, address, phone_number,
	next_of_kin, next_of_kin_relationship, next_of_kin_contact,
	blood_type, genotype, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patient (id, patient_number, first_name, last_name, email, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.PatientNumber, p.FirstName, p.LastName, p.Email, p.PasswordHash,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE email = $1`, email))
}

func (r *repoPG) GetByNumber(ctx context.Context, number int64) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE patient_number = $1`, number))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patient SET
			first_name=$2, last_name=$3, email=$4, password_hash=$5, confirmed=$6,
			dob=$7, age=$8, location=$9, occupation=$10, gender=$11, marital_status=$12,
			address=$13, phone_number=$14, next_of_kin=$15, next_of_kin_relationship=$16,
			next_of_kin_contact=$17, blood_type=$18, genotype=$19, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.Email, p.PasswordHash, p.Confirmed,
		p.DOB, p.Age, p.Location, p.Occupation, p.Gender, p.MaritalStatus,
		p.Address, p.PhoneNumber, p.NextOfKin, p.NextOfKinRelationship,
		p.NextOfKinContact, p.BloodType, p.Genotype,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	p := &Patient{}
	err := row.Scan(
		&p.ID, &p.PatientNumber, &p.FirstName, &p.LastName, &p.Email, &p.PasswordHash, &p.Confirmed,
		&p.DOB, &p.Age, &p.Location, &p.Occupation, &p.Gender, &p.MaritalStatus,
		&p.Address, &p.PhoneNumber, &p.NextOfKin, &p.NextOfKinRelationship, &p.NextOfKinContact,
		&p.BloodType, &p.Genotype, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
