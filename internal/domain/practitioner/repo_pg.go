package practitioner

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

const practitionerCols = `id, first_name, last_name, registration_number, specialty,
	work_address, work_phone_number, email, password_hash, confirmed, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Practitioner) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO practitioner (id, first_name, last_name, registration_number, specialty,
			work_address, work_phone_number, email, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.FirstName, p.LastName, p.RegistrationNumber, p.Specialty,
		p.WorkAddress, p.WorkPhoneNumber, p.Email, p.PasswordHash,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	return scanPractitioner(r.pool.QueryRow(ctx,
		`SELECT `+practitionerCols+` FROM practitioner WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Practitioner, error) {
	return scanPractitioner(r.pool.QueryRow(ctx,
		`SELECT `+practitionerCols+` FROM practitioner WHERE email = $1`, email))
}

func (r *repoPG) Update(ctx context.Context, p *Practitioner) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE practitioner SET
			first_name=$2, last_name=$3, specialty=$4, work_address=$5,
			work_phone_number=$6, email=$7, password_hash=$8, confirmed=$9, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.Specialty, p.WorkAddress,
		p.WorkPhoneNumber, p.Email, p.PasswordHash, p.Confirmed,
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

// AddToRoster relies on the global unique constraint on patient_id: the
// insert and the membership check are one atomic statement, so two
// concurrent adds cannot both succeed.
func (r *repoPG) AddToRoster(ctx context.Context, practitionerID, patientID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO practitioner_patient (practitioner_id, patient_id)
		VALUES ($1, $2)
		ON CONFLICT (patient_id) DO NOTHING`,
		practitionerID, patientID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRosterConflict
	}
	return nil
}

func (r *repoPG) ListRoster(ctx context.Context, practitionerID uuid.UUID) ([]*RosterPatient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.patient_number, p.first_name, p.last_name, p.email, pp.created_at
		FROM practitioner_patient pp
		JOIN patient p ON p.id = pp.patient_id
		WHERE pp.practitioner_id = $1
		ORDER BY pp.created_at`,
		practitionerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []*RosterPatient
	for rows.Next() {
		rp := &RosterPatient{}
		if err := rows.Scan(&rp.PatientNumber, &rp.FirstName, &rp.LastName, &rp.Email, &rp.AddedAt); err != nil {
			return nil, err
		}
		roster = append(roster, rp)
	}
	return roster, rows.Err()
}

func scanPractitioner(row pgx.Row) (*Practitioner, error) {
	p := &Practitioner{}
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.RegistrationNumber, &p.Specialty,
		&p.WorkAddress, &p.WorkPhoneNumber, &p.Email, &p.PasswordHash, &p.Confirmed,
		&p.CreatedAt, &p.UpdatedAt,
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
