package encounter

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const encCols = `e.id, e.patient_id, e.practitioner_id, e.location, e.reason_for_visit,
	pr.first_name, pr.last_name, e.created_at, e.updated_at`

const encFrom = ` FROM encounter e JOIN practitioner pr ON pr.id = e.practitioner_id `

func (r *repoPG) Create(ctx context.Context, enc *Encounter) error {
	if enc.ID == uuid.Nil {
		enc.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO encounter (id, patient_id, practitioner_id, location, reason_for_visit)
		VALUES ($1,$2,$3,$4,$5)`,
		enc.ID, enc.PatientID, enc.PractitionerID, enc.Location, enc.ReasonForVisit,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	return scanEnc(r.pool.QueryRow(ctx, `SELECT `+encCols+encFrom+`WHERE e.id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Encounter, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+encCols+encFrom+`WHERE e.patient_id = $1 ORDER BY e.created_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var encs []*Encounter
	for rows.Next() {
		enc, err := scanEnc(rows)
		if err != nil {
			return nil, err
		}
		encs = append(encs, enc)
	}
	return encs, rows.Err()
}

func scanEnc(row pgx.Row) (*Encounter, error) {
	enc := &Encounter{}
	err := row.Scan(
		&enc.ID, &enc.PatientID, &enc.PractitionerID, &enc.Location, &enc.ReasonForVisit,
		&enc.PractitionerFirstName, &enc.PractitionerLastName, &enc.CreatedAt, &enc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return enc, nil
}

// -- Allergy --

const allergyCols = `a.id, a.encounter_id, a.patient_id, a.practitioner_id,
	pr.first_name, pr.last_name, a.created_at, a.allergen, a.reaction, a.severity`

func (r *repoPG) CreateAllergy(ctx context.Context, a *Allergy) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO allergy (id, encounter_id, patient_id, practitioner_id, allergen, reaction, severity)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.EncounterID, a.PatientID, a.PractitionerID, a.Allergen, a.Reaction, a.Severity,
	)
	return err
}

func (r *repoPG) ListAllergies(ctx context.Context, encounterID uuid.UUID) ([]*Allergy, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+allergyCols+`
		FROM allergy a JOIN practitioner pr ON pr.id = a.practitioner_id
		WHERE a.encounter_id = $1 ORDER BY a.created_at`, encounterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Allergy
	for rows.Next() {
		a := &Allergy{}
		if err := rows.Scan(
			&a.ID, &a.EncounterID, &a.PatientID, &a.PractitionerID,
			&a.PractitionerFirstName, &a.PractitionerLastName, &a.CreatedAt,
			&a.Allergen, &a.Reaction, &a.Severity,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// -- Diagnosis --

const diagnosisCols = `d.id, d.encounter_id, d.patient_id, d.practitioner_id,
	pr.first_name, pr.last_name, d.created_at, d.diagnosis`

func (r *repoPG) CreateDiagnosis(ctx context.Context, d *Diagnosis) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO diagnosis (id, encounter_id, patient_id, practitioner_id, diagnosis)
		VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.EncounterID, d.PatientID, d.PractitionerID, d.Diagnosis,
	)
	return err
}

func (r *repoPG) ListDiagnoses(ctx context.Context, encounterID uuid.UUID) ([]*Diagnosis, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+diagnosisCols+`
		FROM diagnosis d JOIN practitioner pr ON pr.id = d.practitioner_id
		WHERE d.encounter_id = $1 ORDER BY d.created_at`, encounterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Diagnosis
	for rows.Next() {
		d := &Diagnosis{}
		if err := rows.Scan(
			&d.ID, &d.EncounterID, &d.PatientID, &d.PractitionerID,
			&d.PractitionerFirstName, &d.PractitionerLastName, &d.CreatedAt,
			&d.Diagnosis,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// -- Medication --

const medicationCols = `m.id, m.encounter_id, m.patient_id, m.practitioner_id,
	pr.first_name, pr.last_name, m.created_at, m.drug_name, m.dosage, m.frequency`

func (r *repoPG) CreateMedication(ctx context.Context, m *Medication) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO medication (id, encounter_id, patient_id, practitioner_id, drug_name, dosage, frequency)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.EncounterID, m.PatientID, m.PractitionerID, m.DrugName, m.Dosage, m.Frequency,
	)
	return err
}

func (r *repoPG) ListMedications(ctx context.Context, encounterID uuid.UUID) ([]*Medication, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+medicationCols+`
		FROM medication m JOIN practitioner pr ON pr.id = m.practitioner_id
		WHERE m.encounter_id = $1 ORDER BY m.created_at`, encounterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Medication
	for rows.Next() {
		m := &Medication{}
		if err := rows.Scan(
			&m.ID, &m.EncounterID, &m.PatientID, &m.PractitionerID,
			&m.PractitionerFirstName, &m.PractitionerLastName, &m.CreatedAt,
			&m.DrugName, &m.Dosage, &m.Frequency,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// -- Task --

const taskCols = `t.id, t.encounter_id, t.patient_id, t.practitioner_id,
	pr.first_name, pr.last_name, t.created_at, t.task_name`

func (r *repoPG) CreateTask(ctx context.Context, t *Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO task (id, encounter_id, patient_id, practitioner_id, task_name)
		VALUES ($1,$2,$3,$4,$5)`,
		t.ID, t.EncounterID, t.PatientID, t.PractitionerID, t.TaskName,
	)
	return err
}

func (r *repoPG) ListTasks(ctx context.Context, encounterID uuid.UUID) ([]*Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskCols+`
		FROM task t JOIN practitioner pr ON pr.id = t.practitioner_id
		WHERE t.encounter_id = $1 ORDER BY t.created_at`, encounterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t := &Task{}
		if err := rows.Scan(
			&t.ID, &t.EncounterID, &t.PatientID, &t.PractitionerID,
			&t.PractitionerFirstName, &t.PractitionerLastName, &t.CreatedAt,
			&t.TaskName,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
