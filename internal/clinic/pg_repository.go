package clinic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DB is the subset of pgxpool.Pool the repository uses; pgxmock satisfies it
// in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgRepository struct {
	db DB
}

func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

// Constraint names from the schema; violations map to domain errors so the
// second of two racing writers gets the same answer as a failed pre-check.
const (
	constraintPreferredSlot    = "uniq_preferred_slot"
	constraintDoctorAssignment = "uniq_doctor_assignment"
)

func mapConstraintErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case constraintPreferredSlot:
			return ErrPreferredSlotTaken
		case constraintDoctorAssignment:
			return ErrDoctorSlotTaken
		}
	}
	return err
}

// TIME columns round-trip through pgtype.Time (microseconds since midnight).

func timeOfDayToPg(t TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t.MinuteOfDay()) * 60 * 1_000_000, Valid: true}
}

func nullableTimeOfDayToPg(t *TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return timeOfDayToPg(*t)
}

func pgToTimeOfDay(t pgtype.Time) TimeOfDay {
	minutes := int(t.Microseconds / (60 * 1_000_000))
	return TimeOfDay{Hour: minutes / 60, Minute: minutes % 60}
}

func pgToNullableTimeOfDay(t pgtype.Time) *TimeOfDay {
	if !t.Valid {
		return nil
	}
	v := pgToTimeOfDay(t)
	return &v
}

const appointmentColumns = `
	id, code, owner_name, phone, email, pet_name, pet_species, pet_age, pet_weight,
	reason, service, preferred_date, preferred_time,
	assigned_doctor_id, assigned_date, assigned_time,
	status, completion_status, prescription, payment_amount_cents, payment_status,
	created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var preferredTime pgtype.Time
	var assignedTime pgtype.Time

	err := row.Scan(
		&a.ID,
		&a.Code,
		&a.OwnerName,
		&a.Phone,
		&a.Email,
		&a.PetName,
		&a.PetSpecies,
		&a.PetAge,
		&a.PetWeight,
		&a.Reason,
		&a.Service,
		&a.PreferredDate,
		&preferredTime,
		&a.AssignedDoctorID,
		&a.AssignedDate,
		&assignedTime,
		&a.Status,
		&a.CompletionStatus,
		&a.Prescription,
		&a.PaymentAmountCents,
		&a.PaymentStatus,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.PreferredTime = pgToTimeOfDay(preferredTime)
	a.AssignedTime = pgToNullableTimeOfDay(assignedTime)
	return &a, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor

	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Specialty,
		&d.Email,
		&d.Phone,
		&d.Bio,
		&d.PhotoURL,
		&d.AccountEmail,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	return &d, nil
}

func (r *PgRepository) CreateAppointment(ctx context.Context, appt *Appointment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO appointments (
			id, code, owner_name, phone, email, pet_name, pet_species, pet_age, pet_weight,
			reason, service, preferred_date, preferred_time,
			status, completion_status, prescription, payment_status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, '', $16, now(), now())
	`,
		appt.ID, appt.Code, appt.OwnerName, appt.Phone, appt.Email,
		appt.PetName, appt.PetSpecies, appt.PetAge, appt.PetWeight,
		appt.Reason, appt.Service, appt.PreferredDate, timeOfDayToPg(appt.PreferredTime),
		appt.Status, appt.CompletionStatus, appt.PaymentStatus,
	)
	if err != nil {
		return mapConstraintErr(err)
	}
	return nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	return scanAppointment(row)
}

func (r *PgRepository) GetAppointmentByCode(ctx context.Context, code string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE code = $1`, code)
	return scanAppointment(row)
}

func (r *PgRepository) GetAppointmentDetail(ctx context.Context, code string) (*AppointmentDetail, error) {
	appt, err := r.GetAppointmentByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	detail := &AppointmentDetail{Appointment: *appt}
	if appt.AssignedDoctorID != nil {
		doc, err := r.GetDoctorByID(ctx, *appt.AssignedDoctorID)
		if err != nil && !errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		detail.Doctor = doc
	}
	return detail, nil
}

func (r *PgRepository) FindPreferredSlotHolder(ctx context.Context, date time.Time, t TimeOfDay) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE preferred_date = $1 AND preferred_time = $2
	`, date, timeOfDayToPg(t))
	return scanAppointment(row)
}

func (r *PgRepository) FindAssignmentHolder(ctx context.Context, doctorID uuid.UUID, date time.Time, slot TimeOfDay, excludeID uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE assigned_doctor_id = $1 AND assigned_date = $2 AND assigned_time = $3 AND id <> $4
	`, doctorID, date, timeOfDayToPg(slot), excludeID)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateAssignment(ctx context.Context, id, doctorID uuid.UUID, date time.Time, slot TimeOfDay) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET assigned_doctor_id = $2,
		    assigned_date = $3,
		    assigned_time = $4,
		    updated_at = now()
		WHERE id = $1
	`, id, doctorID, date, timeOfDayToPg(slot))
	if err != nil {
		return mapConstraintErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)
	return scanAppointment(row)
}

func (r *PgRepository) UpdatePrescription(ctx context.Context, id uuid.UUID, prescription string, completion CompletionStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET prescription = $2,
		    completion_status = $3,
		    updated_at = now()
		WHERE id = $1
	`, id, prescription, completion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) UpdatePayment(ctx context.Context, id uuid.UUID, amountCents int64, status PaymentStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET payment_amount_cents = $2,
		    payment_status = $3,
		    updated_at = now()
		WHERE id = $1
	`, id, amountCents, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) ListAppointmentsByEmail(ctx context.Context, email string) ([]AppointmentDetail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE email = $1
		ORDER BY COALESCE(assigned_date, preferred_date) DESC,
		         COALESCE(assigned_time, preferred_time) DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectDetails(ctx, rows)
}

func (r *PgRepository) ListAppointments(ctx context.Context, filter AppointmentFilter) ([]AppointmentDetail, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		query += ` AND status = ` + arg(filter.Status)
	}
	if filter.Service != "" {
		query += ` AND service = ` + arg(filter.Service)
	}
	if filter.DoctorID != nil {
		query += ` AND assigned_doctor_id = ` + arg(*filter.DoctorID)
	}
	if filter.DateFrom != nil {
		query += ` AND COALESCE(assigned_date, preferred_date) >= ` + arg(*filter.DateFrom)
	}
	if filter.DateTo != nil {
		query += ` AND COALESCE(assigned_date, preferred_date) <= ` + arg(*filter.DateTo)
	}
	if filter.WithRxOnly {
		query += ` AND prescription <> ''`
	}
	query += ` ORDER BY COALESCE(assigned_date, preferred_date), COALESCE(assigned_time, preferred_time)`
	query += ` LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg(filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectDetails(ctx, rows)
}

// collectDetails hydrates assigned doctors for a result set, fetching each
// doctor once.
func (r *PgRepository) collectDetails(ctx context.Context, rows pgx.Rows) ([]AppointmentDetail, error) {
	var appts []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	doctors := make(map[uuid.UUID]*Doctor)
	result := make([]AppointmentDetail, 0, len(appts))
	for _, a := range appts {
		detail := AppointmentDetail{Appointment: a}
		if a.AssignedDoctorID != nil {
			doc, ok := doctors[*a.AssignedDoctorID]
			if !ok {
				var err error
				doc, err = r.GetDoctorByID(ctx, *a.AssignedDoctorID)
				if err != nil && !errors.Is(err, ErrDoctorNotFound) {
					return nil, err
				}
				doctors[*a.AssignedDoctorID] = doc
			}
			detail.Doctor = doc
		}
		result = append(result, detail)
	}
	return result, nil
}

const doctorColumns = `id, name, specialty, email, phone, bio, photo_url, account_email, created_at, updated_at`

func (r *PgRepository) CreateDoctor(ctx context.Context, doc *Doctor) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO doctors (id, name, specialty, email, phone, bio, photo_url, account_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	`, doc.ID, doc.Name, doc.Specialty, doc.Email, doc.Phone, doc.Bio, doc.PhotoURL, doc.AccountEmail)
	return err
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.db.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id)
	return scanDoctor(row)
}

func (r *PgRepository) GetDoctorByAccountEmail(ctx context.Context, email string) (*Doctor, error) {
	row := r.db.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE account_email = $1`, email)
	return scanDoctor(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context, specialty ServiceKind) ([]Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors`
	args := []any{}
	if specialty != "" {
		query += ` WHERE specialty = $1`
		args = append(args, specialty)
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID, from, to time.Time, status AppointmentStatus) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE assigned_doctor_id = $1
		  AND assigned_date BETWEEN $2 AND $3
		  AND status = $4
		ORDER BY assigned_date, assigned_time
	`, doctorID, from, to, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
