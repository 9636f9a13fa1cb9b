package clinic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDoctorNotFound      = errors.New("doctor not found")

	// ErrPreferredSlotTaken means another request already holds the exact
	// (preferred_date, preferred_time) pair, regardless of doctor or service.
	ErrPreferredSlotTaken = errors.New("preferred slot already requested")

	// ErrDoctorSlotTaken means the doctor already holds an assignment at the
	// requested date and time.
	ErrDoctorSlotTaken = errors.New("doctor already booked at this time")
)

// AppointmentFilter narrows staff listings. Zero values mean "any".
type AppointmentFilter struct {
	Status     AppointmentStatus
	Service    ServiceKind
	DoctorID   *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
	WithRxOnly bool
	Limit      int
	Offset     int
}

// Repository contains all DB interactions needed by the service.
//
// CreateAppointment and UpdateAssignment must surface the storage layer's
// uniqueness constraints as ErrPreferredSlotTaken and ErrDoctorSlotTaken so
// the second of two racing writers fails even if both pass the read check.
type Repository interface {
	CreateAppointment(ctx context.Context, appt *Appointment) error
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetAppointmentByCode(ctx context.Context, code string) (*Appointment, error)
	GetAppointmentDetail(ctx context.Context, code string) (*AppointmentDetail, error)
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]AppointmentDetail, error)
	ListAppointmentsByEmail(ctx context.Context, email string) ([]AppointmentDetail, error)

	// Conflict checks
	FindPreferredSlotHolder(ctx context.Context, date time.Time, t TimeOfDay) (*Appointment, error)
	FindAssignmentHolder(ctx context.Context, doctorID uuid.UUID, date time.Time, slot TimeOfDay, excludeID uuid.UUID) (*Appointment, error)

	// Scheduling and lifecycle writes
	UpdateAssignment(ctx context.Context, id, doctorID uuid.UUID, date time.Time, slot TimeOfDay) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)
	UpdatePrescription(ctx context.Context, id uuid.UUID, prescription string, completion CompletionStatus) error
	UpdatePayment(ctx context.Context, id uuid.UUID, amountCents int64, status PaymentStatus) error

	// Doctors
	CreateDoctor(ctx context.Context, doc *Doctor) error
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetDoctorByAccountEmail(ctx context.Context, email string) (*Doctor, error)
	ListDoctors(ctx context.Context, specialty ServiceKind) ([]Doctor, error)
	ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID, from, to time.Time, status AppointmentStatus) ([]Appointment, error)
}
