package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crescentvet/clinic-booking/internal/observability/metrics"
	redisclient "github.com/crescentvet/clinic-booking/internal/redis"
)

var (
	ErrInvalidRequest    = errors.New("invalid booking request")
	ErrInvalidSlot       = errors.New("not a bookable time slot")
	ErrDoctorNotEligible = errors.New("doctor specialty does not match the requested service")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotAssignedDoctor = errors.New("only the assigned doctor may access this prescription")
	ErrSlotContended     = errors.New("slot is currently being booked, please retry")
	ErrInvalidPayment    = errors.New("invalid payment update")
)

// Notifier receives lifecycle events. Implementations are best-effort: the
// service never inspects an outcome, and a failed delivery must not fail the
// transition that triggered it.
type Notifier interface {
	AppointmentConfirmed(ctx context.Context, appt *AppointmentDetail)
	AppointmentCancelled(ctx context.Context, appt *AppointmentDetail)
	AppointmentCompleted(ctx context.Context, appt *AppointmentDetail)
}

// BookingRequest is the client-supplied payload for a new appointment.
type BookingRequest struct {
	OwnerName     string
	Phone         string
	Email         string
	PetName       string
	PetSpecies    Species
	PetAge        string
	PetWeight     string
	Reason        string
	Service       ServiceKind
	PreferredDate time.Time
	PreferredTime TimeOfDay
}

type Service struct {
	repo     Repository
	locker   redisclient.Locker
	notifier Notifier
	logger   *zap.Logger
	metrics  *metrics.BookingMetrics
}

func NewService(repo Repository, locker redisclient.Locker, notifier Notifier, logger *zap.Logger, m *metrics.BookingMetrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		locker:   locker,
		notifier: notifier,
		logger:   logger,
		metrics:  m,
	}
}

func preferredLockKey(date time.Time, t TimeOfDay) string {
	return fmt.Sprintf("lock:request:%s:%s", date.Format("2006-01-02"), t)
}

func assignmentLockKey(doctorID uuid.UUID, date time.Time, slot TimeOfDay) string {
	return fmt.Sprintf("lock:assign:%s:%s:%s", doctorID, date.Format("2006-01-02"), slot)
}

// CreateRequest registers a new appointment request in pending status.
// It holds the per (date, time) lock across the duplicate check and the
// insert so two concurrent requests for the same preferred slot cannot both
// succeed; the storage unique constraint backstops the same invariant.
func (s *Service) CreateRequest(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	appt := &Appointment{
		ID:               uuid.New(),
		Code:             newAppointmentCode(),
		OwnerName:        strings.TrimSpace(req.OwnerName),
		Phone:            strings.TrimSpace(req.Phone),
		Email:            strings.TrimSpace(req.Email),
		PetName:          strings.TrimSpace(req.PetName),
		PetSpecies:       req.PetSpecies,
		PetAge:           strings.TrimSpace(req.PetAge),
		PetWeight:        strings.TrimSpace(req.PetWeight),
		Reason:           strings.TrimSpace(req.Reason),
		Service:          req.Service,
		PreferredDate:    req.PreferredDate,
		PreferredTime:    req.PreferredTime,
		Status:           StatusPending,
		CompletionStatus: CompletionIncomplete,
		PaymentStatus:    PaymentPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := s.locker.WithLock(ctx, preferredLockKey(req.PreferredDate, req.PreferredTime), func(lockCtx context.Context) error {
		existing, err := s.repo.FindPreferredSlotHolder(lockCtx, req.PreferredDate, req.PreferredTime)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check preferred slot: %w", err)
		}
		if existing != nil {
			return ErrPreferredSlotTaken
		}
		if err := s.repo.CreateAppointment(lockCtx, appt); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			err = ErrSlotContended
		}
		s.metrics.ObserveRequest(string(req.Service), "rejected")
		return nil, err
	}

	s.metrics.ObserveRequest(string(req.Service), "created")
	s.logger.Info("appointment request created",
		zap.String("code", appt.Code),
		zap.String("service", string(appt.Service)),
		zap.String("preferred_date", appt.PreferredDate.Format("2006-01-02")),
		zap.String("preferred_time", appt.PreferredTime.String()),
	)
	return appt, nil
}

func validateRequest(req BookingRequest) error {
	switch {
	case strings.TrimSpace(req.OwnerName) == "":
		return fmt.Errorf("%w: owner name is required", ErrInvalidRequest)
	case strings.TrimSpace(req.PetName) == "":
		return fmt.Errorf("%w: pet name is required", ErrInvalidRequest)
	case strings.TrimSpace(req.Phone) == "":
		return fmt.Errorf("%w: phone is required", ErrInvalidRequest)
	case !ValidSpecies(req.PetSpecies):
		return fmt.Errorf("%w: unknown species %q", ErrInvalidRequest, req.PetSpecies)
	case !ValidServiceKind(req.Service):
		return fmt.Errorf("%w: unknown service %q", ErrInvalidRequest, req.Service)
	case req.PreferredDate.IsZero():
		return fmt.Errorf("%w: preferred date is required", ErrInvalidRequest)
	case !IsBookableSlot(req.PreferredTime):
		return fmt.Errorf("%w: %s is not a bookable time", ErrInvalidRequest, req.PreferredTime)
	}
	return nil
}

// newAppointmentCode returns the short uppercase identifier printed on
// receipts and used in client-facing URLs.
func newAppointmentCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// Assign schedules an appointment: doctor, date and time slot. The status is
// left untouched; callers pair a successful assignment with a transition to
// confirmed. A failed assignment leaves any previous assignment unchanged.
func (s *Service) Assign(ctx context.Context, code string, doctorID uuid.UUID, date time.Time, slot TimeOfDay) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if !IsBookableSlot(slot) {
		s.metrics.ObserveAssignment("invalid_slot")
		return nil, fmt.Errorf("%w: %s", ErrInvalidSlot, slot)
	}

	doctor, err := s.repo.GetDoctorByID(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if doctor.Specialty != appt.Service {
		s.metrics.ObserveAssignment("ineligible")
		return nil, fmt.Errorf("%w: Dr. %s practices %s, appointment requires %s",
			ErrDoctorNotEligible, doctor.Name, doctor.Specialty, appt.Service)
	}

	err = s.locker.WithLock(ctx, assignmentLockKey(doctorID, date, slot), func(lockCtx context.Context) error {
		holder, err := s.repo.FindAssignmentHolder(lockCtx, doctorID, date, slot, appt.ID)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check doctor schedule: %w", err)
		}
		if holder != nil {
			return fmt.Errorf("%w: Dr. %s on %s at %s",
				ErrDoctorSlotTaken, doctor.Name, date.Format("2006-01-02"), slot)
		}
		if err := s.repo.UpdateAssignment(lockCtx, appt.ID, doctorID, date, slot); err != nil {
			return fmt.Errorf("save assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			err = ErrSlotContended
		}
		if errors.Is(err, ErrDoctorSlotTaken) {
			s.metrics.ObserveAssignment("conflict")
		}
		return nil, err
	}

	appt.AssignedDoctorID = &doctorID
	assignedDate := date
	appt.AssignedDate = &assignedDate
	assignedSlot := slot
	appt.AssignedTime = &assignedSlot

	s.metrics.ObserveAssignment("assigned")
	s.logger.Info("appointment assigned",
		zap.String("code", appt.Code),
		zap.String("doctor", doctor.Name),
		zap.String("date", date.Format("2006-01-02")),
		zap.String("slot", slot.String()),
	)
	return appt, nil
}

// legal status moves driven by the workflow; cancelled and completed are
// terminal here.
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func transitionAllowed(from, to AppointmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves an appointment to a new status and emits the matching
// notification. Re-saving the current status is a no-op and emits nothing:
// a notification fires once per change of value, not per save.
func (s *Service) Transition(ctx context.Context, code string, to AppointmentStatus) (*Appointment, error) {
	if !ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}

	appt, err := s.repo.GetAppointmentByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if appt.Status == to {
		return appt, nil
	}
	if !transitionAllowed(appt.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, to)
	}

	updated, err := s.repo.UpdateStatus(ctx, appt.ID, appt.Status, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Compare-and-set miss: someone else moved the status first.
			return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.metrics.ObserveTransition(string(to))
	s.logger.Info("appointment status changed",
		zap.String("code", updated.Code),
		zap.String("from", string(appt.Status)),
		zap.String("to", string(to)),
	)

	s.notifyTransition(ctx, updated, to)
	return updated, nil
}

// notifyTransition is fire-and-forget: any failure is the notifier's problem,
// never the transition's.
func (s *Service) notifyTransition(ctx context.Context, appt *Appointment, to AppointmentStatus) {
	if s.notifier == nil {
		return
	}
	detail, err := s.repo.GetAppointmentDetail(ctx, appt.Code)
	if err != nil {
		s.logger.Warn("skipping notification, could not load appointment detail",
			zap.String("code", appt.Code), zap.Error(err))
		detail = &AppointmentDetail{Appointment: *appt}
	}
	switch to {
	case StatusConfirmed:
		s.notifier.AppointmentConfirmed(ctx, detail)
	case StatusCancelled:
		s.notifier.AppointmentCancelled(ctx, detail)
	case StatusCompleted:
		s.notifier.AppointmentCompleted(ctx, detail)
	}
}

// SavePrescription encodes and stores a clinical note, and writes the
// completion flag as an explicit value. Only the assigned doctor may write.
func (s *Service) SavePrescription(ctx context.Context, doctorID uuid.UUID, code string, note RxNote, markComplete bool) error {
	appt, err := s.repo.GetAppointmentByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("load appointment: %w", err)
	}
	if appt.AssignedDoctorID == nil || *appt.AssignedDoctorID != doctorID {
		return ErrNotAssignedDoctor
	}

	completion := CompletionIncomplete
	if markComplete {
		completion = CompletionComplete
	}

	if err := s.repo.UpdatePrescription(ctx, appt.ID, EncodeRxNote(note), completion); err != nil {
		return fmt.Errorf("save prescription: %w", err)
	}

	s.logger.Info("prescription saved",
		zap.String("code", appt.Code),
		zap.String("completion_status", string(completion)),
	)
	return nil
}

// GetPrescription decodes the stored note for the assigned doctor.
func (s *Service) GetPrescription(ctx context.Context, doctorID uuid.UUID, code string) (RxNote, CompletionStatus, error) {
	appt, err := s.repo.GetAppointmentByCode(ctx, code)
	if err != nil {
		return RxNote{}, "", fmt.Errorf("load appointment: %w", err)
	}
	if appt.AssignedDoctorID == nil || *appt.AssignedDoctorID != doctorID {
		return RxNote{}, "", ErrNotAssignedDoctor
	}
	return DecodeRxNote(appt.Prescription), appt.CompletionStatus, nil
}

// RecordPayment updates the payment fields on an appointment.
func (s *Service) RecordPayment(ctx context.Context, code string, amountCents int64, status PaymentStatus) (*Appointment, error) {
	if amountCents < 0 {
		return nil, fmt.Errorf("%w: negative amount", ErrInvalidPayment)
	}
	if !ValidPaymentStatus(status) {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidPayment, status)
	}

	appt, err := s.repo.GetAppointmentByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if err := s.repo.UpdatePayment(ctx, appt.ID, amountCents, status); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	appt.PaymentAmountCents = &amountCents
	appt.PaymentStatus = status
	return appt, nil
}

// GetAppointment retrieves a fully hydrated appointment by code.
func (s *Service) GetAppointment(ctx context.Context, code string) (*AppointmentDetail, error) {
	detail, err := s.repo.GetAppointmentDetail(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return detail, nil
}

// ListClientAppointments returns the booking history for one client email.
func (s *Service) ListClientAppointments(ctx context.Context, email string) ([]AppointmentDetail, error) {
	appts, err := s.repo.ListAppointmentsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list client appointments: %w", err)
	}
	return appts, nil
}

// ListAppointments is the staff listing with filters and pagination.
func (s *Service) ListAppointments(ctx context.Context, filter AppointmentFilter) ([]AppointmentDetail, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	appts, err := s.repo.ListAppointments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// DoctorSchedule returns a doctor's confirmed appointments for the given day
// plus the following seven days. The day is truncated to midnight: assigned_date
// is a DATE column, and a mid-day lower bound would exclude the whole day.
func (s *Service) DoctorSchedule(ctx context.Context, doctorID uuid.UUID, day time.Time) (today, upcoming []Appointment, err error) {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	today, err = s.repo.ListDoctorAppointments(ctx, doctorID, day, day, StatusConfirmed)
	if err != nil {
		return nil, nil, fmt.Errorf("list today's appointments: %w", err)
	}
	upcoming, err = s.repo.ListDoctorAppointments(ctx, doctorID, day.AddDate(0, 0, 1), day.AddDate(0, 0, 7), StatusConfirmed)
	if err != nil {
		return nil, nil, fmt.Errorf("list upcoming appointments: %w", err)
	}
	return today, upcoming, nil
}

// Doctors lists the clinic's doctors, optionally filtered by specialty.
func (s *Service) Doctors(ctx context.Context, specialty ServiceKind) ([]Doctor, error) {
	if specialty != "" && !ValidServiceKind(specialty) {
		return nil, fmt.Errorf("%w: unknown specialty %q", ErrInvalidRequest, specialty)
	}
	docs, err := s.repo.ListDoctors(ctx, specialty)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return docs, nil
}
