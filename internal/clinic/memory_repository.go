package clinic

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository used in tests and local
// development. It enforces the same uniqueness rules as the Postgres schema
// under a single mutex, so the service's behavior matches either backend.
type MemoryRepository struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*Appointment
	doctors      map[uuid.UUID]*Doctor
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		appointments: make(map[uuid.UUID]*Appointment),
		doctors:      make(map[uuid.UUID]*Doctor),
	}
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func (r *MemoryRepository) CreateAppointment(ctx context.Context, appt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.appointments {
		if sameDay(existing.PreferredDate, appt.PreferredDate) && existing.PreferredTime == appt.PreferredTime {
			return ErrPreferredSlotTaken
		}
	}

	copied := *appt
	r.appointments[appt.ID] = &copied
	return nil
}

func (r *MemoryRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *appt
	return &copied, nil
}

func (r *MemoryRepository) GetAppointmentByCode(ctx context.Context, code string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt := r.findByCode(code)
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	copied := *appt
	return &copied, nil
}

func (r *MemoryRepository) findByCode(code string) *Appointment {
	for _, appt := range r.appointments {
		if appt.Code == code {
			return appt
		}
	}
	return nil
}

func (r *MemoryRepository) GetAppointmentDetail(ctx context.Context, code string) (*AppointmentDetail, error) {
	appt, err := r.GetAppointmentByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	detail := &AppointmentDetail{Appointment: *appt}
	if appt.AssignedDoctorID != nil {
		if doc, err := r.GetDoctorByID(ctx, *appt.AssignedDoctorID); err == nil {
			detail.Doctor = doc
		}
	}
	return detail, nil
}

func (r *MemoryRepository) FindPreferredSlotHolder(ctx context.Context, date time.Time, t TimeOfDay) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, appt := range r.appointments {
		if sameDay(appt.PreferredDate, date) && appt.PreferredTime == t {
			copied := *appt
			return &copied, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *MemoryRepository) FindAssignmentHolder(ctx context.Context, doctorID uuid.UUID, date time.Time, slot TimeOfDay, excludeID uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, appt := range r.appointments {
		if appt.ID == excludeID || !appt.Assigned() {
			continue
		}
		if *appt.AssignedDoctorID == doctorID && sameDay(*appt.AssignedDate, date) && *appt.AssignedTime == slot {
			copied := *appt
			return &copied, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *MemoryRepository) UpdateAssignment(ctx context.Context, id, doctorID uuid.UUID, date time.Time, slot TimeOfDay) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	for _, other := range r.appointments {
		if other.ID == id || !other.Assigned() {
			continue
		}
		if *other.AssignedDoctorID == doctorID && sameDay(*other.AssignedDate, date) && *other.AssignedTime == slot {
			return ErrDoctorSlotTaken
		}
	}

	d := date
	s := slot
	appt.AssignedDoctorID = &doctorID
	appt.AssignedDate = &d
	appt.AssignedTime = &s
	appt.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok || appt.Status != from {
		return nil, ErrAppointmentNotFound
	}
	appt.Status = to
	appt.UpdatedAt = time.Now()
	copied := *appt
	return &copied, nil
}

func (r *MemoryRepository) UpdatePrescription(ctx context.Context, id uuid.UUID, prescription string, completion CompletionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	appt.Prescription = prescription
	appt.CompletionStatus = completion
	appt.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRepository) UpdatePayment(ctx context.Context, id uuid.UUID, amountCents int64, status PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	amount := amountCents
	appt.PaymentAmountCents = &amount
	appt.PaymentStatus = status
	appt.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRepository) ListAppointments(ctx context.Context, filter AppointmentFilter) ([]AppointmentDetail, error) {
	r.mu.Lock()
	appts := make([]Appointment, 0, len(r.appointments))
	for _, appt := range r.appointments {
		if filter.Status != "" && appt.Status != filter.Status {
			continue
		}
		if filter.Service != "" && appt.Service != filter.Service {
			continue
		}
		if filter.DoctorID != nil && (appt.AssignedDoctorID == nil || *appt.AssignedDoctorID != *filter.DoctorID) {
			continue
		}
		if filter.WithRxOnly && strings.TrimSpace(appt.Prescription) == "" {
			continue
		}
		if filter.DateFrom != nil && appt.ResolvedDate().Format("2006-01-02") < filter.DateFrom.Format("2006-01-02") {
			continue
		}
		if filter.DateTo != nil && appt.ResolvedDate().Format("2006-01-02") > filter.DateTo.Format("2006-01-02") {
			continue
		}
		appts = append(appts, *appt)
	}
	r.mu.Unlock()

	sort.Slice(appts, func(i, j int) bool {
		di, dj := appts[i].ResolvedDate(), appts[j].ResolvedDate()
		if !sameDay(di, dj) {
			return di.Before(dj)
		}
		return appts[i].ResolvedTime().Before(appts[j].ResolvedTime())
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(appts) {
			appts = nil
		} else {
			appts = appts[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(appts) > filter.Limit {
		appts = appts[:filter.Limit]
	}

	return r.hydrate(ctx, appts), nil
}

func (r *MemoryRepository) ListAppointmentsByEmail(ctx context.Context, email string) ([]AppointmentDetail, error) {
	r.mu.Lock()
	appts := make([]Appointment, 0)
	for _, appt := range r.appointments {
		if appt.Email == email {
			appts = append(appts, *appt)
		}
	}
	r.mu.Unlock()

	sort.Slice(appts, func(i, j int) bool {
		di, dj := appts[i].ResolvedDate(), appts[j].ResolvedDate()
		if !sameDay(di, dj) {
			return dj.Before(di)
		}
		return appts[j].ResolvedTime().Before(appts[i].ResolvedTime())
	})

	return r.hydrate(ctx, appts), nil
}

func (r *MemoryRepository) hydrate(ctx context.Context, appts []Appointment) []AppointmentDetail {
	details := make([]AppointmentDetail, 0, len(appts))
	for _, appt := range appts {
		detail := AppointmentDetail{Appointment: appt}
		if appt.AssignedDoctorID != nil {
			if doc, err := r.GetDoctorByID(ctx, *appt.AssignedDoctorID); err == nil {
				detail.Doctor = doc
			}
		}
		details = append(details, detail)
	}
	return details
}

func (r *MemoryRepository) CreateDoctor(ctx context.Context, doc *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *doc
	r.doctors[doc.ID] = &copied
	return nil
}

func (r *MemoryRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	copied := *doc
	return &copied, nil
}

func (r *MemoryRepository) GetDoctorByAccountEmail(ctx context.Context, email string) (*Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.doctors {
		if doc.AccountEmail != nil && *doc.AccountEmail == email {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, ErrDoctorNotFound
}

func (r *MemoryRepository) ListDoctors(ctx context.Context, specialty ServiceKind) ([]Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var docs []Doctor
	for _, doc := range r.doctors {
		if specialty != "" && doc.Specialty != specialty {
			continue
		}
		docs = append(docs, *doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

func (r *MemoryRepository) ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID, from, to time.Time, status AppointmentStatus) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fromDay := from.Format("2006-01-02")
	toDay := to.Format("2006-01-02")

	var result []Appointment
	for _, appt := range r.appointments {
		if !appt.Assigned() || *appt.AssignedDoctorID != doctorID || appt.Status != status {
			continue
		}
		day := appt.AssignedDate.Format("2006-01-02")
		if day < fromDay || day > toDay {
			continue
		}
		result = append(result, *appt)
	}

	sort.Slice(result, func(i, j int) bool {
		if !sameDay(*result[i].AssignedDate, *result[j].AssignedDate) {
			return result[i].AssignedDate.Before(*result[j].AssignedDate)
		}
		return result[i].AssignedTime.Before(*result[j].AssignedTime)
	})
	return result, nil
}
