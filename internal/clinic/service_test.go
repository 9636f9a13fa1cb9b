package clinic

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/crescentvet/clinic-booking/internal/redis"
)

// passLocker runs the critical section inline without any locking. Conflict
// tests below rely on MemoryRepository's uniqueness checks instead.
type passLocker struct{}

func (passLocker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	return fn(ctx)
}

// contendedLocker refuses every acquisition, simulating a lost lock race.
type contendedLocker struct{}

func (contendedLocker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

// recordingNotifier captures lifecycle events so tests can assert on exactly
// which notifications fired.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(kind, code string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, kind+":"+code)
}

func (n *recordingNotifier) AppointmentConfirmed(ctx context.Context, appt *AppointmentDetail) {
	n.record("confirmed", appt.Code)
}

func (n *recordingNotifier) AppointmentCancelled(ctx context.Context, appt *AppointmentDetail) {
	n.record("cancelled", appt.Code)
}

func (n *recordingNotifier) AppointmentCompleted(ctx context.Context, appt *AppointmentDetail) {
	n.record("completed", appt.Code)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func newTestService(t *testing.T) (*Service, *MemoryRepository, *recordingNotifier) {
	t.Helper()
	repo := NewMemoryRepository()
	notifier := &recordingNotifier{}
	svc := NewService(repo, passLocker{}, notifier, nil, nil)
	return svc, repo, notifier
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func validBooking() BookingRequest {
	return BookingRequest{
		OwnerName:     "Amira Hassan",
		Phone:         "555-0142",
		Email:         "amira@example.com",
		PetName:       "Biscuit",
		PetSpecies:    SpeciesDog,
		PetAge:        "4 years",
		PetWeight:     "18 kg",
		Reason:        "annual checkup",
		Service:       ServicePreventiveCare,
		PreferredDate: date("2025-06-02"),
		PreferredTime: TimeOfDay{Hour: 10, Minute: 0},
	}
}

func seedDoctor(t *testing.T, repo *MemoryRepository, name string, specialty ServiceKind) *Doctor {
	t.Helper()
	doc := &Doctor{
		ID:        uuid.New(),
		Name:      name,
		Specialty: specialty,
		Email:     "vet@example.com",
	}
	require.NoError(t, repo.CreateDoctor(context.Background(), doc))
	return doc
}

func TestCreateRequest(t *testing.T) {
	svc, _, notifier := newTestService(t)

	appt, err := svc.CreateRequest(context.Background(), validBooking())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, appt.ID)
	assert.Len(t, appt.Code, 8)
	assert.Equal(t, StatusPending, appt.Status)
	assert.Equal(t, CompletionIncomplete, appt.CompletionStatus)
	assert.Equal(t, PaymentPending, appt.PaymentStatus)
	assert.Empty(t, notifier.Events(), "booking alone must not notify anyone")
}

func TestCreateRequestValidation(t *testing.T) {
	svc, repo, _ := newTestService(t)

	cases := []struct {
		name   string
		mutate func(*BookingRequest)
	}{
		{"missing owner", func(r *BookingRequest) { r.OwnerName = "  " }},
		{"missing pet name", func(r *BookingRequest) { r.PetName = "" }},
		{"missing phone", func(r *BookingRequest) { r.Phone = "" }},
		{"unknown species", func(r *BookingRequest) { r.PetSpecies = "dragon" }},
		{"unknown service", func(r *BookingRequest) { r.Service = "Grooming" }},
		{"zero date", func(r *BookingRequest) { r.PreferredDate = time.Time{} }},
		{"off-grid time", func(r *BookingRequest) { r.PreferredTime = TimeOfDay{Hour: 10, Minute: 15} }},
		{"before opening", func(r *BookingRequest) { r.PreferredTime = TimeOfDay{Hour: 8, Minute: 30} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validBooking()
			tc.mutate(&req)

			_, err := svc.CreateRequest(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	appts, err := repo.ListAppointments(context.Background(), AppointmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, appts, "rejected requests must not be stored")
}

func TestCreateRequestDuplicatePreferredSlot(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.CreateRequest(context.Background(), validBooking())
	require.NoError(t, err)

	second := validBooking()
	second.OwnerName = "Jordan Pike"
	second.Email = "jordan@example.com"
	_, err = svc.CreateRequest(context.Background(), second)
	assert.ErrorIs(t, err, ErrPreferredSlotTaken)

	appts, err := repo.ListAppointments(context.Background(), AppointmentFilter{})
	require.NoError(t, err)
	assert.Len(t, appts, 1, "losing request must leave no record")
}

func TestCreateRequestDifferentDaySameTime(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateRequest(context.Background(), validBooking())
	require.NoError(t, err)

	second := validBooking()
	second.PreferredDate = date("2025-06-03")
	_, err = svc.CreateRequest(context.Background(), second)
	assert.NoError(t, err, "same time on another day is a different slot")
}

func TestCreateRequestLockContention(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, contendedLocker{}, nil, nil, nil)

	_, err := svc.CreateRequest(context.Background(), validBooking())
	assert.ErrorIs(t, err, ErrSlotContended)
}

func TestAssign(t *testing.T) {
	svc, repo, _ := newTestService(t)
	doc := seedDoctor(t, repo, "Sarah Chen", ServicePreventiveCare)

	appt, err := svc.CreateRequest(context.Background(), validBooking())
	require.NoError(t, err)

	assigned, err := svc.Assign(context.Background(), appt.Code, doc.ID, date("2025-06-03"), TimeOfDay{Hour: 10, Minute: 30})
	require.NoError(t, err)

	require.True(t, assigned.Assigned())
	assert.Equal(t, doc.ID, *assigned.AssignedDoctorID)
	assert.Equal(t, TimeOfDay{Hour: 10, Minute: 30}, *assigned.AssignedTime)
	assert.Equal(t, StatusPending, assigned.Status, "assignment must not change status")
}

func TestAssignIneligibleDoctor(t *testing.T) {
	svc, repo, _ := newTestService(t)
	dentist := seedDoctor(t, repo, "Marcus Webb", ServiceDentalCare)

	appt, err := svc.CreateRequest(context.Background(), validBooking())
	require.NoError(t, err)

	_, err = svc.Assign(context.Background(), appt.Code, dentist.ID, date("2025-06-03"), TimeOfDay{Hour: 10, Minute: 30})
	assert.ErrorIs(t, err, ErrDoctorNotEligible)

	stored, err := repo.GetAppointmentByCode(context.Background(), appt.Code)
	require.NoError(t, err)
	assert.False(t, stored.Assigned(), "failed assignment must leave the appointment unassigned")
}

func TestAssignDoctorSlotConflict(t *testing.T) {
	svc, repo, _ := newTestService(t)
	doc := seedDoctor(t, repo, "Sarah Chen", ServiceDentalCare)

	first := validBooking()
	first.Service = ServiceDentalCare
	a1, err := svc.CreateRequest(context.Background(), first)
	require.NoError(t, err)

	second := validBooking()
	second.Service = ServiceDentalCare
	second.PreferredTime = TimeOfDay{Hour: 11, Minute: 0}
	a2, err := svc.CreateRequest(context.Background(), second)
	require.NoError(t, err)

	slot := TimeOfDay{Hour: 10, Minute: 30}
	_, err = svc.Assign(context.Background(), a1.Code, doc.ID, date("2025-06-03"), slot)
	require.NoError(t, err)

	_, err = svc.Assign(context.Background(), a2.Code, doc.ID, date("2025-06-03"), slot)
	assert.ErrorIs(t, err, ErrDoctorSlotTaken)

	stored, err := repo.GetAppointmentByCode(context.Background(), a2.Code)
	require.NoError(t, err)
	assert.False(t, stored.Assigned())
}

func TestAssignSelfReassignment(t *testing.T) {
	svc, repo, _ := newTestService(t)
	doc := seedDoctor(t, repo, "Sarah Chen", ServicePreventiveCare)

	appt, err := svc.CreateRequest(context.Background(), validBooking())
	require.NoError(t, err)

	slot := TimeOfDay{Hour: 10, Minute: 30}
	_, err = svc.Assign(context.Background(), appt.Code, doc.ID, date("2025-06-03"), slot)
	require.NoError(t, err)

	// Saving the same assignment again must not conflict with itself.
	_, err = svc.Assign(context.Background(), appt.Code, doc.ID, date("2025-06-03"), slot)
	assert.NoError(t, err)
}

func TestAssignInvalidSlot(t *testing.T) {
	svc, repo, _ := newTestService(t)
	doc := seedDoctor(t, repo, "Sarah Chen", ServicePreventiveCare)

	appt, err := svc.CreateRequest(context.Background(), validBooking())
	require.NoError(t, err)

	_, err = svc.Assign(context.Background(), appt.Code, doc.ID, date("2025-06-03"), TimeOfDay{Hour: 7, Minute: 0})
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestAssignUnknownAppointment(t *testing.T) {
	svc, repo, _ := newTestService(t)
	doc := seedDoctor(t, repo, "Sarah Chen", ServicePreventiveCare)

	_, err := svc.Assign(context.Background(), "NOPE1234", doc.ID, date("2025-06-03"), TimeOfDay{Hour: 10, Minute: 0})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestTransitionLifecycle(t *testing.T) {
	svc, _, notifier := newTestService(t)

	appt, err := svc.CreateRequest(context.Background(), validBooking())
	require.NoError(t, err)

	confirmed, err := svc.Transition(context.Background(), appt.Code, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)

	completed, err := svc.Transition(context.Background(), appt.Code, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)

	assert.Equal(t, []string{"confirmed:" + appt.Code, "completed:" + appt.Code}, notifier.Events())
}

func TestTransitionSameStatusIsNoOp(t *testing.T) {
	svc, _, notifier := newTestService(t)

	appt, err := svc.CreateRequest(context.Background(), validBooking())
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), appt.Code, StatusConfirmed)
	require.NoError(t, err)

	again, err := svc.Transition(context.Background(), appt.Code, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, again.Status)

	assert.Len(t, notifier.Events(), 1, "re-saving the same status must not notify again")
}

func TestTransitionRejectsIllegalMoves(t *testing.T) {
	svc, _, _ := newTestService(t)

	cases := []struct {
		name string
		path []AppointmentStatus
		to   AppointmentStatus
	}{
		{"pending to completed", nil, StatusCompleted},
		{"cancelled is terminal", []AppointmentStatus{StatusCancelled}, StatusConfirmed},
		{"completed is terminal", []AppointmentStatus{StatusConfirmed, StatusCompleted}, StatusCancelled},
		{"completed back to pending", []AppointmentStatus{StatusConfirmed, StatusCompleted}, StatusPending},
	}

	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validBooking()
			req.PreferredDate = date("2025-07-01").AddDate(0, 0, i)
			appt, err := svc.CreateRequest(context.Background(), req)
			require.NoError(t, err)

			for _, step := range tc.path {
				_, err := svc.Transition(context.Background(), appt.Code, step)
				require.NoError(t, err)
			}

			_, err = svc.Transition(context.Background(), appt.Code, tc.to)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Transition(context.Background(), "ANYCODE1", "archived")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSavePrescription(t *testing.T) {
	svc, repo, _ := newTestService(t)
	doc := seedDoctor(t, repo, "Sarah Chen", ServicePreventiveCare)

	appt, err := svc.CreateRequest(context.Background(), validBooking())
	require.NoError(t, err)
	_, err = svc.Assign(context.Background(), appt.Code, doc.ID, date("2025-06-03"), TimeOfDay{Hour: 10, Minute: 0})
	require.NoError(t, err)

	note := RxNote{
		ChiefComplaint: "fever",
		Medications:    "amoxicillin",
		FollowUp:       "recheck in 10 days",
	}
	require.NoError(t, svc.SavePrescription(context.Background(), doc.ID, appt.Code, note, false))

	got, completion, err := svc.GetPrescription(context.Background(), doc.ID, appt.Code)
	require.NoError(t, err)
	assert.Equal(t, note, got)
	assert.Equal(t, CompletionIncomplete, completion)

	// Saving again with the flag set flips completion, and clearing it later
	// flips it back; completion always follows the explicit flag.
	require.NoError(t, svc.SavePrescription(context.Background(), doc.ID, appt.Code, note, true))
	_, completion, err = svc.GetPrescription(context.Background(), doc.ID, appt.Code)
	require.NoError(t, err)
	assert.Equal(t, CompletionComplete, completion)

	require.NoError(t, svc.SavePrescription(context.Background(), doc.ID, appt.Code, note, false))
	_, completion, err = svc.GetPrescription(context.Background(), doc.ID, appt.Code)
	require.NoError(t, err)
	assert.Equal(t, CompletionIncomplete, completion)
}

func TestPrescriptionRequiresAssignedDoctor(t *testing.T) {
	svc, repo, _ := newTestService(t)
	assignedDoc := seedDoctor(t, repo, "Sarah Chen", ServicePreventiveCare)
	otherDoc := seedDoctor(t, repo, "Marcus Webb", ServicePreventiveCare)

	appt, err := svc.CreateRequest(context.Background(), validBooking())
	require.NoError(t, err)

	// Unassigned appointment: nobody may touch the note.
	err = svc.SavePrescription(context.Background(), assignedDoc.ID, appt.Code, RxNote{Diagnosis: "x"}, false)
	assert.ErrorIs(t, err, ErrNotAssignedDoctor)

	_, err = svc.Assign(context.Background(), appt.Code, assignedDoc.ID, date("2025-06-03"), TimeOfDay{Hour: 10, Minute: 0})
	require.NoError(t, err)

	err = svc.SavePrescription(context.Background(), otherDoc.ID, appt.Code, RxNote{Diagnosis: "x"}, false)
	assert.ErrorIs(t, err, ErrNotAssignedDoctor)

	_, _, err = svc.GetPrescription(context.Background(), otherDoc.ID, appt.Code)
	assert.ErrorIs(t, err, ErrNotAssignedDoctor)
}

func TestCompletionIndependentOfStatus(t *testing.T) {
	svc, repo, _ := newTestService(t)
	doc := seedDoctor(t, repo, "Sarah Chen", ServicePreventiveCare)

	appt, err := svc.CreateRequest(context.Background(), validBooking())
	require.NoError(t, err)
	_, err = svc.Assign(context.Background(), appt.Code, doc.ID, date("2025-06-03"), TimeOfDay{Hour: 10, Minute: 0})
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), appt.Code, StatusConfirmed)
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), appt.Code, StatusCompleted)
	require.NoError(t, err)

	stored, err := repo.GetAppointmentByCode(context.Background(), appt.Code)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Equal(t, CompletionIncomplete, stored.CompletionStatus,
		"status reaching completed must not set the clinical completion flag")
}

func TestRecordPayment(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.CreateRequest(context.Background(), validBooking())
	require.NoError(t, err)

	paid, err := svc.RecordPayment(context.Background(), appt.Code, 7500, PaymentPaid)
	require.NoError(t, err)
	require.NotNil(t, paid.PaymentAmountCents)
	assert.Equal(t, int64(7500), *paid.PaymentAmountCents)
	assert.Equal(t, PaymentPaid, paid.PaymentStatus)

	_, err = svc.RecordPayment(context.Background(), appt.Code, -1, PaymentPaid)
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = svc.RecordPayment(context.Background(), appt.Code, 100, "chargeback")
	assert.ErrorIs(t, err, ErrInvalidPayment)
}

func TestDoctorSchedule(t *testing.T) {
	svc, repo, _ := newTestService(t)
	doc := seedDoctor(t, repo, "Sarah Chen", ServicePreventiveCare)
	day := date("2025-06-02")

	book := func(prefSlot, assignSlot TimeOfDay, assignDay time.Time, confirm bool) {
		req := validBooking()
		req.PreferredTime = prefSlot
		appt, err := svc.CreateRequest(context.Background(), req)
		require.NoError(t, err)
		_, err = svc.Assign(context.Background(), appt.Code, doc.ID, assignDay, assignSlot)
		require.NoError(t, err)
		if confirm {
			_, err = svc.Transition(context.Background(), appt.Code, StatusConfirmed)
			require.NoError(t, err)
		}
	}

	book(TimeOfDay{Hour: 9, Minute: 0}, TimeOfDay{Hour: 9, Minute: 0}, day, true)
	book(TimeOfDay{Hour: 9, Minute: 30}, TimeOfDay{Hour: 9, Minute: 30}, day, false)
	book(TimeOfDay{Hour: 10, Minute: 0}, TimeOfDay{Hour: 10, Minute: 0}, day.AddDate(0, 0, 3), true)
	book(TimeOfDay{Hour: 10, Minute: 30}, TimeOfDay{Hour: 10, Minute: 30}, day.AddDate(0, 0, 9), true)

	today, upcoming, err := svc.DoctorSchedule(context.Background(), doc.ID, day)
	require.NoError(t, err)

	require.Len(t, today, 1, "only confirmed appointments appear on the schedule")
	assert.Equal(t, TimeOfDay{Hour: 9, Minute: 0}, *today[0].AssignedTime)

	require.Len(t, upcoming, 1, "upcoming covers the next seven days only")
	assert.Equal(t, TimeOfDay{Hour: 10, Minute: 0}, *upcoming[0].AssignedTime)
}

// scheduleWindowRepo records the date bounds handed to ListDoctorAppointments.
type scheduleWindowRepo struct {
	*MemoryRepository
	windows [][2]time.Time
}

func (r *scheduleWindowRepo) ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID, from, to time.Time, status AppointmentStatus) ([]Appointment, error) {
	r.windows = append(r.windows, [2]time.Time{from, to})
	return r.MemoryRepository.ListDoctorAppointments(ctx, doctorID, from, to, status)
}

func TestDoctorScheduleTruncatesDayToMidnight(t *testing.T) {
	repo := &scheduleWindowRepo{MemoryRepository: NewMemoryRepository()}
	svc := NewService(repo, passLocker{}, nil, nil, nil)
	doc := seedDoctor(t, repo.MemoryRepository, "Sarah Chen", ServicePreventiveCare)

	// A wall-clock day: assigned_date comparisons only work against midnight.
	midDay := time.Date(2025, 6, 2, 14, 37, 5, 0, time.UTC)
	_, _, err := svc.DoctorSchedule(context.Background(), doc.ID, midDay)
	require.NoError(t, err)

	require.Len(t, repo.windows, 2)
	midnight := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, midnight, repo.windows[0][0])
	assert.Equal(t, midnight, repo.windows[0][1])
	assert.Equal(t, midnight.AddDate(0, 0, 1), repo.windows[1][0])
	assert.Equal(t, midnight.AddDate(0, 0, 7), repo.windows[1][1])
}

func TestDoctorsFilter(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedDoctor(t, repo, "Sarah Chen", ServicePreventiveCare)
	seedDoctor(t, repo, "Marcus Webb", ServiceDentalCare)

	all, err := svc.Doctors(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	dental, err := svc.Doctors(context.Background(), ServiceDentalCare)
	require.NoError(t, err)
	require.Len(t, dental, 1)
	assert.Equal(t, "Marcus Webb", dental[0].Name)

	_, err = svc.Doctors(context.Background(), "Astrology")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestListClientAppointments(t *testing.T) {
	svc, _, _ := newTestService(t)

	first := validBooking()
	_, err := svc.CreateRequest(context.Background(), first)
	require.NoError(t, err)

	second := validBooking()
	second.PreferredTime = TimeOfDay{Hour: 11, Minute: 0}
	_, err = svc.CreateRequest(context.Background(), second)
	require.NoError(t, err)

	other := validBooking()
	other.Email = "someone.else@example.com"
	other.PreferredTime = TimeOfDay{Hour: 12, Minute: 0}
	_, err = svc.CreateRequest(context.Background(), other)
	require.NoError(t, err)

	mine, err := svc.ListClientAppointments(context.Background(), "amira@example.com")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
