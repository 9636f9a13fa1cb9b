package clinic

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type CompletionStatus string

const (
	CompletionIncomplete CompletionStatus = "incomplete"
	CompletionComplete   CompletionStatus = "complete"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// ServiceKind is one of the clinic's six departments. A doctor's specialty
// uses the same enumeration; only a doctor whose specialty matches an
// appointment's service may be assigned to it.
type ServiceKind string

const (
	ServicePreventiveCare        ServiceKind = "Preventive Care"
	ServiceSurgicalProcedures    ServiceKind = "Surgical Procedures"
	ServiceDentalCare            ServiceKind = "Dental Care"
	ServiceDiagnosticImaging     ServiceKind = "Diagnostic Imaging"
	ServiceEmergencyServices     ServiceKind = "Emergency Services"
	ServiceNutritionalCounseling ServiceKind = "Nutritional Counseling"
)

func ServiceKinds() []ServiceKind {
	return []ServiceKind{
		ServicePreventiveCare,
		ServiceSurgicalProcedures,
		ServiceDentalCare,
		ServiceDiagnosticImaging,
		ServiceEmergencyServices,
		ServiceNutritionalCounseling,
	}
}

func ValidServiceKind(s ServiceKind) bool {
	for _, k := range ServiceKinds() {
		if s == k {
			return true
		}
	}
	return false
}

type Species string

const (
	SpeciesDog    Species = "dog"
	SpeciesCat    Species = "cat"
	SpeciesBird   Species = "bird"
	SpeciesRabbit Species = "rabbit"
	SpeciesOther  Species = "other"
)

func ValidSpecies(s Species) bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRabbit, SpeciesOther:
		return true
	}
	return false
}

// Doctor is a clinic veterinarian. AccountEmail links the doctor to a login
// account when present; doctors without one never act through the API.
type Doctor struct {
	ID           uuid.UUID
	Name         string
	Specialty    ServiceKind
	Email        string
	Phone        string
	Bio          string
	PhotoURL     string
	AccountEmail *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Appointment is one booking request and, once staff schedule it, one
// assignment. Code is the short client-facing identifier printed on receipts;
// ID is the storage key.
type Appointment struct {
	ID         uuid.UUID
	Code       string
	OwnerName  string
	Phone      string
	Email      string
	PetName    string
	PetSpecies Species
	PetAge     string
	PetWeight  string
	Reason     string
	Service    ServiceKind

	PreferredDate time.Time
	PreferredTime TimeOfDay

	AssignedDoctorID *uuid.UUID
	AssignedDate     *time.Time
	AssignedTime     *TimeOfDay

	Status           AppointmentStatus
	CompletionStatus CompletionStatus
	Prescription     string

	PaymentAmountCents *int64
	PaymentStatus      PaymentStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Assigned reports whether staff have scheduled the appointment.
func (a *Appointment) Assigned() bool {
	return a.AssignedDoctorID != nil && a.AssignedDate != nil && a.AssignedTime != nil
}

// ResolvedDate is the assigned date when scheduled, otherwise the client's
// preferred date. Notifications and receipts use this fallback.
func (a *Appointment) ResolvedDate() time.Time {
	if a.AssignedDate != nil {
		return *a.AssignedDate
	}
	return a.PreferredDate
}

func (a *Appointment) ResolvedTime() TimeOfDay {
	if a.AssignedTime != nil {
		return *a.AssignedTime
	}
	return a.PreferredTime
}

// AppointmentDetail joins an appointment with its assigned doctor, when any.
type AppointmentDetail struct {
	Appointment
	Doctor *Doctor
}
