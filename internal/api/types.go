package api

import (
	"time"

	"github.com/crescentvet/clinic-booking/internal/clinic"
)

type CreateAppointmentRequest struct {
	OwnerName     string `json:"owner_name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	PetName       string `json:"pet_name"`
	PetSpecies    string `json:"pet_species"`
	PetAge        string `json:"pet_age,omitempty"`
	PetWeight     string `json:"pet_weight,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Service       string `json:"service"`
	PreferredDate string `json:"preferred_date"`
	PreferredTime string `json:"preferred_time"`
}

type AssignRequest struct {
	DoctorID string `json:"doctor_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type PaymentRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
}

type PrescriptionRequest struct {
	ChiefComplaint string `json:"chief_complaint,omitempty"`
	Diagnosis      string `json:"diagnosis,omitempty"`
	Medications    string `json:"medications,omitempty"`
	Instructions   string `json:"instructions,omitempty"`
	FollowUp       string `json:"follow_up,omitempty"`
	MarkComplete   bool   `json:"mark_complete"`
}

type PrescriptionResponse struct {
	ChiefComplaint   string `json:"chief_complaint"`
	Diagnosis        string `json:"diagnosis"`
	Medications      string `json:"medications"`
	Instructions     string `json:"instructions"`
	FollowUp         string `json:"follow_up"`
	CompletionStatus string `json:"completion_status"`
}

type AppointmentResponse struct {
	Code             string `json:"code"`
	OwnerName        string `json:"owner_name"`
	Phone            string `json:"phone"`
	Email            string `json:"email,omitempty"`
	PetName          string `json:"pet_name"`
	PetSpecies       string `json:"pet_species"`
	PetAge           string `json:"pet_age,omitempty"`
	PetWeight        string `json:"pet_weight,omitempty"`
	Reason           string `json:"reason,omitempty"`
	Service          string `json:"service"`
	PreferredDate    string `json:"preferred_date"`
	PreferredTime    string `json:"preferred_time"`
	AssignedDoctor   string `json:"assigned_doctor,omitempty"`
	AssignedDate     string `json:"assigned_date,omitempty"`
	AssignedTime     string `json:"assigned_time,omitempty"`
	Status           string `json:"status"`
	CompletionStatus string `json:"completion_status"`
	PaymentAmount    *int64 `json:"payment_amount_cents,omitempty"`
	PaymentStatus    string `json:"payment_status"`
}

type DoctorResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Bio       string `json:"bio,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

type ScheduleResponse struct {
	Today    []AppointmentResponse `json:"today"`
	Upcoming []AppointmentResponse `json:"upcoming"`
}

type ReceiptResponse struct {
	Code          string `json:"code"`
	OwnerName     string `json:"owner_name"`
	PetName       string `json:"pet_name"`
	Service       string `json:"service"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Doctor        string `json:"doctor,omitempty"`
	PaymentAmount *int64 `json:"payment_amount_cents,omitempty"`
	PaymentStatus string `json:"payment_status"`
}

type RxReferenceResponse struct {
	Templates   []clinic.RxTemplate `json:"templates"`
	Medications []clinic.Medication `json:"medications"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func toAppointmentResponse(appt clinic.Appointment, doctor *clinic.Doctor) AppointmentResponse {
	resp := AppointmentResponse{
		Code:             appt.Code,
		OwnerName:        appt.OwnerName,
		Phone:            appt.Phone,
		Email:            appt.Email,
		PetName:          appt.PetName,
		PetSpecies:       string(appt.PetSpecies),
		PetAge:           appt.PetAge,
		PetWeight:        appt.PetWeight,
		Reason:           appt.Reason,
		Service:          string(appt.Service),
		PreferredDate:    appt.PreferredDate.Format(dateLayout),
		PreferredTime:    appt.PreferredTime.String(),
		Status:           string(appt.Status),
		CompletionStatus: string(appt.CompletionStatus),
		PaymentAmount:    appt.PaymentAmountCents,
		PaymentStatus:    string(appt.PaymentStatus),
	}
	if appt.AssignedDate != nil {
		resp.AssignedDate = appt.AssignedDate.Format(dateLayout)
	}
	if appt.AssignedTime != nil {
		resp.AssignedTime = appt.AssignedTime.String()
	}
	if doctor != nil {
		resp.AssignedDoctor = doctor.Name
	}
	return resp
}

func toDetailResponse(detail clinic.AppointmentDetail) AppointmentResponse {
	return toAppointmentResponse(detail.Appointment, detail.Doctor)
}

func toDoctorResponse(d clinic.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:        d.ID.String(),
		Name:      d.Name,
		Specialty: string(d.Specialty),
		Email:     d.Email,
		Phone:     d.Phone,
		Bio:       d.Bio,
		PhotoURL:  d.PhotoURL,
	}
}
