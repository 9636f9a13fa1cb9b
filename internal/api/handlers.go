package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/crescentvet/clinic-booking/internal/clinic"
	"github.com/crescentvet/clinic-booking/internal/identity"
)

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clinic.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, clinic.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, clinic.ErrPreferredSlotTaken):
		writeError(w, http.StatusConflict, "preferred_slot_taken", "that date and time has already been requested, please pick another")
	case errors.Is(err, clinic.ErrDoctorSlotTaken):
		writeError(w, http.StatusConflict, "doctor_slot_conflict", err.Error())
	case errors.Is(err, clinic.ErrSlotContended):
		writeError(w, http.StatusConflict, "slot_contended", "slot is currently being booked, please retry shortly")
	case errors.Is(err, clinic.ErrDoctorNotEligible):
		writeError(w, http.StatusUnprocessableEntity, "doctor_not_eligible", err.Error())
	case errors.Is(err, clinic.ErrInvalidSlot):
		writeError(w, http.StatusUnprocessableEntity, "invalid_slot", err.Error())
	case errors.Is(err, clinic.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, clinic.ErrNotAssignedDoctor):
		writeError(w, http.StatusForbidden, "not_assigned_doctor", err.Error())
	case errors.Is(err, clinic.ErrInvalidRequest), errors.Is(err, clinic.ErrInvalidPayment):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func createAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		date, err := parseDate(req.PreferredDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_preferred_date", "preferred_date must be YYYY-MM-DD")
			return
		}
		slot, err := clinic.ParseTimeOfDay(req.PreferredTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_preferred_time", "preferred_time must be HH:MM")
			return
		}

		email := req.Email
		if actor, ok := identity.ActorFromContext(r.Context()); ok && email == "" {
			email = actor.Email
		}

		appt, err := svc.CreateRequest(r.Context(), clinic.BookingRequest{
			OwnerName:     req.OwnerName,
			Phone:         req.Phone,
			Email:         email,
			PetName:       req.PetName,
			PetSpecies:    clinic.Species(req.PetSpecies),
			PetAge:        req.PetAge,
			PetWeight:     req.PetWeight,
			Reason:        req.Reason,
			Service:       clinic.ServiceKind(req.Service),
			PreferredDate: date,
			PreferredTime: slot,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(*appt, nil))
	}
}

func myAppointmentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := identity.ActorFromContext(r.Context())
		details, err := svc.ListClientAppointments(r.Context(), actor.Email)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		resp := make([]AppointmentResponse, 0, len(details))
		for _, d := range details {
			resp = append(resp, toDetailResponse(d))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func listSlotsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slots := clinic.DailySlots()
		out := make([]string, 0, len(slots))
		for _, s := range slots {
			out = append(out, s.String())
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listDoctorsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		specialty := clinic.ServiceKind(r.URL.Query().Get("specialty"))
		docs, err := svc.Doctors(r.Context(), specialty)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		resp := make([]DoctorResponse, 0, len(docs))
		for _, d := range docs {
			resp = append(resp, toDoctorResponse(d))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func listAppointmentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := clinic.AppointmentFilter{
			Status:  clinic.AppointmentStatus(q.Get("status")),
			Service: clinic.ServiceKind(q.Get("service")),
		}
		if v := q.Get("doctor_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
				return
			}
			filter.DoctorID = &id
		}
		if v := q.Get("from"); v != "" {
			d, err := parseDate(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_from", "from must be YYYY-MM-DD")
				return
			}
			filter.DateFrom = &d
		}
		if v := q.Get("to"); v != "" {
			d, err := parseDate(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_to", "to must be YYYY-MM-DD")
				return
			}
			filter.DateTo = &d
		}

		details, err := svc.ListAppointments(r.Context(), filter)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		resp := make([]AppointmentResponse, 0, len(details))
		for _, d := range details {
			resp = append(resp, toDetailResponse(d))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := svc.GetAppointment(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDetailResponse(*detail))
	}
}

func assignAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AssignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}
		date, err := parseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		slot, err := clinic.ParseTimeOfDay(req.Time)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "time must be HH:MM")
			return
		}

		appt, err := svc.Assign(r.Context(), chi.URLParam(r, "code"), doctorID, date, slot)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt, nil))
	}
}

func transitionAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		appt, err := svc.Transition(r.Context(), chi.URLParam(r, "code"), clinic.AppointmentStatus(req.Status))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt, nil))
	}
}

func paymentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		appt, err := svc.RecordPayment(r.Context(), chi.URLParam(r, "code"), req.AmountCents, clinic.PaymentStatus(req.Status))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt, nil))
	}
}

func receiptHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := svc.GetAppointment(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		resp := ReceiptResponse{
			Code:          detail.Code,
			OwnerName:     detail.OwnerName,
			PetName:       detail.PetName,
			Service:       string(detail.Service),
			Date:          detail.ResolvedDate().Format(dateLayout),
			Time:          detail.ResolvedTime().String(),
			PaymentAmount: detail.PaymentAmountCents,
			PaymentStatus: string(detail.PaymentStatus),
		}
		if detail.Doctor != nil {
			resp.Doctor = detail.Doctor.Name
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func doctorScheduleHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := identity.ActorFromContext(r.Context())

		day := time.Now()
		if v := r.URL.Query().Get("date"); v != "" {
			parsed, err := parseDate(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
				return
			}
			day = parsed
		}

		today, upcoming, err := svc.DoctorSchedule(r.Context(), actor.Doctor.ID, day)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := ScheduleResponse{
			Today:    make([]AppointmentResponse, 0, len(today)),
			Upcoming: make([]AppointmentResponse, 0, len(upcoming)),
		}
		for _, a := range today {
			resp.Today = append(resp.Today, toAppointmentResponse(a, actor.Doctor))
		}
		for _, a := range upcoming {
			resp.Upcoming = append(resp.Upcoming, toAppointmentResponse(a, actor.Doctor))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func savePrescriptionHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := identity.ActorFromContext(r.Context())

		var req PrescriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		note := clinic.RxNote{
			ChiefComplaint: req.ChiefComplaint,
			Diagnosis:      req.Diagnosis,
			Medications:    req.Medications,
			Instructions:   req.Instructions,
			FollowUp:       req.FollowUp,
		}
		if err := svc.SavePrescription(r.Context(), actor.Doctor.ID, chi.URLParam(r, "code"), note, req.MarkComplete); err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "prescription saved"})
	}
}

func getPrescriptionHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := identity.ActorFromContext(r.Context())

		note, completion, err := svc.GetPrescription(r.Context(), actor.Doctor.ID, chi.URLParam(r, "code"))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, PrescriptionResponse{
			ChiefComplaint:   note.ChiefComplaint,
			Diagnosis:        note.Diagnosis,
			Medications:      note.Medications,
			Instructions:     note.Instructions,
			FollowUp:         note.FollowUp,
			CompletionStatus: string(completion),
		})
	}
}

func rxReferenceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, RxReferenceResponse{
			Templates:   clinic.RxTemplates(),
			Medications: clinic.Medications(),
		})
	}
}
