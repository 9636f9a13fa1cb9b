package api

import (
	"encoding/csv"
	"net/http"
	"strings"

	"github.com/crescentvet/clinic-booking/internal/clinic"
)

// CSV exports mirror the columns the front desk has always worked with.

func exportAppointmentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := svc.ListAppointments(r.Context(), clinic.AppointmentFilter{Limit: 200})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="appointments.csv"`)

		writer := csv.NewWriter(w)
		_ = writer.Write([]string{"ID", "Owner", "Pet", "Date", "Time", "Service", "Doctor", "Status"})

		for _, d := range details {
			date, slot := "", ""
			if d.AssignedDate != nil {
				date = d.AssignedDate.Format(dateLayout)
			}
			if d.AssignedTime != nil {
				slot = d.AssignedTime.String()
			}
			doctor := ""
			if d.Doctor != nil {
				doctor = d.Doctor.Name
			}
			_ = writer.Write([]string{
				d.Code, d.OwnerName, d.PetName, date, slot,
				string(d.Service), doctor, string(d.Status),
			})
		}
		writer.Flush()
	}
}

func exportPrescriptionsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := svc.ListAppointments(r.Context(), clinic.AppointmentFilter{WithRxOnly: true, Limit: 200})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="prescriptions.csv"`)

		writer := csv.NewWriter(w)
		_ = writer.Write([]string{"Appointment ID", "Date", "Owner", "Pet", "Doctor", "Prescription"})

		for _, d := range details {
			doctor := ""
			if d.Doctor != nil {
				doctor = d.Doctor.Name
			}
			_ = writer.Write([]string{
				d.Code,
				d.ResolvedDate().Format(dateLayout),
				d.OwnerName,
				d.PetName,
				doctor,
				strings.ReplaceAll(d.Prescription, "\n", " | "),
			})
		}
		writer.Flush()
	}
}
