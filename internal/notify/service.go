package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crescentvet/clinic-booking/internal/clinic"
	"github.com/crescentvet/clinic-booking/internal/observability/metrics"
)

// Service implements clinic.Notifier over an EmailSender. All sends are
// best-effort: failures are logged and counted, never returned, so a broken
// mail provider cannot fail a status transition.
type Service struct {
	sender      EmailSender
	clinicName  string
	clinicPhone string
	logger      *zap.Logger
	metrics     *metrics.BookingMetrics
}

func NewService(sender EmailSender, clinicName, clinicPhone string, logger *zap.Logger, m *metrics.BookingMetrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sender:      sender,
		clinicName:  clinicName,
		clinicPhone: clinicPhone,
		logger:      logger,
		metrics:     m,
	}
}

func (s *Service) AppointmentConfirmed(ctx context.Context, appt *clinic.AppointmentDetail) {
	s.deliver(ctx, "confirmed", appt, "Your Appointment is Confirmed", s.confirmationBody(appt))
}

func (s *Service) AppointmentCancelled(ctx context.Context, appt *clinic.AppointmentDetail) {
	s.deliver(ctx, "cancelled", appt, "Your Appointment Has Been Cancelled", s.cancellationBody(appt))
}

func (s *Service) AppointmentCompleted(ctx context.Context, appt *clinic.AppointmentDetail) {
	s.deliver(ctx, "completed", appt, "Your Appointment is Completed!", s.completionBody(appt))
}

func (s *Service) deliver(ctx context.Context, kind string, appt *clinic.AppointmentDetail, subject, body string) {
	if s.sender == nil || appt.Email == "" {
		s.metrics.ObserveNotification(kind, "skipped")
		return
	}
	if err := s.sender.Send(ctx, appt.Email, subject, body); err != nil {
		s.metrics.ObserveNotification(kind, "failed")
		s.logger.Warn("notification delivery failed",
			zap.String("kind", kind),
			zap.String("code", appt.Code),
			zap.Error(err),
		)
		return
	}
	s.metrics.ObserveNotification(kind, "sent")
}

func salutation(appt *clinic.AppointmentDetail) string {
	if appt.OwnerName != "" {
		return appt.OwnerName
	}
	return "Valued Client"
}

// Bodies use the resolved date/time: the assigned slot when scheduled,
// otherwise the client's preferred one.

func (s *Service) confirmationBody(appt *clinic.AppointmentDetail) string {
	vetLine := ""
	if appt.Doctor != nil && appt.Doctor.Name != "" {
		vetLine = fmt.Sprintf("\nVeterinarian assigned: Dr. %s", appt.Doctor.Name)
	}
	return fmt.Sprintf(`Dear %s,

Your appointment (ID: %s) for %s has been confirmed.

Appointment Details:
Date: %s
Time: %s%s

Please arrive 10 minutes early to complete any necessary paperwork.

If you need to reschedule or have any questions, please contact us at %s or reply to this email.

Warm regards,
The %s Team
`,
		salutation(appt), appt.Code, appt.PetName,
		appt.ResolvedDate().Format("2006-01-02"), appt.ResolvedTime(), vetLine,
		s.clinicPhone, s.clinicName)
}

func (s *Service) cancellationBody(appt *clinic.AppointmentDetail) string {
	return fmt.Sprintf(`Dear %s,

We regret to inform you that your appointment (ID: %s) for %s, scheduled for %s at %s has been cancelled.
For more information, please contact us at %s or reply to this email.

We apologize for any inconvenience.

Best regards,
The %s Team
`,
		salutation(appt), appt.Code, appt.PetName,
		appt.ResolvedDate().Format("2006-01-02"), appt.ResolvedTime(),
		s.clinicPhone, s.clinicName)
}

const socialBlock = `Keep in touch with us for updates, pet care tips and more-
Facebook: https://facebook.com/crescentveterinaryclinic
Instagram: https://instagram.com/crescentveterinaryclinic
X: https://x.com/crescentveterinaryclinic`

func (s *Service) completionBody(appt *clinic.AppointmentDetail) string {
	return fmt.Sprintf(`Dear %s,

Your appointment (ID: %s) for %s, scheduled for %s at %s has been completed.
Thank you for being with us!

`+socialBlock+`

Best regards,
The %s Team
`,
		salutation(appt), appt.Code, appt.PetName,
		appt.ResolvedDate().Format("2006-01-02"), appt.ResolvedTime(),
		s.clinicName)
}
