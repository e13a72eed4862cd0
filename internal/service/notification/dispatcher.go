package notification

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/jwalitptl/hpms-api/internal/email"
	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/sms"
	"github.com/jwalitptl/hpms-api/pkg/metrics"
	"github.com/jwalitptl/hpms-api/pkg/validator"
)

const (
	defaultTimeout = 10 * time.Second
	dateLayout     = "2006-01-02 15:04 UTC"
)

// Notifier tells a patient about a change to one of their appointments.
type Notifier interface {
	Notify(ctx context.Context, patient *model.Patient, appointment *model.Appointment, doctor *model.Doctor, action model.NotificationAction)
}

// Message is the rendered content of an appointment notification.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// BuildMessage renders the notification for action.
func BuildMessage(appointment *model.Appointment, doctor *model.Doctor, action model.NotificationAction) Message {
	purpose := "N/A"
	if appointment.Purpose != nil && *appointment.Purpose != "" {
		purpose = *appointment.Purpose
	}
	when := appointment.DateTime.UTC().Format(dateLayout)
	headline := fmt.Sprintf("Your appointment has been %s.", action)

	text := fmt.Sprintf("%s\nDate/Time: %s\nDoctor: %s\nPurpose: %s", headline, when, doctor.Name, purpose)
	body := fmt.Sprintf(
		"<p>%s</p><ul><li><strong>Date/Time:</strong> %s</li><li><strong>Doctor:</strong> %s</li><li><strong>Purpose:</strong> %s</li></ul>",
		html.EscapeString(headline), html.EscapeString(when), html.EscapeString(doctor.Name), html.EscapeString(purpose),
	)

	return Message{
		Subject: "Appointment " + strings.ToUpper(string(action[:1])) + string(action[1:]),
		Text:    text,
		HTML:    body,
	}
}

// Dispatcher sends notifications over SMS and email. Delivery is best-effort:
// failures are logged and counted, never returned to the caller.
type Dispatcher struct {
	email   email.Sender
	sms     sms.Sender
	emailCB *gobreaker.CircuitBreaker
	smsCB   *gobreaker.CircuitBreaker
	timeout time.Duration
	metrics *metrics.Metrics
}

func NewDispatcher(emailSender email.Sender, smsSender sms.Sender, timeout time.Duration, m *metrics.Metrics) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Dispatcher{
		email:   emailSender,
		sms:     smsSender,
		emailCB: newBreaker(model.ChannelEmail),
		smsCB:   newBreaker(model.ChannelSMS),
		timeout: timeout,
		metrics: m,
	}
}

func newBreaker(channel string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notification-" + channel,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}

func (d *Dispatcher) Notify(ctx context.Context, patient *model.Patient, appointment *model.Appointment, doctor *model.Doctor, action model.NotificationAction) {
	msg := BuildMessage(appointment, doctor, action)
	logger := log.With().Int64("appointment_id", appointment.ID).Int64("patient_id", patient.ID).Str("action", string(action)).Logger()

	if patient.Phone != nil && strings.TrimSpace(*patient.Phone) != "" {
		phone := strings.TrimSpace(*patient.Phone)
		d.deliver(ctx, model.ChannelSMS, d.smsCB, func(ctx context.Context) error {
			return d.sms.SendSMS(ctx, phone, msg.Text)
		})
	} else {
		logger.Info().Msg("patient has no phone number, skipping sms")
		d.record(model.ChannelSMS, model.NotificationSkipped)
	}

	if validator.IsValidEmail(patient.Email) {
		d.deliver(ctx, model.ChannelEmail, d.emailCB, func(ctx context.Context) error {
			return d.email.SendEmail(ctx, patient.Email, msg.Subject, msg.Text, msg.HTML)
		})
	} else {
		logger.Warn().Str("email", patient.Email).Msg("patient email missing or invalid, skipping email")
		d.record(model.ChannelEmail, model.NotificationSkipped)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, channel string, cb *gobreaker.CircuitBreaker, send func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("channel", channel).Interface("panic", r).Msg("notification channel panicked")
			d.record(channel, model.NotificationFailed)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	_, err := cb.Execute(func() (interface{}, error) {
		return nil, send(ctx)
	})
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("failed to send notification")
		d.record(channel, model.NotificationFailed)
		return
	}
	d.record(channel, model.NotificationSent)
}

func (d *Dispatcher) record(channel, result string) {
	d.metrics.Notifications.WithLabelValues(channel, result).Inc()
}
