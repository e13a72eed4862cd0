package notification

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hpms-api/internal/email"
	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/sms"
	"github.com/jwalitptl/hpms-api/pkg/metrics"
)

func fixtures() (*model.Patient, *model.Appointment, *model.Doctor) {
	phone := "+15551234"
	purpose := "Checkup"
	patient := &model.Patient{ID: 1, Name: "Jane", Email: "jane@example.com", Phone: &phone}
	appointment := &model.Appointment{
		ID:        9,
		PatientID: 1,
		DoctorID:  2,
		DateTime:  time.Date(2024, 5, 2, 14, 30, 0, 0, time.UTC),
		Status:    model.AppointmentStatusScheduled,
		Purpose:   &purpose,
	}
	doctor := &model.Doctor{ID: 2, Name: "Dr. Who", Specialty: "General"}
	return patient, appointment, doctor
}

func TestBuildMessage(t *testing.T) {
	_, appointment, doctor := fixtures()

	msg := BuildMessage(appointment, doctor, model.NotificationConfirmed)
	assert.Equal(t, "Appointment Confirmed", msg.Subject)
	assert.Contains(t, msg.Text, "Your appointment has been confirmed.")
	assert.Contains(t, msg.Text, "2024-05-02 14:30 UTC")
	assert.Contains(t, msg.Text, "Dr. Who")
	assert.Contains(t, msg.Text, "Checkup")
	assert.Contains(t, msg.HTML, "<p>Your appointment has been confirmed.</p>")

	appointment.Purpose = nil
	msg = BuildMessage(appointment, doctor, model.NotificationUpdated)
	assert.Equal(t, "Appointment Updated", msg.Subject)
	assert.Contains(t, msg.Text, "Purpose: N/A")
}

func TestNotify_BothChannels(t *testing.T) {
	patient, appointment, doctor := fixtures()
	mail := &email.MockSender{}
	text := &sms.MockSender{}
	m := metrics.NewNop()

	NewDispatcher(mail, text, time.Second, m).Notify(context.Background(), patient, appointment, doctor, model.NotificationConfirmed)

	require.Len(t, text.Calls(), 1)
	assert.Equal(t, "+15551234", text.Calls()[0].To)
	require.Len(t, mail.Calls(), 1)
	assert.Equal(t, "jane@example.com", mail.Calls()[0].To)
	assert.Equal(t, "Appointment Confirmed", mail.Calls()[0].Subject)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(model.ChannelSMS, model.NotificationSent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(model.ChannelEmail, model.NotificationSent)))
}

func TestNotify_SkipsMissingPhoneAndInvalidEmail(t *testing.T) {
	patient, appointment, doctor := fixtures()
	patient.Phone = nil
	patient.Email = "not-an-email"
	mail := &email.MockSender{}
	text := &sms.MockSender{}
	m := metrics.NewNop()

	NewDispatcher(mail, text, time.Second, m).Notify(context.Background(), patient, appointment, doctor, model.NotificationUpdated)

	assert.Empty(t, text.Calls())
	assert.Empty(t, mail.Calls())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(model.ChannelSMS, model.NotificationSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(model.ChannelEmail, model.NotificationSkipped)))
}

func TestNotify_ChannelFailuresAreContained(t *testing.T) {
	patient, appointment, doctor := fixtures()
	mail := &email.MockSender{ShouldPanic: true}
	text := &sms.MockSender{ShouldFail: true}
	m := metrics.NewNop()

	assert.NotPanics(t, func() {
		NewDispatcher(mail, text, time.Second, m).Notify(context.Background(), patient, appointment, doctor, model.NotificationConfirmed)
	})

	assert.Len(t, text.Calls(), 1)
	assert.Len(t, mail.Calls(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(model.ChannelSMS, model.NotificationFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(model.ChannelEmail, model.NotificationFailed)))
}

func TestNotify_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	patient, appointment, doctor := fixtures()
	patient.Email = ""
	text := &sms.MockSender{ShouldFail: true}
	d := NewDispatcher(&email.MockSender{}, text, time.Second, metrics.NewNop())

	for i := 0; i < 8; i++ {
		d.Notify(context.Background(), patient, appointment, doctor, model.NotificationConfirmed)
	}

	// Five failures trip the breaker; later sends fail fast without reaching the provider.
	assert.Len(t, text.Calls(), 5)
}
