package model

// NotificationAction describes what happened to an appointment.
type NotificationAction string

const (
	NotificationConfirmed NotificationAction = "confirmed"
	NotificationUpdated   NotificationAction = "updated"
)

// Notification channels and delivery results
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped"
)
