package model

import "time"

// Known appointment statuses. Any other value is stored as given.
const (
	AppointmentStatusScheduled = "Scheduled"
	AppointmentStatusConfirmed = "Confirmed"
	AppointmentStatusCancelled = "Cancelled"
)

type Appointment struct {
	ID        int64     `db:"id" json:"id"`
	PatientID int64     `db:"patient_id" json:"patientId"`
	DoctorID  int64     `db:"doctor_id" json:"doctorId"`
	DateTime  time.Time `db:"date_time" json:"dateTime"`
	Status    string    `db:"status" json:"status"`
	Purpose   *string   `db:"purpose" json:"purpose"`
}

// AppointmentDetail is an appointment with its patient and doctor expanded
type AppointmentDetail struct {
	Appointment
	Patient PatientSummary `json:"patient"`
	Doctor  Doctor         `json:"doctor"`
}

type CreateAppointmentRequest struct {
	PatientID int64   `json:"patientId"`
	DoctorID  int64   `json:"doctorId"`
	DateTime  string  `json:"dateTime" binding:"required"`
	Status    string  `json:"status"`
	Purpose   *string `json:"purpose"`
}

type UpdateAppointmentRequest struct {
	PatientID *int64  `json:"patientId"`
	DoctorID  *int64  `json:"doctorId"`
	DateTime  *string `json:"dateTime"`
	Status    *string `json:"status"`
	Purpose   *string `json:"purpose"`
}

// AppointmentFilter selects appointments. From and To are inclusive bounds.
type AppointmentFilter struct {
	PatientID *int64
	DoctorID  *int64
	From      *time.Time
	To        *time.Time
	Pagination
}

// BookingOutcome tells a create from an upgrade of an existing slot.
type BookingOutcome string

const (
	BookingCreated  BookingOutcome = "created"
	BookingUpgraded BookingOutcome = "upgraded"
)
