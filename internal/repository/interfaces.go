package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/hpms-api/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness rule.
	ErrDuplicate = errors.New("duplicate record")
	// ErrMissingReference is returned when a write points at a parent row that does not exist.
	ErrMissingReference = errors.New("referenced record does not exist")
	// ErrReferenced is returned when a delete is blocked by dependent rows.
	ErrReferenced = errors.New("record is still referenced")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByID(ctx context.Context, id int64) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		List(ctx context.Context, page model.Pagination) ([]*model.User, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id int64) (*model.Patient, error)
		GetByEmail(ctx context.Context, email string) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filter *model.PatientFilter) ([]*model.Patient, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id int64) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filter *model.DoctorFilter) ([]*model.Doctor, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id int64) error
		// List orders by date_time then id and applies the filter's skip/limit.
		List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error)
		// FindActiveBySlot returns the non-cancelled appointment at the exact slot.
		FindActiveBySlot(ctx context.Context, patientID, doctorID int64, at time.Time) (*model.Appointment, error)
		ListByPatient(ctx context.Context, patientID int64) ([]model.Appointment, error)
		ListByDoctor(ctx context.Context, doctorID int64) ([]model.Appointment, error)
	}

	MedicalHistoryRepository interface {
		Create(ctx context.Context, history *model.MedicalHistory) error
		Get(ctx context.Context, id int64) (*model.MedicalHistory, error)
		Update(ctx context.Context, history *model.MedicalHistory) error
		Delete(ctx context.Context, id int64) error
		// ListByPatient orders by date descending. A nil page returns every row.
		ListByPatient(ctx context.Context, patientID int64, page *model.Pagination) ([]model.MedicalHistory, error)
	}

	// TokenRepository tracks revoked access tokens by their jti.
	TokenRepository interface {
		Revoke(ctx context.Context, jti string, until time.Time) error
		IsRevoked(ctx context.Context, jti string) (bool, error)
	}
)

// Store bundles every repository the services need.
type Store struct {
	Users          UserRepository
	Patients       PatientRepository
	Doctors        DoctorRepository
	Appointments   AppointmentRepository
	MedicalHistory MedicalHistoryRepository
	Tokens         TokenRepository
}
