package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/repository"
	"github.com/jwalitptl/hpms-api/internal/service/notification"
	apperrors "github.com/jwalitptl/hpms-api/pkg/errors"
	"github.com/jwalitptl/hpms-api/pkg/httputil"
	"github.com/jwalitptl/hpms-api/pkg/metrics"
)

type Service struct {
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	doctors      repository.DoctorRepository
	notifier     notification.Notifier
	metrics      *metrics.Metrics
}

func NewService(appointments repository.AppointmentRepository, patients repository.PatientRepository,
	doctors repository.DoctorRepository, notifier notification.Notifier, m *metrics.Metrics) *Service {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{
		appointments: appointments,
		patients:     patients,
		doctors:      doctors,
		notifier:     notifier,
		metrics:      m,
	}
}

// ListQuery holds the optional filters of List. Date accepts any timestamp
// form ParseDateTime does; only its UTC calendar day is used.
type ListQuery struct {
	PatientID *int64
	DoctorID  *int64
	Date      string
	model.Pagination
}

func statusIs(status, want string) bool {
	return strings.EqualFold(strings.TrimSpace(status), want)
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// resolve loads the patient and then the doctor an appointment points at.
func (s *Service) resolve(ctx context.Context, patientID, doctorID int64) (*model.Patient, *model.Doctor, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.InvalidReference("patientId", patientID)
		}
		return nil, nil, apperrors.StoreUnavailable(err)
	}

	doctor, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.InvalidReference("doctorId", doctorID)
		}
		return nil, nil, apperrors.StoreUnavailable(err)
	}
	return patient, doctor, nil
}

func expand(a *model.Appointment, patient *model.Patient, doctor *model.Doctor) *model.AppointmentDetail {
	return &model.AppointmentDetail{
		Appointment: *a,
		Patient:     model.PatientSummary{Patient: *patient},
		Doctor:      *doctor,
	}
}

func (s *Service) writeError(ctx context.Context, err error, a *model.Appointment) error {
	switch {
	case errors.Is(err, repository.ErrMissingReference):
		// a parent vanished after resolve; report whichever one is gone
		if _, _, rerr := s.resolve(ctx, a.PatientID, a.DoctorID); rerr != nil {
			return rerr
		}
		return apperrors.InvalidReference("patientId", a.PatientID)
	case errors.Is(err, repository.ErrDuplicate):
		s.metrics.Bookings.WithLabelValues("duplicate").Inc()
		return apperrors.DuplicateBooking(a.PatientID, a.DoctorID, a.DateTime)
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("appointment", a.ID)
	default:
		return repository.ToAppError(err, "appointment", a.ID)
	}
}

// CreateOrUpdate books a slot. A new slot is created; a Scheduled slot
// receiving Confirmed is upgraded in place; anything else on an occupied slot
// is a duplicate booking.
func (s *Service) CreateOrUpdate(ctx context.Context, req *model.CreateAppointmentRequest) (*model.AppointmentDetail, model.BookingOutcome, error) {
	patient, doctor, err := s.resolve(ctx, req.PatientID, req.DoctorID)
	if err != nil {
		return nil, "", err
	}

	at, err := ParseDateTime(req.DateTime)
	if err != nil {
		return nil, "", apperrors.InvalidFormat("dateTime", "dateTime must be an ISO 8601 timestamp", err)
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = model.AppointmentStatusScheduled
	}

	existing, err := s.appointments.FindActiveBySlot(ctx, patient.ID, doctor.ID, at)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.create(ctx, patient, doctor, at, status, nonEmpty(req.Purpose))
	case err != nil:
		return nil, "", apperrors.StoreUnavailable(err)
	}

	if statusIs(existing.Status, model.AppointmentStatusScheduled) && statusIs(status, model.AppointmentStatusConfirmed) {
		existing.Status = model.AppointmentStatusConfirmed
		if purpose := nonEmpty(req.Purpose); purpose != nil {
			existing.Purpose = purpose
		}
		if err := s.appointments.Update(ctx, existing); err != nil {
			return nil, "", s.writeError(ctx, err, existing)
		}

		s.metrics.Bookings.WithLabelValues(string(model.BookingUpgraded)).Inc()
		log.Info().Int64("appointment_id", existing.ID).Msg("appointment confirmed")
		s.notifier.Notify(ctx, patient, existing, doctor, model.NotificationUpdated)
		return expand(existing, patient, doctor), model.BookingUpgraded, nil
	}

	s.metrics.Bookings.WithLabelValues("duplicate").Inc()
	return nil, "", apperrors.DuplicateBooking(patient.ID, doctor.ID, at)
}

func (s *Service) create(ctx context.Context, patient *model.Patient, doctor *model.Doctor,
	at time.Time, status string, purpose *string) (*model.AppointmentDetail, model.BookingOutcome, error) {
	appointment := &model.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		DateTime:  at,
		Status:    status,
		Purpose:   purpose,
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, "", s.writeError(ctx, err, appointment)
	}

	s.metrics.Bookings.WithLabelValues(string(model.BookingCreated)).Inc()
	log.Info().Int64("appointment_id", appointment.ID).Int64("patient_id", patient.ID).Int64("doctor_id", doctor.ID).Msg("appointment created")
	s.notifier.Notify(ctx, patient, appointment, doctor, model.NotificationConfirmed)
	return expand(appointment, patient, doctor), model.BookingCreated, nil
}

// Get returns an appointment with its patient and doctor.
func (s *Service) Get(ctx context.Context, id int64) (*model.AppointmentDetail, error) {
	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, repository.ToAppError(err, "appointment", id)
	}

	patient, doctor, err := s.resolve(ctx, appointment.PatientID, appointment.DoctorID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidReference) {
			return nil, apperrors.NotFound("appointment", id)
		}
		return nil, err
	}
	return expand(appointment, patient, doctor), nil
}

// Update applies the non-empty fields of req to an existing appointment.
func (s *Service) Update(ctx context.Context, id int64, req *model.UpdateAppointmentRequest) (*model.AppointmentDetail, error) {
	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, repository.ToAppError(err, "appointment", id)
	}

	if req.PatientID != nil {
		appointment.PatientID = *req.PatientID
	}
	if req.DoctorID != nil {
		appointment.DoctorID = *req.DoctorID
	}
	patient, doctor, err := s.resolve(ctx, appointment.PatientID, appointment.DoctorID)
	if err != nil {
		return nil, err
	}

	if req.DateTime != nil && strings.TrimSpace(*req.DateTime) != "" {
		at, err := ParseDateTime(*req.DateTime)
		if err != nil {
			return nil, apperrors.InvalidFormat("dateTime", "dateTime must be an ISO 8601 timestamp", err)
		}
		appointment.DateTime = at
	}
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		appointment.Status = strings.TrimSpace(*req.Status)
	}
	if purpose := nonEmpty(req.Purpose); purpose != nil {
		appointment.Purpose = purpose
	}

	if appointment.Status != model.AppointmentStatusCancelled {
		other, err := s.appointments.FindActiveBySlot(ctx, appointment.PatientID, appointment.DoctorID, appointment.DateTime)
		switch {
		case err == nil && other.ID != appointment.ID:
			s.metrics.Bookings.WithLabelValues("duplicate").Inc()
			return nil, apperrors.DuplicateBooking(appointment.PatientID, appointment.DoctorID, appointment.DateTime)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.StoreUnavailable(err)
		}
	}

	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, s.writeError(ctx, err, appointment)
	}

	log.Info().Int64("appointment_id", appointment.ID).Msg("appointment updated")
	s.notifier.Notify(ctx, patient, appointment, doctor, model.NotificationUpdated)
	return expand(appointment, patient, doctor), nil
}

// Cancel deletes an appointment and returns what was removed.
func (s *Service) Cancel(ctx context.Context, id int64) (*model.AppointmentDetail, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return nil, repository.ToAppError(err, "appointment", id)
	}

	log.Info().Int64("appointment_id", id).Msg("appointment cancelled")
	return detail, nil
}

// List returns appointments ordered by date/time. Rows whose patient or
// doctor no longer exists are dropped after paging.
func (s *Service) List(ctx context.Context, q ListQuery) ([]*model.AppointmentDetail, error) {
	if q.Skip < 0 || q.Limit < 0 {
		return nil, apperrors.InvalidFormat("limit", "skip and limit must be non-negative", nil)
	}
	if q.Limit > httputil.MaxLimit {
		q.Limit = httputil.MaxLimit
	}

	filter := &model.AppointmentFilter{
		PatientID:  q.PatientID,
		DoctorID:   q.DoctorID,
		Pagination: q.Pagination,
	}
	if strings.TrimSpace(q.Date) != "" {
		day, err := ParseDateTime(q.Date)
		if err != nil {
			return nil, apperrors.InvalidFormat("date", "date must be an ISO 8601 date", err)
		}
		from, to := dayWindow(day)
		filter.From, filter.To = &from, &to
	}

	appointments, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	patients := map[int64]*model.Patient{}
	doctors := map[int64]*model.Doctor{}
	result := make([]*model.AppointmentDetail, 0, len(appointments))
	for _, a := range appointments {
		patient, err := lookup(ctx, patients, a.PatientID, s.patients.Get)
		if err != nil {
			return nil, err
		}
		doctor, err := lookup(ctx, doctors, a.DoctorID, s.doctors.Get)
		if err != nil {
			return nil, err
		}
		if patient == nil || doctor == nil {
			continue
		}
		result = append(result, expand(a, patient, doctor))
	}
	return result, nil
}

// lookup memoizes get by id. A missing row yields (nil, nil).
func lookup[T any](ctx context.Context, cache map[int64]*T, id int64, get func(context.Context, int64) (*T, error)) (*T, error) {
	if v, ok := cache[id]; ok {
		return v, nil
	}
	v, err := get(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.StoreUnavailable(err)
	}
	cache[id] = v
	return v, nil
}
