package patient

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/repository"
	apperrors "github.com/jwalitptl/hpms-api/pkg/errors"
)

type Service struct {
	repo            repository.PatientRepository
	historyRepo     repository.MedicalHistoryRepository
	appointmentRepo repository.AppointmentRepository
}

func NewService(repo repository.PatientRepository, historyRepo repository.MedicalHistoryRepository,
	appointmentRepo repository.AppointmentRepository) *Service {
	return &Service{
		repo:            repo,
		historyRepo:     historyRepo,
		appointmentRepo: appointmentRepo,
	}
}

func parseBirthDate(value string) (model.Date, error) {
	dob, err := model.ParseDate(value)
	if err != nil {
		return model.Date{}, apperrors.InvalidFormat("dateOfBirth", "dateOfBirth must be a date in YYYY-MM-DD format", err)
	}
	return dob, nil
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	dob, err := parseBirthDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.StoreUnavailable(err)
	}

	patient := &model.Patient{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Phone:       req.Phone,
		DateOfBirth: dob,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, apperrors.StoreUnavailable(err)
	}

	log.Info().Int64("patient_id", patient.ID).Msg("patient created")
	return patient, nil
}

// GetPatient returns the patient with medical history (newest first) and
// appointments.
func (s *Service) GetPatient(ctx context.Context, id int64) (*model.PatientDetail, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.ToAppError(err, "patient", id)
	}

	histories, err := s.historyRepo.ListByPatient(ctx, id, nil)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	appointments, err := s.appointmentRepo.ListByPatient(ctx, id)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	return &model.PatientDetail{
		Patient:        *patient,
		MedicalHistory: histories,
		Appointments:   appointments,
	}, nil
}

func (s *Service) ListPatients(ctx context.Context, filter *model.PatientFilter) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	return patients, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.ToAppError(err, "patient", id)
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		patient.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		patient.Phone = model.StringPtr(strings.TrimSpace(*req.Phone))
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := parseBirthDate(*req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		patient.DateOfBirth = dob
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, repository.ToAppError(err, "patient", id)
	}
	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, id int64) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.ToAppError(err, "patient", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, repository.ToAppError(err, "patient", id)
	}

	log.Info().Int64("patient_id", id).Msg("patient deleted")
	return patient, nil
}
