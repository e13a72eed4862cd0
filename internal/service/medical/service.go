package medical

import (
	"context"
	"errors"
	"strings"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/repository"
	apperrors "github.com/jwalitptl/hpms-api/pkg/errors"
)

type Service struct {
	repo        repository.MedicalHistoryRepository
	patientRepo repository.PatientRepository
}

func NewService(repo repository.MedicalHistoryRepository, patientRepo repository.PatientRepository) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
	}
}

func parseDate(value string) (model.Date, error) {
	date, err := model.ParseDate(value)
	if err != nil {
		return model.Date{}, apperrors.InvalidFormat("date", "date must be in YYYY-MM-DD format", err)
	}
	return date, nil
}

func (s *Service) patient(ctx context.Context, id int64) (*model.Patient, error) {
	patient, err := s.patientRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.InvalidReference("patientId", id)
		}
		return nil, apperrors.StoreUnavailable(err)
	}
	return patient, nil
}

func (s *Service) CreateHistory(ctx context.Context, req *model.CreateMedicalHistoryRequest) (*model.MedicalHistoryDetail, error) {
	patient, err := s.patient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	history := &model.MedicalHistory{
		PatientID: patient.ID,
		Diagnosis: strings.TrimSpace(req.Diagnosis),
		Treatment: req.Treatment,
		Date:      date,
	}
	if err := s.repo.Create(ctx, history); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, apperrors.InvalidReference("patientId", req.PatientID)
		}
		return nil, apperrors.StoreUnavailable(err)
	}
	return &model.MedicalHistoryDetail{MedicalHistory: *history, Patient: *patient}, nil
}

func (s *Service) GetHistory(ctx context.Context, id int64) (*model.MedicalHistoryDetail, error) {
	history, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.ToAppError(err, "medical history", id)
	}
	patient, err := s.patientRepo.Get(ctx, history.PatientID)
	if err != nil {
		return nil, repository.ToAppError(err, "medical history", id)
	}
	return &model.MedicalHistoryDetail{MedicalHistory: *history, Patient: *patient}, nil
}

// ListForPatient returns a patient's history newest first.
func (s *Service) ListForPatient(ctx context.Context, patientID int64, page model.Pagination) ([]model.MedicalHistory, error) {
	if _, err := s.patientRepo.Get(ctx, patientID); err != nil {
		return nil, repository.ToAppError(err, "patient", patientID)
	}
	histories, err := s.repo.ListByPatient(ctx, patientID, &page)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	return histories, nil
}

func (s *Service) UpdateHistory(ctx context.Context, id int64, req *model.UpdateMedicalHistoryRequest) (*model.MedicalHistoryDetail, error) {
	history, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.ToAppError(err, "medical history", id)
	}

	if req.Diagnosis != nil && strings.TrimSpace(*req.Diagnosis) != "" {
		history.Diagnosis = strings.TrimSpace(*req.Diagnosis)
	}
	if req.Treatment != nil {
		history.Treatment = model.StringPtr(*req.Treatment)
	}
	if req.Date != nil && *req.Date != "" {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		history.Date = date
	}

	if err := s.repo.Update(ctx, history); err != nil {
		return nil, repository.ToAppError(err, "medical history", id)
	}
	return s.GetHistory(ctx, id)
}

func (s *Service) DeleteHistory(ctx context.Context, id int64) (*model.MedicalHistory, error) {
	history, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.ToAppError(err, "medical history", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, repository.ToAppError(err, "medical history", id)
	}
	return history, nil
}
