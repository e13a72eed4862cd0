package doctor

import (
	"context"
	"strings"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/repository"
	apperrors "github.com/jwalitptl/hpms-api/pkg/errors"
)

type Service struct {
	repo            repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
}

func NewService(repo repository.DoctorRepository, appointmentRepo repository.AppointmentRepository) *Service {
	return &Service{
		repo:            repo,
		appointmentRepo: appointmentRepo,
	}
}

func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	doctor := &model.Doctor{
		Name:      strings.TrimSpace(req.Name),
		Specialty: strings.TrimSpace(req.Specialty),
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, repository.ToAppError(err, "doctor", "")
	}
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*model.DoctorDetail, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.ToAppError(err, "doctor", id)
	}
	appointments, err := s.appointmentRepo.ListByDoctor(ctx, id)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	return &model.DoctorDetail{Doctor: *doctor, Appointments: appointments}, nil
}

func (s *Service) ListDoctors(ctx context.Context, filter *model.DoctorFilter) ([]*model.Doctor, error) {
	doctors, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	return doctors, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, id int64, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.ToAppError(err, "doctor", id)
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		doctor.Name = strings.TrimSpace(*req.Name)
	}
	if req.Specialty != nil && strings.TrimSpace(*req.Specialty) != "" {
		doctor.Specialty = strings.TrimSpace(*req.Specialty)
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, repository.ToAppError(err, "doctor", id)
	}
	return doctor, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id int64) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.ToAppError(err, "doctor", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, repository.ToAppError(err, "doctor", id)
	}
	return doctor, nil
}
