package user

import (
	"context"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/repository"
	"github.com/jwalitptl/hpms-api/internal/service/access"
	apperrors "github.com/jwalitptl/hpms-api/pkg/errors"
)

type Service struct {
	repo repository.UserRepository
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo}
}

// GetUser returns the target user if caller is that user or an admin.
func (s *Service) GetUser(ctx context.Context, caller *model.User, id int64) (*model.User, error) {
	if err := access.RequireSelfOrAdmin(caller, id); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repository.ToAppError(err, "user", id)
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, page model.Pagination) ([]*model.User, error) {
	users, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	return users, nil
}
