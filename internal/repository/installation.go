package repository

import (
	"context"
	"fmt"

	"github.com/bienestar-u/eventos-api/internal/domain"
	"github.com/bienestar-u/eventos-api/internal/repository/dao"
)

var (
	ErrInstallationNotFound = dao.ErrInstallationNotFound
	ErrInvalidCapacity      = dao.ErrInvalidCapacity
)

type InstallationDAO interface {
	FindByID(ctx context.Context, id uint) (dao.Installation, error)
	List(ctx context.Context) ([]dao.Installation, error)
}

type InstallationRepository struct {
	dao InstallationDAO
}

func NewInstallationRepository(dao InstallationDAO) *InstallationRepository {
	return &InstallationRepository{
		dao: dao,
	}
}

func (r *InstallationRepository) FindByID(ctx context.Context, id uint) (domain.Installation, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Installation{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return installationDaoToDomain(found), nil
}

func (r *InstallationRepository) List(ctx context.Context) ([]domain.Installation, error) {
	found, err := r.dao.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	installations := make([]domain.Installation, len(found))
	for i, installation := range found {
		installations[i] = installationDaoToDomain(installation)
	}

	return installations, nil
}

func installationDaoToDomain(i dao.Installation) domain.Installation {
	return domain.Installation{
		ID:       i.ID,
		Name:     i.Name,
		Location: i.Location,
		Capacity: i.Capacity,
	}
}
