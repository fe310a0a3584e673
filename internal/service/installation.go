package service

import (
	"context"
	"fmt"

	"github.com/bienestar-u/eventos-api/internal/domain"
	"github.com/bienestar-u/eventos-api/internal/repository"
)

var (
	ErrInstallationNotFound = repository.ErrInstallationNotFound
	ErrInvalidCapacity      = repository.ErrInvalidCapacity
)

type InstallationRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Installation, error)
	List(ctx context.Context) ([]domain.Installation, error)
}

// InstallationService resolves facility capacities for the event workflow.
type InstallationService struct {
	repo InstallationRepository
}

func NewInstallationService(repo InstallationRepository) *InstallationService {
	return &InstallationService{
		repo: repo,
	}
}

func (s *InstallationService) CapacityOf(ctx context.Context, id uint) (int, error) {
	installation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return installation.Capacity, nil
}

// SumCapacities adds up the seating capacity of the given installations,
// short-circuiting on the first lookup failure. An empty set sums to zero;
// requiring at least one installation is the caller's rule.
func (s *InstallationService) SumCapacities(ctx context.Context, ids []uint) (int, error) {
	total := 0
	for _, id := range ids {
		capacity, err := s.CapacityOf(ctx, id)
		if err != nil {
			return 0, err
		}
		total += capacity
	}

	return total, nil
}

func (s *InstallationService) ListInstallations(ctx context.Context) ([]domain.Installation, error) {
	installations, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return installations, nil
}
