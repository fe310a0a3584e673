package service

import (
	"context"
	"fmt"

	"github.com/bienestar-u/eventos-api/internal/domain"
)

type OrganizationRepository interface {
	Create(ctx context.Context, organization domain.Organization) (domain.Organization, error)
	FindByID(ctx context.Context, id uint) (domain.Organization, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]domain.Organization, error)
	Update(ctx context.Context, organization domain.Organization) (domain.Organization, error)
}

// OrganizationService manages the external organizations an organizer can
// link to events.
type OrganizationService struct {
	repo OrganizationRepository
}

func NewOrganizationService(repo OrganizationRepository) *OrganizationService {
	return &OrganizationService{
		repo: repo,
	}
}

func (s *OrganizationService) CreateOrganization(ctx context.Context, organization domain.Organization) (domain.Organization, error) {
	if organization.Name == "" {
		return domain.Organization{}, validationErr("nombre", "name is required")
	}

	created, err := s.repo.Create(ctx, organization)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *OrganizationService) GetOrganization(ctx context.Context, id uint) (domain.Organization, error) {
	organization, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return organization, nil
}

func (s *OrganizationService) ListOrganizations(ctx context.Context, ownerID uint) ([]domain.Organization, error) {
	organizations, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByOwner -> %w", err)
	}

	return organizations, nil
}

func (s *OrganizationService) UpdateOrganization(ctx context.Context, organization domain.Organization, ownerID uint) (domain.Organization, error) {
	current, err := s.repo.FindByID(ctx, organization.ID)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if current.OwnerID != ownerID {
		return domain.Organization{}, ErrOrganizationNotFound
	}

	organization.OwnerID = current.OwnerID
	updated, err := s.repo.Update(ctx, organization)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}
