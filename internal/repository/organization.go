package repository

import (
	"context"
	"fmt"

	"github.com/bienestar-u/eventos-api/internal/domain"
	"github.com/bienestar-u/eventos-api/internal/repository/dao"
)

var ErrOrganizationNotFound = dao.ErrOrganizationNotFound

type OrganizationDAO interface {
	Insert(ctx context.Context, organization dao.Organization) (dao.Organization, error)
	FindByID(ctx context.Context, id uint) (dao.Organization, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]dao.Organization, error)
	Update(ctx context.Context, organization dao.Organization) (dao.Organization, error)
}

type OrganizationRepository struct {
	dao OrganizationDAO
}

func NewOrganizationRepository(dao OrganizationDAO) *OrganizationRepository {
	return &OrganizationRepository{
		dao: dao,
	}
}

func (r *OrganizationRepository) Create(ctx context.Context, organization domain.Organization) (domain.Organization, error) {
	created, err := r.dao.Insert(ctx, organizationDomainToDao(organization))
	if err != nil {
		return domain.Organization{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return organizationDaoToDomain(created), nil
}

func (r *OrganizationRepository) FindByID(ctx context.Context, id uint) (domain.Organization, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return organizationDaoToDomain(found), nil
}

func (r *OrganizationRepository) ListByOwner(ctx context.Context, ownerID uint) ([]domain.Organization, error) {
	found, err := r.dao.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByOwner -> %w", err)
	}

	organizations := make([]domain.Organization, len(found))
	for i, organization := range found {
		organizations[i] = organizationDaoToDomain(organization)
	}

	return organizations, nil
}

func (r *OrganizationRepository) Update(ctx context.Context, organization domain.Organization) (domain.Organization, error) {
	updated, err := r.dao.Update(ctx, organizationDomainToDao(organization))
	if err != nil {
		return domain.Organization{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return organizationDaoToDomain(updated), nil
}

func organizationDomainToDao(o domain.Organization) dao.Organization {
	return dao.Organization{
		ID:                  o.ID,
		Name:                o.Name,
		LegalRepresentative: o.LegalRepresentative,
		Sector:              o.Sector,
		Phone:               o.Phone,
		Email:               o.Email,
		OwnerID:             o.OwnerID,
	}
}

func organizationDaoToDomain(o dao.Organization) domain.Organization {
	return domain.Organization{
		ID:                  o.ID,
		Name:                o.Name,
		LegalRepresentative: o.LegalRepresentative,
		Sector:              o.Sector,
		Phone:               o.Phone,
		Email:               o.Email,
		OwnerID:             o.OwnerID,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}
