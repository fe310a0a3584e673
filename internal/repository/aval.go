package repository

import (
	"context"
	"fmt"

	"github.com/bienestar-u/eventos-api/internal/domain"
	"github.com/bienestar-u/eventos-api/internal/repository/dao"
)

var ErrAvalNotFound = dao.ErrAvalNotFound

type AvalDAO interface {
	FindPrincipalByEvent(ctx context.Context, eventID uint) (dao.Aval, error)
}

type AvalRepository struct {
	dao AvalDAO
}

func NewAvalRepository(dao AvalDAO) *AvalRepository {
	return &AvalRepository{
		dao: dao,
	}
}

func (r *AvalRepository) FindPrincipalByEvent(ctx context.Context, eventID uint) (domain.Aval, error) {
	found, err := r.dao.FindPrincipalByEvent(ctx, eventID)
	if err != nil {
		return domain.Aval{}, fmt.Errorf("r.dao.FindPrincipalByEvent -> %w", err)
	}

	return avalDaoToDomain(found), nil
}
