package repository

import (
	"context"
	"fmt"

	"github.com/bienestar-u/eventos-api/internal/domain"
	"github.com/bienestar-u/eventos-api/internal/repository/dao"
)

var ErrEventNotInReview = dao.ErrEventNotInReview

type EvaluationDAO interface {
	InsertWithStateChange(ctx context.Context, evaluation dao.Evaluation, newState string) (dao.Evaluation, dao.Event, error)
	ListByEvent(ctx context.Context, eventID uint) ([]dao.Evaluation, error)
}

type EvaluationRepository struct {
	dao EvaluationDAO
}

func NewEvaluationRepository(dao EvaluationDAO) *EvaluationRepository {
	return &EvaluationRepository{
		dao: dao,
	}
}

// CreateWithStateChange persists the evaluation and the event state change as
// one atomic unit, returning both updated records.
func (r *EvaluationRepository) CreateWithStateChange(ctx context.Context, evaluation domain.Evaluation, newState domain.EventState) (domain.Evaluation, domain.Event, error) {
	created, event, err := r.dao.InsertWithStateChange(ctx, evaluationDomainToDao(evaluation), string(newState))
	if err != nil {
		return domain.Evaluation{}, domain.Event{}, fmt.Errorf("r.dao.InsertWithStateChange -> %w", err)
	}

	return evaluationDaoToDomain(created), domain.Event{
		ID:          event.ID,
		OrganizerID: event.OrganizerID,
		Name:        event.Name,
		State:       domain.EventState(event.State),
	}, nil
}

func (r *EvaluationRepository) ListByEvent(ctx context.Context, eventID uint) ([]domain.Evaluation, error) {
	found, err := r.dao.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByEvent -> %w", err)
	}

	evaluations := make([]domain.Evaluation, len(found))
	for i, evaluation := range found {
		evaluations[i] = evaluationDaoToDomain(evaluation)
	}

	return evaluations, nil
}

func evaluationDomainToDao(e domain.Evaluation) dao.Evaluation {
	return dao.Evaluation{
		ID:            e.ID,
		EventID:       e.EventID,
		SecretaryID:   e.SecretaryID,
		Outcome:       string(e.Outcome),
		Date:          e.Date,
		Justification: e.Justification,
		ActaPath:      e.ActaPath,
	}
}

func evaluationDaoToDomain(e dao.Evaluation) domain.Evaluation {
	return domain.Evaluation{
		ID:            e.ID,
		EventID:       e.EventID,
		SecretaryID:   e.SecretaryID,
		Outcome:       domain.EvaluationOutcome(e.Outcome),
		Date:          e.Date,
		Justification: e.Justification,
		ActaPath:      e.ActaPath,
	}
}
