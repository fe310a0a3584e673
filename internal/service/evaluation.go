package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bienestar-u/eventos-api/internal/domain"
	"github.com/bienestar-u/eventos-api/internal/repository"
	"github.com/bienestar-u/eventos-api/internal/storage"
)

var ErrEventNotInReview = repository.ErrEventNotInReview

type EvaluationRepository interface {
	CreateWithStateChange(ctx context.Context, evaluation domain.Evaluation, newState domain.EventState) (domain.Evaluation, domain.Event, error)
	ListByEvent(ctx context.Context, eventID uint) ([]domain.Evaluation, error)
}

type EvaluationNotifier interface {
	NotifyOnEvaluation(ctx context.Context, event domain.Event, evaluation domain.Evaluation) *FanoutReport
}

type EvaluateInput struct {
	EventID       uint
	Outcome       string
	Justification string
	Acta          *Upload
}

// EvaluationService records secretariat decisions. Approval is terminal;
// rejection folds the event back to registrado so the organizer can amend
// and resubmit.
type EvaluationService struct {
	repo      EvaluationRepository
	eventRepo EventRepository
	notifier  EvaluationNotifier
	store     storage.Store
}

func NewEvaluationService(repo EvaluationRepository, eventRepo EventRepository, notifier EvaluationNotifier, store storage.Store) *EvaluationService {
	return &EvaluationService{
		repo:      repo,
		eventRepo: eventRepo,
		notifier:  notifier,
		store:     store,
	}
}

// Evaluate records the decision and returns it together with the event in
// its post-decision state.
func (s *EvaluationService) Evaluate(ctx context.Context, input EvaluateInput, secretary domain.User) (domain.Evaluation, domain.Event, error) {
	if secretary.Role != domain.RoleSecretariat {
		return domain.Evaluation{}, domain.Event{}, ErrNotSecretariat
	}

	outcome, err := parseOutcome(input.Outcome)
	if err != nil {
		return domain.Evaluation{}, domain.Event{}, err
	}

	// The approval acta is required for both outcomes: a rejection without
	// the signed record is as unusable downstream as an approval without one.
	if input.Acta == nil {
		return domain.Evaluation{}, domain.Event{}, validationErr("actaAprobacion", "the approval acta file is required")
	}

	actaPath, err := s.store.Save(ctx, "actas", input.Acta.Filename, input.Acta.Content)
	if err != nil {
		return domain.Evaluation{}, domain.Event{}, fmt.Errorf("s.store.Save -> %w", err)
	}

	newState := domain.StateApproved
	if outcome == domain.OutcomeRejected {
		newState = domain.StateRegistered
	}

	evaluation := domain.Evaluation{
		EventID:       input.EventID,
		SecretaryID:   secretary.ID,
		Outcome:       outcome,
		Date:          time.Now(),
		Justification: input.Justification,
		ActaPath:      actaPath,
	}

	created, event, err := s.repo.CreateWithStateChange(ctx, evaluation, newState)
	if err != nil {
		if removeErr := s.store.Remove(ctx, actaPath); removeErr != nil {
			err = errors.Join(err, removeErr)
		}

		if errors.Is(err, ErrEventNotInReview) || errors.Is(err, ErrEventNotFound) {
			return domain.Evaluation{}, domain.Event{}, err
		}

		return domain.Evaluation{}, domain.Event{}, fmt.Errorf("s.repo.CreateWithStateChange -> %w", err)
	}

	if hydrated, err := s.eventRepo.GetDetailed(ctx, event.ID); err == nil {
		event = hydrated
	}
	s.notifier.NotifyOnEvaluation(ctx, event, created)

	return created, event, nil
}

func (s *EvaluationService) ListByEvent(ctx context.Context, eventID uint) ([]domain.Evaluation, error) {
	evaluations, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByEvent -> %w", err)
	}

	return evaluations, nil
}

func parseOutcome(outcome string) (domain.EvaluationOutcome, error) {
	switch domain.EvaluationOutcome(outcome) {
	case domain.OutcomeApproved, domain.OutcomeRejected:
		return domain.EvaluationOutcome(outcome), nil
	default:
		return "", validationErr("estado", fmt.Sprintf("outcome must be %q or %q",
			domain.OutcomeApproved, domain.OutcomeRejected))
	}
}
