package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bienestar-u/eventos-api/internal/domain"
)

var secretary = domain.User{ID: 2, Name: "Secretaria General", Role: domain.RoleSecretariat}

func newEvaluationService(repo *fakeEvaluationRepo, store *memStore) (*EvaluationService, *recordingNotifier) {
	notifier := &recordingNotifier{}
	eventRepo := &fakeEventRepo{
		getDetailedFn: func(ctx context.Context, id uint) (domain.Event, error) {
			return domain.Event{ID: id, OrganizerID: 7, Name: "Semana de la Ciencia"}, nil
		},
	}

	return NewEvaluationService(repo, eventRepo, notifier, store), notifier
}

func validEvaluateInput() EvaluateInput {
	return EvaluateInput{
		EventID:       5,
		Outcome:       "aprobado",
		Justification: "Cumple los requisitos",
		Acta:          &Upload{Filename: "acta.pdf", Content: strings.NewReader("pdf")},
	}
}

func TestEvaluate_RequiresSecretariatRole(t *testing.T) {
	svc, _ := newEvaluationService(&fakeEvaluationRepo{}, &memStore{})

	organizer := domain.User{ID: 7, Role: domain.RoleOrganizer}
	_, _, err := svc.Evaluate(context.Background(), validEvaluateInput(), organizer)

	assert.ErrorIs(t, err, ErrNotSecretariat)
}

func TestEvaluate_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*EvaluateInput)
		wantField string
	}{
		{
			name:      "unknown outcome",
			mutate:    func(in *EvaluateInput) { in.Outcome = "pendiente" },
			wantField: "estado",
		},
		{
			name:      "missing acta",
			mutate:    func(in *EvaluateInput) { in.Acta = nil },
			wantField: "actaAprobacion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newEvaluationService(&fakeEvaluationRepo{}, &memStore{})

			input := validEvaluateInput()
			tt.mutate(&input)

			_, _, err := svc.Evaluate(context.Background(), input, secretary)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestEvaluate_ApprovalIsTerminal(t *testing.T) {
	var gotState domain.EventState
	repo := &fakeEvaluationRepo{
		createFn: func(ctx context.Context, evaluation domain.Evaluation, newState domain.EventState) (domain.Evaluation, domain.Event, error) {
			gotState = newState
			evaluation.ID = 1
			return evaluation, domain.Event{ID: evaluation.EventID, OrganizerID: 7, State: newState}, nil
		},
	}
	store := &memStore{}
	svc, notifier := newEvaluationService(repo, store)

	evaluation, event, err := svc.Evaluate(context.Background(), validEvaluateInput(), secretary)
	require.NoError(t, err)

	assert.Equal(t, domain.StateApproved, gotState)
	assert.Equal(t, uint(5), event.ID)
	assert.Equal(t, domain.OutcomeApproved, evaluation.Outcome)
	assert.Equal(t, secretary.ID, evaluation.SecretaryID)
	assert.NotEmpty(t, evaluation.ActaPath)
	assert.WithinDuration(t, time.Now(), evaluation.Date, time.Minute)

	require.Len(t, notifier.evaluated, 1)
	assert.Empty(t, store.removed)
}

func TestEvaluate_RejectionFoldsBackToRegistered(t *testing.T) {
	var gotState domain.EventState
	repo := &fakeEvaluationRepo{
		createFn: func(ctx context.Context, evaluation domain.Evaluation, newState domain.EventState) (domain.Evaluation, domain.Event, error) {
			gotState = newState
			return evaluation, domain.Event{ID: evaluation.EventID, OrganizerID: 7, State: newState}, nil
		},
	}
	svc, notifier := newEvaluationService(repo, &memStore{})

	input := validEvaluateInput()
	input.Outcome = "rechazado"
	input.Justification = "Falta el aval del director"

	evaluation, _, err := svc.Evaluate(context.Background(), input, secretary)
	require.NoError(t, err)

	assert.Equal(t, domain.StateRegistered, gotState)
	assert.Equal(t, domain.OutcomeRejected, evaluation.Outcome)
	require.Len(t, notifier.evaluated, 1)
	assert.Equal(t, domain.OutcomeRejected, notifier.evaluated[0].Outcome)
}

func TestEvaluate_EventNotInReviewCleansActa(t *testing.T) {
	repo := &fakeEvaluationRepo{
		createFn: func(ctx context.Context, evaluation domain.Evaluation, newState domain.EventState) (domain.Evaluation, domain.Event, error) {
			return domain.Evaluation{}, domain.Event{}, ErrEventNotInReview
		},
	}
	store := &memStore{}
	svc, notifier := newEvaluationService(repo, store)

	_, _, err := svc.Evaluate(context.Background(), validEvaluateInput(), secretary)

	assert.ErrorIs(t, err, ErrEventNotInReview)
	assert.Equal(t, store.saved, store.removed)
	assert.Empty(t, notifier.evaluated)
}

func TestListByEvent(t *testing.T) {
	repo := &fakeEvaluationRepo{
		listFn: func(ctx context.Context, eventID uint) ([]domain.Evaluation, error) {
			require.Equal(t, uint(5), eventID)
			return []domain.Evaluation{{ID: 1, Outcome: domain.OutcomeRejected}, {ID: 2, Outcome: domain.OutcomeApproved}}, nil
		},
	}
	svc, _ := newEvaluationService(repo, &memStore{})

	evaluations, err := svc.ListByEvent(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, evaluations, 2)
}
