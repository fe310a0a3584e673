package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bienestar-u/eventos-api/internal/domain"
	"github.com/bienestar-u/eventos-api/internal/repository"
)

var ErrNotificationNotFound = repository.ErrNotificationNotFound

// maxFanoutWorkers bounds concurrent notification inserts per trigger.
const maxFanoutWorkers = 8

type NotificationRepository interface {
	Create(ctx context.Context, notification domain.Notification) (domain.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uint) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, recipientID uint) (domain.Notification, error)
	Delete(ctx context.Context, id, recipientID uint) (bool, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type RecipientRepository interface {
	FindByRole(ctx context.Context, role string) ([]domain.User, error)
}

// FanoutReport records how a notification fan-out went. Delivery is best
// effort: failures are collected and logged, never surfaced to the operation
// that triggered them.
type FanoutReport struct {
	Delivered int
	Failures  []FanoutFailure
}

type FanoutFailure struct {
	RecipientID uint
	Err         error
}

// NotificationService fans event lifecycle changes out to interested users
// and serves each user's notification feed.
type NotificationService struct {
	repo  NotificationRepository
	users RecipientRepository
}

func NewNotificationService(repo NotificationRepository, users RecipientRepository) *NotificationService {
	return &NotificationService{
		repo:  repo,
		users: users,
	}
}

// NotifyOnSubmission notifies every secretariat user that an event entered
// review. Called after the state change commits; a delivery failure does not
// undo the submission.
func (s *NotificationService) NotifyOnSubmission(ctx context.Context, event domain.Event) *FanoutReport {
	secretaries, err := s.users.FindByRole(ctx, domain.RoleSecretariat)
	if err != nil {
		zap.L().Error("failed to resolve submission recipients",
			zap.Uint("event_id", event.ID), zap.Error(err))

		return &FanoutReport{}
	}

	recipientIDs := make([]uint, len(secretaries))
	for i, secretary := range secretaries {
		recipientIDs[i] = secretary.ID
	}

	template := domain.Notification{
		EventID: event.ID,
		Type:    domain.NotificationUnderReview,
		Title:   "Evento enviado a revision",
		Description: fmt.Sprintf("El evento %q fue enviado a revision por %v.",
			event.Name, event.Organizer.Name),
	}

	return s.fanOut(ctx, template, recipientIDs)
}

// NotifyOnEvaluation tells the organizer how the secretariat decided.
func (s *NotificationService) NotifyOnEvaluation(ctx context.Context, event domain.Event, evaluation domain.Evaluation) *FanoutReport {
	template := domain.Notification{
		EventID: event.ID,
		Type:    domain.NotificationApproved,
		Title:   "Evento aprobado",
		Description: fmt.Sprintf("El evento %q fue aprobado. %v",
			event.Name, evaluation.Justification),
	}
	if evaluation.Outcome == domain.OutcomeRejected {
		template.Type = domain.NotificationRejected
		template.Title = "Evento rechazado"
		template.Description = fmt.Sprintf("El evento %q fue rechazado y vuelve a registrado. %v",
			event.Name, evaluation.Justification)
	}

	return s.fanOut(ctx, template, []uint{event.OrganizerID})
}

func (s *NotificationService) ListForUser(ctx context.Context, userID uint) ([]domain.Notification, error) {
	notifications, err := s.repo.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByRecipient -> %w", err)
	}

	return notifications, nil
}

// MarkRead marks a notification read. The recipient scope makes marking
// another user's notification indistinguishable from a missing one.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) (domain.Notification, error) {
	notification, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("s.repo.MarkRead -> %w", err)
	}

	return notification, nil
}

func (s *NotificationService) Delete(ctx context.Context, id, userID uint) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return false, fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return deleted, nil
}

// PurgeRead deletes read notifications older than the retention window.
func (s *NotificationService) PurgeRead(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	purged, err := s.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("s.repo.DeleteReadBefore -> %w", err)
	}

	return purged, nil
}

// fanOut inserts one notification per recipient with bounded concurrency.
// Each failure is recorded against its recipient; one bad insert does not
// stop the rest.
func (s *NotificationService) fanOut(ctx context.Context, template domain.Notification, recipientIDs []uint) *FanoutReport {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report FanoutReport
	)

	sem := make(chan struct{}, maxFanoutWorkers)

	for _, recipientID := range recipientIDs {
		recipientID := recipientID

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			notification := template
			notification.RecipientID = recipientID

			_, err := s.repo.Create(ctx, notification)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, FanoutFailure{RecipientID: recipientID, Err: err})
				return
			}
			report.Delivered++
		}()
	}

	wg.Wait()

	for _, failure := range report.Failures {
		zap.L().Error("notification delivery failed",
			zap.Uint("event_id", template.EventID),
			zap.Uint("recipient_id", failure.RecipientID),
			zap.Error(failure.Err))
	}

	return &report
}
