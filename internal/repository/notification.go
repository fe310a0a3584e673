package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bienestar-u/eventos-api/internal/domain"
	"github.com/bienestar-u/eventos-api/internal/repository/dao"
)

var ErrNotificationNotFound = dao.ErrNotificationNotFound

type NotificationDAO interface {
	Insert(ctx context.Context, notification dao.Notification) (dao.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uint) ([]dao.Notification, error)
	MarkRead(ctx context.Context, id, recipientID uint) (dao.Notification, error)
	Delete(ctx context.Context, id, recipientID uint) (bool, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type NotificationRepository struct {
	dao NotificationDAO
}

func NewNotificationRepository(dao NotificationDAO) *NotificationRepository {
	return &NotificationRepository{
		dao: dao,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, notification domain.Notification) (domain.Notification, error) {
	created, err := r.dao.Insert(ctx, dao.Notification{
		RecipientID: notification.RecipientID,
		EventID:     notification.EventID,
		Type:        string(notification.Type),
		Title:       notification.Title,
		Description: notification.Description,
	})
	if err != nil {
		return domain.Notification{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return notificationDaoToDomain(created), nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID uint) ([]domain.Notification, error) {
	found, err := r.dao.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByRecipient -> %w", err)
	}

	notifications := make([]domain.Notification, len(found))
	for i, notification := range found {
		notifications[i] = notificationDaoToDomain(notification)
	}

	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID uint) (domain.Notification, error) {
	updated, err := r.dao.MarkRead(ctx, id, recipientID)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("r.dao.MarkRead -> %w", err)
	}

	return notificationDaoToDomain(updated), nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id, recipientID uint) (bool, error) {
	deleted, err := r.dao.Delete(ctx, id, recipientID)
	if err != nil {
		return false, fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return deleted, nil
}

func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	purged, err := r.dao.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("r.dao.DeleteReadBefore -> %w", err)
	}

	return purged, nil
}

func notificationDaoToDomain(n dao.Notification) domain.Notification {
	return domain.Notification{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		EventID:     n.EventID,
		Type:        domain.NotificationType(n.Type),
		Title:       n.Title,
		Description: n.Description,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt,
		ReadAt:      n.ReadAt,
	}
}
