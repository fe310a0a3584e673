package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Notification struct {
	ID uint `gorm:"primaryKey"`

	RecipientID uint `gorm:"not null;index"`
	EventID     uint `gorm:"not null"`

	Type        string `gorm:"not null"` // "enRevision", "aprobado" or "rechazado"
	Title       string `gorm:"not null"`
	Description string
	Read        bool `gorm:"not null;default:false"`
	ReadAt      *time.Time

	CreatedAt time.Time
}

type NotificationDAO struct {
	db *gorm.DB
}

func NewNotificationDAO(db *gorm.DB) *NotificationDAO {
	return &NotificationDAO{
		db: db,
	}
}

func (d *NotificationDAO) Insert(ctx context.Context, notification Notification) (Notification, error) {
	result := d.db.WithContext(ctx).Create(&notification)
	if result.Error != nil {
		return Notification{}, result.Error
	}

	return notification, nil
}

func (d *NotificationDAO) ListByRecipient(ctx context.Context, recipientID uint) ([]Notification, error) {
	var notifications []Notification

	result := d.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&notifications)
	if result.Error != nil {
		return nil, result.Error
	}

	return notifications, nil
}

// MarkRead flags the notification as read. Scoped by recipient so a user can
// only touch their own notifications.
func (d *NotificationDAO) MarkRead(ctx context.Context, id, recipientID uint) (Notification, error) {
	var notification Notification

	result := d.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&notification)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Notification{}, ErrNotificationNotFound
		}

		return Notification{}, result.Error
	}

	now := time.Now()
	err := d.db.WithContext(ctx).Model(&notification).Updates(map[string]interface{}{
		"read":    true,
		"read_at": &now,
	}).Error
	if err != nil {
		return Notification{}, err
	}

	return notification, nil
}

func (d *NotificationDAO) Delete(ctx context.Context, id, recipientID uint) (bool, error) {
	result := d.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&Notification{})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// DeleteReadBefore purges read notifications created before the cutoff.
// Used by the retention sweep.
func (d *NotificationDAO) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := d.db.WithContext(ctx).
		Where("read = ? AND created_at < ?", true, cutoff).
		Delete(&Notification{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
