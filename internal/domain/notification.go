package domain

import "time"

type NotificationType string

const (
	NotificationUnderReview NotificationType = "enRevision"
	NotificationApproved    NotificationType = "aprobado"
	NotificationRejected    NotificationType = "rechazado"
)

type Notification struct {
	ID          uint             `json:"id"`
	RecipientID uint             `json:"usuario_id"`
	EventID     uint             `json:"evento_id"`
	Type        NotificationType `json:"tipo"`
	Title       string           `json:"titulo"`
	Description string           `json:"descripcion"`
	Read        bool             `json:"leida"`
	CreatedAt   time.Time        `json:"created_at"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
}
