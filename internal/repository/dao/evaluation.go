package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEventNotInReview guards against concurrent double evaluation: the second
// evaluator serializes on the row lock and then observes the updated state.
var ErrEventNotInReview = errors.New("event is not under review")

type Evaluation struct {
	ID uint `gorm:"primaryKey"`

	EventID     uint  `gorm:"not null;index"`
	Event       Event `gorm:"foreignKey:EventID"`
	SecretaryID uint  `gorm:"not null"`
	Secretary   User  `gorm:"foreignKey:SecretaryID"`

	Outcome       string    `gorm:"not null"` // "aprobado" or "rechazado"
	Date          time.Time `gorm:"not null"`
	Justification string
	ActaPath      string `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type EvaluationDAO struct {
	db *gorm.DB
}

func NewEvaluationDAO(db *gorm.DB) *EvaluationDAO {
	return &EvaluationDAO{
		db: db,
	}
}

// InsertWithStateChange records the evaluation row and moves the event to its
// new state in a single transaction under a row lock on the event. Only an
// event currently under review can be evaluated.
func (d *EvaluationDAO) InsertWithStateChange(ctx context.Context, evaluation Evaluation, newState string) (Evaluation, Event, error) {
	var event Event

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, evaluation.EventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}

			return err
		}

		if event.State != "enRevision" {
			return ErrEventNotInReview
		}

		if err := tx.Omit(clause.Associations).Create(&evaluation).Error; err != nil {
			return err
		}

		if err := tx.Model(&event).Update("state", newState).Error; err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return Evaluation{}, Event{}, err
	}

	return evaluation, event, nil
}

func (d *EvaluationDAO) ListByEvent(ctx context.Context, eventID uint) ([]Evaluation, error) {
	var evaluations []Evaluation

	result := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("date").
		Find(&evaluations)
	if result.Error != nil {
		return nil, result.Error
	}

	return evaluations, nil
}
