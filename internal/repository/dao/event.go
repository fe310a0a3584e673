package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrNotEventOwner     = errors.New("user is not the owner of the event")
	ErrEventImmutable    = errors.New("approved events can no longer be modified")
	ErrIllegalTransition = errors.New("event state transition not allowed")
)

type Event struct {
	ID uint `gorm:"primaryKey"`

	OrganizerID uint `gorm:"not null;index"`
	Organizer   User `gorm:"foreignKey:OrganizerID"`

	Name             string    `gorm:"not null"`
	Category         string    `gorm:"not null"` // "academico" or "recreativo"
	Date             time.Time `gorm:"not null"`
	StartTime        string    `gorm:"not null"` // "HH:MM"
	EndTime          string    `gorm:"not null"` // "HH:MM"
	Location         string
	DeclaredCapacity int `gorm:"not null"`
	Description      string
	State            string `gorm:"not null;default:registrado"`

	Installations     []Installation      `gorm:"many2many:event_installations;"`
	Avales            []Aval              `gorm:"foreignKey:EventID"`
	OrganizationLinks []OrganizationEvent `gorm:"foreignKey:EventID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type EventInstallation struct {
	EventID        uint `gorm:"primaryKey;autoIncrement:false"`
	InstallationID uint `gorm:"primaryKey;autoIncrement:false"`
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

// Insert creates the event row, its installation links and, when supplied,
// the initial organization links and principal aval, all in one transaction.
// Any failure rolls the whole creation back.
func (d *EventDAO) Insert(ctx context.Context, event Event, installationIDs []uint, orgLinks []OrganizationEvent, aval *Aval) (Event, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&event).Error; err != nil {
			return err
		}

		if err := replaceInstallationLinks(tx, event.ID, installationIDs); err != nil {
			return err
		}

		for _, link := range orgLinks {
			link.EventID = event.ID
			if _, err := upsertOrganizationLink(tx, link); err != nil {
				return err
			}
		}

		if aval != nil {
			aval.EventID = event.ID
			if _, err := upsertAval(tx, *aval); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return Event{}, err
	}

	return event, nil
}

// FindByNaturalKey looks for an event matching the de-dup key visible to the
// UI: name, date, start time and the first installation of the payload.
func (d *EventDAO) FindByNaturalKey(ctx context.Context, name string, date time.Time, startTime string, firstInstallationID uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).
		Joins("JOIN event_installations ei ON ei.event_id = events.id").
		Where("events.name = ? AND events.date = ? AND events.start_time = ? AND ei.installation_id = ?",
			name, date, startTime, firstInstallationID).
		First(&event)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindDetailed(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).
		Preload("Organizer").
		Preload("Installations").
		Preload("Avales", "principal = ?", true).
		Preload("OrganizationLinks").
		First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) List(ctx context.Context) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Preload("Organizer").
		Preload("Installations").
		Order("date").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) ListByOrganizer(ctx context.Context, organizerID uint) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Preload("Organizer").
		Preload("Installations").
		Where("organizer_id = ?", organizerID).
		Order("date").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// UpdateWithAssociations applies a partial update to the event together with
// its installation links, organization links and principal aval, all inside
// one transaction holding a row lock on the event. It returns the blob paths
// made obsolete by file replacements; callers delete those only after the
// transaction has committed, so a rollback never loses a referenced file.
func (d *EventDAO) UpdateWithAssociations(
	ctx context.Context,
	id uint,
	organizerID uint,
	values map[string]interface{},
	installationIDs []uint,
	orgLinks []OrganizationEvent,
	aval *Aval,
	removeAval bool,
) ([]string, error) {
	var obsolete []string

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}

			return err
		}

		if event.OrganizerID != organizerID {
			return ErrNotEventOwner
		}
		if event.State == "aprobado" {
			return ErrEventImmutable
		}

		if len(values) > 0 {
			if err := tx.Model(&event).Updates(values).Error; err != nil {
				return err
			}
		}

		if installationIDs != nil {
			if err := replaceInstallationLinks(tx, event.ID, installationIDs); err != nil {
				return err
			}
		}

		for _, link := range orgLinks {
			link.EventID = event.ID
			old, err := upsertOrganizationLink(tx, link)
			if err != nil {
				return err
			}
			if old != "" {
				obsolete = append(obsolete, old)
			}
		}

		if removeAval {
			old, err := deletePrincipalAval(tx, event.ID)
			if err != nil {
				return err
			}
			obsolete = append(obsolete, old...)
		} else if aval != nil {
			aval.EventID = event.ID
			old, err := upsertAval(tx, *aval)
			if err != nil {
				return err
			}
			if old != "" {
				obsolete = append(obsolete, old)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return obsolete, nil
}

// UpdateState moves the event from one lifecycle state to another under the
// row lock. ErrIllegalTransition is returned when the current state does not
// match the expected one.
func (d *EventDAO) UpdateState(ctx context.Context, id uint, from, to string) (Event, error) {
	var event Event

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}

			return err
		}

		if event.State != from {
			return ErrIllegalTransition
		}

		return tx.Model(&event).Update("state", to).Error
	})
	if err != nil {
		return Event{}, err
	}

	return event, nil
}

// Delete removes the event with its links, avales and organization links.
// It reports false without error when the event does not exist, and returns
// the blob paths referenced by the deleted rows.
func (d *EventDAO) Delete(ctx context.Context, id uint) (bool, []string, error) {
	var (
		found    bool
		obsolete []string
	)

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}

			return err
		}
		found = true

		var avales []Aval
		if err := tx.Where("event_id = ?", id).Find(&avales).Error; err != nil {
			return err
		}
		for _, a := range avales {
			if a.FilePath != "" {
				obsolete = append(obsolete, a.FilePath)
			}
		}

		var links []OrganizationEvent
		if err := tx.Where("event_id = ?", id).Find(&links).Error; err != nil {
			return err
		}
		for _, l := range links {
			if l.CertificatePath != "" {
				obsolete = append(obsolete, l.CertificatePath)
			}
		}

		for _, model := range []interface{}{&EventInstallation{}, &Aval{}, &OrganizationEvent{}} {
			if err := tx.Where("event_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&event).Error
	})
	if err != nil {
		return false, nil, err
	}

	return found, obsolete, nil
}

func replaceInstallationLinks(tx *gorm.DB, eventID uint, installationIDs []uint) error {
	if err := tx.Where("event_id = ?", eventID).Delete(&EventInstallation{}).Error; err != nil {
		return err
	}

	if len(installationIDs) == 0 {
		return nil
	}

	links := make([]EventInstallation, len(installationIDs))
	for i, installationID := range installationIDs {
		links[i] = EventInstallation{EventID: eventID, InstallationID: installationID}
	}

	return tx.Create(&links).Error
}
