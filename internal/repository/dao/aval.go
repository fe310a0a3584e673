package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrAvalNotFound = errors.New("aval not found")

// Aval keeps at most one endorsement per issuing user per event.
type Aval struct {
	UserID  uint `gorm:"primaryKey;autoIncrement:false"`
	EventID uint `gorm:"primaryKey;autoIncrement:false;index"`

	FilePath  string
	Principal bool   `gorm:"not null;default:false"`
	Type      string `gorm:"not null"` // "directorPrograma" or "directorDocencia"

	CreatedAt time.Time
	UpdatedAt time.Time
}

type AvalDAO struct {
	db *gorm.DB
}

func NewAvalDAO(db *gorm.DB) *AvalDAO {
	return &AvalDAO{
		db: db,
	}
}

func (d *AvalDAO) FindPrincipalByEvent(ctx context.Context, eventID uint) (Aval, error) {
	var aval Aval

	result := d.db.WithContext(ctx).
		Where("event_id = ? AND principal = ?", eventID, true).
		First(&aval)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Aval{}, ErrAvalNotFound
		}

		return Aval{}, result.Error
	}

	return aval, nil
}

// upsertAval inserts or merges the endorsement keyed by (user_id, event_id).
// A new file path displaces the stored one; the displaced path is returned so
// the caller can delete the blob after commit.
func upsertAval(tx *gorm.DB, aval Aval) (string, error) {
	var existing Aval

	err := tx.Where("user_id = ? AND event_id = ?", aval.UserID, aval.EventID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", tx.Create(&aval).Error
	}
	if err != nil {
		return "", err
	}

	values := map[string]interface{}{
		"principal": aval.Principal,
		"type":      aval.Type,
	}

	obsolete := ""
	if aval.FilePath != "" {
		values["file_path"] = aval.FilePath
		if existing.FilePath != "" && existing.FilePath != aval.FilePath {
			obsolete = existing.FilePath
		}
	}

	err = tx.Model(&Aval{}).
		Where("user_id = ? AND event_id = ?", aval.UserID, aval.EventID).
		Updates(values).Error
	if err != nil {
		return "", err
	}

	return obsolete, nil
}

// deletePrincipalAval removes the principal endorsement rows of an event and
// returns their blob paths for post-commit cleanup.
func deletePrincipalAval(tx *gorm.DB, eventID uint) ([]string, error) {
	var avales []Aval

	err := tx.Where("event_id = ? AND principal = ?", eventID, true).Find(&avales).Error
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, a := range avales {
		if a.FilePath != "" {
			paths = append(paths, a.FilePath)
		}
	}

	err = tx.Where("event_id = ? AND principal = ?", eventID, true).Delete(&Aval{}).Error
	if err != nil {
		return nil, err
	}

	return paths, nil
}
