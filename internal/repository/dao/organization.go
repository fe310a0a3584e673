package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrOrganizationNotFound = errors.New("organization not found")

type Organization struct {
	ID uint `gorm:"primaryKey"`

	Name                string `gorm:"not null"`
	LegalRepresentative string
	Sector              string
	Phone               string
	Email               string
	OwnerID             uint `gorm:"not null;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrganizationEvent is the per-event participation row of an organization.
// Natural key (EventID, OrganizationID); upserts merge field by field so an
// update without a new certificate never nulls the stored one.
type OrganizationEvent struct {
	EventID               uint   `gorm:"primaryKey;autoIncrement:false"`
	OrganizationID        uint   `gorm:"primaryKey;autoIncrement:false"`
	Participant           string `gorm:"not null"`
	IsLegalRepresentative string `gorm:"not null;default:no"`
	CertificatePath       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrganizationDAO struct {
	db *gorm.DB
}

func NewOrganizationDAO(db *gorm.DB) *OrganizationDAO {
	return &OrganizationDAO{
		db: db,
	}
}

func (d *OrganizationDAO) Insert(ctx context.Context, organization Organization) (Organization, error) {
	result := d.db.WithContext(ctx).Create(&organization)
	if result.Error != nil {
		return Organization{}, result.Error
	}

	return organization, nil
}

func (d *OrganizationDAO) FindByID(ctx context.Context, id uint) (Organization, error) {
	var organization Organization

	result := d.db.WithContext(ctx).First(&organization, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Organization{}, ErrOrganizationNotFound
		}

		return Organization{}, result.Error
	}

	return organization, nil
}

func (d *OrganizationDAO) ListByOwner(ctx context.Context, ownerID uint) ([]Organization, error) {
	var organizations []Organization

	result := d.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("name").Find(&organizations)
	if result.Error != nil {
		return nil, result.Error
	}

	return organizations, nil
}

func (d *OrganizationDAO) Update(ctx context.Context, organization Organization) (Organization, error) {
	result := d.db.WithContext(ctx).Model(&Organization{ID: organization.ID}).Updates(map[string]interface{}{
		"name":                 organization.Name,
		"legal_representative": organization.LegalRepresentative,
		"sector":               organization.Sector,
		"phone":                organization.Phone,
		"email":                organization.Email,
	})
	if result.Error != nil {
		return Organization{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Organization{}, ErrOrganizationNotFound
	}

	return d.FindByID(ctx, organization.ID)
}

// upsertOrganizationLink inserts the link if absent, otherwise merges it into
// the existing row. It returns the certificate path made obsolete when a new
// one replaces it; "" when nothing was replaced.
func upsertOrganizationLink(tx *gorm.DB, link OrganizationEvent) (string, error) {
	var existing OrganizationEvent

	err := tx.Where("event_id = ? AND organization_id = ?", link.EventID, link.OrganizationID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", tx.Create(&link).Error
	}
	if err != nil {
		return "", err
	}

	values := map[string]interface{}{
		"participant":             link.Participant,
		"is_legal_representative": link.IsLegalRepresentative,
	}

	obsolete := ""
	if link.CertificatePath != "" {
		values["certificate_path"] = link.CertificatePath
		if existing.CertificatePath != "" && existing.CertificatePath != link.CertificatePath {
			obsolete = existing.CertificatePath
		}
	}

	err = tx.Model(&OrganizationEvent{}).
		Where("event_id = ? AND organization_id = ?", link.EventID, link.OrganizationID).
		Updates(values).Error
	if err != nil {
		return "", err
	}

	return obsolete, nil
}
