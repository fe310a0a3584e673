package dao

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrInstallationNotFound = errors.New("installation not found")
	ErrInvalidCapacity      = errors.New("installation has an invalid capacity")
)

type Installation struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"not null"`
	Location string
	Capacity int `gorm:"not null"`
}

type InstallationDAO struct {
	db *gorm.DB
}

func NewInstallationDAO(db *gorm.DB) *InstallationDAO {
	return &InstallationDAO{
		db: db,
	}
}

func (d *InstallationDAO) FindByID(ctx context.Context, id uint) (Installation, error) {
	var installation Installation

	result := d.db.WithContext(ctx).First(&installation, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Installation{}, ErrInstallationNotFound
		}

		return Installation{}, result.Error
	}

	// The column is NOT NULL, but a bad seed can still sneak a negative in.
	if installation.Capacity < 0 {
		return Installation{}, ErrInvalidCapacity
	}

	return installation, nil
}

func (d *InstallationDAO) List(ctx context.Context) ([]Installation, error) {
	var installations []Installation

	result := d.db.WithContext(ctx).Order("name").Find(&installations)
	if result.Error != nil {
		return nil, result.Error
	}

	return installations, nil
}
