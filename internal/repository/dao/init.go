package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Event{}, "Installations", &EventInstallation{}); err != nil {
		return err
	}

	return db.AutoMigrate(
		&User{},
		&Installation{},
		&Event{},
		&EventInstallation{},
		&Organization{},
		&OrganizationEvent{},
		&Aval{},
		&Evaluation{},
		&Notification{},
	)
}
