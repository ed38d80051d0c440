package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Profile{},
		&Circle{},
		&Membership{},
		&Invitation{},
		&Ride{},
		&Rating{},
	); err != nil {
		return err
	}

	// Case-insensitive unique username for non-soft-deleted users.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower " +
			"ON users ((lower(username))) WHERE deleted_at IS NULL",
	).Error; err != nil {
		return err
	}

	// Case-insensitive unique email for non-soft-deleted users.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower " +
			"ON users ((lower(email))) WHERE deleted_at IS NULL",
	).Error; err != nil {
		return err
	}

	// One active membership per (user, circle).
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_memberships_user_circle_active " +
			"ON memberships (user_id, circle_id) WHERE deleted_at IS NULL AND is_active",
	).Error
}
