package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"studiobooking/internal/domain"
)

// BookingOverlapConstraint keeps two active bookings of one studio from
// overlapping at the database level (PostgreSQL only).
const BookingOverlapConstraint = "bookings_no_active_overlap"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Studio{},
		&domain.Equipment{},
		&domain.Booking{},
		&domain.StaffAssignment{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '` + BookingOverlapConstraint + `') THEN
		ALTER TABLE bookings ADD CONSTRAINT ` + BookingOverlapConstraint + `
			EXCLUDE USING gist (
				studio_id WITH =,
				tstzrange(start_time, end_time, '[)') WITH &&
			) WHERE (status IN ('PENDING', 'CONFIRMED'));
	END IF;
END $$`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate booking constraint: %w", err)
		}
	}
	log.Printf("migrate: constraint=%s installed", BookingOverlapConstraint)
	return nil
}
