package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studiobooking/internal/scheduling"
)

// ErrNotFound is shared with the scheduling core so a missing row means the
// same thing on every layer.
var ErrNotFound = scheduling.ErrNotFound

func notFound(err error, what string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %v", ErrNotFound, what, id)
	}
	return err
}
