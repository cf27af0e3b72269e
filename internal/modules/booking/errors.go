package booking

import "errors"

var (
	ErrInvalidStaff  = errors.New("staff member not found or not staff")
	ErrInvalidClient = errors.New("client not found")
	ErrInvalidQuery  = errors.New("invalid query")
)
