package date

import "errors"

var (
	// ErrInvalidMonth is returned when a month falls outside 1-12.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrInvalidDate is returned when the day does not exist in its month.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidFormat is returned for input that is not yyyy-mm-dd.
	ErrInvalidFormat = errors.New("invalid date format")

	// ErrInvalidDuration is returned by ParseDuration.
	ErrInvalidDuration = errors.New("invalid duration")
)
