package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cyp0633/libcaldate/date"
	"github.com/cyp0633/libcaldate/recurrence"
	"github.com/samber/mo"
)

// Error types
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
	ErrInvalidInput  ErrorType = "invalid_input"
)

// Error represents a storage-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsType reports whether err is, or wraps, a storage Error of type t
func IsType(err error, t ErrorType) bool {
	var se *Error
	return errors.As(err, &se) && se.Type == t
}

// IsNotFound reports whether err is a not_found storage error
func IsNotFound(err error) bool {
	return IsType(err, ErrNotFound)
}

// Schedule is a stored, possibly repeating, all-day event
type Schedule struct {
	ID      string
	Summary string
	Start   date.SimpleDate
	// Spread is how long each occurrence lasts beyond its first day. None
	// means a single day.
	Spread     mo.Option[date.Duration]
	Repetition mo.Option[recurrence.Repetition]
	// Amount is charged per occurrence, in cents. Zero for plain events.
	Amount int64
	Tags   []string

	ETag     string
	Created  time.Time
	Modified time.Time
}

// TimeRange is an inclusive range of dates
type TimeRange struct {
	Start date.SimpleDate
	End   date.SimpleDate
}

// Filter narrows ListSchedules. A nil Filter, or zero fields, match
// everything.
type Filter struct {
	// TimeRange keeps schedules with at least one occurrence in range
	TimeRange *TimeRange
	// SummaryContains is matched case-insensitively
	SummaryContains string
	// Tag keeps schedules carrying this tag
	Tag string
}

// Storage is the interface that must be implemented by storage backends
type Storage interface {
	GetSchedule(ctx context.Context, id string) (*Schedule, error)
	// ListSchedules returns matching schedules ordered by EndDate, then Start
	ListSchedules(ctx context.Context, filter *Filter) ([]*Schedule, error)
	// CreateSchedule assigns ID (when empty), ETag and timestamps
	CreateSchedule(ctx context.Context, s *Schedule) error
	// UpdateSchedule replaces an existing schedule and refreshes its ETag
	UpdateSchedule(ctx context.Context, s *Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
}
