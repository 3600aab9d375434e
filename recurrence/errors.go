package recurrence

import "errors"

var (
	// ErrUnparseableSchedule is returned when a schedule phrase matches no
	// known pattern.
	ErrUnparseableSchedule = errors.New("couldn't parse schedule")

	// ErrInvalidEnd is returned for a malformed ending phrase.
	ErrInvalidEnd = errors.New("couldn't parse ending schedule")

	// ErrInvalidDelta is returned by Validate for out-of-range fields.
	ErrInvalidDelta = errors.New("invalid repetition")

	// ErrUnsupportedRule means a repetition has no RFC 5545 equivalent, or
	// a rule uses parts this package cannot express.
	ErrUnsupportedRule = errors.New("unsupported recurrence rule")

	// ErrInvalidRange is returned when a query range ends before it starts.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrIterationLimit is returned when a search hits MaxIterations before
	// it can give a definite answer.
	ErrIterationLimit = errors.New("iteration limit reached")
)
