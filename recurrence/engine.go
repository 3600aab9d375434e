package recurrence

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/cyp0633/libcaldate/date"
	"github.com/samber/mo"
)

const (
	opExpand        = "expand"
	opHasOccurrence = "has"
)

// Engine expands schedules into concrete occurrence dates. It caches results
// according to its EngineConfig and is safe for concurrent use.
type Engine struct {
	cache  *RecurrenceCache
	config EngineConfig
	logger *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger for the engine
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewEngine creates an engine with DefaultEngineConfig
func NewEngine(opts ...Option) *Engine {
	return NewEngineWithConfig(DefaultEngineConfig, opts...)
}

// Config returns the normalized configuration the engine runs with
func (e *Engine) Config() EngineConfig {
	return e.config
}

// Close releases the cache. The engine keeps working without it.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// CacheStats reports cache occupancy; zero when caching is disabled
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}

// Expand lists the occurrences of a schedule starting at start that fall in
// [rangeStart, rangeEnd], both ends inclusive. A None repetition is a one-off
// event whose only occurrence is start.
func (e *Engine) Expand(rep mo.Option[Repetition], start, rangeStart, rangeEnd date.SimpleDate) ([]Occurrence, error) {
	if err := checkRange(rep, rangeStart, rangeEnd); err != nil {
		return nil, err
	}

	if e.cache != nil {
		if cached, ok := e.cache.Get(opExpand, rep, start, rangeStart, rangeEnd); ok {
			if result, ok := cached.(ExpansionResult); ok {
				e.logger.Debug("expansion cache hit", "start", start, "range_start", rangeStart, "range_end", rangeEnd)
				return slices.Clone(result.Occurrences), nil
			}
		}
	}

	result := e.expand(rep, start, rangeStart, rangeEnd, e.config.MaxExpansionOccurrences)
	if result.Truncated {
		e.logger.Warn("expansion truncated",
			"schedule", describe(rep),
			"start", start,
			"range_start", rangeStart,
			"range_end", rangeEnd,
			"returned", len(result.Occurrences))
	}

	if e.cache != nil {
		e.cache.Set(opExpand, rep, start, rangeStart, rangeEnd, result)
	}
	return slices.Clone(result.Occurrences), nil
}

// HasOccurrenceInRange reports whether any occurrence falls in
// [rangeStart, rangeEnd]. It stops at the first match. When MaxIterations
// runs out before the range is reached the answer is unknown and
// ErrIterationLimit is returned.
func (e *Engine) HasOccurrenceInRange(rep mo.Option[Repetition], start, rangeStart, rangeEnd date.SimpleDate) (bool, error) {
	if err := checkRange(rep, rangeStart, rangeEnd); err != nil {
		return false, err
	}

	// Fast path: the schedule has not begun by the end of the range
	if start.After(rangeEnd) {
		return false, nil
	}

	if e.cache != nil {
		if cached, ok := e.cache.Get(opHasOccurrence, rep, start, rangeStart, rangeEnd); ok {
			if has, ok := cached.(bool); ok {
				return has, nil
			}
		}
	}

	result := e.expand(rep, start, rangeStart, rangeEnd, 1)
	has := len(result.Occurrences) > 0
	if !has && result.Truncated {
		e.logger.Warn("occurrence search gave up",
			"schedule", describe(rep),
			"start", start,
			"range_start", rangeStart,
			"range_end", rangeEnd)
		return false, fmt.Errorf("%w: no occurrence of %q found within %d steps", ErrIterationLimit, describe(rep), e.config.MaxIterations)
	}

	if e.cache != nil {
		e.cache.Set(opHasOccurrence, rep, start, rangeStart, rangeEnd, has)
	}
	return has, nil
}

// NextAfter returns the first occurrence strictly after the given date, or
// None when the schedule has ended by then.
func (e *Engine) NextAfter(rep mo.Option[Repetition], start, after date.SimpleDate) mo.Option[Occurrence] {
	if start.After(after) {
		return mo.Some(Occurrence{Date: start})
	}
	r, ok := rep.Get()
	if !ok {
		return mo.None[Occurrence]()
	}

	rest, from, index, ok := skipAhead(r, start, after)
	if !ok {
		return mo.None[Occurrence]()
	}
	steps := 0
	for d := range rest.All(from) {
		if steps >= e.config.MaxIterations {
			e.logger.Warn("next occurrence search gave up", "schedule", r.String(), "start", start, "after", after)
			break
		}
		if d.After(after) {
			return mo.Some(Occurrence{Date: d, Index: index})
		}
		index++
		steps++
	}
	return mo.None[Occurrence]()
}

// Last returns the final occurrence date, date.Forever for schedules that
// never end and start itself for one-off events.
func (e *Engine) Last(rep mo.Option[Repetition], start date.SimpleDate) date.SimpleDate {
	if r, ok := rep.Get(); ok {
		return r.Last(start)
	}
	return start
}

// expand walks the schedule from start. limit caps the occurrences collected
// inside the range, 0 meaning no cap.
func (e *Engine) expand(rep mo.Option[Repetition], start, rangeStart, rangeEnd date.SimpleDate, limit int) ExpansionResult {
	var result ExpansionResult

	r, ok := rep.Get()
	if !ok {
		if !start.Before(rangeStart) && !start.After(rangeEnd) {
			result.Occurrences = append(result.Occurrences, Occurrence{Date: start})
		}
		return result
	}

	rest, from, index, ok := skipAhead(r, start, rangeStart)
	if !ok {
		return result
	}
	steps := 0
	for d := range rest.All(from) {
		if d.After(rangeEnd) {
			break
		}
		if steps >= e.config.MaxIterations {
			result.Truncated = true
			break
		}
		if !d.Before(rangeStart) {
			if limit > 0 && len(result.Occurrences) >= limit {
				result.Truncated = true
				break
			}
			result.Occurrences = append(result.Occurrences, Occurrence{Date: d, Index: index})
		}
		index++
		steps++
	}
	return result
}

// skipAhead finds the latest occurrence on or before target without walking
// to it, for deltas that advance by a fixed number of days. It returns that
// occurrence, its index and the repetition to keep walking with, its count
// reduced by the ticks skipped. ok is false when the schedule has ended
// before target. Other deltas come back unchanged from start.
func skipAhead(r Repetition, start, target date.SimpleDate) (rest Repetition, from date.SimpleDate, index int, ok bool) {
	var first date.SimpleDate
	var stride int
	switch d := r.Delta.(type) {
	case DayDelta:
		first, stride = start.Add(date.Days(d.Nth)), d.Nth
	case WeekDelta:
		// The first tick moves onto the anchor weekday, every later one is
		// exactly Nth weeks.
		first, stride = d.Next(start), 7*d.Nth
	default:
		return r, start, 0, true
	}
	if stride <= 0 || !first.Before(target) {
		return r, start, 0, true
	}

	index = 1 + date.DaysBetween(first, target)/stride
	if r.End.Kind == EndCount && index > r.End.Count {
		index = r.End.Count
	}
	if index == 0 {
		return r, start, 0, true
	}
	from = first.Add(date.Days((index - 1) * stride))
	if r.End.Kind == EndDate && from.After(r.End.Date) {
		return r, from, index, false
	}
	rest = r
	if r.End.Kind == EndCount {
		rest.End.Count -= index
	}
	return rest, from, index, true
}
