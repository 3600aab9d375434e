// memory based implementation for testing purposes
package memory

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cyp0633/libcaldate/recurrence"
	"github.com/cyp0633/libcaldate/storage"
	"github.com/google/uuid"
)

// Store implements storage.Storage with a map keyed by schedule ID
type Store struct {
	mu        sync.RWMutex
	schedules map[string]*storage.Schedule
	engine    *recurrence.Engine
	ownEngine bool
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger for the store
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEngine sets the engine used for time range filters. The caller keeps
// ownership and must close it.
func WithEngine(engine *recurrence.Engine) Option {
	return func(s *Store) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// New creates a new in-memory storage
func New(opts ...Option) *Store {
	s := &Store{
		schedules: make(map[string]*storage.Schedule),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = recurrence.NewEngine(recurrence.WithLogger(s.logger))
		s.ownEngine = true
	}
	return s
}

// Close releases the engine when the store created it
func (s *Store) Close() {
	if s.ownEngine {
		s.engine.Close()
	}
}

func generateETag(sc *storage.Schedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n%s\n", sc.ID, sc.Summary, sc.Start)
	if spread, ok := sc.Spread.Get(); ok {
		b.WriteString(spread.String())
	}
	b.WriteByte('\n')
	if rep, ok := sc.Repetition.Get(); ok {
		b.WriteString(rep.String())
	}
	fmt.Fprintf(&b, "\n%d\n%s\n%d", sc.Amount, strings.Join(sc.Tags, ","), sc.Modified.UnixNano())

	hash := sha1.Sum([]byte(b.String()))
	return `"` + hex.EncodeToString(hash[:]) + `"`
}

func notFound(id string) error {
	return &storage.Error{
		Type:    storage.ErrNotFound,
		Message: fmt.Sprintf("schedule %q not found", id),
	}
}

func (s *Store) GetSchedule(_ context.Context, id string) (*storage.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.schedules[id]
	if !ok {
		return nil, notFound(id)
	}
	return sc.Clone(), nil
}

func (s *Store) ListSchedules(_ context.Context, filter *storage.Filter) ([]*storage.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*storage.Schedule, 0, len(s.schedules))
	for _, sc := range s.schedules {
		ok, err := sc.Matches(s.engine, filter)
		if err != nil {
			return nil, &storage.Error{
				Type:    storage.ErrInvalidInput,
				Message: "invalid filter",
				Err:     err,
			}
		}
		if ok {
			result = append(result, sc.Clone())
		}
	}

	slices.SortFunc(result, func(a, b *storage.Schedule) int {
		if c := storage.CompareByEnd(a, b); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	s.logger.Debug("listed schedules", "count", len(result))
	return result, nil
}

func (s *Store) CreateSchedule(_ context.Context, sc *storage.Schedule) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	if _, exists := s.schedules[sc.ID]; exists {
		return &storage.Error{
			Type:    storage.ErrAlreadyExists,
			Message: fmt.Sprintf("schedule %q already exists", sc.ID),
		}
	}

	now := s.now()
	sc.Created = now
	sc.Modified = now
	sc.ETag = generateETag(sc)
	s.schedules[sc.ID] = sc.Clone()

	s.logger.Info("created schedule", "id", sc.ID, "summary", sc.Summary)
	return nil
}

func (s *Store) UpdateSchedule(_ context.Context, sc *storage.Schedule) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.schedules[sc.ID]
	if !ok {
		return notFound(sc.ID)
	}

	sc.Created = old.Created
	sc.Modified = s.now()
	if !sc.Modified.After(old.Modified) {
		sc.Modified = old.Modified.Add(time.Nanosecond)
	}
	sc.ETag = generateETag(sc)
	s.schedules[sc.ID] = sc.Clone()

	s.logger.Info("updated schedule", "id", sc.ID)
	return nil
}

func (s *Store) DeleteSchedule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[id]; !ok {
		return notFound(id)
	}
	delete(s.schedules, id)

	s.logger.Info("deleted schedule", "id", id)
	return nil
}

var _ storage.Storage = (*Store)(nil)
