package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/cyp0633/libcaldate/date"
	"github.com/cyp0633/libcaldate/recurrence"
	"github.com/cyp0633/libcaldate/server"
	"github.com/cyp0633/libcaldate/storage"
	"github.com/cyp0633/libcaldate/storage/memory"
	"github.com/samber/mo"
)

const (
	// Server configuration
	serverAddr = ":8080"
	feedPrefix = "/feed/"
	configPath = "libcaldate.yaml"
)

// sample is a schedule written the way a user would type it
type sample struct {
	summary  string
	start    string
	schedule string
	ending   string
	spread   string
	tags     []string
}

var samples = []sample{
	{summary: "Rent", start: "2024-01-01", schedule: "every month", ending: "never", tags: []string{"home"}},
	{summary: "Team sync", start: "2024-01-02", schedule: "every 2 weeks on tuesday and thursday", ending: "never", tags: []string{"work"}},
	{summary: "Book club", start: "2024-01-09", schedule: "every month on the second tuesday", ending: "12 times"},
	{summary: "Payday", start: "2024-01-30", schedule: "every month on the 30th", ending: "2024-12-31"},
	{summary: "Holiday", start: "2024-08-05", spread: "2 weeks"},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	config, err := recurrence.LoadEngineConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load engine config: %v", err)
	}
	engine := recurrence.NewEngineWithConfig(config, recurrence.WithLogger(logger))
	defer engine.Close()

	store := memory.New(memory.WithLogger(logger), memory.WithEngine(engine))
	if err := setupStorage(store); err != nil {
		log.Fatalf("Failed to add sample schedules: %v", err)
	}

	srv, err := server.New(store, feedPrefix, server.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	http.Handle(feedPrefix, srv)

	log.Printf("Starting feed server on %s", serverAddr)
	log.Printf("Subscribe to: http://localhost%s", serverAddr+feedPrefix)
	if err := http.ListenAndServe(serverAddr, nil); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// setupStorage parses the samples and adds them to the store
func setupStorage(store storage.Storage) error {
	ctx := context.Background()
	for _, s := range samples {
		sc, err := s.toSchedule()
		if err != nil {
			return fmt.Errorf("%s: %w", s.summary, err)
		}
		if err := store.CreateSchedule(ctx, sc); err != nil {
			return fmt.Errorf("%s: %w", s.summary, err)
		}
		log.Printf("Added %q (%s) as %s", sc.Summary, describe(sc), sc.ID)
	}
	return nil
}

func (s sample) toSchedule() (*storage.Schedule, error) {
	start, err := date.Parse(s.start)
	if err != nil {
		return nil, err
	}

	sc := &storage.Schedule{Summary: s.summary, Start: start, Tags: s.tags}
	if s.schedule != "" {
		if sc.Repetition, err = recurrence.ParseRepetition(s.schedule, s.ending, start); err != nil {
			return nil, err
		}
	}
	if s.spread != "" {
		spread, err := date.ParseDuration(s.spread)
		if err != nil {
			return nil, err
		}
		sc.Spread = mo.Some(spread)
	}
	return sc, nil
}

func describe(sc *storage.Schedule) string {
	if rep, ok := sc.Repetition.Get(); ok {
		return rep.String()
	}
	return "once on " + sc.Start.String()
}
