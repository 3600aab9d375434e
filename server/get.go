package server

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/cyp0633/libcaldate/date"
	"github.com/cyp0633/libcaldate/recurrence"
	"github.com/cyp0633/libcaldate/storage"
)

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	p := stripPrefix(r.URL.Path, s.baseURI)
	s.logger.Debug("GET received", "path", p)

	if p == "" || p == "/" {
		s.handleFeed(w, r)
		return
	}

	name := path.Base(p)
	if strings.Trim(p, "/") != name {
		http.NotFound(w, r)
		return
	}
	switch ext := path.Ext(name); ext {
	case ".ics", ".xml":
		s.handleSchedule(w, r, strings.TrimSuffix(name, ext), ext)
	default:
		http.NotFound(w, r)
	}
}

// handleFeed writes every schedule, optionally narrowed to those occurring
// between the start and end query dates
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	schedules, err := s.storage.ListSchedules(r.Context(), filter)
	if err != nil {
		s.storageError(w, err)
		return
	}

	ics, err := storage.SchedulesToICS(schedules...)
	if err != nil {
		s.logger.Error("failed to encode feed", "error", err)
		http.Error(w, "Internal Server Error: Failed to encode calendar", http.StatusInternalServerError)
		return
	}
	s.write(w, r, mimeTypeCalendar, "", ics)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request, id, ext string) {
	sc, err := s.storage.GetSchedule(r.Context(), id)
	if err != nil {
		s.storageError(w, err)
		return
	}

	// judge etag
	if etag := r.Header.Get("If-None-Match"); etag != "" && etag == sc.ETag {
		w.Header().Set(headerETag, sc.ETag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	var body, contentType string
	if ext == ".xml" {
		contentType = mimeTypeXCal
		body, err = recurrence.MarshalXCal(sc.ID, sc.Summary, sc.Start, sc.Repetition)
	} else {
		contentType = mimeTypeCalendar
		body, err = storage.SchedulesToICS(sc)
	}
	if err != nil {
		s.logger.Error("failed to encode schedule", "id", id, "error", err)
		http.Error(w, "Internal Server Error: Failed to encode schedule", http.StatusInternalServerError)
		return
	}
	s.write(w, r, contentType, sc.ETag, body)
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, contentType, etag, body string) {
	w.Header().Set(headerContentType, contentType)
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	if etag != "" {
		w.Header().Set(headerETag, etag)
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write([]byte(body)); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

// parseFilter reads ?start= and ?end=. Either may be given alone; the
// missing side is left open.
func parseFilter(r *http.Request) (*storage.Filter, error) {
	query := r.URL.Query()
	startText, endText := query.Get("start"), query.Get("end")
	if startText == "" && endText == "" {
		return nil, nil
	}

	tr := &storage.TimeRange{Start: date.FromYMD(1, 1, 1), End: date.Forever}
	var err error
	if startText != "" {
		if tr.Start, err = date.Parse(startText); err != nil {
			return nil, fmt.Errorf("invalid start: %w", err)
		}
	}
	if endText != "" {
		if tr.End, err = date.Parse(endText); err != nil {
			return nil, fmt.Errorf("invalid end: %w", err)
		}
	}
	if tr.End.Before(tr.Start) {
		return nil, fmt.Errorf("end %s is before start %s", tr.End, tr.Start)
	}
	return &storage.Filter{TimeRange: tr}, nil
}
