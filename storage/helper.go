package storage

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cyp0633/libcaldate/date"
	"github.com/cyp0633/libcaldate/recurrence"
	"github.com/emersion/go-ical"
	"github.com/samber/mo"
)

const (
	// PropSpread carries the schedule's spread in Duration.String form
	PropSpread = "X-CALDATE-SPREAD"
	// PropAmount carries the per-occurrence amount in cents
	PropAmount = "X-CALDATE-AMOUNT"
)

// ScheduleToEvent builds the VEVENT for a schedule. DTEND is the exclusive
// all-day end of the first occurrence.
func ScheduleToEvent(s *Schedule) (*ical.Event, error) {
	event, err := recurrence.ToEvent(s.ID, s.Summary, s.Start, s.Repetition)
	if err != nil {
		return nil, err
	}

	end := s.Start
	if spread, ok := s.Spread.Get(); ok {
		end = end.Add(spread)
		event.Props.SetText(PropSpread, spread.String())
	}
	event.Props.SetDate(ical.PropDateTimeEnd, end.Add(date.Days(1)).Time())

	if s.Amount != 0 {
		event.Props.SetText(PropAmount, strconv.FormatInt(s.Amount, 10))
	}
	if len(s.Tags) > 0 {
		prop := ical.NewProp(ical.PropCategories)
		prop.Value = strings.Join(s.Tags, ",")
		event.Props.Set(prop)
	}
	if !s.Created.IsZero() {
		event.Props.SetDateTime(ical.PropCreated, s.Created.UTC())
	}
	if !s.Modified.IsZero() {
		event.Props.SetDateTime(ical.PropLastModified, s.Modified.UTC())
		event.Props.SetDateTime(ical.PropDateTimeStamp, s.Modified.UTC())
	}
	return event, nil
}

// EventToSchedule reads a VEVENT back into a schedule. Without an
// X-CALDATE-SPREAD property the spread is taken from DTEND.
func EventToSchedule(event *ical.Event) (*Schedule, error) {
	start, rep, err := recurrence.FromEvent(event)
	if err != nil {
		return nil, &Error{Type: ErrInvalidInput, Message: "unreadable schedule", Err: err}
	}

	s := &Schedule{Start: start, Repetition: rep}

	if s.ID, err = event.Props.Text(ical.PropUID); err != nil {
		return nil, &Error{Type: ErrInvalidInput, Message: "unreadable UID", Err: err}
	}
	if s.Summary, err = event.Props.Text(ical.PropSummary); err != nil {
		return nil, &Error{Type: ErrInvalidInput, Message: "unreadable SUMMARY", Err: err}
	}

	s.Spread, err = spreadOf(event, start)
	if err != nil {
		return nil, err
	}

	if prop := event.Props.Get(ical.PropCategories); prop != nil {
		for _, tag := range strings.Split(prop.Value, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				s.Tags = append(s.Tags, tag)
			}
		}
	}
	if s.Amount, err = amountOf(event); err != nil {
		return nil, err
	}
	if prop := event.Props.Get(ical.PropCreated); prop != nil {
		if s.Created, err = prop.DateTime(time.UTC); err != nil {
			return nil, &Error{Type: ErrInvalidInput, Message: "unreadable CREATED", Err: err}
		}
	}
	if prop := event.Props.Get(ical.PropLastModified); prop != nil {
		if s.Modified, err = prop.DateTime(time.UTC); err != nil {
			return nil, &Error{Type: ErrInvalidInput, Message: "unreadable LAST-MODIFIED", Err: err}
		}
	}
	return s, nil
}

func amountOf(event *ical.Event) (int64, error) {
	text, err := event.Props.Text(PropAmount)
	if err != nil {
		return 0, &Error{Type: ErrInvalidInput, Message: "unreadable " + PropAmount, Err: err}
	}
	if text == "" {
		return 0, nil
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, &Error{Type: ErrInvalidInput, Message: "invalid amount", Err: err}
	}
	return amount, nil
}

func spreadOf(event *ical.Event, start date.SimpleDate) (mo.Option[date.Duration], error) {
	text, err := event.Props.Text(PropSpread)
	if err != nil {
		return mo.None[date.Duration](), &Error{Type: ErrInvalidInput, Message: "unreadable " + PropSpread, Err: err}
	}
	if text != "" {
		spread, err := date.ParseDuration(text)
		if err != nil {
			return mo.None[date.Duration](), &Error{Type: ErrInvalidInput, Message: "invalid spread", Err: err}
		}
		return mo.Some(spread), nil
	}

	if event.Props.Get(ical.PropDateTimeEnd) == nil {
		return mo.None[date.Duration](), nil
	}
	t, err := event.Props.DateTime(ical.PropDateTimeEnd, time.UTC)
	if err != nil {
		return mo.None[date.Duration](), &Error{Type: ErrInvalidInput, Message: "unreadable DTEND", Err: err}
	}
	if days := date.DaysBetween(start, date.FromTime(t)) - 1; days > 0 {
		return mo.Some(date.Days(days)), nil
	}
	return mo.None[date.Duration](), nil
}

// SchedulesToCalendar wraps the VEVENTs of several schedules in one VCALENDAR
func SchedulesToCalendar(schedules []*Schedule) (*ical.Calendar, error) {
	events := make([]*ical.Event, 0, len(schedules))
	for _, s := range schedules {
		event, err := ScheduleToEvent(s)
		if err != nil {
			return nil, fmt.Errorf("failed to encode schedule %s: %w", s.ID, err)
		}
		events = append(events, event)
	}
	return recurrence.NewCalendar(events...), nil
}

// SchedulesToICS encodes schedules as an iCalendar stream. An empty list
// yields a VCALENDAR with no components.
func SchedulesToICS(schedules ...*Schedule) (string, error) {
	if len(schedules) == 0 {
		return "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + recurrence.ProdID + "\r\nEND:VCALENDAR\r\n", nil
	}

	cal, err := SchedulesToCalendar(schedules)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.String(), nil
}

// ICSToSchedule decodes a calendar holding exactly one VEVENT
func ICSToSchedule(ics string) (*Schedule, error) {
	cal, err := ical.NewDecoder(strings.NewReader(ics)).Decode()
	if err != nil {
		return nil, &Error{Type: ErrInvalidInput, Message: "failed to decode calendar", Err: err}
	}

	events := cal.Events()
	if len(events) == 0 {
		return nil, &Error{Type: ErrInvalidInput, Message: "no events found in calendar"}
	}
	if len(events) > 1 {
		return nil, &Error{Type: ErrInvalidInput, Message: "multiple events found in calendar"}
	}

	return EventToSchedule(&events[0])
}
