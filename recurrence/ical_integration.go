package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/cyp0633/libcaldate/date"
	"github.com/emersion/go-ical"
	"github.com/samber/mo"
	"github.com/teambition/rrule-go"
)

// Extension properties carrying the schedule in its own phrasing. Other
// clients ignore them; they let FromEvent recover schedules that RRULE
// cannot express.
const (
	PropDelta = "X-CALDATE-DELTA"
	PropEnd   = "X-CALDATE-END"
)

// ProdID identifies calendars written by this library
const ProdID = "-//libcaldate//libcaldate//EN"

// NewCalendar wraps events in a VCALENDAR ready for encoding
func NewCalendar(events ...*ical.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProdID)
	for _, event := range events {
		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

// ApplyToComponent writes DTSTART as an all-day date and, for repeating
// schedules, the X-CALDATE properties plus an RRULE when one exists.
func ApplyToComponent(comp *ical.Component, start date.SimpleDate, rep mo.Option[Repetition]) error {
	comp.Props.SetDate(ical.PropDateTimeStart, start.Time())

	r, ok := rep.Get()
	if !ok {
		comp.Props.Del(ical.PropRecurrenceRule)
		comp.Props.Del(PropDelta)
		comp.Props.Del(PropEnd)
		return nil
	}
	if err := r.Validate(); err != nil {
		return err
	}

	comp.Props.SetText(PropDelta, r.Delta.String())
	comp.Props.SetText(PropEnd, r.End.String())

	opt, err := ToROption(r, start)
	switch {
	case err == nil:
		prop := ical.NewProp(ical.PropRecurrenceRule)
		prop.Value = opt.RRuleString()
		comp.Props.Set(prop)
	case errors.Is(err, ErrUnsupportedRule):
		comp.Props.Del(ical.PropRecurrenceRule)
	default:
		return err
	}
	return nil
}

// ToEvent builds a VEVENT for a schedule
func ToEvent(uid, summary string, start date.SimpleDate, rep mo.Option[Repetition]) (*ical.Event, error) {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uid)
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	if summary != "" {
		event.Props.SetText(ical.PropSummary, summary)
	}

	if err := ApplyToComponent(event.Component, start, rep); err != nil {
		return nil, fmt.Errorf("failed to encode schedule: %w", err)
	}
	return event, nil
}

// ExtractStart reads DTSTART as a calendar date, dropping any time of day
func ExtractStart(comp *ical.Component) (date.SimpleDate, error) {
	if comp.Props.Get(ical.PropDateTimeStart) == nil {
		return date.SimpleDate{}, errors.New("component has no DTSTART")
	}
	t, err := comp.Props.DateTime(ical.PropDateTimeStart, time.UTC)
	if err != nil {
		return date.SimpleDate{}, fmt.Errorf("failed to read DTSTART: %w", err)
	}
	return date.FromTime(t), nil
}

// ExtractRepetition reads the schedule of a component. The X-CALDATE
// properties win when present; otherwise a plain RRULE is translated.
// Components with neither yield None.
func ExtractRepetition(comp *ical.Component, start date.SimpleDate) (mo.Option[Repetition], error) {
	delta, err := comp.Props.Text(PropDelta)
	if err != nil {
		return mo.None[Repetition](), fmt.Errorf("failed to read %s: %w", PropDelta, err)
	}
	if delta != "" {
		ending, err := comp.Props.Text(PropEnd)
		if err != nil {
			return mo.None[Repetition](), fmt.Errorf("failed to read %s: %w", PropEnd, err)
		}
		return ParseRepetition(delta, ending, start)
	}

	rruleProp := comp.Props.Get(ical.PropRecurrenceRule)
	if rruleProp == nil || rruleProp.Value == "" {
		return mo.None[Repetition](), nil
	}

	opt, err := rrule.StrToROption(rruleProp.Value)
	if err != nil {
		return mo.None[Repetition](), fmt.Errorf("%w: %v", ErrUnsupportedRule, err)
	}
	opt.Dtstart = start.Time()

	rep, _, err := FromROption(*opt)
	if err != nil {
		return mo.None[Repetition](), err
	}
	return mo.Some(rep), nil
}

// FromEvent reads the start date and schedule of a VEVENT
func FromEvent(event *ical.Event) (date.SimpleDate, mo.Option[Repetition], error) {
	start, err := ExtractStart(event.Component)
	if err != nil {
		return date.SimpleDate{}, mo.None[Repetition](), err
	}
	rep, err := ExtractRepetition(event.Component, start)
	if err != nil {
		return start, mo.None[Repetition](), err
	}
	return start, rep, nil
}
