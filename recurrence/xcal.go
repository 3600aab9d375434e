package recurrence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cyp0633/libcaldate/date"
	"github.com/cyp0633/libcaldate/internal/xml"
	"github.com/samber/mo"
	"github.com/teambition/rrule-go"
)

var rruleDayCodes = [...]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// ToXCalEvent describes a schedule as an xCal vevent. Like ToEvent, the
// X-CALDATE properties always carry the schedule and a recur value is added
// when the schedule has an RRULE equivalent.
func ToXCalEvent(uid, summary string, start date.SimpleDate, rep mo.Option[Repetition]) (xml.Event, error) {
	event := xml.Event{
		UID:     uid,
		Summary: summary,
		DTStart: start.String(),
	}

	r, ok := rep.Get()
	if !ok {
		return event, nil
	}
	if err := r.Validate(); err != nil {
		return event, err
	}

	event.XProps = map[string]string{
		strings.ToLower(PropDelta): r.Delta.String(),
		strings.ToLower(PropEnd):   r.End.String(),
	}

	opt, err := ToROption(r, start)
	switch {
	case err == nil:
		recur, err := recurFromROption(opt)
		if err != nil {
			return event, err
		}
		event.RRule = recur
	case !errors.Is(err, ErrUnsupportedRule):
		return event, err
	}
	return event, nil
}

// FromXCalEvent reads a vevent written by ToXCalEvent, or any vevent with
// an all-day start and an RRULE of a supported shape.
func FromXCalEvent(event xml.Event) (date.SimpleDate, mo.Option[Repetition], error) {
	start, err := date.Parse(event.DTStart)
	if err != nil {
		return date.SimpleDate{}, mo.None[Repetition](), fmt.Errorf("failed to read dtstart: %w", err)
	}

	if delta := event.XProps[strings.ToLower(PropDelta)]; delta != "" {
		rep, err := ParseRepetition(delta, event.XProps[strings.ToLower(PropEnd)], start)
		return start, rep, err
	}
	if event.RRule == nil {
		return start, mo.None[Repetition](), nil
	}

	opt, err := rrule.StrToROption(event.RRule.RuleString())
	if err != nil {
		return start, mo.None[Repetition](), fmt.Errorf("%w: %v", ErrUnsupportedRule, err)
	}
	opt.Dtstart = start.Time()

	rep, _, err := FromROption(*opt)
	if err != nil {
		return start, mo.None[Repetition](), err
	}
	return start, mo.Some(rep), nil
}

// MarshalXCal renders a single schedule as a complete xCal document.
func MarshalXCal(uid, summary string, start date.SimpleDate, rep mo.Option[Repetition]) (string, error) {
	event, err := ToXCalEvent(uid, summary, start, rep)
	if err != nil {
		return "", err
	}
	cal := xml.Calendar{ProdID: ProdID, Events: []xml.Event{event}}
	return cal.Encode()
}

// UnmarshalXCal reads the first vevent of an xCal document.
func UnmarshalXCal(s string) (date.SimpleDate, mo.Option[Repetition], error) {
	cal, err := xml.Decode(s)
	if err != nil {
		return date.SimpleDate{}, mo.None[Repetition](), err
	}
	if len(cal.Events) == 0 {
		return date.SimpleDate{}, mo.None[Repetition](), errors.New("xCal document has no vevent")
	}
	return FromXCalEvent(cal.Events[0])
}

func recurFromROption(opt rrule.ROption) (*xml.Recur, error) {
	recur := &xml.Recur{
		Count:      opt.Count,
		Interval:   opt.Interval,
		ByMonthDay: opt.Bymonthday,
		BySetPos:   opt.Bysetpos,
	}

	switch opt.Freq {
	case rrule.DAILY:
		recur.Freq = "DAILY"
	case rrule.WEEKLY:
		recur.Freq = "WEEKLY"
	case rrule.MONTHLY:
		recur.Freq = "MONTHLY"
	case rrule.YEARLY:
		recur.Freq = "YEARLY"
	default:
		return nil, unsupported("frequency %v", opt.Freq)
	}

	if !opt.Until.IsZero() {
		recur.Until = date.FromTime(opt.Until).String()
	}
	for i := range opt.Byweekday {
		wd := &opt.Byweekday[i]
		code := rruleDayCodes[wd.Day()]
		if n := wd.N(); n != 0 {
			code = fmt.Sprintf("%+d%s", n, code)
		}
		recur.ByDay = append(recur.ByDay, code)
	}
	return recur, nil
}
