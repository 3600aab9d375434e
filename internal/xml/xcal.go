package xml

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Recur is the value of an RRULE property (RFC 5545 section 3.3.10) in its
// xCal form. Zero fields are omitted on output.
type Recur struct {
	Freq       string
	Until      string // yyyy-mm-dd
	Count      int
	Interval   int
	ByDay      []string // e.g. "MO", "+2TU"
	ByMonthDay []int
	ByMonth    []int
	BySetPos   []int
}

// Event is a VEVENT carrying an all-day start and an optional rule
type Event struct {
	UID     string
	Summary string
	DTStart string // yyyy-mm-dd
	DTEnd   string // yyyy-mm-dd, exclusive
	RRule   *Recur
	// Extension properties by lower-case name, e.g. "x-caldate-delta"
	XProps map[string]string
}

// Calendar is a VCALENDAR holding events
type Calendar struct {
	ProdID string
	Events []Event
}

// ToElement renders the recur value
func (r *Recur) ToElement() *etree.Element {
	recur := Property{Name: TagRecur}
	add := func(name, value string) {
		recur.Children = append(recur.Children, Property{Name: name, TextContent: value})
	}

	add("freq", r.Freq)
	if r.Until != "" {
		add("until", r.Until)
	}
	if r.Count > 0 {
		add("count", strconv.Itoa(r.Count))
	}
	if r.Interval > 1 {
		add("interval", strconv.Itoa(r.Interval))
	}
	for _, day := range r.ByDay {
		add("byday", day)
	}
	for _, n := range r.ByMonthDay {
		add("bymonthday", strconv.Itoa(n))
	}
	for _, n := range r.ByMonth {
		add("bymonth", strconv.Itoa(n))
	}
	for _, n := range r.BySetPos {
		add("bysetpos", strconv.Itoa(n))
	}
	return recur.ToElement()
}

// ParseRecur reads a <recur> element
func ParseRecur(elem *etree.Element) (*Recur, error) {
	if elem == nil || elem.Tag != TagRecur {
		return nil, fmt.Errorf("expected <%s> element", TagRecur)
	}

	r := &Recur{}
	for _, child := range elem.ChildElements() {
		text := strings.TrimSpace(child.Text())

		var err error
		switch child.Tag {
		case "freq":
			r.Freq = strings.ToUpper(text)
		case "until":
			r.Until = text
		case "count":
			r.Count, err = strconv.Atoi(text)
		case "interval":
			r.Interval, err = strconv.Atoi(text)
		case "byday":
			r.ByDay = append(r.ByDay, strings.ToUpper(text))
		case "bymonthday":
			r.ByMonthDay, err = appendInt(r.ByMonthDay, text)
		case "bymonth":
			r.ByMonth, err = appendInt(r.ByMonth, text)
		case "bysetpos":
			r.BySetPos, err = appendInt(r.BySetPos, text)
		default:
			return nil, fmt.Errorf("unsupported recur part <%s>", child.Tag)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid <%s> value %q: %w", child.Tag, text, err)
		}
	}

	if r.Freq == "" {
		return nil, fmt.Errorf("<%s> has no <freq>", TagRecur)
	}
	return r, nil
}

// RuleString renders the recur in RFC 5545 text form, e.g.
// "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO"
func (r *Recur) RuleString() string {
	parts := []string{"FREQ=" + r.Freq}
	if r.Until != "" {
		parts = append(parts, "UNTIL="+strings.ReplaceAll(r.Until, "-", ""))
	}
	if r.Count > 0 {
		parts = append(parts, "COUNT="+strconv.Itoa(r.Count))
	}
	if r.Interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(r.Interval))
	}
	if len(r.ByDay) > 0 {
		parts = append(parts, "BYDAY="+strings.Join(r.ByDay, ","))
	}
	if len(r.ByMonthDay) > 0 {
		parts = append(parts, "BYMONTHDAY="+joinInts(r.ByMonthDay))
	}
	if len(r.ByMonth) > 0 {
		parts = append(parts, "BYMONTH="+joinInts(r.ByMonth))
	}
	if len(r.BySetPos) > 0 {
		parts = append(parts, "BYSETPOS="+joinInts(r.BySetPos))
	}
	return strings.Join(parts, ";")
}

// ToElement renders the event as <vevent>
func (e *Event) ToElement() *etree.Element {
	props := Property{Name: TagProperties}
	if e.UID != "" {
		props.Children = append(props.Children, Text(TagUID, e.UID))
	}
	if e.Summary != "" {
		props.Children = append(props.Children, Text(TagSummary, e.Summary))
	}
	props.Children = append(props.Children, Date(TagDTStart, e.DTStart))
	if e.DTEnd != "" {
		props.Children = append(props.Children, Date(TagDTEnd, e.DTEnd))
	}
	for _, name := range sortedKeys(e.XProps) {
		props.Children = append(props.Children, Text(name, e.XProps[name]))
	}

	propsElem := props.ToElement()
	if e.RRule != nil {
		rrule := etree.NewElement(TagRRule)
		rrule.AddChild(e.RRule.ToElement())
		propsElem.AddChild(rrule)
	}

	vevent := etree.NewElement(TagVEvent)
	vevent.AddChild(propsElem)
	return vevent
}

// ToXML converts the calendar to a complete xCal document
func (c *Calendar) ToXML() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement(TagICalendar)
	AddNamespaces(doc)

	vcal := root.CreateElement(TagVCalendar)
	props := Property{Name: TagProperties, Children: []Property{
		Text(TagVersion, "2.0"),
		Text(TagProdID, c.ProdID),
	}}
	vcal.AddChild(props.ToElement())

	comps := vcal.CreateElement(TagComponents)
	for i := range c.Events {
		comps.AddChild(c.Events[i].ToElement())
	}

	doc.Indent(2)
	return doc
}

// Encode renders the calendar as an indented xCal string
func (c *Calendar) Encode() (string, error) {
	return c.ToXML().WriteToString()
}

// ParseCalendar reads an xCal document produced by ToXML or any other
// writer that uses the same element shapes
func ParseCalendar(doc *etree.Document) (*Calendar, error) {
	root := doc.SelectElement(TagICalendar)
	if root == nil {
		return nil, fmt.Errorf("missing <%s> root", TagICalendar)
	}
	vcal := root.SelectElement(TagVCalendar)
	if vcal == nil {
		return nil, fmt.Errorf("missing <%s>", TagVCalendar)
	}

	cal := &Calendar{}
	if props := vcal.SelectElement(TagProperties); props != nil {
		if prodid := props.SelectElement(TagProdID); prodid != nil {
			cal.ProdID = valueOf(prodid)
		}
	}

	comps := vcal.SelectElement(TagComponents)
	if comps == nil {
		return cal, nil
	}
	for _, vevent := range comps.SelectElements(TagVEvent) {
		event, err := parseEvent(vevent)
		if err != nil {
			return nil, err
		}
		cal.Events = append(cal.Events, event)
	}
	return cal, nil
}

// Decode parses an xCal string
func Decode(s string) (*Calendar, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return nil, fmt.Errorf("failed to read xCal document: %w", err)
	}
	return ParseCalendar(doc)
}

func parseEvent(vevent *etree.Element) (Event, error) {
	var event Event
	props := vevent.SelectElement(TagProperties)
	if props == nil {
		return event, fmt.Errorf("<%s> has no <%s>", TagVEvent, TagProperties)
	}

	for _, prop := range props.ChildElements() {
		switch tag := prop.Tag; {
		case tag == TagUID:
			event.UID = valueOf(prop)
		case tag == TagSummary:
			event.Summary = valueOf(prop)
		case tag == TagDTStart:
			event.DTStart = valueOf(prop)
		case tag == TagDTEnd:
			event.DTEnd = valueOf(prop)
		case tag == TagRRule:
			recur, err := ParseRecur(prop.SelectElement(TagRecur))
			if err != nil {
				return event, err
			}
			event.RRule = recur
		case strings.HasPrefix(tag, "x-"):
			if event.XProps == nil {
				event.XProps = make(map[string]string)
			}
			event.XProps[tag] = valueOf(prop)
		}
	}

	if event.DTStart == "" {
		return event, fmt.Errorf("<%s> has no <%s>", TagVEvent, TagDTStart)
	}
	return event, nil
}

// valueOf reads the text inside a property's value-type child
func valueOf(elem *etree.Element) string {
	var p Property
	p.FromElement(elem)
	return strings.TrimSpace(p.Value())
}

func appendInt(list []int, text string) ([]int, error) {
	n, err := strconv.Atoi(text)
	if err != nil {
		return list, err
	}
	return append(list, n), nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
