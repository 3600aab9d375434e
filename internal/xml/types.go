package xml

import "github.com/beevik/etree"

// xCal element names
const (
	TagICalendar  = "icalendar"
	TagVCalendar  = "vcalendar"
	TagVEvent     = "vevent"
	TagProperties = "properties"
	TagComponents = "components"

	TagProdID  = "prodid"
	TagVersion = "version"
	TagUID     = "uid"
	TagSummary = "summary"
	TagDTStart = "dtstart"
	TagDTEnd   = "dtend"
	TagRRule   = "rrule"
	TagRecur   = "recur"

	// value type elements
	TagText = "text"
	TagDate = "date"
)

// Property is a generic xCal element: a name, optional text and children
type Property struct {
	Name        string
	TextContent string
	Children    []Property
	Attributes  map[string]string
}

// Text builds the <name><text>value</text></name> shape used by text-valued
// iCalendar properties
func Text(name, value string) Property {
	return Property{Name: name, Children: []Property{{Name: TagText, TextContent: value}}}
}

// Date builds <name><date>value</date></name>
func Date(name, value string) Property {
	return Property{Name: name, Children: []Property{{Name: TagDate, TextContent: value}}}
}

// ToElement converts a Property to an etree.Element
func (p *Property) ToElement() *etree.Element {
	elem := etree.NewElement(p.Name)
	if p.TextContent != "" {
		elem.SetText(p.TextContent)
	}
	for key, value := range p.Attributes {
		elem.CreateAttr(key, value)
	}
	for _, child := range p.Children {
		elem.AddChild(child.ToElement())
	}
	return elem
}

// FromElement populates a Property from an etree.Element
func (p *Property) FromElement(elem *etree.Element) {
	p.Name = elem.Tag
	p.TextContent = elem.Text()
	p.Children = nil
	p.Attributes = make(map[string]string)

	for _, attr := range elem.Attr {
		p.Attributes[attr.Key] = attr.Value
	}

	for _, child := range elem.ChildElements() {
		childProp := Property{}
		childProp.FromElement(child)
		p.Children = append(p.Children, childProp)
	}
}

// Child returns the first child with the given name
func (p *Property) Child(name string) (Property, bool) {
	for _, child := range p.Children {
		if child.Name == name {
			return child, true
		}
	}
	return Property{}, false
}

// Value returns the text of the first value-type child, which is how xCal
// wraps every property value
func (p *Property) Value() string {
	if len(p.Children) == 0 {
		return p.TextContent
	}
	return p.Children[0].TextContent
}
