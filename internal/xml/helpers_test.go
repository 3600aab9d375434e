package xml

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

var (
	xmlDecl       = regexp.MustCompile(`<\?xml[^>]*\?>`)
	betweenTags   = regexp.MustCompile(`>\s+<`)
	paddedText    = regexp.MustCompile(`>\s+([^<>]*?)\s+<`)
	selfClosingWS = regexp.MustCompile(`\s+/>`)
)

// normalizeXML drops the declaration and layout whitespace so documents
// compare by content. Text case is kept: rule parts like "+2TU" matter.
func normalizeXML(s string) string {
	s = xmlDecl.ReplaceAllString(s, "")
	s = betweenTags.ReplaceAllString(s, "><")
	s = paddedText.ReplaceAllString(s, ">$1<")
	s = selfClosingWS.ReplaceAllString(s, "/>")
	return strings.TrimSpace(s)
}

// elementToString renders a detached copy of elem
func elementToString(elem *etree.Element) string {
	doc := etree.NewDocument()
	doc.AddChild(elem.Copy())
	s, _ := doc.WriteToString()
	return strings.TrimSpace(xmlDecl.ReplaceAllString(s, ""))
}
