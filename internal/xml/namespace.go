package xml

import "github.com/beevik/etree"

// XCal is the iCalendar-in-XML namespace of RFC 6321
const XCal = "urn:ietf:params:xml:ns:icalendar-2.0"

// AddNamespaces declares xCal as the default namespace on the document root
func AddNamespaces(doc *etree.Document) {
	root := doc.Root()
	if root == nil {
		return
	}
	root.CreateAttr("xmlns", XCal)
}
