package xml

import (
	"testing"

	"github.com/beevik/etree"
)

func TestAddNamespaces(t *testing.T) {
	tests := []struct {
		name     string
		setup    func() *etree.Document
		wantAttr map[string]string
	}{
		{
			name: "root without attributes",
			setup: func() *etree.Document {
				doc := etree.NewDocument()
				doc.CreateElement(TagICalendar)
				return doc
			},
			wantAttr: map[string]string{"xmlns": XCal},
		},
		{
			name: "existing attributes are kept",
			setup: func() *etree.Document {
				doc := etree.NewDocument()
				root := doc.CreateElement(TagICalendar)
				root.CreateAttr("xmlns:x", "http://example.com/ns")
				return doc
			},
			wantAttr: map[string]string{
				"xmlns":   XCal,
				"xmlns:x": "http://example.com/ns",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := tt.setup()
			AddNamespaces(doc)

			root := doc.Root()
			for key, want := range tt.wantAttr {
				attr := root.SelectAttr(key)
				if attr == nil {
					t.Errorf("attribute %s missing", key)
					continue
				}
				if attr.Value != want {
					t.Errorf("attribute %s = %q, want %q", key, attr.Value, want)
				}
			}
		})
	}
}

func TestAddNamespacesEmptyDocument(t *testing.T) {
	doc := etree.NewDocument()
	AddNamespaces(doc)
	if doc.Root() != nil {
		t.Error("AddNamespaces created a root on an empty document")
	}
}
