// Package cell extracts values from the HTML fragments rendered into table cells.
package cell

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func parse(fragment string) (*goquery.Document, bool) {
	if !strings.ContainsAny(fragment, "<&") {
		return nil, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, false
	}
	return doc, true
}

// SelectedValue returns the value of the selected option of the first select matching
// selector, or "" when there is none.
func SelectedValue(fragment, selector string) string {
	doc, ok := parse(fragment)
	if !ok {
		return ""
	}
	return doc.Find(selector + " option[selected]").First().AttrOr("value", "")
}

// Text returns the searchable text of a cell: the selected option's label when the cell
// holds a select, otherwise the cell's text without tags.
func Text(fragment string) string {
	doc, ok := parse(fragment)
	if !ok {
		return fragment
	}
	if sel := doc.Find("select"); sel.Length() > 0 {
		if opt := sel.Find("option[selected]").First(); opt.Length() > 0 {
			return strings.TrimSpace(opt.Text())
		}
	}
	return strings.TrimSpace(doc.Text())
}

// StripSpan removes bare <span> wrappers and decodes the entities they escaped.
func StripSpan(s string) string {
	return html.UnescapeString(strings.NewReplacer("<span>", "", "</span>", "").Replace(s))
}
