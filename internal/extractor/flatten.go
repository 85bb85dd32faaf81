package extractor

import (
	"fmt"
	"strings"

	"fjacquet/camt-xlsx/internal/document"

	"github.com/beevik/etree"
)

// PathSeparator joins the element names of a flattened column.
const PathSeparator = "."

// Flatten turns every child of the document root into one record without a
// profile. Each leaf element below that child becomes a column named by the
// local element names on the way down, joined with PathSeparator; the child's
// own name is not part of the key. Columns are the union over all records in
// first-seen order. A key that occurs more than once in the same record
// collects its texts with ListSeparator. Attributes are ignored.
func Flatten(doc *document.Document) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	res := &Result{}
	seen := make(map[string]bool)
	items := doc.Root().ChildElements()
	res.Entries = len(items)

	for i, item := range items {
		rec := Record{Entry: i + 1, Transaction: 1, Values: make(map[string]Value)}
		flattenInto(rec.Values, item, "", func(key string) {
			if !seen[key] {
				seen[key] = true
				res.columns = append(res.columns, key)
			}
		})
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func flattenInto(values map[string]Value, el *etree.Element, prefix string, column func(string)) {
	for _, child := range el.ChildElements() {
		key := child.Tag
		if prefix != "" {
			key = prefix + PathSeparator + child.Tag
		}
		if len(child.ChildElements()) > 0 {
			flattenInto(values, child, key, column)
			continue
		}
		column(key)

		text := document.Text(child)
		prev, repeated := values[key]
		switch {
		case !repeated || !prev.Present:
			if text == "" {
				values[key] = Value{}
			} else {
				values[key] = Value{Text: text, Present: true}
			}
		case text != "":
			values[key] = Value{Text: strings.Join([]string{prev.Text, text}, ListSeparator), Present: true}
		}
	}
}
