// Package document loads ISO 20022 XML messages into an immutable element
// tree and answers namespace-aware path lookups against it.
package document

import (
	"bytes"
	"errors"
	"sort"
	"strings"

	"fjacquet/camt-xlsx/internal/parsererror"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

var errNoRoot = errors.New("document has no root element")

// Document is a loaded, read-only XML tree. All lookups match elements by
// local name within the namespace of the root element.
type Document struct {
	tree      *etree.Document
	root      *etree.Element
	namespace string
	nodes     map[*etree.Element]nodeInfo
}

type nodeInfo struct {
	pos int
	ns  string
}

// Load parses raw into a Document. Empty or non-well-formed input yields a
// *parsererror.MalformedDocumentError and no partial tree.
func Load(raw []byte) (*Document, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &parsererror.MalformedDocumentError{Cause: parsererror.ErrEmptyInput}
	}

	tree := etree.NewDocument()
	tree.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		ValidateInput: true,
	}
	if err := tree.ReadFromBytes(raw); err != nil {
		return nil, &parsererror.MalformedDocumentError{Cause: err}
	}

	root := tree.Root()
	if root == nil {
		return nil, &parsererror.MalformedDocumentError{Cause: errNoRoot}
	}

	d := &Document{
		tree:      tree,
		root:      root,
		namespace: root.NamespaceURI(),
		nodes:     make(map[*etree.Element]nodeInfo),
	}
	d.index(root, root.NamespaceURI())
	return d, nil
}

// index records document position and resolved namespace of every element so
// lookups never re-resolve prefixes.
func (d *Document) index(el *etree.Element, ns string) {
	d.nodes[el] = nodeInfo{pos: len(d.nodes), ns: ns}
	for _, child := range el.ChildElements() {
		d.index(child, child.NamespaceURI())
	}
}

// Root returns the root element.
func (d *Document) Root() *etree.Element {
	return d.root
}

// Namespace returns the namespace URI of the root element ("" when the
// document is not namespaced).
func (d *Document) Namespace() string {
	return d.namespace
}

// ElementCount returns the number of elements in the tree.
func (d *Document) ElementCount() int {
	return len(d.nodes)
}

func (d *Document) matches(el *etree.Element, local string) bool {
	if el.Tag != local {
		return false
	}
	info, ok := d.nodes[el]
	return ok && info.ns == d.namespace
}

// FindAll evaluates path relative to ctx and returns every match in document
// order, without duplicates. A nil ctx means the root element.
func (d *Document) FindAll(ctx *etree.Element, path Path) []*etree.Element {
	if ctx == nil {
		ctx = d.root
	}
	current := []*etree.Element{ctx}
	for _, s := range path.steps {
		seen := make(map[*etree.Element]struct{})
		var next []*etree.Element
		for _, node := range current {
			if s.descendant {
				d.walk(node, func(el *etree.Element) {
					if d.matches(el, s.local) {
						if _, dup := seen[el]; !dup {
							seen[el] = struct{}{}
							next = append(next, el)
						}
					}
				})
				continue
			}
			for _, child := range node.ChildElements() {
				if d.matches(child, s.local) {
					if _, dup := seen[child]; !dup {
						seen[child] = struct{}{}
						next = append(next, child)
					}
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		d.sortDocumentOrder(next)
		current = next
	}
	return current
}

// Find returns the first match of path below ctx, or nil.
func (d *Document) Find(ctx *etree.Element, path Path) *etree.Element {
	if matches := d.FindAll(ctx, path); len(matches) > 0 {
		return matches[0]
	}
	return nil
}

// Descendants returns all elements below ctx (ctx excluded) whose local name
// is local, in document order.
func (d *Document) Descendants(ctx *etree.Element, local string) []*etree.Element {
	if ctx == nil {
		ctx = d.root
	}
	var out []*etree.Element
	d.walk(ctx, func(el *etree.Element) {
		if d.matches(el, local) {
			out = append(out, el)
		}
	})
	return out
}

// SelfOrDescendants is Descendants plus ctx itself when it matches.
func (d *Document) SelfOrDescendants(ctx *etree.Element, local string) []*etree.Element {
	if ctx == nil {
		ctx = d.root
	}
	out := d.Descendants(ctx, local)
	if d.matches(ctx, local) {
		out = append([]*etree.Element{ctx}, out...)
	}
	return out
}

// walk visits the descendants of el in pre-order.
func (d *Document) walk(el *etree.Element, visit func(*etree.Element)) {
	for _, child := range el.ChildElements() {
		visit(child)
		d.walk(child, visit)
	}
}

func (d *Document) sortDocumentOrder(els []*etree.Element) {
	if len(els) < 2 {
		return
	}
	sort.SliceStable(els, func(i, j int) bool {
		return d.nodes[els[i]].pos < d.nodes[els[j]].pos
	})
}

// Text returns the character data of el with surrounding whitespace removed.
func Text(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// Attr returns the value of the unprefixed attribute key on el.
func Attr(el *etree.Element, key string) (string, bool) {
	if el == nil {
		return "", false
	}
	for _, a := range el.Attr {
		if a.Key == key && (a.Space == "" || a.Space == el.Space) {
			return a.Value, true
		}
	}
	return "", false
}
