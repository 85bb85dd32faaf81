// Package extractor turns a loaded camt document into flat records according
// to an extraction profile.
package extractor

import (
	"fmt"
	"strings"

	"fjacquet/camt-xlsx/internal/currencyutils"
	"fjacquet/camt-xlsx/internal/dateutils"
	"fjacquet/camt-xlsx/internal/document"
	"fjacquet/camt-xlsx/internal/parsererror"
	"fjacquet/camt-xlsx/internal/profile"

	"github.com/beevik/etree"
)

// ListSeparator joins the values of list fields.
const ListSeparator = ", "

// Value is one cell. The zero Value is an absent cell.
type Value struct {
	Text    string `json:"text"`
	Present bool   `json:"present"`
}

// Record is one output row.
type Record struct {
	Entry       int              `json:"entry"`
	Transaction int              `json:"transaction"`
	Values      map[string]Value `json:"values"`
}

// Get returns the text of column and whether it is present.
func (r Record) Get(column string) (string, bool) {
	v, ok := r.Values[column]
	return v.Text, ok && v.Present
}

// Row returns the record's texts in the given column order; absent cells are "".
func (r Record) Row(columns []string) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		row[i] = r.Values[c].Text
	}
	return row
}

// Result is the outcome of one extraction.
type Result struct {
	Profile     *profile.ExtractionProfile
	Entries     int
	Records     []Record
	FieldErrors []*parsererror.FieldFormatError

	// columns is set by Flatten, which has no profile.
	columns []string
}

// Columns returns the output columns of the profile used, or the discovered
// columns of a flattened document.
func (r *Result) Columns() []string {
	if r.Profile == nil {
		return r.columns
	}
	return r.Profile.Columns()
}

// Extract applies p to doc. Records come out in document order: entries in
// order, and transactions in order within each entry. Fields that cannot be
// interpreted are left absent and reported in Result.FieldErrors; no record
// is ever dropped here.
func Extract(doc *document.Document, p *profile.ExtractionProfile) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	if p == nil || !p.Validated() {
		return nil, fmt.Errorf("profile must be validated before extraction")
	}

	res := &Result{Profile: p}
	entries := doc.SelfOrDescendants(doc.Root(), p.EntryTag)
	res.Entries = len(entries)

	for ei, entry := range entries {
		entryNo := ei + 1
		fragment := make(map[string]Value)
		for i := range p.Fields {
			f := &p.Fields[i]
			if f.Scope != profile.ScopeEntry {
				continue
			}
			v, err := evaluate(doc, entry, p, f)
			if err != nil {
				res.FieldErrors = append(res.FieldErrors, fieldError(entryNo, 0, f, err))
			}
			fragment[f.Column] = v
		}

		var txs []*etree.Element
		if p.TransactionTag != "" {
			txs = doc.Descendants(entry, p.TransactionTag)
		}
		if len(txs) == 0 {
			// the entry is its own single transaction
			txs = []*etree.Element{entry}
		}

		for ti, tx := range txs {
			txNo := ti + 1
			rec := Record{Entry: entryNo, Transaction: txNo, Values: make(map[string]Value, len(p.Fields))}
			for i := range p.Fields {
				f := &p.Fields[i]
				if f.Scope == profile.ScopeEntry {
					rec.Values[f.Column] = fragment[f.Column]
					continue
				}
				v, err := evaluate(doc, tx, p, f)
				if err != nil {
					res.FieldErrors = append(res.FieldErrors, fieldError(entryNo, txNo, f, err))
				}
				rec.Values[f.Column] = v
			}
			res.Records = append(res.Records, rec)
		}
	}
	return res, nil
}

type formatError struct {
	raw string
	err error
}

func (e *formatError) Error() string { return e.err.Error() }

func fieldError(entry, tx int, f *profile.FieldSpec, err error) *parsererror.FieldFormatError {
	fe := &parsererror.FieldFormatError{Entry: entry, Transaction: tx, Column: f.Column, Err: err}
	if ferr, ok := err.(*formatError); ok {
		fe.Value = ferr.raw
		fe.Err = ferr.err
	}
	return fe
}

// evaluate reads one field against ctx. No match is an absent value, not an
// error.
func evaluate(doc *document.Document, ctx *etree.Element, p *profile.ExtractionProfile, f *profile.FieldSpec) (Value, error) {
	if f.Kind == profile.KindList {
		var parts []string
		for _, path := range f.CompiledPaths() {
			for _, el := range doc.FindAll(ctx, path) {
				if text := document.Text(el); text != "" {
					parts = append(parts, text)
				}
			}
			if len(parts) > 0 {
				break
			}
		}
		if len(parts) == 0 {
			return Value{Text: p.NotAvailable, Present: true}, nil
		}
		return Value{Text: strings.Join(parts, ListSeparator), Present: true}, nil
	}

	el := firstMatch(doc, ctx, f.CompiledPaths())
	if el == nil {
		return Value{}, nil
	}

	switch f.Kind {
	case profile.KindDate:
		raw := document.Text(el)
		if raw == "" {
			return Value{}, nil
		}
		text, err := dateutils.Reformat(raw, p.DatePattern(f))
		if err != nil {
			return Value{}, &formatError{raw: raw, err: err}
		}
		return Value{Text: text, Present: true}, nil

	case profile.KindAmount:
		raw := document.Text(el)
		if raw == "" {
			return Value{}, nil
		}
		amount, err := currencyutils.ParseAmount(raw)
		if err != nil {
			return Value{}, &formatError{raw: raw, err: err}
		}
		currency, ok := document.Attr(el, f.CurrencyAttribute)
		if !ok || strings.TrimSpace(currency) == "" {
			currency = p.DefaultCurrency
		}
		return Value{Text: currencyutils.FormatAmount(amount, currency, p.ThousandsSeparator), Present: true}, nil

	default:
		if f.Attribute != "" {
			attr, ok := document.Attr(el, f.Attribute)
			if !ok {
				return Value{}, nil
			}
			return Value{Text: strings.TrimSpace(attr), Present: true}, nil
		}
		return Value{Text: document.Text(el), Present: true}, nil
	}
}

func firstMatch(doc *document.Document, ctx *etree.Element, paths []document.Path) *etree.Element {
	for _, path := range paths {
		if el := doc.Find(ctx, path); el != nil {
			return el
		}
	}
	return nil
}
