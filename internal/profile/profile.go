// Package profile defines extraction profiles: the declarative description of
// which XML elements make up entries and transactions of a camt message and
// how every output column is read from them.
package profile

import (
	"fmt"
	"strings"

	"fjacquet/camt-xlsx/internal/document"
	"fjacquet/camt-xlsx/internal/parsererror"
)

// Scope tells whether a field is evaluated against the entry or against each
// of its transactions.
type Scope string

const (
	ScopeEntry       Scope = "entry"
	ScopeTransaction Scope = "transaction"
)

// Kind selects the post-processing applied to the matched text.
type Kind string

const (
	KindText   Kind = "text"
	KindDate   Kind = "date"
	KindAmount Kind = "amount"
	KindList   Kind = "list"
)

// Defaults applied by Validate.
const (
	DefaultDateFormat         = "DD.MM.YYYY"
	DefaultThousandsSeparator = " "
	DefaultNotAvailable       = "Nicht verfügbar"
	DefaultCurrencyAttribute  = "Ccy"
)

// FieldSpec declares one output column.
type FieldSpec struct {
	Column string `yaml:"column" json:"column"`
	Scope  Scope  `yaml:"scope" json:"scope"`
	Kind   Kind   `yaml:"kind" json:"kind"`
	// Paths are alternatives relative to the scope element; the first one
	// that matches anything is used.
	Paths             []string `yaml:"paths" json:"paths"`
	Attribute         string   `yaml:"attribute,omitempty" json:"attribute,omitempty"`
	DateFormat        string   `yaml:"date_format,omitempty" json:"date_format,omitempty"`
	CurrencyAttribute string   `yaml:"currency_attribute,omitempty" json:"currency_attribute,omitempty"`

	compiled []document.Path
}

// CompiledPaths returns the compiled alternatives. Only valid after the owning
// profile passed Validate.
func (f *FieldSpec) CompiledPaths() []document.Path {
	return f.compiled
}

// ExtractionProfile is the full extraction rule set for one message layout.
// A validated profile is treated as immutable.
type ExtractionProfile struct {
	Name               string      `yaml:"name" json:"name"`
	Description        string      `yaml:"description,omitempty" json:"description,omitempty"`
	Message            string      `yaml:"message,omitempty" json:"message,omitempty"`
	EntryTag           string      `yaml:"entry_tag" json:"entry_tag"`
	TransactionTag     string      `yaml:"transaction_tag,omitempty" json:"transaction_tag,omitempty"`
	DateFormat         string      `yaml:"date_format,omitempty" json:"date_format,omitempty"`
	DefaultCurrency    string      `yaml:"default_currency,omitempty" json:"default_currency,omitempty"`
	ThousandsSeparator string      `yaml:"thousands_separator,omitempty" json:"thousands_separator,omitempty"`
	NotAvailable       string      `yaml:"not_available,omitempty" json:"not_available,omitempty"`
	Fields             []FieldSpec `yaml:"fields" json:"fields"`

	validated bool
}

// Validate fills defaults, checks the definition and compiles every path.
// It returns a *parsererror.ProfileError describing the first problem found.
func (p *ExtractionProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &parsererror.ProfileError{Profile: "<unnamed>", Reason: "name is required"}
	}
	if !isLocalName(p.EntryTag) {
		return &parsererror.ProfileError{Profile: p.Name, Reason: fmt.Sprintf("invalid entry tag '%s'", p.EntryTag)}
	}
	if p.TransactionTag != "" && !isLocalName(p.TransactionTag) {
		return &parsererror.ProfileError{Profile: p.Name, Reason: fmt.Sprintf("invalid transaction tag '%s'", p.TransactionTag)}
	}
	if len(p.Fields) == 0 {
		return &parsererror.ProfileError{Profile: p.Name, Reason: "at least one field is required"}
	}

	if p.DateFormat == "" {
		p.DateFormat = DefaultDateFormat
	}
	if p.ThousandsSeparator == "" {
		p.ThousandsSeparator = DefaultThousandsSeparator
	}
	if p.NotAvailable == "" {
		p.NotAvailable = DefaultNotAvailable
	}
	p.DefaultCurrency = strings.ToUpper(strings.TrimSpace(p.DefaultCurrency))

	seen := make(map[string]struct{}, len(p.Fields))
	for i := range p.Fields {
		f := &p.Fields[i]
		if err := p.validateField(f); err != nil {
			return err
		}
		if _, dup := seen[f.Column]; dup {
			return &parsererror.ProfileError{Profile: p.Name, Column: f.Column, Reason: "duplicate column"}
		}
		seen[f.Column] = struct{}{}
	}

	p.validated = true
	return nil
}

func (p *ExtractionProfile) validateField(f *FieldSpec) error {
	fail := func(format string, args ...interface{}) error {
		return &parsererror.ProfileError{Profile: p.Name, Column: f.Column, Reason: fmt.Sprintf(format, args...)}
	}

	if strings.TrimSpace(f.Column) == "" {
		return &parsererror.ProfileError{Profile: p.Name, Reason: "field without column name"}
	}

	switch f.Scope {
	case "":
		f.Scope = ScopeTransaction
		if p.TransactionTag == "" {
			f.Scope = ScopeEntry
		}
	case ScopeEntry, ScopeTransaction:
	default:
		return fail("unknown scope '%s'", f.Scope)
	}

	switch f.Kind {
	case "":
		f.Kind = KindText
	case KindText, KindDate, KindAmount, KindList:
	default:
		return fail("unknown kind '%s'", f.Kind)
	}

	if f.Attribute != "" && f.Kind != KindText {
		return fail("attribute is only supported for text fields")
	}
	if f.Kind == KindAmount && f.CurrencyAttribute == "" {
		f.CurrencyAttribute = DefaultCurrencyAttribute
	}
	if f.DateFormat != "" && f.Kind != KindDate {
		return fail("date_format is only supported for date fields")
	}

	if len(f.Paths) == 0 {
		return fail("at least one path is required")
	}
	f.compiled = make([]document.Path, 0, len(f.Paths))
	for _, expr := range f.Paths {
		path, err := document.Compile(expr)
		if err != nil {
			return fail("%v", err)
		}
		f.compiled = append(f.compiled, path)
	}
	return nil
}

// Validated reports whether Validate succeeded on p.
func (p *ExtractionProfile) Validated() bool {
	return p.validated
}

// Columns returns the column names in output order.
func (p *ExtractionProfile) Columns() []string {
	cols := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		cols[i] = f.Column
	}
	return cols
}

// DatePattern returns the pattern used to render a date field: the field's
// own DateFormat, else the profile's.
func (p *ExtractionProfile) DatePattern(f *FieldSpec) string {
	if f.DateFormat != "" {
		return f.DateFormat
	}
	return p.DateFormat
}

// Overrides are deployment-level adjustments applied on top of a profile.
type Overrides struct {
	DefaultCurrency *string
	NotAvailable    *string
}

// WithOverrides returns a copy of p with o applied. p itself is not modified.
func (p *ExtractionProfile) WithOverrides(o Overrides) *ExtractionProfile {
	cp := *p
	cp.Fields = make([]FieldSpec, len(p.Fields))
	copy(cp.Fields, p.Fields)
	if o.DefaultCurrency != nil {
		cp.DefaultCurrency = strings.ToUpper(strings.TrimSpace(*o.DefaultCurrency))
	}
	if o.NotAvailable != nil && *o.NotAvailable != "" {
		cp.NotAvailable = *o.NotAvailable
	}
	return &cp
}

func isLocalName(tag string) bool {
	if tag == "" {
		return false
	}
	return !strings.ContainsAny(tag, "/ \t:[]@*()")
}
