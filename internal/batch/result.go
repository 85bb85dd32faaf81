package batch

import (
	"fjacquet/camt-xlsx/internal/extractor"
	"fjacquet/camt-xlsx/internal/parsererror"
	"fjacquet/camt-xlsx/internal/profile"

	"go.uber.org/multierr"
)

// DocumentResult is the outcome of one input document.
type DocumentResult struct {
	Name        string
	Message     string
	Entries     int
	Columns     []string
	Records     []extractor.Record
	FieldErrors []*parsererror.FieldFormatError
	// Err is set when the document produced no usable result.
	Err error
	// Warning is set when the document parsed but matched no entry.
	Warning error
}

// OK reports whether the document was processed without a fatal error.
func (d DocumentResult) OK() bool {
	return d.Err == nil
}

// Empty reports whether the document parsed but contained no entries.
func (d DocumentResult) Empty() bool {
	return d.Err == nil && d.Warning != nil
}

// BatchResult collects the per-document results in input order. Profile is
// nil for a flattened batch.
type BatchResult struct {
	Profile   *profile.ExtractionProfile
	Documents []DocumentResult
}

// Name returns the profile name, or FlattenName.
func (b *BatchResult) Name() string {
	if b.Profile == nil {
		return FlattenName
	}
	return b.Profile.Name
}

// Columns returns the output columns of the batch. Without a profile they are
// the union of the successful documents' columns in first-seen order.
func (b *BatchResult) Columns() []string {
	if b.Profile != nil {
		return b.Profile.Columns()
	}
	var out []string
	seen := make(map[string]bool)
	for _, d := range b.Documents {
		if d.Err != nil {
			continue
		}
		for _, c := range d.Columns {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Records concatenates the records of all successful documents in input order.
func (b *BatchResult) Records() []extractor.Record {
	var out []extractor.Record
	for _, d := range b.Documents {
		if d.Err == nil {
			out = append(out, d.Records...)
		}
	}
	return out
}

// Failed returns the number of documents with a fatal error.
func (b *BatchResult) Failed() int {
	n := 0
	for _, d := range b.Documents {
		if d.Err != nil {
			n++
		}
	}
	return n
}

// Err combines the errors of all failed documents, or returns nil.
func (b *BatchResult) Err() error {
	var err error
	for _, d := range b.Documents {
		err = multierr.Append(err, d.Err)
	}
	return err
}

// Warnings returns empty-result warnings and field errors of successful
// documents, in input order.
func (b *BatchResult) Warnings() []error {
	var out []error
	for _, d := range b.Documents {
		if d.Err != nil {
			continue
		}
		if d.Warning != nil {
			out = append(out, d.Warning)
		}
		for _, fe := range d.FieldErrors {
			out = append(out, fe)
		}
	}
	return out
}
