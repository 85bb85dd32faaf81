package extractor

import (
	"fmt"
	"strings"
)

// FieldErrorPolicy decides what happens to records with uninterpretable fields.
type FieldErrorPolicy string

const (
	// PolicyNullField keeps the record with the cell left empty.
	PolicyNullField FieldErrorPolicy = "null-field"
	// PolicySkipRecord drops the affected records.
	PolicySkipRecord FieldErrorPolicy = "skip-record"
	// PolicyAbortDocument fails the whole document on the first field error.
	PolicyAbortDocument FieldErrorPolicy = "abort-document"
)

// Policies lists the accepted policy names.
var Policies = []FieldErrorPolicy{PolicyNullField, PolicySkipRecord, PolicyAbortDocument}

// ParsePolicy parses a policy name; "" selects PolicyNullField.
func ParsePolicy(s string) (FieldErrorPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PolicyNullField, nil
	}
	for _, p := range Policies {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown field error policy '%s' (valid: %v)", s, Policies)
}

// Apply returns the records that survive policy. With PolicyAbortDocument the
// first field error is returned and no records.
func (r *Result) Apply(policy FieldErrorPolicy) ([]Record, error) {
	if len(r.FieldErrors) == 0 {
		return r.Records, nil
	}

	switch policy {
	case PolicyAbortDocument:
		return nil, r.FieldErrors[0]

	case PolicySkipRecord:
		type key struct{ entry, tx int }
		skipTx := make(map[key]struct{})
		skipEntry := make(map[int]struct{})
		for _, fe := range r.FieldErrors {
			if fe.Transaction == 0 {
				skipEntry[fe.Entry] = struct{}{}
			} else {
				skipTx[key{fe.Entry, fe.Transaction}] = struct{}{}
			}
		}
		kept := make([]Record, 0, len(r.Records))
		for _, rec := range r.Records {
			if _, skip := skipEntry[rec.Entry]; skip {
				continue
			}
			if _, skip := skipTx[key{rec.Entry, rec.Transaction}]; skip {
				continue
			}
			kept = append(kept, rec)
		}
		return kept, nil

	default:
		return r.Records, nil
	}
}
