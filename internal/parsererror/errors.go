// Package parsererror defines the error types shared by the loader, the extractor
// and the batch layer.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned for zero-length input buffers. They are rejected
// before the document loader sees them.
var ErrEmptyInput = errors.New("empty input")

// ErrNoEntries marks a well-formed document in which the profile matched no entry.
var ErrNoEntries = errors.New("no matching entries")

// MalformedDocumentError means the input bytes are not a well-formed XML document.
// Processing of that document stops; no partial records are produced.
type MalformedDocumentError struct {
	Document string
	Cause    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Document != "" {
		return fmt.Sprintf("malformed document '%s': %v", e.Document, e.Cause)
	}
	return fmt.Sprintf("malformed document: %v", e.Cause)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Cause
}

// FieldFormatError reports a located field whose content could not be
// interpreted under its declared kind. It is scoped to one cell. Transaction
// is 0 for entry-scoped fields, which affect every transaction of the entry.
type FieldFormatError struct {
	Document    string
	Entry       int
	Transaction int
	Column      string
	Value       string
	Err         error
}

func (e *FieldFormatError) Error() string {
	loc := fmt.Sprintf("entry %d, column '%s'", e.Entry, e.Column)
	if e.Transaction > 0 {
		loc = fmt.Sprintf("entry %d, transaction %d, column '%s'", e.Entry, e.Transaction, e.Column)
	}
	if e.Document != "" {
		loc = fmt.Sprintf("document '%s', %s", e.Document, loc)
	}
	return fmt.Sprintf("%s: cannot interpret '%s': %v", loc, e.Value, e.Err)
}

func (e *FieldFormatError) Unwrap() error {
	return e.Err
}

// EmptyResultError is the reportable outcome of a document that parsed but
// contained no entry for the active profile.
type EmptyResultError struct {
	Document string
	Profile  string
	EntryTag string
}

func (e *EmptyResultError) Error() string {
	if e.EntryTag == "" {
		return fmt.Sprintf("document '%s' has no entries for profile '%s'", e.Document, e.Profile)
	}
	return fmt.Sprintf("document '%s' has no '%s' entries for profile '%s'", e.Document, e.EntryTag, e.Profile)
}

func (e *EmptyResultError) Unwrap() error {
	return ErrNoEntries
}

// ProfileError represents an invalid extraction profile definition.
type ProfileError struct {
	Profile string
	Column  string
	Reason  string
}

func (e *ProfileError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("profile '%s', column '%s': %s", e.Profile, e.Column, e.Reason)
	}
	return fmt.Sprintf("profile '%s': %s", e.Profile, e.Reason)
}
