// Package batch runs the loader and the extractor over many documents in
// parallel and collects per-document outcomes.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"fjacquet/camt-xlsx/internal/document"
	"fjacquet/camt-xlsx/internal/extractor"
	"fjacquet/camt-xlsx/internal/logging"
	"fjacquet/camt-xlsx/internal/parsererror"
	"fjacquet/camt-xlsx/internal/profile"
	"fjacquet/camt-xlsx/internal/xmlutils"

	"golang.org/x/sync/errgroup"
)

// Input is one named document.
type Input struct {
	Name string
	Data []byte
}

// FlattenName stands in for the profile name of a flattening processor.
const FlattenName = "flatten"

// Processor extracts records from a batch of documents with a single
// profile, or flattens them when it has none.
type Processor struct {
	logger  logging.Logger
	profile *profile.ExtractionProfile
	policy  extractor.FieldErrorPolicy
	workers int
}

// NewProcessor creates a Processor. workers <= 0 means one per CPU.
func NewProcessor(logger logging.Logger, p *profile.ExtractionProfile, policy extractor.FieldErrorPolicy, workers int) *Processor {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if policy == "" {
		policy = extractor.PolicyNullField
	}
	return &Processor{logger: logger, profile: p, policy: policy, workers: workers}
}

// NewFlattenProcessor creates a Processor that turns every child of each
// document root into one record, with columns discovered from the data.
func NewFlattenProcessor(logger logging.Logger, workers int) *Processor {
	return NewProcessor(logger, nil, extractor.PolicyNullField, workers)
}

// Profile returns the active profile, or nil when flattening.
func (p *Processor) Profile() *profile.ExtractionProfile {
	return p.profile
}

// Name returns the profile name, or FlattenName.
func (p *Processor) Name() string {
	if p.profile == nil {
		return FlattenName
	}
	return p.profile.Name
}

// Run processes inputs concurrently. Results keep the input order. A failing
// document never stops the others; the returned error is only set when ctx
// is cancelled.
func (p *Processor) Run(ctx context.Context, inputs []Input) (*BatchResult, error) {
	start := time.Now()
	results := make([]DocumentResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.Process(in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}

	batch := &BatchResult{Profile: p.profile, Documents: results}
	p.logger.Info("Batch processed",
		logging.F(logging.FieldProfile, p.Name()),
		logging.F(logging.FieldCount, len(inputs)),
		logging.F("failed", batch.Failed()),
		logging.F("records", len(batch.Records())),
		logging.F(logging.FieldWorkers, p.workers),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return batch, nil
}

// Process loads and extracts a single document.
func (p *Processor) Process(in Input) DocumentResult {
	res := DocumentResult{Name: in.Name}
	log := p.logger.WithFields(
		logging.F(logging.FieldDocument, in.Name),
		logging.F(logging.FieldProfile, p.Name()))

	if len(in.Data) == 0 {
		res.Err = fmt.Errorf("document '%s': %w", in.Name, parsererror.ErrEmptyInput)
		log.Warn("Empty input rejected")
		return res
	}

	doc, err := document.Load(in.Data)
	if err != nil {
		var malformed *parsererror.MalformedDocumentError
		if errors.As(err, &malformed) {
			malformed.Document = in.Name
		}
		res.Err = err
		log.WithError(err).Error("Failed to load document")
		return res
	}

	if detected, err := xmlutils.DetectMessage(in.Data); err == nil {
		res.Message = detected.Message
		if p.profile != nil && p.profile.Message != "" && detected.Message != p.profile.Message {
			log.Warn("Profile message type differs from document",
				logging.F(logging.FieldMessage, detected.Message),
				logging.F("profile_message_type", p.profile.Message))
		}
	}

	extracted, err := p.extract(doc)
	if err != nil {
		res.Err = fmt.Errorf("document '%s': %w", in.Name, err)
		log.WithError(err).Error("Extraction failed")
		return res
	}
	res.Entries = extracted.Entries
	res.Columns = extracted.Columns()

	for _, fe := range extracted.FieldErrors {
		fe.Document = in.Name
		log.Warn("Field could not be interpreted",
			logging.F(logging.FieldEntry, fe.Entry),
			logging.F(logging.FieldTransaction, fe.Transaction),
			logging.F(logging.FieldColumn, fe.Column),
			logging.F(logging.FieldValue, fe.Value),
			logging.F(logging.FieldPolicy, string(p.policy)))
	}
	res.FieldErrors = extracted.FieldErrors

	records, err := extracted.Apply(p.policy)
	if err != nil {
		res.Err = err
		log.WithError(err).Error("Document aborted by field error policy")
		return res
	}
	res.Records = records

	if extracted.Entries == 0 {
		empty := &parsererror.EmptyResultError{Document: in.Name, Profile: p.Name()}
		if p.profile != nil {
			empty.EntryTag = p.profile.EntryTag
		}
		res.Warning = empty
		log.Warn("No entries matched")
		return res
	}

	log.Debug("Document extracted",
		logging.F("elements", doc.ElementCount()),
		logging.F("entries", extracted.Entries),
		logging.F("records", len(records)))
	return res
}

func (p *Processor) extract(doc *document.Document) (*extractor.Result, error) {
	if p.profile == nil {
		return extractor.Flatten(doc)
	}
	return extractor.Extract(doc, p.profile)
}
