// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"fjacquet/camt-xlsx/internal/batch"
	"fjacquet/camt-xlsx/internal/container"
	"fjacquet/camt-xlsx/internal/export"
	"fjacquet/camt-xlsx/internal/extractor"
	"fjacquet/camt-xlsx/internal/fileutils"
	"fjacquet/camt-xlsx/internal/logging"
)

// InputExtension is the extension of documents picked up from directories.
const InputExtension = ".xml"

// ErrNoInputs is returned when the given paths contain no documents.
var ErrNoInputs = errors.New("no XML documents found")

// ConvertOptions selects what Convert reads and writes. Empty fields fall
// back to the configuration. Flatten ignores Profile and Policy.
type ConvertOptions struct {
	Inputs  []string
	Output  string
	Profile string
	Format  string
	Policy  string
	Flatten bool
}

// Summary is the outcome of Convert.
type Summary struct {
	Result     *batch.BatchResult
	OutputFile string
}

// ReadInputs loads the files named by paths. Directories contribute their XML
// files in sorted order.
func ReadInputs(paths []string) ([]batch.Input, error) {
	files, err := fileutils.CollectInputs(paths, InputExtension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoInputs
	}

	inputs := make([]batch.Input, 0, len(files))
	for _, f := range files {
		data, err := fileutils.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		inputs = append(inputs, batch.Input{Name: filepath.Base(f), Data: data})
	}
	return inputs, nil
}

// Convert extracts records from all inputs and writes them to one output
// file. Nothing is written when no record was extracted. The returned error
// combines the failures of individual documents; the summary is valid even
// then.
func Convert(ctx context.Context, c *container.Container, opts ConvertOptions, log logging.Logger) (*Summary, error) {
	cfg := c.GetConfig()

	proc, err := newProcessor(c, opts, log)
	if err != nil {
		return nil, err
	}
	writer, err := c.GetWriter(opts.Format)
	if err != nil {
		return nil, err
	}

	inputs, err := ReadInputs(opts.Inputs)
	if err != nil {
		return nil, err
	}
	log.Info("Converting documents",
		logging.F(logging.FieldCount, len(inputs)),
		logging.F(logging.FieldProfile, proc.Name()),
		logging.F(logging.FieldFormat, writer.Extension()))

	result, err := proc.Run(ctx, inputs)
	if err != nil {
		return nil, err
	}
	summary := &Summary{Result: result}

	records := result.Records()
	if len(records) == 0 {
		log.Warn("No records extracted, no output written")
		return summary, result.Err()
	}

	output := opts.Output
	if output == "" {
		output = export.FileNameFor(cfg.Output.FileName, writer)
	}
	if err := export.WriteFile(output, writer, result.Columns(), records); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", output, err)
	}
	summary.OutputFile = output

	log.Info("Conversion completed",
		logging.F(logging.FieldOutputFile, output),
		logging.F("records", len(records)),
		logging.F("failed", result.Failed()))
	return summary, result.Err()
}

func newProcessor(c *container.Container, opts ConvertOptions, log logging.Logger) (*batch.Processor, error) {
	cfg := c.GetConfig()
	if opts.Flatten {
		return batch.NewFlattenProcessor(log, cfg.Extraction.Workers), nil
	}

	p, err := c.GetProfile(opts.Profile)
	if err != nil {
		return nil, err
	}
	policy := cfg.Policy()
	if opts.Policy != "" {
		if policy, err = extractor.ParsePolicy(opts.Policy); err != nil {
			return nil, err
		}
	}
	log.Debug("Field error policy selected", logging.F(logging.FieldPolicy, string(policy)))
	return batch.NewProcessor(log, p, policy, cfg.Extraction.Workers), nil
}
