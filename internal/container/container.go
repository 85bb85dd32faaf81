// Package container provides dependency injection for the camt-xlsx application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"

	"fjacquet/camt-xlsx/internal/batch"
	"fjacquet/camt-xlsx/internal/config"
	"fjacquet/camt-xlsx/internal/export"
	"fjacquet/camt-xlsx/internal/logging"
	"fjacquet/camt-xlsx/internal/profile"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation; profiles handed out are validated
// and never modified.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	registry *profile.Registry
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, config.ConfigureLoggingFromConfig(cfg))
}

// NewContainerWithLogger is NewContainer with an explicit logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	registry := profile.NewRegistry()
	if cfg.Profile.File != "" {
		loaded, err := registry.LoadFile(cfg.Profile.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load profiles: %w", err)
		}
		logger.Info("Loaded profile file",
			logging.F("file", cfg.Profile.File),
			logging.F(logging.FieldCount, len(loaded)))
	}

	// fail early on an unknown default profile
	if _, err := registry.Get(cfg.Profile.Name); err != nil {
		return nil, err
	}

	logger.Debug("Container initialized successfully",
		logging.F(logging.FieldProfile, cfg.Profile.Name),
		logging.F("profiles_count", len(registry.Names())))

	return &Container{logger: logger, config: cfg, registry: registry}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRegistry returns the profile registry.
func (c *Container) GetRegistry() *profile.Registry {
	return c.registry
}

// GetProfile returns the named profile with the configured overrides
// applied. An empty name selects the configured default profile.
func (c *Container) GetProfile(name string) (*profile.ExtractionProfile, error) {
	if name == "" {
		name = c.config.Profile.Name
	}
	p, err := c.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return p.WithOverrides(profile.Overrides{
		DefaultCurrency: c.config.Profile.DefaultCurrency,
		NotAvailable:    c.config.Profile.NotAvailable,
	}), nil
}

// NewProcessor returns a batch processor for the named profile.
func (c *Container) NewProcessor(profileName string) (*batch.Processor, error) {
	p, err := c.GetProfile(profileName)
	if err != nil {
		return nil, err
	}
	return batch.NewProcessor(c.logger, p, c.config.Policy(), c.config.Extraction.Workers), nil
}

// NewFlattenProcessor returns a batch processor that flattens documents
// without a profile.
func (c *Container) NewFlattenProcessor() *batch.Processor {
	return batch.NewFlattenProcessor(c.logger, c.config.Extraction.Workers)
}

// GetWriter returns the writer for format; "" selects the configured format.
func (c *Container) GetWriter(format string) (export.Writer, error) {
	if format == "" {
		format = c.config.Output.Format
	}
	return export.NewWriter(format, export.Options{
		SheetName: c.config.Output.SheetName,
		Delimiter: c.config.Delimiter(),
	})
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
