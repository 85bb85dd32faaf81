package logging

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedAdapter(level logrus.Level) (Logger, *bytes.Buffer) {
	logrusLogger := logrus.New()
	var buf bytes.Buffer
	logrusLogger.SetOutput(&buf)
	logrusLogger.SetLevel(level)
	logrusLogger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return NewLogrusAdapterFromLogger(logrusLogger), &buf
}

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{"debug level with text format", "debug", "text", logrus.DebugLevel},
		{"info level with json format", "info", "json", logrus.InfoLevel},
		{"upper case level", "WARN", "text", logrus.WarnLevel},
		{"invalid level defaults to info", "chatty", "text", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.logger.Level)

			if tt.format == "json" {
				_, ok := adapter.logger.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok, "formatter should be JSONFormatter")
			} else {
				_, ok := adapter.logger.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok, "formatter should be TextFormatter")
			}
		})
	}
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	adapter, ok := NewLogrusAdapterFromLogger(nil).(*LogrusAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.logger)
}

func TestLogrusAdapter_FieldsAndError(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.DebugLevel)

	logger.
		WithField(FieldDocument, "a.xml").
		WithError(errors.New("unexpected EOF")).
		Warn("document skipped", F(FieldProfile, "camt054"))

	out := buf.String()
	assert.Contains(t, out, "document skipped")
	assert.Contains(t, out, "document=a.xml")
	assert.Contains(t, out, "profile=camt054")
	assert.Contains(t, out, "unexpected EOF")
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.WarnLevel)

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Error("visible error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible error")
}

func TestLogrusAdapter_DerivedLoggerSharesOutput(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)
	child := logger.WithFields(F(FieldProfile, "camt054"), F(FieldEntry, 3))

	child.Debug("hidden debug")
	child.Info("entry extracted")
	logger.Info("parent entry")

	out := buf.String()
	assert.NotContains(t, out, "hidden debug")
	assert.Contains(t, out, "entry=3")
	assert.Contains(t, out, "parent entry")

	adapter, ok := child.(*LogrusAdapter)
	require.True(t, ok)
	assert.Same(t, logger.(*LogrusAdapter).logger, adapter.logger)
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	assert.NotPanics(t, func() { logger.Info("nothing to see", F(FieldCount, 1)) })
}

func TestConvertFields(t *testing.T) {
	fields := convertFields([]Field{F("a", "x"), F("b", 42)})
	assert.Len(t, fields, 2)
	assert.Equal(t, "x", fields["a"])
	assert.Equal(t, 42, fields["b"])
	assert.Len(t, convertFields(nil), 0)
}

func TestMockLogger_DerivedLoggersShareEntries(t *testing.T) {
	mock := NewMockLogger()
	child := mock.WithField(FieldDocument, "a.xml")
	child.WithError(errors.New("boom")).Error("failed", F(FieldEntry, 2))

	entries := mock.GetEntriesByLevel("ERROR")
	require.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].Message)
	assert.EqualError(t, entries[0].Error, "boom")

	doc, ok := entries[0].FieldValue(FieldDocument)
	require.True(t, ok)
	assert.Equal(t, "a.xml", doc)
	entry, ok := entries[0].FieldValue(FieldEntry)
	require.True(t, ok)
	assert.Equal(t, 2, entry)
	assert.True(t, mock.HasEntry("ERROR", "failed"))
}

func TestMockLogger_ConcurrentUse(t *testing.T) {
	mock := NewMockLogger()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mock.WithField(FieldCount, i).Info("tick")
		}(i)
	}
	wg.Wait()
	assert.Len(t, mock.GetEntries(), 20)
}

func TestLoggerImplementations(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
}
