package config

import (
	"os"
	"path/filepath"
	"sync"

	"fjacquet/camt-xlsx/internal/logging"

	"github.com/joho/godotenv"
)

var once sync.Once

// LoadEnv loads environment variables from a .env file in the working
// directory or its parent, once per process. Variables already set in the
// environment win. It returns the file that was loaded, or "".
func LoadEnv(logger logging.Logger) string {
	var loaded string
	once.Do(func() {
		loaded = loadEnvFrom(logger, ".env", filepath.Join("..", ".env"))
	})
	return loaded
}

func loadEnvFrom(logger logging.Logger, candidates ...string) string {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	for _, envFile := range candidates {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			logger.WithError(err).Warn("Error loading .env file", logging.F("file", envFile))
			return ""
		}
		logger.Debug("Loaded environment variables", logging.F("file", envFile))
		return envFile
	}
	logger.Debug("No .env file found, using environment variables")
	return ""
}
