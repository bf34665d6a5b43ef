// Package wikimedia resolves species photos from Wikimedia Commons, either
// by hashing a known filename into a direct upload URL or by querying the
// Commons API for a rendered thumbnail.
package wikimedia

import (
	"context"
	"io"
	"log"
	"log/slog"
	"path/filepath"

	"github.com/ecoatlas/ecoatlas-go/internal/logging"
)

// Package-level logger specific to the wikimedia service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "wikimedia.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "wikimedia", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize wikimedia file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "wikimedia")
		closeLogger = func() error { return nil }
	}
}

// PhotoProvider supplies a photo URL for a species name. Implementations
// return a not-found error when no photo exists; callers treat that as an
// expected miss.
type PhotoProvider interface {
	FetchPhoto(ctx context.Context, name string) (string, error)
}
