package datastore

import (
	"context"
	"io"
	"log/slog"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/ecoatlas/ecoatlas-go/internal/logging"
)

var (
	logger      *slog.Logger
	levelVar    = new(slog.LevelVar)
	closeLogger func() error
)

func init() {
	var err error
	logger, closeLogger, err = logging.NewFileLogger("logs/datastore.log", "datastore", levelVar)
	if err != nil || logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil)).With("service", "datastore")
	}
}

// GetLogger returns the datastore service logger.
func GetLogger() *slog.Logger {
	return logger
}

// slowQueryThreshold marks queries worth flagging. 1 second accommodates
// migration batch queries that legitimately take several hundred ms.
const slowQueryThreshold = time.Second

// gormSlogLogger adapts the datastore slog logger to GORM's logger interface.
type gormSlogLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	log           *slog.Logger
}

// newGormLogger configures a GORM logger writing through the datastore
// service logger.
func newGormLogger(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormSlogLogger{
		level:         level,
		slowThreshold: slowQueryThreshold,
		log:           logger,
	}
}

func (l *gormSlogLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormSlogLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.log.InfoContext(ctx, msg, "data", data)
	}
}

func (l *gormSlogLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.log.WarnContext(ctx, msg, "data", data)
	}
}

func (l *gormSlogLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.log.ErrorContext(ctx, msg, "data", data)
	}
}

func (l *gormSlogLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.level >= gormlogger.Error:
		l.log.ErrorContext(ctx, "Query failed",
			"error", err,
			"sql", sql,
			"rows", rows,
			"elapsed_ms", elapsed.Milliseconds())
	case elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		l.log.WarnContext(ctx, "Slow query",
			"sql", sql,
			"rows", rows,
			"elapsed_ms", elapsed.Milliseconds(),
			"threshold_ms", l.slowThreshold.Milliseconds())
	case l.level >= gormlogger.Info:
		l.log.DebugContext(ctx, "Query",
			"sql", sql,
			"rows", rows,
			"elapsed_ms", elapsed.Milliseconds())
	}
}
