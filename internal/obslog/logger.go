// Package obslog provides the structured logger wired into
// internal/engine and internal/optimizer. It adapts the teacher's
// zap-based logger to the surgical-scheduling domain's field names.
package obslog

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	requestIDKey     contextKey = "request-id"
	correlationIDKey contextKey = "correlation-id"
)

// Logger wraps a zap.SugaredLogger and satisfies both
// optimizer.Logger and engine.Logger.
type Logger struct {
	*zap.SugaredLogger
}

// New builds a Logger configured for the given environment. If env is
// empty, it reads from the APP_ENV environment variable, defaulting to
// production (JSON, info-and-above) when unset or unrecognized.
func New(env string) (*Logger, error) {
	if env == "" {
		env = os.Getenv("APP_ENV")
	}

	var config zap.Config
	switch env {
	case "development", "dev":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
	default:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
		config.EncoderConfig.CallerKey = "caller"
		config.EncoderConfig.LevelKey = "level"
		config.EncoderConfig.MessageKey = "message"
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	built, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("obslog: build logger: %w", err)
	}
	return &Logger{SugaredLogger: built.Sugar()}, nil
}

// Debugw, Infow, and Errorw are provided by the embedded
// *zap.SugaredLogger and satisfy optimizer.Logger/engine.Logger
// directly.

// WithRequestID injects a request ID used to trace one optimize or
// emergency-insert call through logs and metrics.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ExtractRequestID retrieves the request ID stored by WithRequestID.
func ExtractRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithCorrelationID injects a correlation ID shared across the
// optimize/persist/notify calls triggered by a single external event.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// ExtractCorrelationID retrieves the correlation ID stored by
// WithCorrelationID.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// LogOptimizeRun logs a completed optimize run's headline numbers.
func LogOptimizeRun(logger *Logger, iterations, improvementCount, unplacedCount int, durationMS int64, cancelled bool) {
	logger.Infow("optimize run completed",
		"iterations", iterations,
		"improvement_count", improvementCount,
		"unplaced_count", unplacedCount,
		"duration_ms", durationMS,
		"cancelled", cancelled,
	)
}

// LogEmergencyInsertion logs the outcome of an emergency insertion
// attempt, including which strategy in the ladder resolved it.
func LogEmergencyInsertion(logger *Logger, strategy string, success bool, disruptionScore float64) {
	if !success {
		logger.Errorw("emergency insertion failed", "strategy", strategy)
		return
	}
	logger.Infow("emergency insertion succeeded",
		"strategy", strategy,
		"disruption_score", disruptionScore,
	)
}
