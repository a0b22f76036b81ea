package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"sync/atomic"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Type alias for slog.Level for easier usage
type Level = slog.Level

const (
	LevelTrace   = slog.Level(-8)
	LevelDebug   = slog.LevelDebug // -4
	LevelInfo    = slog.LevelInfo  // 0
	LevelWarning = slog.LevelWarn  // 4
	LevelError   = slog.LevelError // 8
	LevelFatal   = slog.Level(12)  // 12
)

// Config controls how the process logs. Zero values fall back to the env defaults.
type Config struct {
	Level           string `env:"LOG_LEVEL" envDefault:"INFO"`
	ErrorSampleRate int    `env:"ERROR_SAMPLE_RATE" envDefault:"1"`
	OTELEnabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	ServiceName     string `env:"OTEL_SERVICE_NAME" envDefault:"sentest"`
}

// ConfigFromEnv reads the logging configuration from the environment
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse logger config: %w", err)
	}
	return cfg, nil
}

var (
	Logger          *slog.Logger
	errorSampleRate atomic.Int32
	programLevel    = new(slog.LevelVar)
	shutdownFunc    func(context.Context) error // nil unless OTEL is active
)

// Counters for the metrics endpoint, incremented regardless of sampling
var (
	TotalErrors    atomic.Int64
	TotalWarnings  atomic.Int64
	Total5xxErrors atomic.Int64
	Total4xxErrors atomic.Int64
	Total400Errors atomic.Int64
	Total404Errors atomic.Int64
	Total405Errors atomic.Int64
	Total429Errors atomic.Int64
	SlowRequests   atomic.Int64
)

func init() {
	programLevel.Set(slog.LevelInfo)
	errorSampleRate.Store(1)
	setupJSONLogging(os.Stdout)
}

// Setup installs the handler described by cfg as the process logger.
// When OTEL setup fails the JSON handler stays in place and the error is returned.
func Setup(ctx context.Context, cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = LevelInfo
	}
	programLevel.Set(level)

	if cfg.ErrorSampleRate > 0 {
		errorSampleRate.Store(int32(cfg.ErrorSampleRate))
	}

	if !cfg.OTELEnabled {
		setupJSONLogging(os.Stdout)
		return nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "sentest"
	}

	shutdown, err := setupOTELLogging(ctx, serviceName)
	if err != nil {
		setupJSONLogging(os.Stdout)
		return fmt.Errorf("failed to setup OTEL logging, using JSON: %w", err)
	}
	shutdownFunc = shutdown
	return nil
}

func setupJSONLogging(w io.Writer) {
	opts := &slog.HandlerOptions{
		Level: programLevel,
	}

	Logger = slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(Logger)
}

func setupOTELLogging(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// OTLP endpoint comes from the standard OTEL_EXPORTER_OTLP_* variables
	exporter, err := otlploggrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)

	otelHandler := otelslog.NewHandler(
		serviceName,
		otelslog.WithLoggerProvider(loggerProvider),
	)

	Logger = slog.New(&levelHandler{
		level:   programLevel,
		handler: otelHandler,
	})
	slog.SetDefault(Logger)

	return loggerProvider.Shutdown, nil
}

// levelHandler wraps a handler to filter by level
type levelHandler struct {
	level   slog.Leveler
	handler slog.Handler
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{level: h.level, handler: h.handler.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{level: h.level, handler: h.handler.WithGroup(name)}
}

// Shutdown flushes the OTEL exporter. It is a no-op for JSON logging.
func Shutdown(ctx context.Context) error {
	if shutdownFunc != nil {
		return shutdownFunc(ctx)
	}
	return nil
}

// SetLevel sets the minimum log level for the logger
func SetLevel(level slog.Level) {
	programLevel.Set(level)
}

// GetLevel returns the current minimum log level
func GetLevel() slog.Level {
	return programLevel.Level()
}

// ParseLevel converts a string level name to slog.Level
func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO", "":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s (defaulting to INFO)", levelStr)
	}
}

// shouldSample reports whether this warning or error should be written (1 in N)
func shouldSample() bool {
	rate := errorSampleRate.Load()
	if rate <= 1 {
		return true
	}
	return rand.Intn(int(rate)) == 0
}

// ============================================================================
// Logging Functions
// ============================================================================

// Trace logs a trace-level message
func Trace(msg string, args ...any) {
	Logger.Log(context.Background(), LevelTrace, msg, args...)
}

// Debug logs a debug-level message
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info-level message
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn counts the warning and logs it subject to sampling
func Warn(msg string, args ...any) {
	TotalWarnings.Add(1)
	if shouldSample() {
		Logger.Warn(msg, args...)
	}
}

// Error counts the error and logs it subject to sampling
func Error(msg string, args ...any) {
	TotalErrors.Add(1)
	if shouldSample() {
		Logger.Error(msg, args...)
	}
}

// Fatal logs a fatal-level message and exits
func Fatal(msg string, args ...any) {
	Logger.Log(context.Background(), LevelFatal, msg, args...)
	if shutdownFunc != nil {
		_ = shutdownFunc(context.Background())
	}
	os.Exit(1)
}

// ============================================================================
// HTTP-Specific Counters
// ============================================================================

// ErrorHttp5xx counts an HTTP 5xx response
func ErrorHttp5xx() {
	Total5xxErrors.Add(1)
	TotalErrors.Add(1)
}

// WarnHttp4xx counts an HTTP 4xx response
func WarnHttp4xx(status int) {
	Total4xxErrors.Add(1)
	TotalWarnings.Add(1)

	switch status {
	case 400:
		Total400Errors.Add(1)
	case 404:
		Total404Errors.Add(1)
	case 405:
		Total405Errors.Add(1)
	case 429:
		Total429Errors.Add(1)
	}
}

// WarnSlowRequest counts a request that exceeded the slow threshold
func WarnSlowRequest() {
	SlowRequests.Add(1)
	TotalWarnings.Add(1)
}

// Counters returns a snapshot of every counter, keyed by metric name
func Counters() map[string]int64 {
	return map[string]int64{
		"errors_total":        TotalErrors.Load(),
		"warnings_total":      TotalWarnings.Load(),
		"http_5xx_total":      Total5xxErrors.Load(),
		"http_4xx_total":      Total4xxErrors.Load(),
		"http_400_total":      Total400Errors.Load(),
		"http_404_total":      Total404Errors.Load(),
		"http_405_total":      Total405Errors.Load(),
		"http_429_total":      Total429Errors.Load(),
		"slow_requests_total": SlowRequests.Load(),
	}
}
