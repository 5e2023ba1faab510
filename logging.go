package gridcalc

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Clock provides time functionality for NOW/TODAY, swappable for
// deterministic tests (spec.md §9's determinism note).
type Clock interface {
	Now() time.Time
}

// WallClock is the default Clock backed by the system time.
type WallClock struct{}

func (WallClock) Now() time.Time { return time.Now() }

// RandomGenerator provides random number generation for RAND/RANDBETWEEN,
// swappable for deterministic tests.
type RandomGenerator interface {
	Float64() float64
}

// DefaultRandomGenerator uses math/rand's global source.
type DefaultRandomGenerator struct{}

func (DefaultRandomGenerator) Float64() float64 { return rand.Float64() }

// EngineOption configures optional Engine collaborators at construction
// time.
type EngineOption func(*engineOptions)

type engineOptions struct {
	logger *zap.SugaredLogger
	clock  Clock
	rng    RandomGenerator
}

// WithLogger injects a structured logger. When omitted, Engine falls back
// to a no-op logger so callers never need a nil check.
func WithLogger(logger *zap.SugaredLogger) EngineOption {
	return func(o *engineOptions) { o.logger = logger }
}

// WithClock injects a deterministic Clock for NOW/TODAY.
func WithClock(clock Clock) EngineOption {
	return func(o *engineOptions) { o.clock = clock }
}

// WithRandomSource injects a deterministic RandomGenerator for RAND/RANDBETWEEN.
func WithRandomSource(rng RandomGenerator) EngineOption {
	return func(o *engineOptions) { o.rng = rng }
}

func resolveEngineOptions(opts []EngineOption) engineOptions {
	o := engineOptions{}
	for _, apply := range opts {
		apply(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop().Sugar()
	}
	if o.clock == nil {
		o.clock = WallClock{}
	}
	if o.rng == nil {
		o.rng = DefaultRandomGenerator{}
	}
	return o
}

// NewProductionLogger builds a zap logger a host can pass to WithLogger
// (an Engine built without WithLogger uses a no-op logger): JSON-encoded,
// RFC 3339 timestamps, stack traces on error-level and above entries.
func NewProductionLogger() (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapTimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, WrapInfraError(err, "building production logger")
	}
	return logger.Sugar(), nil
}

func zapTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(time.RFC3339Nano))
}
