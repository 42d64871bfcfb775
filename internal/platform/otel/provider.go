// Package otel wires optional OpenTelemetry tracing for mission attempts.
package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"LanderRescue/internal/platform/config"
)

const tracerName = "LanderRescue/mission"

// Config selects where attempt traces are sent. Tracing stays off until an
// endpoint is set.
type Config struct {
	Endpoint    string  `env:"LANDER_OTEL_ENDPOINT"`
	Enabled     bool    `env:"LANDER_OTEL_ENABLED" envDefault:"true"`
	ServiceName string  `env:"LANDER_OTEL_SERVICE" envDefault:"lander"`
	SampleRatio float64 `env:"LANDER_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) active() bool {
	return c.Enabled && c.Endpoint != ""
}

func noopShutdown(context.Context) error { return nil }

// Start installs a global tracer provider for cfg and returns its shutdown.
// An inactive config leaves the global no-op provider in place.
func Start(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.active() {
		return noopShutdown, nil
	}
	if cfg.SampleRatio <= 0 || cfg.SampleRatio > 1 {
		return noopShutdown, fmt.Errorf("otel: sample ratio %.2f outside (0,1]", cfg.SampleRatio)
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return noopShutdown, fmt.Errorf("otel exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return noopShutdown, fmt.Errorf("otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

// MissionTracer returns the tracer attempts are recorded with. It resolves
// through the global provider, so it is a no-op until Start installs one.
func MissionTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
