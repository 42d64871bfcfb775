package otel_test

import (
	"context"
	"testing"

	"LanderRescue/internal/platform/otel"
)

func TestMissionTracerBeforeStart(t *testing.T) {
	_, span := otel.MissionTracer().Start(context.Background(), "mission.attempt")
	if span.SpanContext().IsSampled() {
		t.Fatalf("expected no-op span before Start")
	}
	span.End()
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LANDER_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("LANDER_OTEL_SERVICE", "lander-test")
	t.Setenv("LANDER_OTEL_SAMPLE_RATIO", "0.25")

	cfg, err := otel.LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Endpoint != "http://localhost:4318" || cfg.ServiceName != "lander-test" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.Enabled || cfg.SampleRatio != 0.25 {
		t.Fatalf("expected enabled with ratio 0.25, got %+v", cfg)
	}
}

func TestStartInactive(t *testing.T) {
	cases := map[string]otel.Config{
		"no endpoint": {Enabled: true, ServiceName: "lander-test", SampleRatio: 1},
		"disabled":    {Endpoint: "http://localhost:4318", ServiceName: "lander-test", SampleRatio: 1},
	}
	for name, cfg := range cases {
		shutdown, err := otel.Start(context.Background(), cfg)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("%s: shutdown error: %v", name, err)
		}
	}
}

func TestStartRejectsSampleRatio(t *testing.T) {
	cfg := otel.Config{Endpoint: "http://localhost:4318", Enabled: true, ServiceName: "lander-test", SampleRatio: 1.5}
	shutdown, err := otel.Start(context.Background(), cfg)
	if err == nil {
		t.Fatalf("expected sample ratio error")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestStartCreatesProvider(t *testing.T) {
	// non-routable so nothing is exported
	cfg := otel.Config{Endpoint: "http://192.0.2.1:4318", Enabled: true, ServiceName: "lander-test", SampleRatio: 1}
	shutdown, err := otel.Start(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}
