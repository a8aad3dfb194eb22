package observability

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/hashebooks/hashebooks-backend/internal/config"
)

func TestInitRuntimeWithExportersDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{OTELServiceName: "hashebooks-backend", OTELEnvironment: "test"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rt, err := InitRuntime(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("init runtime: %v", err)
	}
	if rt.LoggerProvider != nil {
		t.Fatal("expected no logger provider with logs disabled")
	}
	if rt.MeterProvider == nil || rt.TracerProvider == nil {
		t.Fatalf("expected meter and tracer providers, got %+v", rt)
	}
	if err := rt.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestRuntimeShutdownNil(t *testing.T) {
	var rt *Runtime
	if err := rt.Shutdown(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestServiceResourceCarriesNamespace(t *testing.T) {
	res, err := serviceResource(context.Background(), &config.Config{OTELServiceName: "api", OTELEnvironment: "prod"})
	if err != nil {
		t.Fatalf("resource: %v", err)
	}
	found := map[string]string{}
	for _, kv := range res.Attributes() {
		found[string(kv.Key)] = kv.Value.AsString()
	}
	if found["service.name"] != "api" || found["service.namespace"] != serviceNamespace || found["deployment.environment"] != "prod" {
		t.Fatalf("unexpected resource attributes: %+v", found)
	}
}
