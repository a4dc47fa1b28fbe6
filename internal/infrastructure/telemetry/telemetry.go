// Package telemetry wires OpenTelemetry traces, metrics and logs plus
// Pyroscope continuous profiling into the backend. Each provider falls back
// to a no-op when its switch in config.TelemetryConfig is off, so callers
// never have to check whether telemetry is enabled.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/gestion-compras/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// ServiceVersion is reported as service.version on every signal
const ServiceVersion = "1.0.0"

// Telemetry groups the providers started at boot
type Telemetry struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
	logger   *zap.Logger
}

// Setup starts every provider enabled in cfg. The profiler is started
// before span profiles are attached to the tracer.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Telemetry, error) {
	t := &Telemetry{logger: logger}

	var err error
	t.Tracer, err = NewTracerProvider(ctx, TracerConfig{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		return nil, err
	}

	t.Meter, err = NewMeterProvider(ctx, MetricsConfig{
		Enabled:           cfg.MetricsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ExportInterval:    cfg.MetricsInterval,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}

	t.Logs, err = NewLoggerProvider(ctx, LogsConfig{
		Enabled:           cfg.LogsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}

	t.Profiler, err = NewProfiler(ProfilerConfig{
		Enabled:         cfg.ProfilingEnabled,
		ServerAddress:   cfg.ProfilingAddress,
		ApplicationName: cfg.ServiceName,
	}, logger)
	if err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}
	if t.Profiler.IsEnabled() {
		t.Tracer.EnableSpanProfiles()
	}

	return t, nil
}

// Shutdown flushes and stops every provider, in reverse start order
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.Profiler != nil {
		errs = append(errs, t.Profiler.Stop())
	}
	if t.Logs != nil {
		errs = append(errs, t.Logs.Shutdown(ctx))
	}
	if t.Meter != nil {
		errs = append(errs, t.Meter.Shutdown(ctx))
	}
	if t.Tracer != nil {
		errs = append(errs, t.Tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
