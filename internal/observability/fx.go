package observability

import (
	"strings"

	"github.com/smallbiznis/bookkeeper/internal/config"
	"github.com/smallbiznis/bookkeeper/internal/observability/logger"
	"github.com/smallbiznis/bookkeeper/internal/observability/metrics"
	"github.com/smallbiznis/bookkeeper/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		provideLoggerConfig,
		logger.New,
		provideTracingConfig,
		tracing.NewProvider,
		provideMetricsConfig,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
		metrics.NewPostingMetrics,
	),
	fx.Invoke(ensureTracingProvider),
)

func ensureTracingProvider(_ *sdktrace.TracerProvider) {}

func provideLoggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName:         serviceName(cfg),
		Environment:         cfg.Environment,
		Version:             cfg.AppVersion,
		Level:               cfg.Observability.LogLevel,
		Format:              cfg.Observability.LogFormat,
		Debug:               cfg.Debug(),
		IncludeCaller:       true,
		IncludeStackOnError: cfg.Debug(),
	}
}

func provideTracingConfig(cfg config.Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.Observability.OtelEnabled,
		ServiceName:      serviceName(cfg),
		ServiceVersion:   cfg.AppVersion,
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.Observability.OtelEndpoint,
		ExporterProtocol: cfg.Observability.OtelProtocol,
		SamplingRatio:    cfg.Observability.OtelSamplingRatio,
	}
}

func provideMetricsConfig(cfg config.Config) metrics.Config {
	return metrics.Config{
		Enabled:          cfg.Observability.OtelEnabled,
		ExporterEndpoint: cfg.Observability.OtelEndpoint,
		ExporterProtocol: cfg.Observability.OtelProtocol,
		ServiceName:      serviceName(cfg),
		Environment:      cfg.Environment,
	}
}

func serviceName(cfg config.Config) string {
	if name := strings.TrimSpace(cfg.AppName); name != "" {
		return name
	}
	return "bookkeeper"
}
