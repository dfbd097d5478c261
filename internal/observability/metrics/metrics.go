package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	auditRuns        metric.Int64Counter
	itemsScored      metric.Int64Counter
	visibilityChecks metric.Int64Counter
	quotaDenied      metric.Int64Counter
	providerFailures metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled || strings.TrimSpace(cfg.ExporterEndpoint) == "" {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metric instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "surfaced"
	}
	meter := provider.Meter(name)

	auditRuns, err := meter.Int64Counter("surfaced.audit.runs",
		metric.WithDescription("Completed catalog audit runs"))
	if err != nil {
		return nil, err
	}
	itemsScored, err := meter.Int64Counter("surfaced.audit.items_scored",
		metric.WithDescription("Catalog items scored"))
	if err != nil {
		return nil, err
	}
	visibilityChecks, err := meter.Int64Counter("surfaced.visibility.checks",
		metric.WithDescription("Persisted visibility check results"))
	if err != nil {
		return nil, err
	}
	quotaDenied, err := meter.Int64Counter("surfaced.visibility.quota_denied",
		metric.WithDescription("Visibility runs refused on monthly quota"))
	if err != nil {
		return nil, err
	}
	providerFailures, err := meter.Int64Counter("surfaced.visibility.provider_failures",
		metric.WithDescription("Answer-engine calls that failed and were skipped"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		auditRuns:        auditRuns,
		itemsScored:      itemsScored,
		visibilityChecks: visibilityChecks,
		quotaDenied:      quotaDenied,
		providerFailures: providerFailures,
	}, nil
}

func (m *Metrics) RecordAuditRun(ctx context.Context, itemsScored int) {
	if m == nil {
		return
	}
	m.auditRuns.Add(ctx, 1)
	m.itemsScored.Add(ctx, int64(itemsScored))
}

func (m *Metrics) RecordVisibilityCheck(ctx context.Context, platform string, mentioned bool) {
	if m == nil {
		return
	}
	m.visibilityChecks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("platform", platform),
		attribute.Bool("mentioned", mentioned),
	))
}

func (m *Metrics) RecordQuotaDenied(ctx context.Context) {
	if m == nil {
		return
	}
	m.quotaDenied.Add(ctx, 1)
}

func (m *Metrics) RecordProviderFailure(ctx context.Context, platform string) {
	if m == nil {
		return
	}
	m.providerFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("platform", platform),
	))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}
