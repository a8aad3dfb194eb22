package observability

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentRedisClient installs a command hook on client. components maps a
// key prefix to the component name reported with each command, for example
// the rate limiter prefix to "rate_limit".
func InstrumentRedisClient(client redis.UniversalClient, logger *slog.Logger, components map[string]string) {
	if client == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	hook, err := newRedisMetricsHook(otel.Meter(meterName), client, components)
	if err != nil {
		logger.Warn("redis instrumentation disabled", "error", err)
		return
	}
	client.AddHook(hook)
	logger.Info("redis instrumentation enabled", "components", len(components))
}

type redisPrefix struct {
	prefix    string
	component string
}

type redisMetricsHook struct {
	cmdTotal   metric.Int64Counter
	cmdErrors  metric.Int64Counter
	cmdLatency metric.Float64Histogram
	prefixes   []redisPrefix
}

func newRedisMetricsHook(meter metric.Meter, client redis.UniversalClient, components map[string]string) (*redisMetricsHook, error) {
	cmdTotal, err := meter.Int64Counter(
		"redis.command.total",
		metric.WithDescription("Redis commands executed, by component and status"),
	)
	if err != nil {
		return nil, err
	}
	cmdErrors, err := meter.Int64Counter(
		"redis.command.errors",
		metric.WithDescription("Redis command errors, by component and error type"),
	)
	if err != nil {
		return nil, err
	}
	cmdLatency, err := meter.Float64Histogram(
		"redis.command.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Redis command latency in seconds"),
	)
	if err != nil {
		return nil, err
	}
	poolSaturation, err := meter.Float64ObservableGauge(
		"redis.pool.saturation",
		metric.WithUnit("1"),
		metric.WithDescription("Redis pool saturation ratio (used_conns / total_conns)"),
	)
	if err != nil {
		return nil, err
	}
	_, err = meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		stats := client.PoolStats()
		if stats != nil && stats.TotalConns > 0 {
			used := stats.TotalConns - stats.IdleConns
			observer.ObserveFloat64(poolSaturation, clampRatio(float64(used)/float64(stats.TotalConns)))
		}
		return nil
	}, poolSaturation)
	if err != nil {
		return nil, err
	}

	prefixes := make([]redisPrefix, 0, len(components))
	for prefix, component := range components {
		if prefix == "" {
			continue
		}
		prefixes = append(prefixes, redisPrefix{prefix: prefix, component: component})
	}
	// Longest prefix first so nested prefixes resolve to the most specific component.
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i].prefix) > len(prefixes[j].prefix) })

	return &redisMetricsHook{
		cmdTotal:   cmdTotal,
		cmdErrors:  cmdErrors,
		cmdLatency: cmdLatency,
		prefixes:   prefixes,
	}, nil
}

func (h *redisMetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *redisMetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.record(ctx, cmd, err, time.Since(start))
		return err
	}
}

func (h *redisMetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		elapsed := time.Since(start)
		h.cmdLatency.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
			attribute.String("command", "pipeline"),
			attribute.String("component", h.componentOf(cmds...)),
			attribute.String("status", redisCommandStatus(err)),
		))
		for _, cmd := range cmds {
			h.count(ctx, cmd, cmd.Err())
		}
		return err
	}
}

func (h *redisMetricsHook) record(ctx context.Context, cmd redis.Cmder, err error, elapsed time.Duration) {
	h.count(ctx, cmd, err)
	h.cmdLatency.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("command", strings.ToLower(cmd.Name())),
		attribute.String("component", h.componentOf(cmd)),
		attribute.String("status", redisCommandStatus(err)),
	))
}

func (h *redisMetricsHook) count(ctx context.Context, cmd redis.Cmder, err error) {
	command := strings.ToLower(cmd.Name())
	component := h.componentOf(cmd)
	h.cmdTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("component", component),
		attribute.String("status", redisCommandStatus(err)),
	))
	if err != nil && !errors.Is(err, redis.Nil) {
		h.cmdErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("command", command),
			attribute.String("component", component),
			attribute.String("error_type", classifyRedisError(err)),
		))
	}
}

// componentOf returns the component owning the first argument that matches a
// registered key prefix. Script arguments and SCAN patterns are included.
func (h *redisMetricsHook) componentOf(cmds ...redis.Cmder) string {
	for _, cmd := range cmds {
		args := cmd.Args()
		for i := 1; i < len(args); i++ {
			s, ok := args[i].(string)
			if !ok {
				continue
			}
			for _, p := range h.prefixes {
				if strings.HasPrefix(s, p.prefix) {
					return p.component
				}
			}
		}
	}
	return "other"
}

func redisCommandStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, redis.Nil):
		return "miss"
	default:
		return "error"
	}
}

func classifyRedisError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "refused"):
		return "connection"
	default:
		return "other"
	}
}

func clampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
