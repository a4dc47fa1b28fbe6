package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig holds Pyroscope configuration
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string // e.g. http://pyroscope:4040
	ApplicationName string
	Tags            map[string]string
}

// DefaultProfileTypes are collected when profiling is on
var DefaultProfileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseObjects,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

// Profiler owns a running Pyroscope session
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
	config   ProfilerConfig
	once     sync.Once
}

// NewProfiler starts continuous profiling, or returns an inert profiler when
// it is disabled
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{logger: logger, config: cfg}
	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return p, nil
	}
	if cfg.ServerAddress == "" {
		return nil, errors.New("profiler server address is required when profiling is enabled")
	}
	if cfg.ApplicationName == "" {
		return nil, errors.New("profiler application name is required when profiling is enabled")
	}

	tags := make(map[string]string, len(cfg.Tags)+1)
	for k, v := range cfg.Tags {
		tags[k] = v
	}
	if hostname, err := os.Hostname(); err == nil && tags["hostname"] == "" {
		tags["hostname"] = hostname
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          logger.Sugar().Named("pyroscope"),
		Tags:            tags,
		ProfileTypes:    DefaultProfileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	p.profiler = profiler

	logger.Info("Continuous profiling enabled",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName))
	return p, nil
}

// IsEnabled reports whether profiles are uploaded
func (p *Profiler) IsEnabled() bool {
	return p.profiler != nil
}

// Stop flushes and stops the session. Later calls are no-ops.
func (p *Profiler) Stop() error {
	var err error
	p.once.Do(func() {
		if p.profiler == nil {
			return
		}
		if stopErr := p.profiler.Stop(); stopErr != nil {
			err = fmt.Errorf("failed to stop profiler: %w", stopErr)
		}
	})
	return err
}

// maxLabelValueLength bounds profiling label values
const maxLabelValueLength = 64

// WithProfilingLabels runs fn with pprof labels attached, so its samples can
// be filtered by them in Pyroscope. Empty keys or values are dropped.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := labelPairs(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// labelPairs flattens labels into key/value pairs with snake_case keys,
// sorted by key
func labelPairs(labels map[string]string) []string {
	clean := make(map[string]string, len(labels))
	for k, v := range labels {
		key := labelKey(k)
		if key == "" || v == "" {
			continue
		}
		if len(v) > maxLabelValueLength {
			v = v[:maxLabelValueLength]
		}
		clean[key] = v
	}

	keys := make([]string, 0, len(clean))
	for k := range clean {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, clean[k])
	}
	return pairs
}

func labelKey(key string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(key) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			b.WriteRune(c)
		case c == ' ', c == '-', c == '.':
			b.WriteByte('_')
		}
	}
	return b.String()
}
