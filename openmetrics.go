package telcolcaexporter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/carbonwise/telco-lca-exporter/internal/cache"
	"github.com/carbonwise/telco-lca-exporter/internal/must"
	"golang.org/x/sync/errgroup"
)

// OpenMetricsHandler implements the http.Handler interface. The configuration
// is immutable for the process lifetime so the rendered payload is memoized
// and refreshed lazily instead of being recomputed on every scrape.
type OpenMetricsHandler struct {
	defaultTimeout time.Duration
	memory         *cache.Memory
}

// NewOpenMetricsHandler create a new OpenMetricsHandler serving the given
// collector output.
func NewOpenMetricsHandler(ctx context.Context, collector Collector, refreshEvery time.Duration) *OpenMetricsHandler {
	handler := &OpenMetricsHandler{
		defaultTimeout: 10 * time.Second,
		memory:         cache.NewMemory(ctx, refreshEvery),
	}

	err := handler.memory.Set(ctx, "payload", cache.DynamicValueFunc(func(ctx context.Context) (any, error) {
		payload := new(bytes.Buffer)
		if err := CollectAndFormat(ctx, collector, payload); err != nil {
			return nil, err
		}
		return payload.Bytes(), nil
	}), refreshEvery)
	must.NoError(err)

	return handler
}

// ServeHTTP implements the http.Handler interface. It returns all metrics
// computed by the configured collector, formatted in the http response.
func (handler *OpenMetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), handler.defaultTimeout)
	defer cancel()

	payload, err := handler.memory.Get(ctx, "payload")
	if err != nil {
		slog.Error("failed to collect metrics", "err", err.Error())
		http.Error(w, err.Error(), 500)
		return
	}

	raw, ok := payload.([]byte)
	must.Assert(ok, "cached payload is not a byte slice")

	if _, err := w.Write(raw); err != nil {
		slog.Warn("failed to write metrics response", "err", err.Error())
		return
	}

	slog.Info("metrics have been successfully served", "duration_ms", time.Since(start).Milliseconds())
}

// CollectAndFormat runs the collector and writes every streamed metric in the
// exposition format.
func CollectAndFormat(ctx context.Context, collector Collector, w io.Writer) error {
	metrics := make(chan Metric)

	errg, errgctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		return collector.Collect(errgctx, metrics)
	})

	errg.Go(func() error {
		return writeMetrics(errgctx, w, metrics)
	})

	return errg.Wait()
}

// writeMetrics writes all metrics sent over the channel on the writer.
func writeMetrics(ctx context.Context, w io.Writer, metrics chan Metric) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case metric, ok := <-metrics:
			if !ok {
				return nil
			}
			if err := writeMetric(w, metric); err != nil {
				return fmt.Errorf("failed to write metric on writer: %w", err)
			}
		}
	}
}

// writeMetric writes one metric, labels sorted lexicographically.
func writeMetric(w io.Writer, metric Metric) error {
	metric = metric.SanitizeLabels()

	labels := make([]string, 0, len(metric.Labels))
	for labelName, labelValue := range metric.Labels {
		labels = append(labels, fmt.Sprintf(`%s="%s"`, labelName, labelValue))
	}
	slices.SortFunc(labels, strings.Compare)

	_, err := fmt.Fprintf(w, "%s{%s} %0.10f\n", metric.Name, strings.Join(labels, ","), metric.Value)
	if err != nil {
		return fmt.Errorf("writing metric %s failed: %w", metric.Name, err)
	}

	return nil
}
