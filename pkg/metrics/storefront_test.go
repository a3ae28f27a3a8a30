package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStorefrontMetricsExportsCountersGaugeAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewStorefrontMetrics(reg)
	metrics.IncMutation("add")
	metrics.IncMutation("add")
	metrics.IncPersistFailure("redis", "add")
	metrics.SetLiveSessions(3)
	metrics.IncCheckout(CheckoutSuccess)
	metrics.ObserveCommerce("create_order", "2xx", 120*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "cart_mutations_total", "op", "add"); err != nil {
		t.Fatalf("fetch mutations: %v", err)
	} else if got != 2 {
		t.Fatalf("expected mutations=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "cart_persist_failures_total", "backend", "redis"); err != nil {
		t.Fatalf("fetch persist failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected persist failures=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_submissions_total", "outcome", CheckoutSuccess); err != nil {
		t.Fatalf("fetch checkouts: %v", err)
	} else if got != 1 {
		t.Fatalf("expected checkouts=1, got %f", got)
	}

	live := findMetricFamily(mfs, "cart_live_sessions")
	if live == nil || len(live.GetMetric()) != 1 || live.GetMetric()[0].GetGauge().GetValue() != 3 {
		t.Fatalf("expected live sessions gauge 3, got %v", live)
	}

	if got, err := fetchHistogramSum(mfs, "commerce_request_duration_seconds", "operation", "create_order"); err != nil {
		t.Fatalf("fetch latency: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected latency sum > 0, got %f", got)
	}
}

func TestStorefrontMetricsNilSafe(t *testing.T) {
	var nilMetrics *StorefrontMetrics
	nilMetrics.IncMutation("add")
	nilMetrics.IncCheckout(CheckoutFailed)

	unregistered := NewStorefrontMetrics(nil)
	unregistered.IncPersistFailure("file", "clear")
	unregistered.SetLiveSessions(1)
	unregistered.ObserveCommerce("get_order", "error", time.Second)
}

func TestNormalizeLabel(t *testing.T) {
	if got := normalizeLabel(""); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
