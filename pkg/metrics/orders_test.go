package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestOrderPlacementMetricsExportsOutcomesAndDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOrderPlacementMetrics(reg)
	metrics.ObserveDuration(120 * time.Millisecond)
	metrics.IncPlaced()
	metrics.IncPlaced()
	metrics.IncRejected()
	metrics.IncFailed()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	for outcome, want := range map[string]float64{"placed": 2, "rejected": 1, "failed": 1} {
		got, err := fetchPlacementCount(mfs, outcome)
		if err != nil {
			t.Fatalf("fetch %s: %v", outcome, err)
		}
		if got != want {
			t.Fatalf("expected %s=%f, got %f", outcome, want, got)
		}
	}

	mf := findMetricFamily(mfs, "order_placement_duration_seconds")
	if mf == nil {
		t.Fatal("metric order_placement_duration_seconds not found")
	}
	if sum := mf.GetMetric()[0].GetHistogram().GetSampleSum(); sum <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", sum)
	}
}

func TestOrderPlacementMetricsNilRegistryIsNoop(t *testing.T) {
	metrics := NewOrderPlacementMetrics(nil)
	metrics.ObserveDuration(time.Second)
	metrics.IncPlaced()
	metrics.IncRejected()
	metrics.IncFailed()
}

func fetchPlacementCount(mfs []*dto.MetricFamily, outcome string) (float64, error) {
	mf := findMetricFamily(mfs, "order_placements_total")
	if mf == nil {
		return 0, fmt.Errorf("metric order_placements_total not found")
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), "outcome", outcome) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("no series for outcome=%s", outcome)
}
