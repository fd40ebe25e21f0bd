package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestOutboxMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOutboxMetrics(reg)
	eventType := "order_created"
	metrics.ObserveDuration(eventType, 250*time.Millisecond)
	metrics.IncSuccess(eventType)
	metrics.IncFailure(eventType)
	metrics.ObserveBatch(3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "outbox_publish_success_total", "event_type", eventType); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "outbox_publish_failure_total", "event_type", eventType); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "outbox_publish_duration_seconds", "event_type", eventType); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestOrderMetricsCountsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOrderMetrics(reg)
	metrics.Observe("create", nil)
	metrics.Observe("create", nil)
	metrics.Observe("create", errors.New("no stock"))
	metrics.ObserveCheckout(40 * time.Millisecond)
	metrics.AddReserved(6)
	metrics.AddReleased(2)
	metrics.AddReleased(0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "orders_operations_total", "result", ResultSuccess); err != nil || got != 2 {
		t.Fatalf("expected success=2, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "orders_operations_total", "result", ResultFailure); err != nil || got != 1 {
		t.Fatalf("expected failure=1, got %f (%v)", got, err)
	}
	if mf := findMetricFamily(mfs, "inventory_units_reserved_total"); mf == nil || mf.GetMetric()[0].GetCounter().GetValue() != 6 {
		t.Fatalf("expected 6 reserved units")
	}
	if mf := findMetricFamily(mfs, "inventory_units_released_total"); mf == nil || mf.GetMetric()[0].GetCounter().GetValue() != 2 {
		t.Fatalf("expected 2 released units")
	}
	if mf := findMetricFamily(mfs, "orders_checkout_duration_seconds"); mf == nil || mf.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
		t.Fatalf("expected one checkout observation")
	}
}

func TestHTTPMetricsLabelsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	metrics.Observe(http.MethodPost, "/api/v1/orders", http.StatusCreated, 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "http_requests_total", "status", "201"); err != nil || got != 1 {
		t.Fatalf("expected one 201, got %f (%v)", got, err)
	}
}

func TestCronJobMetricsRecordsRunsAndRows(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	metrics.Observe("outbox-retention", 5*time.Millisecond, nil)
	metrics.Observe("stock-reconcile", 5*time.Millisecond, errors.New("boom"))
	metrics.AddRows("outbox-retention", 12)
	metrics.AddRows("outbox-retention", 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "maintenance_job_runs_total", "result", "failure"); err != nil || got != 1 {
		t.Fatalf("expected one failed run, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "maintenance_job_rows_total", "job", "outbox-retention"); err != nil || got != 12 {
		t.Fatalf("expected 12 rows, got %f (%v)", got, err)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var orders *OrderMetrics
	orders.Observe("create", nil)
	orders.AddReserved(1)
	orders.ObserveCheckout(time.Second)

	var outbox *OutboxMetrics
	outbox.IncSuccess("x")
	outbox.ObserveBatch(1)

	var cron *CronJobMetrics
	cron.Observe("job", time.Second, nil)
	cron.AddRows("job", 1)

	var httpMetrics *HTTPMetrics
	httpMetrics.Observe(http.MethodGet, "/", http.StatusOK, time.Millisecond)

	NewOrderMetrics(nil).Observe("create", nil)
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
