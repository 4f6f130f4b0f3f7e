package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordRequest(t *testing.T) {
	tests := []struct {
		name       string
		tool       string
		duration   float64
		success    bool
		wantStatus string
	}{
		{
			name:       "successful request",
			tool:       "test_tool",
			duration:   0.5,
			success:    true,
			wantStatus: "success",
		},
		{
			name:       "failed request",
			tool:       "test_tool",
			duration:   1.0,
			success:    false,
			wantStatus: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordRequest(tt.tool, tt.duration, tt.success)

			counter, err := RequestsTotal.GetMetricWithLabelValues(tt.tool, tt.wantStatus)
			if err != nil {
				t.Fatalf("failed to get metric: %v", err)
			}

			if getCounterValue(t, counter) < 1 {
				t.Error("expected counter to be incremented")
			}
		})
	}
}

func TestRecordAPICall(t *testing.T) {
	tests := []struct {
		name      string
		service   string
		action    string
		duration  float64
		success   bool
		errorCode string
	}{
		{
			name:     "successful API call",
			service:  "commons",
			action:   "media_list",
			duration: 0.1,
			success:  true,
		},
		{
			name:      "failed API call with status code",
			service:   "toolforge",
			action:    "upload_count",
			duration:  0.5,
			success:   false,
			errorCode: "503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordAPICall(tt.service, tt.action, tt.duration, tt.success, tt.errorCode)

			status := "success"
			if !tt.success {
				status = "error"
			}
			counter, err := UpstreamRequestsTotal.GetMetricWithLabelValues(tt.service, tt.action, status)
			if err != nil {
				t.Fatalf("failed to get metric: %v", err)
			}
			if getCounterValue(t, counter) < 1 {
				t.Error("expected counter to be incremented")
			}

			if tt.errorCode != "" {
				errCounter, err := UpstreamErrors.GetMetricWithLabelValues(tt.service, tt.action, tt.errorCode)
				if err != nil {
					t.Fatalf("failed to get error metric: %v", err)
				}
				if getCounterValue(t, errCounter) < 1 {
					t.Error("expected error counter to be incremented")
				}
			}
		})
	}
}

func TestRecordContinuation(t *testing.T) {
	counter, err := ContinuationWrites.GetMetricWithLabelValues("category", "true")
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}
	before := getCounterValue(t, counter)

	RecordContinuation("category", true)

	if got := getCounterValue(t, counter); got != before+1 {
		t.Errorf("continuation writes = %v, want %v", got, before+1)
	}
}

func TestMetricsRegistered(t *testing.T) {
	metrics := []prometheus.Collector{
		RequestsTotal,
		RequestDuration,
		RequestInFlight,
		UpstreamLatency,
		UpstreamRequestsTotal,
		UpstreamErrors,
		ContinuationWrites,
		MediaSkipped,
		PanicsRecovered,
	}

	for i, m := range metrics {
		if m == nil {
			t.Errorf("metric at index %d is nil", i)
		}
	}
}

func TestNamespace(t *testing.T) {
	if Namespace != "commons_mcp" {
		t.Errorf("expected namespace 'commons_mcp', got '%s'", Namespace)
	}
}

// Helper to get counter value
func getCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.Counter.GetValue()
}
