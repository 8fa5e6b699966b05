package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RecordLoginAndDecision(t *testing.T) {
	m := NewMetrics()
	m.RecordLogin("success")
	m.RecordLogin("success")
	m.RecordLogin("wrong_password")
	m.RecordDecision("allow")

	if got := testutil.ToFloat64(m.logins.WithLabelValues("success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.logins.WithLabelValues("wrong_password")); got != 1 {
		t.Fatalf("expected 1 wrong_password, got %v", got)
	}
	if got := testutil.ToFloat64(m.gateDecisions.WithLabelValues("allow")); got != 1 {
		t.Fatalf("expected 1 allow, got %v", got)
	}
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordLogin("success")
	m.RecordDecision("allow")
	m.RecordError("/", "GET", "X")
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	if m.Registry() != nil {
		t.Fatalf("expected nil registry")
	}
}
