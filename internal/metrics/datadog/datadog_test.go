package datadog

import (
	"net"
	"reflect"
	"strings"
	"testing"
	"time"

	"layoffs/internal/metrics"
)

func TestLabelsToTags(t *testing.T) {
	t.Parallel()

	if got := labelsToTags(nil); got != nil {
		t.Fatalf("labelsToTags(nil) = %v, want nil", got)
	}
	got := labelsToTags(metrics.Labels{"step": "dedupe", "job": "layoffs", "run_id": "r1"})
	want := []string{"job:layoffs", "run_id:r1", "step:dedupe"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("labelsToTags = %v, want %v", got, want)
	}
}

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if b, err := NewBackend(Config{}); err == nil || b != nil {
		t.Fatalf("NewBackend(empty) = %v, %v; want nil, error", b, err)
	}
}

func TestZeroBackendIsSafe(t *testing.T) {
	t.Parallel()

	var b Backend
	b.IncCounter(metrics.RecordsTotal, 1, nil)
	b.ObserveHistogram(metrics.StepDuration, 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

// TestSendsToAgent points the backend at a local UDP listener standing in for
// the agent and checks the DogStatsD payload.
func TestSendsToAgent(t *testing.T) {
	t.Parallel()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp listen unavailable: %v", err)
	}
	defer conn.Close()

	b, err := NewBackend(Config{Addr: conn.LocalAddr().String()})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter(metrics.RecordsTotal, 5, metrics.Labels{"kind": "loaded"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	var payload strings.Builder
	buf := make([]byte, 65536)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for !strings.Contains(payload.String(), metrics.RecordsTotal) {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			t.Fatalf("read: %v (got %q)", err, payload.String())
		}
		payload.Write(buf[:n])
	}
	if want := "layoffs_records_total:5|c|#kind:loaded"; !strings.Contains(payload.String(), want) {
		t.Fatalf("payload %q does not contain %q", payload.String(), want)
	}
}
