package metrics_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/artpar/racksdb/adapters/metrics"
	"github.com/artpar/racksdb/core/db"
	"github.com/artpar/racksdb/ports"
)

var (
	_ db.Observer          = (*metrics.Collector)(nil)
	_ ports.ReloadRecorder = (*metrics.Collector)(nil)
)

func TestNew(t *testing.T) {
	// Use a new registry to avoid conflicts with other tests
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg, "")

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}

	// Verify all metrics are initialized
	if m.LoadsTotal == nil {
		t.Error("LoadsTotal is nil")
	}
	if m.LoadDuration == nil {
		t.Error("LoadDuration is nil")
	}
	if m.Objects == nil {
		t.Error("Objects is nil")
	}
	if m.Reloads == nil {
		t.Error("Reloads is nil")
	}
	if m.ReloadErrors == nil {
		t.Error("ReloadErrors is nil")
	}
	if m.LastReload == nil {
		t.Error("LastReload is nil")
	}
}

func TestNamespace(t *testing.T) {
	tests := []struct {
		namespace string
		want      string
	}{
		{"", "racksdb_reloads_total"},
		{"inventory", "inventory_reloads_total"},
	}

	for _, tt := range tests {
		reg := prometheus.NewRegistry()
		m := metrics.NewWithRegistry(reg, tt.namespace)
		m.Reloads.Inc()

		families, err := reg.Gather()
		if err != nil {
			t.Fatalf("Gather error: %v", err)
		}
		found := false
		for _, f := range families {
			if f.GetName() == tt.want {
				found = true
			}
		}
		if !found {
			t.Errorf("namespace %q: metric %s not found", tt.namespace, tt.want)
		}
	}
}

func TestObserveLoad(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg, "racksdb")

	m.ObserveLoad(db.LoadStats{
		ID:       "load-1",
		Duration: 20 * time.Millisecond,
		Objects:  map[string]int{"Node": 130, "Rack": 12},
	})
	m.ObserveLoad(db.LoadStats{Duration: time.Millisecond, Err: errors.New("boom")})

	if got := testutil.ToFloat64(m.LoadsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("successful loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LoadsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("failed loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Objects.WithLabelValues("Node")); got != 130 {
		t.Errorf("Node objects = %v, want 130", got)
	}
	if got := testutil.CollectAndCount(m.LoadDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}

	// a later load replaces the counts of every class
	m.ObserveLoad(db.LoadStats{Objects: map[string]int{"Node": 4}})
	want := `
# HELP racksdb_objects Number of objects of each class in the last loaded database
# TYPE racksdb_objects gauge
racksdb_objects{class="Node"} 4
`
	if err := testutil.CollectAndCompare(m.Objects, strings.NewReader(want), "racksdb_objects"); err != nil {
		t.Errorf("objects gauge: %v", err)
	}
}

func TestRecordReload(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg, "racksdb")

	at := time.Unix(1700000000, 0)
	m.RecordReload(at, nil)
	m.RecordReload(at.Add(time.Minute), errors.New("invalid database"))

	if got := testutil.ToFloat64(m.Reloads); got != 2 {
		t.Errorf("reloads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ReloadErrors); got != 1 {
		t.Errorf("reload errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LastReload); got != 1700000000 {
		t.Errorf("last reload = %v, want 1700000000", got)
	}
}
