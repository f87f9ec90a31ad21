package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func withTestRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	origReg := prometheus.DefaultRegisterer
	origGather := prometheus.DefaultGatherer
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = origReg
		prometheus.DefaultGatherer = origGather
	})

	return reg
}

func TestNoopMetrics(t *testing.T) {
	var m Noop
	m.IncOp("list_assets", "ok")
}

func TestPromMetrics(t *testing.T) {
	reg := withTestRegistry(t)
	m := NewProm("asset_catalog")
	m.IncOp("list_assets", "ok")
	m.IncOp("list_assets", "ok")
	m.IncOp("upload_from_url", "error")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var ops *dto.MetricFamily
	for _, fam := range families {
		if fam.GetName() == "asset_catalog_ops_total" {
			ops = fam
		}
	}
	if ops == nil {
		t.Fatal("ops_total family not registered")
	}

	totals := map[string]float64{}
	for _, metric := range ops.GetMetric() {
		key := ""
		for _, label := range metric.GetLabel() {
			key += label.GetName() + "=" + label.GetValue() + ";"
		}
		totals[key] = metric.GetCounter().GetValue()
	}

	if totals["operation=list_assets;status=ok;"] != 2 {
		t.Fatalf("unexpected list_assets count: %v", totals)
	}
	if totals["operation=upload_from_url;status=error;"] != 1 {
		t.Fatalf("unexpected upload count: %v", totals)
	}
}
