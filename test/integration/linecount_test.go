package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/linepool/internal/config"
	"github.com/vnykmshr/linepool/internal/coordinator"
	"github.com/vnykmshr/linepool/internal/testutil"
	"github.com/vnykmshr/linepool/pkg/linecount"
	"github.com/vnykmshr/linepool/pkg/report"
)

// TestConfigToReport runs the whole flow: config file -> directory listing ->
// pool run -> report file, verifying the counts survive every hop.
func TestConfigToReport(t *testing.T) {
	dir := t.TempDir()
	contents := make(map[string]string)
	want := 0
	for i := 1; i <= 25; i++ {
		contents[fmt.Sprintf("part_%02d.txt", i)] = strings.Repeat("line\n", i)
		want += i
	}
	contents["ignored.csv"] = "a,b\nc,d\n"
	testutil.WriteFiles(t, dir, contents)

	cfgPath := filepath.Join(t.TempDir(), "run.yaml")
	out := filepath.Join(t.TempDir(), "report.txt")
	yaml := fmt.Sprintf("input: %s\noutput: %s\nthreads: 4\n", dir, out)
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFile(cfgPath)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, cfg.Validate())

	files, err := linecount.FindFiles(cfg.Input, cfg.Ext)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(files), 25)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	reg := prometheus.NewRegistry()
	summary, err := coordinator.Run(ctx, files, coordinator.Options{
		Threads:    cfg.Threads,
		Registerer: reg,
	})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, summary.TotalLines, want)
	testutil.AssertEqual(t, summary.Files, 25)

	testutil.AssertNoError(t, report.WriteFile(cfg.Output, summary.Results, summary.TotalLines))

	data, err := os.ReadFile(out)
	testutil.AssertNoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	testutil.AssertEqual(t, len(lines), 26)
	testutil.AssertEqual(t, lines[0], filepath.Join(dir, "part_01.txt")+": 1")
	testutil.AssertEqual(t, lines[25], fmt.Sprintf("TOTAL: %d", want))

	// Pool gauges settle once the workers are gone.
	testutil.AssertEqual(t, metricValue(t, reg, "linepool_workerpool_active_workers"), float64(0))
}

// TestRepeatedRunsShareMetrics checks that scheduled style repeated runs
// against one registry accumulate instead of failing registration.
func TestRepeatedRunsShareMetrics(t *testing.T) {
	files := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"a.txt": "1\n2\n",
		"b.txt": "1\n",
	})
	reg := prometheus.NewRegistry()

	for i := 0; i < 3; i++ {
		_, err := coordinator.Run(context.Background(), files, coordinator.Options{Threads: 2, Registerer: reg})
		testutil.AssertNoError(t, err)
	}

	n, err := promtest.GatherAndCount(reg, "linepool_linecount_run_duration_seconds")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 1)

	testutil.AssertEqual(t, metricValue(t, reg, "linepool_linecount_lines_total"), float64(9))
}

// metricValue returns the value of the single series of a gauge or
// counter family.
func metricValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	testutil.AssertNoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		if len(mf.GetMetric()) != 1 {
			t.Fatalf("%s has %d series, want 1", name, len(mf.GetMetric()))
		}
		m := mf.GetMetric()[0]
		if g := m.GetGauge(); g != nil {
			return g.GetValue()
		}
		return m.GetCounter().GetValue()
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
