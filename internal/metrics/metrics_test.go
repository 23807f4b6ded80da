package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taq/internal/table"
	"taq/internal/taq"
)

func TestMetricsObserveConversion(t *testing.T) {
	in, err := table.Read(strings.NewReader("Event\tTimeZone\tExchange\tTime\tSymbol\tExecID\n" +
		"D\tUTC\tN\t\t\t\n" +
		"A\t\tN\t1\tXYZ\t\n" +
		"B\t\tN\t2\tXYZ\t1\n" +
		"T\t\tN\t3\tXYZ\t2\n"))
	require.NoError(t, err)

	m := New()
	_, err = taq.Project(in, taq.WithObserver(m), taq.WithPolicy(taq.PolicySkip))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.inputRows.WithLabelValues("D")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inputRows.WithLabelValues("A")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outputRows.WithLabelValues("D")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outputRows.WithLabelValues("B")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped.WithLabelValues("unknown")))
	// the T row has no Quantity/Price/Side columns
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped.WithLabelValues("malformed")))
}

func TestMetricsWriteTextfile(t *testing.T) {
	m := New()
	m.Observe(taq.Observation{Code: "D", Event: taq.Date{}, Outcome: taq.Projected})
	m.Finish(1500*time.Millisecond, time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "taq.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `taq_input_rows_total{event="D"} 1`)
	assert.Contains(t, out, `taq_output_rows_total{event="D"} 1`)
	assert.Contains(t, out, "taq_conversion_duration_seconds 1.5")
	assert.Contains(t, out, "taq_last_conversion_timestamp_seconds 1.7e+09")
}

func TestMetricsWriteTextfileBadPath(t *testing.T) {
	err := New().WriteTextfile(filepath.Join(t.TempDir(), "no", "such", "dir", "x.prom"))
	assert.Error(t, err)
}
