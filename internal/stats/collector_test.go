package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"taq/internal/table"
	"taq/internal/taq"
)

func project(t *testing.T, src string, opts ...taq.Option) Summary {
	t.Helper()
	in, err := table.Read(strings.NewReader(src))
	require.NoError(t, err)

	c := NewCollector()
	_, err = taq.Project(in, append(opts, taq.WithObserver(c))...)
	require.NoError(t, err)
	return c.Summary()
}

const header = "Event\tTime\tTimeZone\tExchange\tSymbol\tExecID\tQuantity\tPrice\tSide\n"

func TestCollectorEventCounts(t *testing.T) {
	s := project(t, header+
		"D\t\tUTC\tN\t\t\t\t\t\n"+
		"A\t1\t\tN\tXYZ\t\t100\t10\tB\n"+
		"T\t2\t\tN\tXYZ\t1\t100\t10\tB\n"+
		"T\t3\t\tN\tXYZ\t2\t50\t11\tS\n"+
		"B\t4\t\tN\tXYZ\t1\t\t\t\n")

	assert.Equal(t, 5, s.InputRows)
	assert.Equal(t, 4, s.OutputRows)
	assert.Equal(t, []EventCount{
		{Code: "A", Rows: 1},
		{Code: "B", Rows: 1, Projected: 1},
		{Code: "D", Rows: 1, Projected: 1},
		{Code: "T", Rows: 2, Projected: 2},
	}, s.Events)
}

func TestCollectorSymbolAggregation(t *testing.T) {
	s := project(t, header+
		"T\t1\t\tN\tXYZ\t1\t100\t10.00\tB\n"+
		"T\t2\t\tN\t xyz\t2\t300\t10.50\tS\n"+
		"T\t3\t\tN\tABC\t3\tlots\t1\tB\n"+
		"B\t4\t\tN\tXYZ\t1\t\t\t\n")

	require.Len(t, s.Symbols, 2)

	abc := s.Symbols[0]
	assert.Equal(t, "ABC", abc.Symbol)
	assert.Equal(t, 1, abc.Trades)
	assert.Equal(t, 1, abc.Unpriced)
	_, ok := abc.VWAP()
	assert.False(t, ok)

	xyz := s.Symbols[1]
	assert.Equal(t, "XYZ", xyz.Symbol)
	assert.Equal(t, 2, xyz.Trades)
	assert.Equal(t, 1, xyz.Breaks)
	assert.True(t, xyz.Volume.Equal(decimal.NewFromInt(400)))
	assert.True(t, xyz.Notional.Equal(decimal.RequireFromString("4150")))
	vwap, ok := xyz.VWAP()
	require.True(t, ok)
	assert.Equal(t, "10.3750", vwap.StringFixed(4))
}

func TestCollectorMalformedSkips(t *testing.T) {
	s := project(t, "Event\tTime\tExchange\tSymbol\tExecID\n"+
		"T\t1\tN\tXYZ\t1\n"+
		"B\t2\tN\tXYZ\t1\n", taq.WithPolicy(taq.PolicySkip))

	assert.Equal(t, 2, s.InputRows)
	assert.Equal(t, 1, s.OutputRows)
	assert.Equal(t, []EventCount{
		{Code: "B", Rows: 1, Projected: 1},
		{Code: "T", Rows: 1, Malformed: 1},
	}, s.Events)
}

func TestSummaryPrint(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(header)
	for i := 0; i < 1500; i++ {
		sb.WriteString("T\t1\t\tN\tXYZ\t1\t2\t3\tB\n")
	}
	sb.WriteString("Z\t\t\t\t\t\t\t\t\n")
	s := project(t, sb.String())

	var buf bytes.Buffer
	require.NoError(t, s.Print(&buf, "in.tsv", language.English))
	out := buf.String()

	assert.Contains(t, out, "Event stats for 'in.tsv'")
	assert.Contains(t, out, "1,500")
	assert.Contains(t, out, "1,501")
	assert.Contains(t, out, "Trade")
	assert.Contains(t, out, "(unknown)")
	assert.Contains(t, out, "XYZ")
	assert.Contains(t, out, "3.0000")
}
