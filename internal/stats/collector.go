package stats

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"taq/internal/taq"
)

// EventCount tallies input rows carrying one Event code.
type EventCount struct {
	Code      string
	Rows      int
	Projected int
	Malformed int
}

// SymbolStats aggregates trades and breaks for one symbol.
type SymbolStats struct {
	Symbol   string
	Trades   int
	Breaks   int
	Volume   decimal.Decimal // sum of trade quantities
	Notional decimal.Decimal // sum of quantity * price
	Unpriced int             // trades whose quantity or price did not parse
}

// VWAP is Notional / Volume, or zero with ok=false when nothing was traded.
func (s SymbolStats) VWAP() (decimal.Decimal, bool) {
	if s.Volume.IsZero() {
		return decimal.Zero, false
	}
	return s.Notional.DivRound(s.Volume, 8), true
}

// Collector is a taq.Observer that builds conversion statistics. It is not
// safe for concurrent use; taq.Project calls observers sequentially.
type Collector struct {
	events  map[string]*EventCount
	symbols map[string]*SymbolStats
	input   int
	output  int
}

func NewCollector() *Collector {
	return &Collector{
		events:  make(map[string]*EventCount),
		symbols: make(map[string]*SymbolStats),
	}
}

func (c *Collector) Observe(o taq.Observation) {
	c.input++
	ec, ok := c.events[o.Code]
	if !ok {
		ec = &EventCount{Code: o.Code}
		c.events[o.Code] = ec
	}
	ec.Rows++

	switch o.Outcome {
	case taq.Projected:
		c.output++
		ec.Projected++
	case taq.SkippedMalformed:
		ec.Malformed++
	}

	switch ev := o.Event.(type) {
	case taq.Trade:
		s := c.symbol(ev.Symbol.String())
		s.Trades++
		qty, errQ := decimal.NewFromString(ev.Quantity.String())
		px, errP := decimal.NewFromString(ev.Price.String())
		if errQ != nil || errP != nil {
			s.Unpriced++
			return
		}
		s.Volume = s.Volume.Add(qty)
		s.Notional = s.Notional.Add(qty.Mul(px))
	case taq.Break:
		c.symbol(ev.Symbol.String()).Breaks++
	}
}

func (c *Collector) symbol(raw string) *SymbolStats {
	k := canonicalSymbol(raw)
	s, ok := c.symbols[k]
	if !ok {
		s = &SymbolStats{Symbol: k}
		c.symbols[k] = s
	}
	return s
}

// canonicalSymbol upper-cases and trims so " xyz" and "XYZ" aggregate together.
func canonicalSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Summary is a point-in-time copy of the collected statistics.
type Summary struct {
	InputRows  int
	OutputRows int
	Events     []EventCount  // ordered by code
	Symbols    []SymbolStats // ordered by symbol
}

func (c *Collector) Summary() Summary {
	s := Summary{
		InputRows:  c.input,
		OutputRows: c.output,
		Events:     make([]EventCount, 0, len(c.events)),
		Symbols:    make([]SymbolStats, 0, len(c.symbols)),
	}
	for _, ec := range c.events {
		s.Events = append(s.Events, *ec)
	}
	for _, ss := range c.symbols {
		s.Symbols = append(s.Symbols, *ss)
	}
	slices.SortFunc(s.Events, func(a, b EventCount) int { return strings.Compare(a.Code, b.Code) })
	slices.SortFunc(s.Symbols, func(a, b SymbolStats) int { return strings.Compare(a.Symbol, b.Symbol) })
	return s
}
