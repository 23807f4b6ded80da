package taq

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"taq/internal/table"
)

// Policy decides what Project does with a MalformedRowError.
type Policy string

const (
	PolicyFail Policy = "fail"
	PolicySkip Policy = "skip"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyFail, PolicySkip:
		return p, nil
	}
	return "", fmt.Errorf("unknown malformed-row policy %q (want fail or skip)", s)
}

// Outcome is what happened to one input row.
type Outcome int

const (
	Projected Outcome = iota
	SkippedUnknown
	SkippedMalformed
)

func (o Outcome) String() string {
	switch o {
	case Projected:
		return "projected"
	case SkippedUnknown:
		return "unknown"
	case SkippedMalformed:
		return "malformed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Observation describes one input row after classification.
type Observation struct {
	Line    int
	Code    string // raw Event value, "" when missing
	Event   Event  // nil unless Outcome is Projected
	Outcome Outcome
	Err     error // set for SkippedMalformed
}

// Observer receives one Observation per input row, in input order, from the
// goroutine that called Project.
type Observer interface {
	Observe(Observation)
}

type options struct {
	policy    Policy
	workers   int
	logger    *slog.Logger
	observers []Observer
}

type Option func(*options)

func WithPolicy(p Policy) Option { return func(o *options) { o.policy = p } }

// WithWorkers decodes rows on n goroutines. Output order is unaffected.
func WithWorkers(n int) Option { return func(o *options) { o.workers = n } }

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

func WithObserver(obs Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// decoded is the per-row result of the map step.
type decoded struct {
	code string
	ev   Event
	err  error
}

// Project converts an OB event table into a TAQ event table. Rows are
// processed in input order and each recognized row yields exactly one output
// row; unknown events are dropped. With PolicyFail the first malformed row
// aborts the conversion.
func Project(in *table.Table, opts ...Option) (*table.Table, error) {
	o := options{
		policy:  PolicyFail,
		workers: 1,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	results := decodeAll(in, o.workers)

	rows := make([][]table.Cell, 0, len(results))
	for i, res := range results {
		var err error
		rows, err = fold(rows, in.Record(i), res, &o)
		if err != nil {
			return nil, err
		}
	}

	o.logger.Debug("projected OB table",
		slog.Int("input_rows", in.Len()),
		slog.Int("output_rows", len(rows)),
	)
	return table.FromRows(Columns(), rows), nil
}

// fold appends the output of one decoded row to acc and returns the new
// accumulator.
func fold(acc [][]table.Cell, rec table.Record, res decoded, o *options) ([][]table.Cell, error) {
	obs := Observation{Line: rec.Line(), Code: res.code}

	var malformed *MalformedRowError
	switch {
	case res.err == nil:
		acc = append(acc, res.ev.Row().cells())
		obs.Event = res.ev
		obs.Outcome = Projected
	case errors.Is(res.err, ErrUnknownEvent):
		obs.Outcome = SkippedUnknown
	case errors.As(res.err, &malformed):
		if o.policy != PolicySkip {
			return acc, res.err
		}
		o.logger.Warn("skipping malformed row",
			slog.Int("line", malformed.Line),
			slog.String("event", string(malformed.Kind)),
			slog.String("missing", malformed.Field),
		)
		obs.Outcome = SkippedMalformed
		obs.Err = res.err
	default:
		return acc, res.err
	}

	for _, ob := range o.observers {
		ob.Observe(obs)
	}
	return acc, nil
}

func decodeAll(in *table.Table, workers int) []decoded {
	n := in.Len()
	results := make([]decoded, n)
	if workers <= 1 || n < 2*workers {
		decodeRange(in, results, 0, n)
		return results
	}

	// Contiguous chunks; each goroutine owns a disjoint slice of results.
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			decodeRange(in, results, lo, hi)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func decodeRange(in *table.Table, results []decoded, lo, hi int) {
	for i := lo; i < hi; i++ {
		rec := in.Record(i)
		code, _ := rec.Get(FieldEvent)
		ev, err := Decode(rec)
		results[i] = decoded{code: code.String(), ev: ev, err: err}
	}
}
