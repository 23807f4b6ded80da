package stats

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var eventNames = map[string]string{
	"D": "Date",
	"T": "Trade",
	"B": "Trade Break",
	"A": "Add Order",
	"X": "Cancel Order",
	"E": "Execute Order",
	"C": "Clear",
	"S": "Status",
	"Q": "Quote",
	"":  "(missing)",
}

func eventName(code string) string {
	if n, ok := eventNames[code]; ok {
		return n
	}
	return "(unknown)"
}

// Print writes a human-readable report of s. Counts are grouped with
// thousands separators for the given language tag.
func (s Summary) Print(w io.Writer, source string, tag language.Tag) error {
	p := message.NewPrinter(tag)

	if _, err := p.Fprintf(w, " Event stats for '%s':\n\n", source); err != nil {
		return err
	}
	p.Fprintf(w, "%14s  %14s  %s\n", "rows", "projected", "event")
	for _, ec := range s.Events {
		p.Fprintf(w, "%14d  %14d  %-3s %s", ec.Rows, ec.Projected, ec.Code, eventName(ec.Code))
		if ec.Malformed > 0 {
			p.Fprintf(w, " (%d malformed)", ec.Malformed)
		}
		p.Fprintf(w, "\n")
	}
	p.Fprintf(w, "%14d  %14d  total\n\n", s.InputRows, s.OutputRows)

	if len(s.Symbols) == 0 {
		return nil
	}

	p.Fprintf(w, " Trade stats by symbol:\n\n")
	p.Fprintf(w, "  %-10s %10s %10s %16s %16s\n", "symbol", "trades", "breaks", "volume", "vwap")
	for _, ss := range s.Symbols {
		vwap := "-"
		if v, ok := ss.VWAP(); ok {
			vwap = v.StringFixed(4)
		}
		p.Fprintf(w, "  %-10s %10d %10d %16s %16s\n", ss.Symbol, ss.Trades, ss.Breaks, ss.Volume.String(), vwap)
	}
	_, err := p.Fprintf(w, "\n")
	return err
}
