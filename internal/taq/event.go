package taq

import (
	"errors"
	"fmt"

	"taq/internal/table"
)

// Kind is the OB/TAQ event discriminator carried in the Event column.
type Kind string

const (
	KindDate  Kind = "D"
	KindTrade Kind = "T"
	KindBreak Kind = "B"
)

// OB input column names.
const (
	FieldEvent    = "Event"
	FieldTimeZone = "TimeZone"
	FieldExchange = "Exchange"
	FieldTime     = "Time"
	FieldSymbol   = "Symbol"
	FieldExecID   = "ExecID"
	FieldQuantity = "Quantity"
	FieldPrice    = "Price"
	FieldSide     = "Side"
)

// ErrUnknownEvent is returned by Decode for rows whose Event value is
// missing or not one of D, T, B. Such rows produce no output.
var ErrUnknownEvent = errors.New("unknown event")

// MalformedRowError reports a recognized event row whose source table lacks
// a column the projection needs.
type MalformedRowError struct {
	Line  int
	Kind  Kind
	Field string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("line %d: %s event missing field %q", e.Line, e.Kind, e.Field)
}

// Event is a decoded OB event of a recognized kind.
type Event interface {
	Kind() Kind
	// Row projects the event into the TAQ schema.
	Row() Row
}

// Date marks a trading session. The TAQ Date column is never filled from it.
type Date struct {
	TimeZone table.Cell
	Exchange table.Cell
}

func (Date) Kind() Kind { return KindDate }

func (e Date) Row() Row {
	var r Row
	r[ColEvent] = table.Text(string(KindDate))
	r[ColTimeZone] = e.TimeZone
	r[ColExchange] = e.Exchange
	return r
}

type Trade struct {
	Time     table.Cell
	Exchange table.Cell
	Symbol   table.Cell
	ExecID   table.Cell
	Quantity table.Cell
	Price    table.Cell
	Side     table.Cell
}

func (Trade) Kind() Kind { return KindTrade }

func (e Trade) Row() Row {
	var r Row
	r[ColEvent] = table.Text(string(KindTrade))
	r[ColTime] = e.Time
	r[ColExchange] = e.Exchange
	r[ColSymbol] = e.Symbol
	r[ColExecID] = e.ExecID
	r[ColTradeQuantity] = e.Quantity
	r[ColTradePrice] = e.Price
	r[ColTradeSide] = e.Side
	return r
}

// Break cancels a previously reported trade identified by ExecID.
type Break struct {
	Time     table.Cell
	Exchange table.Cell
	Symbol   table.Cell
	ExecID   table.Cell
}

func (Break) Kind() Kind { return KindBreak }

func (e Break) Row() Row {
	var r Row
	r[ColEvent] = table.Text(string(KindBreak))
	r[ColTime] = e.Time
	r[ColExchange] = e.Exchange
	r[ColSymbol] = e.Symbol
	r[ColExecID] = e.ExecID
	return r
}

// Decode classifies rec by its Event value and extracts the fields of that
// kind. It returns ErrUnknownEvent for unrecognized or missing codes and a
// *MalformedRowError when a required column is absent.
func Decode(rec table.Record) (Event, error) {
	code, _ := rec.Get(FieldEvent)
	if !code.Valid() {
		return nil, ErrUnknownEvent
	}

	f := fields{rec: rec, kind: Kind(code.String())}
	var ev Event
	switch f.kind {
	case KindDate:
		ev = Date{
			TimeZone: f.get(FieldTimeZone),
			Exchange: f.get(FieldExchange),
		}
	case KindTrade:
		ev = Trade{
			Time:     f.get(FieldTime),
			Exchange: f.get(FieldExchange),
			Symbol:   f.get(FieldSymbol),
			ExecID:   f.get(FieldExecID),
			Quantity: f.get(FieldQuantity),
			Price:    f.get(FieldPrice),
			Side:     f.get(FieldSide),
		}
	case KindBreak:
		ev = Break{
			Time:     f.get(FieldTime),
			Exchange: f.get(FieldExchange),
			Symbol:   f.get(FieldSymbol),
			ExecID:   f.get(FieldExecID),
		}
	default:
		return nil, ErrUnknownEvent
	}
	if f.missing != "" {
		return nil, &MalformedRowError{Line: rec.Line(), Kind: f.kind, Field: f.missing}
	}
	return ev, nil
}

// fields reads cells of one record and remembers the first absent column.
type fields struct {
	rec     table.Record
	kind    Kind
	missing string
}

func (f *fields) get(name string) table.Cell {
	c, ok := f.rec.Get(name)
	if !ok && f.missing == "" {
		f.missing = name
	}
	return c
}
