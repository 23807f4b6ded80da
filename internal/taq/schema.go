package taq

import "taq/internal/table"

// Column indexes a TAQ output column.
type Column int

const (
	ColEvent Column = iota
	ColDate
	ColTime
	ColTimeZone
	ColExchange
	ColSymbol
	ColExecID
	ColTradeQuantity
	ColTradePrice
	ColTradeSide
	ColBidQuantity1
	ColBidPrice1
	ColAskQuantity1
	ColAskPrice1
	numColumns
)

var columnNames = [numColumns]string{
	ColEvent:         "Event",
	ColDate:          "Date",
	ColTime:          "Time",
	ColTimeZone:      "TimeZone",
	ColExchange:      "Exchange",
	ColSymbol:        "Symbol",
	ColExecID:        "ExecID",
	ColTradeQuantity: "TradeQuantity",
	ColTradePrice:    "TradePrice",
	ColTradeSide:     "TradeSide",
	ColBidQuantity1:  "BidQuantity1",
	ColBidPrice1:     "BidPrice1",
	ColAskQuantity1:  "AskQuantity1",
	ColAskPrice1:     "AskPrice1",
}

func (c Column) String() string { return columnNames[c] }

// Columns returns the TAQ schema in output order.
func Columns() []string { return append([]string(nil), columnNames[:]...) }

// Empty returns a header-only TAQ table.
func Empty() *table.Table { return table.New(columnNames[:]...) }

// Row is one TAQ event. The zero Row has every column Null.
type Row [numColumns]table.Cell

// Get returns the cell for column c.
func (r Row) Get(c Column) table.Cell { return r[c] }

func (r Row) cells() []table.Cell { return append([]table.Cell(nil), r[:]...) }
