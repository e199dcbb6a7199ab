package provider

import (
    "context"
)

// Source identifiers accepted in the asset catalog.
const (
    SourceYahoo   = "yahoo"
    SourceBinance = "binance"
)

// Quote is the on-demand shape returned for one symbol.
type Quote struct {
    Price     float64   `json:"price"`
    ChangePct float64   `json:"change_pct"`
    PrevClose float64   `json:"prev_close"`
    Sparkline []float64 `json:"sparkline"`
}

// QuoteSource resolves a single symbol. ok is false when the provider had no
// usable data; callers omit the symbol in that case.
type QuoteSource interface {
    Quote(ctx context.Context, symbol string) (Quote, bool)
}

// Result is what a batch adapter produces for one asset. A failed fetch is
// still a Result: Error is set, Price and ChangePercent24h are nil.
type Result struct {
    Symbol           string    `json:"symbol"`
    Name             string    `json:"name"`
    Price            *float64  `json:"price"`
    ChangePercent24h *float64  `json:"change_percent_24h"`
    History          []float64 `json:"history"`
    Error            *string   `json:"error"`
    Source           string    `json:"source"`
    LastUpdated      string    `json:"last_updated,omitempty"`
}

// Failed reports whether the result carries an error.
func (r Result) Failed() bool { return r.Error != nil && *r.Error != "" }

// NewFailure builds an error result with empty price data.
func NewFailure(symbol, name, source, msg string) Result {
    return Result{
        Symbol:  symbol,
        Name:    name,
        History: []float64{},
        Error:   &msg,
        Source:  source,
    }
}

// Fetcher is a batch adapter for one provider.
type Fetcher interface {
    Name() string
    Fetch(ctx context.Context, symbol, name string) Result
}
