// Package quotes fans a symbol list out to a quote source on a bounded
// worker pool and collects whatever arrives before a shared deadline.
package quotes

import (
    "context"
    "errors"
    "strings"
    "time"

    "go.uber.org/zap"
    "golang.org/x/sync/semaphore"

    "marketdash/internal/logging"
    "marketdash/internal/provider"
)

const (
    DefaultMaxWorkers     = 6
    DefaultFetchTimeout   = 8 * time.Second
    DefaultCollectTimeout = 9 * time.Second
)

// ErrNoSymbols is returned when a request carries no usable symbol.
var ErrNoSymbols = errors.New("missing symbols parameter")

// ParseSymbols splits a comma separated list, trimming blanks. Duplicates are
// kept. Only a blank value is an error; a value of bare separators yields an
// empty list.
func ParseSymbols(raw string) ([]string, error) {
    if strings.TrimSpace(raw) == "" {
        return nil, ErrNoSymbols
    }
    parts := strings.Split(raw, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p != "" { out = append(out, p) }
    }
    return out, nil
}

type Config struct {
    MaxWorkers     int
    FetchTimeout   time.Duration
    CollectTimeout time.Duration
}

// Service resolves many symbols concurrently against one QuoteSource.
type Service struct {
    cfg Config
    src provider.QuoteSource
    log *zap.Logger
}

func New(cfg Config, src provider.QuoteSource, log *zap.Logger) *Service {
    if cfg.MaxWorkers <= 0 { cfg.MaxWorkers = DefaultMaxWorkers }
    if cfg.FetchTimeout <= 0 { cfg.FetchTimeout = DefaultFetchTimeout }
    if cfg.CollectTimeout <= 0 { cfg.CollectTimeout = DefaultCollectTimeout }
    return &Service{cfg: cfg, src: src, log: logging.OrNop(log)}
}

type result struct {
    symbol string
    quote  provider.Quote
    ok     bool
}

// Fetch returns quotes for the symbols that answered before the collection
// deadline. Failed or late symbols are left out. Workers still running at the
// deadline are abandoned; their contexts are cancelled and their results
// dropped.
func (s *Service) Fetch(ctx context.Context, symbols []string) (map[string]provider.Quote, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    out := make(map[string]provider.Quote, len(symbols))
    if len(symbols) == 0 {
        return out, nil
    }

    ctx, cancel := context.WithTimeout(ctx, s.cfg.CollectTimeout)
    defer cancel()

    sem := semaphore.NewWeighted(int64(s.cfg.MaxWorkers))
    // buffered so late workers never block after the caller has gone
    ch := make(chan result, len(symbols))
    for _, sym := range symbols {
        go func() {
            if err := sem.Acquire(ctx, 1); err != nil {
                ch <- result{symbol: sym}
                return
            }
            defer sem.Release(1)
            fctx, fcancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
            defer fcancel()
            q, ok := s.src.Quote(fctx, sym)
            ch <- result{symbol: sym, quote: q, ok: ok}
        }()
    }

    received := 0
collect:
    for received < len(symbols) {
        select {
        case r := <-ch:
            received++
            if r.ok {
                out[r.symbol] = r.quote
            }
        case <-ctx.Done():
            break collect
        }
    }
    if received < len(symbols) {
        s.log.Warn("collection deadline reached",
            zap.Int("requested", len(symbols)),
            zap.Int("received", received),
            zap.Duration("timeout", s.cfg.CollectTimeout))
    }
    s.log.Debug("quotes collected", zap.Int("requested", len(symbols)), zap.Int("returned", len(out)))
    return out, nil
}
