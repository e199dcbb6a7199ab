// Package yahoo is the primary batch adapter. It reads daily bars from
// Yahoo Finance and walks an ordered list of candidate symbols per asset.
package yahoo

import (
    "context"
    "fmt"
    "time"

    "github.com/pkg/errors"
    "go.uber.org/zap"

    "marketdash/internal/logging"
    "marketdash/internal/provider"
)

const (
    DefaultMaxRetries = 3
    DefaultRetryDelay = time.Second
    // HistoryWindow is in calendar days; two weeks always spans at least
    // HistorySessions weekday sessions, holidays included.
    HistoryWindow   = 14 * 24 * time.Hour
    HistorySessions = 8
    HistoryLen      = 7
)

// DefaultAlternates lists symbols whose canonical ticker is unreliable on
// Yahoo, mapped to the full ordered candidate list.
var DefaultAlternates = map[string][]string{
    "^SPGSNI": {"^SPGSNI", "NI=F"},
}

// ChartSource returns daily closes, oldest first, between start and end.
//
//go:generate mockgen -package=yahoo -destination=mock_chart_source_test.go -source=yahoo.go ChartSource
type ChartSource interface {
    DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]float64, error)
}

type Config struct {
    Name       string
    MaxRetries int
    RetryDelay time.Duration
    // Candidates maps a configured symbol to the ordered symbols to try.
    Candidates map[string][]string
}

type Provider struct {
    cfg   Config
    chart ChartSource
    log   *zap.Logger
    now   func() time.Time
    sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg Config, chart ChartSource, log *zap.Logger) *Provider {
    if cfg.Name == "" { cfg.Name = provider.SourceYahoo }
    if cfg.MaxRetries <= 0 { cfg.MaxRetries = DefaultMaxRetries }
    if cfg.RetryDelay <= 0 { cfg.RetryDelay = DefaultRetryDelay }
    cands := make(map[string][]string, len(DefaultAlternates)+len(cfg.Candidates))
    for k, v := range DefaultAlternates { cands[k] = v }
    for k, v := range cfg.Candidates {
        if len(v) > 0 { cands[k] = v }
    }
    cfg.Candidates = cands
    return &Provider{cfg: cfg, chart: chart, log: logging.OrNop(log), now: time.Now, sleep: sleepCtx}
}

func (p *Provider) Name() string { return p.cfg.Name }

// candidates returns the ordered symbols to try for symbol.
func (p *Provider) candidates(symbol string) []string {
    if c, ok := p.cfg.Candidates[symbol]; ok {
        return c
    }
    return []string{symbol}
}

// Fetch tries every candidate in order, up to MaxRetries rounds, pausing
// RetryDelay between rounds. The first candidate with history wins.
func (p *Provider) Fetch(ctx context.Context, symbol, name string) provider.Result {
    cands := p.candidates(symbol)
    for round := 0; round < p.cfg.MaxRetries; round++ {
        for _, cand := range cands {
            closes, err := p.history(ctx, cand)
            if err != nil {
                p.log.Warn("yahoo attempt failed",
                    zap.Int("attempt", round+1),
                    zap.String("symbol", cand),
                    zap.Error(err))
                continue
            }
            if len(closes) == 0 {
                p.log.Warn("no historical data", zap.String("symbol", cand))
                continue
            }
            res := p.result(cand, name, closes)
            p.log.Info("fetched",
                zap.String("name", name),
                zap.String("symbol", cand),
                zap.Float64("price", *res.Price),
                zap.Float64("change_pct", *res.ChangePercent24h))
            return res
        }
        if round < p.cfg.MaxRetries-1 {
            if err := p.sleep(ctx, p.cfg.RetryDelay); err != nil {
                break
            }
        }
    }
    msg := fmt.Sprintf("Failed to fetch data for %s after %d retries", name, p.cfg.MaxRetries)
    p.log.Error("yahoo fetch exhausted", zap.String("symbol", symbol), zap.String("error", msg))
    return provider.NewFailure(symbol, name, provider.SourceYahoo, msg)
}

// history returns at most the last HistorySessions closes.
func (p *Provider) history(ctx context.Context, symbol string) ([]float64, error) {
    end := p.now()
    closes, err := p.chart.DailyCloses(ctx, symbol, end.Add(-HistoryWindow), end)
    if err != nil {
        return nil, errors.Wrapf(err, "daily history for %s", symbol)
    }
    if len(closes) > HistorySessions {
        closes = closes[len(closes)-HistorySessions:]
    }
    return closes, nil
}

func (p *Provider) result(symbol, name string, closes []float64) provider.Result {
    price := closes[len(closes)-1]
    change := 0.0
    if len(closes) >= 2 {
        if prev := closes[len(closes)-2]; prev != 0 {
            change = (price - prev) / prev * 100
        }
    }
    hist := closes
    if len(hist) > HistoryLen {
        hist = hist[len(hist)-HistoryLen:]
    }
    return provider.Result{
        Symbol:           symbol,
        Name:             name,
        Price:            &price,
        ChangePercent24h: &change,
        History:          append([]float64(nil), hist...),
        Source:           provider.SourceYahoo,
        LastUpdated:      p.now().Format(time.RFC3339),
    }
}

func sleepCtx(ctx context.Context, d time.Duration) error {
    if d <= 0 {
        return ctx.Err()
    }
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return ctx.Err()
    case <-t.C:
        return nil
    }
}
