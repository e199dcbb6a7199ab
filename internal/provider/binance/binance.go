// Package binance is the crypto batch adapter: a 24h ticker call followed by
// a daily klines call, with no retries.
package binance

import (
    "context"
    "fmt"
    "net/http"
    "time"

    gobinance "github.com/adshao/go-binance/v2"
    "github.com/pkg/errors"
    "github.com/shopspring/decimal"
    "go.uber.org/zap"

    "marketdash/internal/logging"
    "marketdash/internal/provider"
)

const (
    HistoryInterval = "1d"
    HistoryLen      = 7
)

type Config struct {
    Name string
    // BaseURL overrides the public REST endpoint; empty keeps the library default.
    BaseURL string
}

type Provider struct {
    cfg    Config
    client *gobinance.Client
    log    *zap.Logger
    now    func() time.Time
}

// New builds an unauthenticated client; both endpoints used here are public.
func New(cfg Config, hc *http.Client, log *zap.Logger) *Provider {
    if cfg.Name == "" { cfg.Name = provider.SourceBinance }
    client := gobinance.NewClient("", "")
    if cfg.BaseURL != "" {
        client.BaseURL = cfg.BaseURL
    }
    if hc != nil {
        client.HTTPClient = hc
    }
    return &Provider{cfg: cfg, client: client, log: logging.OrNop(log), now: time.Now}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Fetch reports the exchange's own 24h change; it is not recomputed from the
// klines.
func (p *Provider) Fetch(ctx context.Context, symbol, name string) provider.Result {
    price, change, err := p.ticker(ctx, symbol)
    var history []float64
    if err == nil {
        history, err = p.closes(ctx, symbol)
    }
    if err != nil {
        msg := fmt.Sprintf("Failed to fetch Binance data: %v", err)
        p.log.Error("binance fetch failed", zap.String("symbol", symbol), zap.Error(err))
        return provider.NewFailure(symbol, name, provider.SourceBinance, msg)
    }

    p.log.Info("fetched",
        zap.String("name", name),
        zap.String("symbol", symbol),
        zap.Float64("price", price),
        zap.Float64("change_pct", change))
    return provider.Result{
        Symbol:           symbol,
        Name:             name,
        Price:            &price,
        ChangePercent24h: &change,
        History:          history,
        Source:           provider.SourceBinance,
        LastUpdated:      p.now().Format(time.RFC3339),
    }
}

func (p *Provider) ticker(ctx context.Context, symbol string) (price, change float64, err error) {
    stats, err := p.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
    if err != nil {
        return 0, 0, errors.Wrapf(err, "24hr ticker for %s", symbol)
    }
    if len(stats) == 0 {
        return 0, 0, errors.Errorf("24hr ticker for %s: empty response", symbol)
    }
    last, err := decimal.NewFromString(stats[0].LastPrice)
    if err != nil {
        return 0, 0, errors.Wrap(err, "failed to parse lastPrice")
    }
    pct, err := decimal.NewFromString(stats[0].PriceChangePercent)
    if err != nil {
        return 0, 0, errors.Wrap(err, "failed to parse priceChangePercent")
    }
    return last.InexactFloat64(), pct.InexactFloat64(), nil
}

func (p *Provider) closes(ctx context.Context, symbol string) ([]float64, error) {
    klines, err := p.client.NewKlinesService().
        Symbol(symbol).
        Interval(HistoryInterval).
        Limit(HistoryLen).
        Do(ctx)
    if err != nil {
        return nil, errors.Wrapf(err, "klines for %s", symbol)
    }
    out := make([]float64, 0, len(klines))
    for i, k := range klines {
        c, err := decimal.NewFromString(k.Close)
        if err != nil {
            return nil, errors.Wrapf(err, "failed to parse close price at index %d", i)
        }
        out = append(out, c.InexactFloat64())
    }
    return out, nil
}
