package cache

import (
    "context"
    "sync"
    "time"

    "marketdash/internal/provider"
)

// entry stores a cached quote for a single symbol with expiry.
type entry struct {
    expiresAt time.Time
    quote     provider.Quote
}

// Source caches successful quotes per symbol for a TTL. Misses and failures
// always go to the underlying source; failures are never cached.
type Source struct {
    S        provider.QuoteSource
    TTL      time.Duration
    MaxItems int

    // now is swapped in tests.
    now func() time.Time

    mu    sync.RWMutex
    items map[string]entry // key: symbol
}

func (c *Source) clock() time.Time {
    if c.now != nil {
        return c.now()
    }
    return time.Now()
}

// Quote returns a cached quote when still valid, otherwise asks the
// underlying source and stores a successful answer.
func (c *Source) Quote(ctx context.Context, symbol string) (provider.Quote, bool) {
    if c.TTL <= 0 {
        return c.S.Quote(ctx, symbol)
    }

    now := c.clock()
    c.mu.RLock()
    e, ok := c.items[symbol]
    c.mu.RUnlock()
    if ok && now.Before(e.expiresAt) {
        return e.quote, true
    }

    q, ok := c.S.Quote(ctx, symbol)
    if !ok {
        return q, false
    }

    c.mu.Lock()
    if c.items == nil {
        c.items = make(map[string]entry)
    }
    c.items[symbol] = entry{expiresAt: now.Add(c.TTL), quote: q}
    // best-effort cap cache size
    if c.MaxItems > 0 && len(c.items) > c.MaxItems {
        // remove expired first, then arbitrary
        for k, v := range c.items {
            if now.After(v.expiresAt) {
                delete(c.items, k)
            }
        }
        for k := range c.items {
            if len(c.items) <= c.MaxItems { break }
            if k == symbol { continue }
            delete(c.items, k)
        }
    }
    c.mu.Unlock()
    return q, true
}
