package binance

import (
    "fmt"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/stretchr/testify/require"
)

const tickerBody = `{"symbol":"BTCUSDT","priceChange":"1500.00","priceChangePercent":"2.345","lastPrice":"65432.10","prevClosePrice":"63932.10","openTime":1700000000000,"closeTime":1700086400000,"count":10}`

func kline(close string) string {
    return fmt.Sprintf(`[1700000000000,"1.0","2.0","0.5","%s","10.0",1700086399999,"100.0",42,"5.0","50.0","0"]`, close)
}

func newServer(t *testing.T, ticker http.HandlerFunc, klines http.HandlerFunc) *httptest.Server {
    t.Helper()
    mux := http.NewServeMux()
    mux.HandleFunc("/api/v3/ticker/24hr", ticker)
    mux.HandleFunc("/api/v3/klines", klines)
    srv := httptest.NewServer(mux)
    t.Cleanup(srv.Close)
    return srv
}

func newTestProvider(srv *httptest.Server) *Provider {
    p := New(Config{BaseURL: srv.URL}, srv.Client(), nil)
    p.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
    return p
}

func TestFetch_TickerAndKlines(t *testing.T) {
    srv := newServer(t,
        func(w http.ResponseWriter, r *http.Request) {
            require.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
            _, _ = w.Write([]byte(tickerBody))
        },
        func(w http.ResponseWriter, r *http.Request) {
            require.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
            require.Equal(t, "1d", r.URL.Query().Get("interval"))
            require.Equal(t, "7", r.URL.Query().Get("limit"))
            rows := []string{kline("60000.5"), kline("61000"), kline("65432.1")}
            _, _ = w.Write([]byte("[" + strings.Join(rows, ",") + "]"))
        })

    res := newTestProvider(srv).Fetch(t.Context(), "BTCUSDT", "Bitcoin")
    require.False(t, res.Failed())
    require.Equal(t, "binance", res.Source)
    require.Equal(t, 65432.1, *res.Price)
    require.Equal(t, 2.345, *res.ChangePercent24h)
    require.Equal(t, []float64{60000.5, 61000, 65432.1}, res.History)
    require.Equal(t, "2025-03-10T12:00:00Z", res.LastUpdated)
}

func TestFetch_TickerErrorSkipsKlines(t *testing.T) {
    klinesCalled := false
    srv := newServer(t,
        func(w http.ResponseWriter, r *http.Request) {
            w.WriteHeader(http.StatusBadRequest)
            _, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
        },
        func(w http.ResponseWriter, r *http.Request) {
            klinesCalled = true
            _, _ = w.Write([]byte(`[]`))
        })

    res := newTestProvider(srv).Fetch(t.Context(), "NOPEUSDT", "Nope")
    require.True(t, res.Failed())
    require.True(t, strings.HasPrefix(*res.Error, "Failed to fetch Binance data: "), *res.Error)
    require.Contains(t, *res.Error, "Invalid symbol")
    require.Nil(t, res.Price)
    require.Empty(t, res.History)
    require.False(t, klinesCalled)
}

func TestFetch_KlinesErrorFailsAsset(t *testing.T) {
    srv := newServer(t,
        func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(tickerBody)) },
        func(w http.ResponseWriter, r *http.Request) {
            w.WriteHeader(http.StatusInternalServerError)
            _, _ = w.Write([]byte(`{"code":-1000,"msg":"internal"}`))
        })

    res := newTestProvider(srv).Fetch(t.Context(), "BTCUSDT", "Bitcoin")
    require.True(t, res.Failed())
    require.Nil(t, res.Price)
    require.Nil(t, res.ChangePercent24h)
}

func TestFetch_BadPriceString(t *testing.T) {
    srv := newServer(t,
        func(w http.ResponseWriter, r *http.Request) {
            _, _ = w.Write([]byte(`{"symbol":"BTCUSDT","priceChangePercent":"1.0","lastPrice":"n/a"}`))
        },
        func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`[]`)) })

    res := newTestProvider(srv).Fetch(t.Context(), "BTCUSDT", "Bitcoin")
    require.True(t, res.Failed())
    require.Contains(t, *res.Error, "lastPrice")
}
