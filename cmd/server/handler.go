package main

import (
    "compress/gzip"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strings"
    "sync"

    "go.uber.org/zap"

    "marketdash/internal/provider"
    "marketdash/internal/quotes"
)

// missingSymbolsMsg is the literal body text clients match on.
const missingSymbolsMsg = "Missing symbols parameter"

type quoteFetcher interface {
    Fetch(ctx context.Context, symbols []string) (map[string]provider.Quote, error)
}

type errorResponse struct {
    Error string `json:"error"`
}

func newHandler(svc quoteFetcher, log *zap.Logger) http.Handler {
    mux := http.NewServeMux()
    mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "text/plain; charset=utf-8")
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte("ok"))
    })
    mux.HandleFunc("/api/quotes", func(w http.ResponseWriter, r *http.Request) {
        switch r.Method {
        case http.MethodOptions:
            w.WriteHeader(http.StatusOK)
        case http.MethodGet:
            handleGetQuotes(w, r, svc, log)
        default:
            writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
        }
    })
    return withCORS(withGzip(recoverPanic(mux, log)))
}

func handleGetQuotes(w http.ResponseWriter, r *http.Request, svc quoteFetcher, log *zap.Logger) {
    symbols, err := quotes.ParseSymbols(r.URL.Query().Get("symbols"))
    if errors.Is(err, quotes.ErrNoSymbols) {
        writeJSON(w, http.StatusBadRequest, errorResponse{Error: missingSymbolsMsg})
        return
    }
    out, err := svc.Fetch(r.Context(), symbols)
    if err != nil {
        log.Error("quote fan-out failed", zap.Strings("symbols", symbols), zap.Error(err))
        writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
        return
    }
    writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json; charset=utf-8")
    w.WriteHeader(status)
    enc := json.NewEncoder(w)
    enc.SetEscapeHTML(false)
    _ = enc.Encode(v)
}

// withCORS sets the headers every response carries, errors included.
func withCORS(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        h := w.Header()
        h.Set("Access-Control-Allow-Origin", "*")
        h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
        h.Set("Access-Control-Allow-Headers", "Content-Type")
        h.Set("Cache-Control", "s-maxage=15")
        next.ServeHTTP(w, r)
    })
}

// withGzip compresses response when client supports gzip.
func withGzip(next http.Handler) http.Handler {
    var gzPool = sync.Pool{New: func() any {
        // Prefer best speed to reduce CPU usage since payloads are JSON
        w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
        return w
    }}
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method == http.MethodOptions || !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
            next.ServeHTTP(w, r)
            return
        }
        gz := gzPool.Get().(*gzip.Writer)
        gz.Reset(w)
        defer func() {
            _ = gz.Close()
            gz.Reset(io.Discard)
            gzPool.Put(gz)
        }()
        w.Header().Set("Content-Encoding", "gzip")
        w.Header().Add("Vary", "Accept-Encoding")
        next.ServeHTTP(gzipResponseWriter{ResponseWriter: w, Writer: gz}, r)
    })
}

type gzipResponseWriter struct {
    http.ResponseWriter
    Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
    return g.Writer.Write(b)
}

// recoverPanic turns a handler panic into a JSON 500.
func recoverPanic(next http.Handler, log *zap.Logger) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        defer func() {
            if rec := recover(); rec != nil {
                log.Error("handler panic", zap.String("path", r.URL.Path), zap.Any("panic", rec))
                writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fmt.Sprint(rec)})
            }
        }()
        next.ServeHTTP(w, r)
    })
}
