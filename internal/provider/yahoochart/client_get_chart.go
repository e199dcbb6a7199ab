package yahoochart

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketdash/internal/provider"
)

// SparklineLen is the number of points returned in a quote sparkline.
const SparklineLen = 5

// Chart is the subset of a chart response the quote endpoint needs.
type Chart struct {
	Symbol             string
	RegularMarketPrice *float64
	ChartPreviousClose *float64
	// Closes holds daily closes oldest first; nil entries are missing bars.
	Closes []*float64
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string   `json:"symbol"`
		RegularMarketPrice *float64 `json:"regularMarketPrice"`
		ChartPreviousClose *float64 `json:"chartPreviousClose"`
	} `json:"meta"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GetChart retrieves five days of daily bars for symbol.
func (c *ChartAPIClient) GetChart(ctx context.Context, symbol string) (*Chart, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := url.Values{}
	query.Set("range", "5d")
	query.Set("interval", "1d")
	query.Set("includePrePost", "false")

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusNotFound:
		return nil, fmt.Errorf("symbol not found: %s", symbol)

	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited")

	default:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("unexpected status code: %d: %s", res.StatusCode, string(b))
	}

	var body chartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding chart response: %w", err)
	}
	if e := body.Chart.Error; e != nil {
		return nil, fmt.Errorf("chart error: %s: %s", e.Code, e.Description)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result for %s", symbol)
	}

	r := body.Chart.Result[0]
	chart := &Chart{
		Symbol:             r.Meta.Symbol,
		RegularMarketPrice: r.Meta.RegularMarketPrice,
		ChartPreviousClose: r.Meta.ChartPreviousClose,
	}
	if len(r.Indicators.Quote) > 0 {
		chart.Closes = r.Indicators.Quote[0].Close
	}
	return chart, nil
}

// Quote fetches symbol and normalizes it. Every failure is logged at debug
// level and reported as ok=false.
func (c *ChartAPIClient) Quote(ctx context.Context, symbol string) (provider.Quote, bool) {
	chart, err := c.GetChart(ctx, symbol)
	if err != nil {
		c.log.Debug("chart fetch failed", zap.String("symbol", symbol), zap.Error(err))
		return provider.Quote{}, false
	}
	return NormalizeChart(chart), true
}

// NormalizeChart converts a chart into a Quote: change against the previous
// close and a five point sparkline.
func NormalizeChart(ch *Chart) provider.Quote {
	var price, prev float64
	if ch.RegularMarketPrice != nil {
		price = *ch.RegularMarketPrice
	}
	if ch.ChartPreviousClose != nil {
		prev = *ch.ChartPreviousClose
	}
	return provider.Quote{
		Price:     price,
		ChangePct: Round4(ChangePercent(price, prev)),
		PrevClose: prev,
		Sparkline: Sparkline(ch.Closes, price),
	}
}

// ChangePercent is (price-prev)/prev*100, or 0 when either side is zero.
func ChangePercent(price, prev float64) float64 {
	if price == 0 || prev == 0 {
		return 0
	}
	return (price - prev) / prev * 100
}

// Sparkline keeps the last five non-null closes. With fewer than five and a
// known price it returns a synthetic ramp from price*0.998 up to price; the
// ramp is a visual placeholder, not market history.
func Sparkline(closes []*float64, price float64) []float64 {
	points := make([]float64, 0, len(closes))
	for _, c := range closes {
		if c != nil {
			points = append(points, *c)
		}
	}
	if len(points) > SparklineLen {
		points = points[len(points)-SparklineLen:]
	}
	if len(points) < SparklineLen && price != 0 {
		base := price * 0.998
		points = points[:0]
		for i := 0; i < SparklineLen; i++ {
			points = append(points, base+(price-base)*(float64(i)/4))
		}
	}
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = Round4(p)
	}
	return out
}

// Round4 rounds half away from zero to four decimal places.
func Round4(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}
