package yahoo

import (
    "context"
    "net/http"
    "time"

    finance "github.com/piquette/finance-go"
    "github.com/piquette/finance-go/chart"
    "github.com/piquette/finance-go/datetime"
)

// FinanceChart reads daily bars through finance-go's chart endpoint.
type FinanceChart struct{}

// NewFinanceChart installs hc as finance-go's transport. finance-go keeps a
// package-level client, so this affects every caller in the process.
func NewFinanceChart(hc *http.Client) FinanceChart {
    if hc != nil {
        finance.SetHTTPClient(hc)
    }
    return FinanceChart{}
}

// DailyCloses skips bars without a close; Yahoo reports those as null and
// finance-go surfaces them as zero.
func (FinanceChart) DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]float64, error) {
    params := &chart.Params{
        Symbol:   symbol,
        Start:    datetime.New(&start),
        End:      datetime.New(&end),
        Interval: datetime.OneDay,
    }
    params.Context = &ctx

    iter := chart.Get(params)
    var closes []float64
    for iter.Next() {
        c := iter.Bar().Close
        if c.IsZero() {
            continue
        }
        closes = append(closes, c.InexactFloat64())
    }
    if err := iter.Err(); err != nil {
        return nil, err
    }
    return closes, nil
}
