package yahoochart_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"marketdash/internal/provider/yahoochart"
)

const mockChartBody = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "^GSPC", "regularMarketPrice": 100, "chartPreviousClose": 95},
      "indicators": {"quote": [{"close": [94.5, null, 96, 97, 98, 99.12345]}]}
    }],
    "error": null
  }
}`

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestGetChart(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Equal(t, "/v8/finance/chart/%5EGSPC", req.URL.EscapedPath())
			require.Equal(t, "5d", req.URL.Query().Get("range"))
			require.Equal(t, "1d", req.URL.Query().Get("interval"))
			require.Equal(t, "false", req.URL.Query().Get("includePrePost"))
			require.Contains(t, req.Header.Get("User-Agent"), "Mozilla/5.0")
			_, hasDeadline := req.Context().Deadline()
			require.True(t, hasDeadline)
			return jsonResponse(http.StatusOK, mockChartBody), nil
		}).
		Times(1)

	// Arrange: setup a new client
	client := yahoochart.NewChartAPIClient(yahoochart.WithHTTPClient(httpClient), yahoochart.WithBaseURL("http://yahoo.test"))

	// Act: call GetChart
	chart, err := client.GetChart(t.Context(), "^GSPC")
	require.NoError(t, err)

	// Assert: meta and closes are decoded, nulls preserved
	require.Equal(t, "^GSPC", chart.Symbol)
	require.InEpsilon(t, 100, *chart.RegularMarketPrice, 0.0001)
	require.InEpsilon(t, 95, *chart.ChartPreviousClose, 0.0001)
	require.Len(t, chart.Closes, 6)
	require.Nil(t, chart.Closes[1])
}

func TestQuote_ChangeAndRealSparkline(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, mockChartBody), nil).
		Times(1)

	client := yahoochart.NewChartAPIClient(yahoochart.WithHTTPClient(httpClient))

	q, ok := client.Quote(t.Context(), "^GSPC")
	require.True(t, ok)
	require.Equal(t, 100.0, q.Price)
	require.Equal(t, 95.0, q.PrevClose)
	require.Equal(t, 5.2632, q.ChangePct)
	require.Equal(t, []float64{94.5, 96, 97, 98, 99.1235}, q.Sparkline)
}

func TestQuote_SynthesizedSparkline(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, `{"chart":{"result":[{"meta":{"regularMarketPrice":100},"indicators":{"quote":[{"close":[null,98]}]}}],"error":null}}`), nil).
		Times(1)

	client := yahoochart.NewChartAPIClient(yahoochart.WithHTTPClient(httpClient))

	q, ok := client.Quote(t.Context(), "GC=F")
	require.True(t, ok)
	require.Equal(t, 0.0, q.PrevClose)
	require.Equal(t, 0.0, q.ChangePct)
	require.Equal(t, []float64{99.8, 99.85, 99.9, 99.95, 100.0}, q.Sparkline)
}

func TestQuote_Failures(t *testing.T) {
	t.Parallel()

	cases := map[string]func() (*http.Response, error){
		"transport":   func() (*http.Response, error) { return nil, errors.New("dial tcp: timeout") },
		"not found":   func() (*http.Response, error) { return jsonResponse(http.StatusNotFound, `{}`), nil },
		"server":      func() (*http.Response, error) { return jsonResponse(http.StatusBadGateway, `oops`), nil },
		"chart error": func() (*http.Response, error) { return jsonResponse(http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`), nil },
		"empty":       func() (*http.Response, error) { return jsonResponse(http.StatusOK, `{"chart":{"result":[],"error":null}}`), nil },
		"bad json":    func() (*http.Response, error) { return jsonResponse(http.StatusOK, `{"chart":`), nil },
	}
	for name, respond := range cases {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Do(gomock.Any()).
				DoAndReturn(func(*http.Request) (*http.Response, error) { return respond() }).
				Times(1)

			client := yahoochart.NewChartAPIClient(yahoochart.WithHTTPClient(httpClient))
			_, ok := client.Quote(t.Context(), "NOPE")
			require.False(t, ok)
		})
	}
}

func TestWithHeader(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "bar", req.Header.Get("foo"))
			require.Equal(t, "custom-agent", req.Header.Get("User-Agent"))
			return jsonResponse(http.StatusOK, mockChartBody), nil
		}).
		Times(1)

	client := yahoochart.NewChartAPIClient(
		yahoochart.WithHTTPClient(httpClient),
		yahoochart.WithHeader(http.Header{"foo": []string{"bar"}, "User-Agent": []string{"custom-agent"}}),
		yahoochart.WithTimeout(time.Second),
	)
	_, err := client.GetChart(t.Context(), "AAPL")
	require.NoError(t, err)
}
