package provider

import (
    "encoding/json"
    "testing"

    "github.com/stretchr/testify/require"
)

func TestNewFailure_NullPriceFields(t *testing.T) {
    r := NewFailure("BTCUSDT", "Bitcoin", SourceBinance, "boom")
    require.True(t, r.Failed())

    b, err := json.Marshal(r)
    require.NoError(t, err)
    var m map[string]any
    require.NoError(t, json.Unmarshal(b, &m))
    require.Nil(t, m["price"])
    require.Nil(t, m["change_percent_24h"])
    require.Equal(t, []any{}, m["history"])
    require.Equal(t, "boom", m["error"])
    require.NotContains(t, m, "last_updated")
}

func TestResult_FailedOnEmptyError(t *testing.T) {
    empty := ""
    require.False(t, Result{}.Failed())
    require.False(t, Result{Error: &empty}.Failed())
}
