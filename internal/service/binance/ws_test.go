package binance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const closedKline = `{
  "e": "kline", "E": 1672515782136, "s": "BTCUSDT",
  "k": {
    "t": 1672515720000, "T": 1672515779999, "s": "BTCUSDT", "i": "1m",
    "o": "16540.10", "c": "16545.50", "h": "16546.00", "l": "16539.90",
    "v": "12.5", "x": true
  }
}`

const openKline = `{
  "e": "kline", "s": "BTCUSDT",
  "k": {
    "t": 1672515780000, "s": "BTCUSDT", "i": "1m",
    "o": "16545.50", "c": "16546.10", "h": "16546.20", "l": "16545.00",
    "v": "1.2", "x": false
  }
}`

func TestParseKlineMessageClosed(t *testing.T) {
	bar, err := parseKlineMessage([]byte(closedKline))
	require.NoError(t, err)
	require.NotNil(t, bar)

	assert.Equal(t, "BTCUSDT", bar.Symbol)
	assert.Equal(t, "1m", bar.Interval)
	assert.Equal(t, int64(1672515720), bar.Ts)
	assert.Equal(t, 16540.10, bar.Open)
	assert.Equal(t, 16546.00, bar.High)
	assert.Equal(t, 16539.90, bar.Low)
	assert.Equal(t, 16545.50, bar.Close)
	assert.Equal(t, 12.5, bar.Volume)
	assert.NoError(t, bar.Validate())
}

func TestParseKlineMessageOpenIsSkipped(t *testing.T) {
	bar, err := parseKlineMessage([]byte(openKline))
	require.NoError(t, err)
	assert.Nil(t, bar, "open klines must not be emitted")
}

func TestParseKlineMessageCombinedStream(t *testing.T) {
	wrapped := `{"stream":"btcusdt@kline_1m","data":` + closedKline + `}`
	bar, err := parseKlineMessage([]byte(wrapped))
	require.NoError(t, err)
	require.NotNil(t, bar)
	assert.Equal(t, "BTCUSDT", bar.Symbol)
}

func TestParseKlineMessageNonKlineFrame(t *testing.T) {
	bar, err := parseKlineMessage([]byte(`{"e":"aggTrade","s":"BTCUSDT"}`))
	require.NoError(t, err)
	assert.Nil(t, bar)
}

func TestParseKlineMessageMalformed(t *testing.T) {
	_, err := parseKlineMessage([]byte(`{not json`))
	assert.Error(t, err)

	_, err = parseKlineMessage([]byte(`{"e":"kline","k":{"t":1,"s":"X","o":"abc","h":"1","l":"1","c":"1","v":"1","x":true}}`))
	assert.Error(t, err, "non-numeric price must be rejected")
}

func TestParseRESTKline(t *testing.T) {
	row := []interface{}{
		1672515720000.0, "16540.10", "16546.00", "16539.90", "16545.50", "12.5",
		1672515779999.0, "206.8", 150.0, "6.2", "102.5", "0",
	}
	bar, err := parseRESTKline("btcusdt", row)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", bar.Symbol)
	assert.Equal(t, int64(1672515720), bar.Ts)
	assert.Equal(t, 16540.10, bar.Open)
	assert.Equal(t, 12.5, bar.Volume)
	assert.NoError(t, bar.Validate())
}

func TestParseRESTKlineShortRow(t *testing.T) {
	_, err := parseRESTKline("btcusdt", []interface{}{1.0, "2"})
	assert.Error(t, err)
}
