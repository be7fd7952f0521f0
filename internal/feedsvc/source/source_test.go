package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testClient() *http.Client {
	return &http.Client{Timeout: time.Second}
}

func TestBinanceFetchPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		require.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"94230.01"}`))
	}))
	defer srv.Close()

	s := NewBinance(srv.URL, "BTCUSDT", testClient())
	price, err := s.FetchPrice(context.Background())
	require.NoError(t, err)
	require.True(t, price.Equal(decimal.RequireFromString("94230.01")))
}

func TestBinanceMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	s := NewBinance(srv.URL, "BTCUSDT", testClient())
	_, err := s.FetchPrice(context.Background())
	require.Error(t, err)
}

func TestBinanceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewBinance(srv.URL, "BTCUSDT", testClient())
	_, err := s.FetchPrice(context.Background())
	require.Error(t, err)
}

func TestCoinbaseFetchPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/prices/BTC-USD/spot", r.URL.Path)
		w.Write([]byte(`{"data":{"base":"BTC","currency":"USD","amount":"94230.02"}}`))
	}))
	defer srv.Close()

	s := NewCoinbase(srv.URL, "BTC-USD", testClient())
	price, err := s.FetchPrice(context.Background())
	require.NoError(t, err)
	require.True(t, price.Equal(decimal.RequireFromString("94230.02")))
}

func TestCoinGeckoFetchPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/simple/price", r.URL.Path)
		require.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		w.Write([]byte(`{"bitcoin":{"usd":94230.03}}`))
	}))
	defer srv.Close()

	s := NewCoinGecko(srv.URL, "bitcoin", "usd", testClient())
	price, err := s.FetchPrice(context.Background())
	require.NoError(t, err)
	require.True(t, price.Equal(decimal.RequireFromString("94230.03")))
}

func TestCoinGeckoMissingCoin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := NewCoinGecko(srv.URL, "bitcoin", "usd", testClient())
	_, err := s.FetchPrice(context.Background())
	require.Error(t, err)
}

func TestSourceRespectsContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"1"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := NewBinance(srv.URL, "BTCUSDT", testClient())
	_, err := s.FetchPrice(ctx)
	require.Error(t, err)
}
