package config

import (
	"os"
	"time"

	configs "github.com/updown-labs/updown-services/configs"

	"github.com/updown-labs/updown-services/internal/feedsvc/fetcher"
)

type Config struct {
	Fetcher fetcher.Config

	BinanceSymbol  string // e.g. BTCUSDT
	CoinbasePair   string // e.g. BTC-USD
	CoinGeckoID    string // e.g. bitcoin
	CoinGeckoVs    string // e.g. usd
	AuditRetention time.Duration
	MongoURI       string // empty disables the provenance trail
}

func Load() Config {
	f := fetcher.DefaultConfig()
	f.Interval = configs.EnvDuration("FETCH_INTERVAL", f.Interval)
	f.SubInterval = configs.EnvDuration("FETCH_SUB_INTERVAL", f.SubInterval)
	f.Iterations = configs.EnvInt("FETCH_ITERATIONS", f.Iterations)
	f.SourceTimeout = configs.EnvDuration("SOURCE_TIMEOUT", f.SourceTimeout)
	f.PriceDecimals = int32(configs.EnvInt("PRICE_DECIMALS", int(f.PriceDecimals)))

	return Config{
		Fetcher:        f,
		BinanceSymbol:  envOr("BINANCE_SYMBOL", "BTCUSDT"),
		CoinbasePair:   envOr("COINBASE_PAIR", "BTC-USD"),
		CoinGeckoID:    envOr("COINGECKO_ID", "bitcoin"),
		CoinGeckoVs:    envOr("COINGECKO_VS", "usd"),
		AuditRetention: configs.EnvDuration("AUDIT_RETENTION", 7*24*time.Hour),
		MongoURI:       os.Getenv("MONGODB_URI"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
