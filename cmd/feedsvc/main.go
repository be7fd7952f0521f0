package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"

	config "github.com/updown-labs/updown-services/configs"
	mongodb "github.com/updown-labs/updown-services/internal/db"
	"github.com/updown-labs/updown-services/internal/feedsvc/audit"
	feedcfg "github.com/updown-labs/updown-services/internal/feedsvc/config"
	"github.com/updown-labs/updown-services/internal/feedsvc/fetcher"
	"github.com/updown-labs/updown-services/internal/feedsvc/source"
	"github.com/updown-labs/updown-services/internal/gamesvc/db"
	"github.com/updown-labs/updown-services/internal/gamesvc/store"
	nats "github.com/updown-labs/updown-services/internal/nats"
)

const SERVICE_NAME = "feed"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	cfg := feedcfg.Load()

	// pg connection for the single-slot price store
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	if err := db.InitSchema(context.Background(), dbpool); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	priceStore := store.NewPriceStore(dbpool)

	// Connect to NATS for broadcast fan-out
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// provenance trail is optional; the core never depends on it
	var auditSink fetcher.AuditSink
	if cfg.MongoURI != "" {
		mdb, cancelMongo, err := mongodb.ConnectToDB()
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer cancelMongo()
		mongodb.CreateTTLIndexForCollection(mdb, audit.CollectionName)
		auditSink = audit.NewStore(mdb, cfg.AuditRetention)
		log.Printf("mongo fetch audit enabled, retention %s", cfg.AuditRetention)
	} else {
		log.Warn("MONGODB_URI not set, fetch audit disabled")
	}

	httpClient := &http.Client{Timeout: cfg.Fetcher.SourceTimeout}
	sources := []source.Source{
		source.NewBinance("", cfg.BinanceSymbol, httpClient),
		source.NewCoinbase("", cfg.CoinbasePair, httpClient),
		source.NewCoinGecko("", cfg.CoinGeckoID, cfg.CoinGeckoVs, httpClient),
	}

	f := fetcher.New(cfg.Fetcher, sources, priceStore, auditSink, n.Conn)
	f.Start(context.Background())

	log.Infof("%s service running", SERVICE_NAME)

	// Wait for interrupt signal to gracefully shutdown the fetch loop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	f.Stop()
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
