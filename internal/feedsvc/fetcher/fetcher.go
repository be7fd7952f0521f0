package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/updown-labs/updown-services/internal/comm"
	"github.com/updown-labs/updown-services/internal/feedsvc/source"
	"github.com/updown-labs/updown-services/internal/gamesvc/models"
)

// ErrAllSourcesUnavailable means every provider failed in one fetch attempt.
// The price store must not be touched in that case; a stale sample beats a
// corrupted one.
var ErrAllSourcesUnavailable = errors.New("all price sources unavailable")

// PriceWriter is the single-slot price store the fetcher overwrites.
type PriceWriter interface {
	Set(ctx context.Context, price decimal.Decimal, updatedAt time.Time) error
}

// AuditSink records which provider supplied each stored sample. Best effort:
// a sink failure never blocks the store write.
type AuditSink interface {
	Record(ctx context.Context, src string, price decimal.Decimal, fetchedAt time.Time) error
}

// TickPublisher pushes a stored sample onto the broadcast fabric.
type TickPublisher interface {
	Publish(topic string, payload []byte) error
}

// Config holds fetcher configuration.
type Config struct {
	Interval      time.Duration // outer schedule between fetch rounds
	SubInterval   time.Duration // delay between iterations within a round
	Iterations    int           // fetch+store cycles per round
	SourceTimeout time.Duration // per-provider request budget
	PriceDecimals int32         // normalization applied before storing
}

// DefaultConfig returns sensible defaults: the store refreshes every two
// seconds even though the outer schedule only fires once a minute.
func DefaultConfig() Config {
	return Config{
		Interval:      60 * time.Second,
		SubInterval:   2 * time.Second,
		Iterations:    28,
		SourceTimeout: 5 * time.Second,
		PriceDecimals: 2,
	}
}

// Fetcher keeps the price store fresh from an ordered list of providers,
// first strictly-positive price wins.
type Fetcher struct {
	cfg     Config
	sources []source.Source
	store   PriceWriter
	audit   AuditSink     // may be nil
	pub     TickPublisher // may be nil

	now func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg Config, sources []source.Source, store PriceWriter, audit AuditSink, pub TickPublisher) *Fetcher {
	return &Fetcher{
		cfg:     cfg,
		sources: sources,
		store:   store,
		audit:   audit,
		pub:     pub,
		now:     time.Now,
	}
}

// Start begins the scheduled fetch loop.
func (f *Fetcher) Start(ctx context.Context) {
	f.ctx, f.cancel = context.WithCancel(ctx)

	f.wg.Add(1)
	go f.run()

	log.Infof("price fetcher started: interval %s, %d iterations every %s",
		f.cfg.Interval, f.cfg.Iterations, f.cfg.SubInterval)
}

// Stop shuts the loop down and waits for the in-flight round to finish.
func (f *Fetcher) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
	f.wg.Wait()
	log.Info("price fetcher stopped")
}

func (f *Fetcher) run() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.cfg.Interval)
	defer ticker.Stop()

	// fetch immediately on start
	f.round()

	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			f.round()
		}
	}
}

// round runs the sub-interval iterations of one scheduled invocation. Each
// iteration fails independently; one bad cycle never aborts the rest.
func (f *Fetcher) round() {
	for i := 0; i < f.cfg.Iterations; i++ {
		if f.ctx.Err() != nil {
			return
		}

		if err := f.FetchAndStore(f.ctx); err != nil {
			log.Warnf("fetch iteration %d failed: %v", i, err)
		}

		select {
		case <-f.ctx.Done():
			return
		case <-time.After(f.cfg.SubInterval):
		}
	}
}

// FetchOnce walks the provider list in order and returns the first strictly
// positive price, normalized, along with the provider that supplied it.
func (f *Fetcher) FetchOnce(ctx context.Context) (decimal.Decimal, string, error) {
	for _, src := range f.sources {
		srcCtx, cancel := context.WithTimeout(ctx, f.cfg.SourceTimeout)
		price, err := src.FetchPrice(srcCtx)
		cancel()

		if err != nil {
			log.Warnf("source %s failed: %v", src.Name(), err)
			continue
		}
		if !price.IsPositive() {
			log.Warnf("source %s returned non-positive price %s", src.Name(), price)
			continue
		}

		return models.NormalizePrice(price, f.cfg.PriceDecimals), src.Name(), nil
	}

	return decimal.Zero, "", ErrAllSourcesUnavailable
}

// FetchAndStore performs one fetch+store cycle: fetch with fallback, write
// the slot, then fan out the tick and the audit record.
func (f *Fetcher) FetchAndStore(ctx context.Context) error {
	price, srcName, err := f.FetchOnce(ctx)
	if err != nil {
		return err
	}

	fetchedAt := f.now()
	if err := f.store.Set(ctx, price, fetchedAt); err != nil {
		return err
	}

	if f.pub != nil {
		tick := comm.PriceTick{
			Price:     price.String(),
			UpdatedAt: fetchedAt,
			Source:    srcName,
		}
		if payload, err := json.Marshal(tick); err == nil {
			if err := f.pub.Publish(comm.TopicPriceTick, payload); err != nil {
				log.Warnf("failed to publish price tick: %v", err)
			}
		}
	}

	if f.audit != nil {
		if err := f.audit.Record(ctx, srcName, price, fetchedAt); err != nil {
			log.Warnf("failed to record fetch audit: %v", err)
		}
	}

	return nil
}
