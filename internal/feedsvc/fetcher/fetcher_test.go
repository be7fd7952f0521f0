package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/updown-labs/updown-services/internal/comm"
	"github.com/updown-labs/updown-services/internal/feedsvc/source"
)

type fakeSource struct {
	name  string
	price decimal.Decimal
	err   error
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchPrice(ctx context.Context) (decimal.Decimal, error) {
	f.calls++
	return f.price, f.err
}

type fakeWriter struct {
	prices []decimal.Decimal
	err    error
}

func (f *fakeWriter) Set(ctx context.Context, price decimal.Decimal, updatedAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.prices = append(f.prices, price)
	return nil
}

type fakeAudit struct {
	sources []string
	err     error
}

func (f *fakeAudit) Record(ctx context.Context, src string, price decimal.Decimal, fetchedAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.sources = append(f.sources, src)
	return nil
}

type fakePublisher struct {
	topics   []string
	payloads [][]byte
}

func (f *fakePublisher) Publish(topic string, payload []byte) error {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SourceTimeout = time.Second
	return cfg
}

func TestFetchOnceFirstSourceWins(t *testing.T) {
	primary := &fakeSource{name: "s1", price: decimal.RequireFromString("94230.004")}
	backup := &fakeSource{name: "s2", price: decimal.RequireFromString("99999.99")}

	f := New(testConfig(), sources(primary, backup), &fakeWriter{}, nil, nil)

	price, src, err := f.FetchOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, "s1", src)
	require.True(t, price.Equal(decimal.RequireFromString("94230.00")), "price must be normalized, got %s", price)
	require.Equal(t, 0, backup.calls, "backup source must not be called when the primary succeeds")
}

func TestFetchOnceFallsBackInOrder(t *testing.T) {
	down := &fakeSource{name: "s1", err: errors.New("connection refused")}
	zero := &fakeSource{name: "s2", price: decimal.Zero}
	good := &fakeSource{name: "s3", price: decimal.RequireFromString("100.129")}

	f := New(testConfig(), sources(down, zero, good), &fakeWriter{}, nil, nil)

	price, src, err := f.FetchOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, "s3", src)
	require.True(t, price.Equal(decimal.RequireFromString("100.13")))
}

func TestFetchOnceRejectsNegativePrice(t *testing.T) {
	bad := &fakeSource{name: "s1", price: decimal.RequireFromString("-1")}

	f := New(testConfig(), sources(bad), &fakeWriter{}, nil, nil)

	_, _, err := f.FetchOnce(context.Background())
	require.ErrorIs(t, err, ErrAllSourcesUnavailable)
}

func TestFetchAndStoreSkipsWriteWhenAllSourcesFail(t *testing.T) {
	down := &fakeSource{name: "s1", err: errors.New("timeout")}
	writer := &fakeWriter{}

	f := New(testConfig(), sources(down), writer, nil, nil)

	err := f.FetchAndStore(context.Background())
	require.ErrorIs(t, err, ErrAllSourcesUnavailable)
	require.Empty(t, writer.prices, "a failed fetch must never touch the price store")
}

func TestFetchAndStoreWritesPublishesAndAudits(t *testing.T) {
	src := &fakeSource{name: "binance", price: decimal.RequireFromString("94230.50")}
	writer := &fakeWriter{}
	aud := &fakeAudit{}
	pub := &fakePublisher{}

	f := New(testConfig(), sources(src), writer, aud, pub)

	err := f.FetchAndStore(context.Background())
	require.NoError(t, err)

	require.Len(t, writer.prices, 1)
	require.True(t, writer.prices[0].Equal(decimal.RequireFromString("94230.50")))

	require.Equal(t, []string{comm.TopicPriceTick}, pub.topics)
	var tick comm.PriceTick
	require.NoError(t, json.Unmarshal(pub.payloads[0], &tick))
	require.Equal(t, "94230.5", tick.Price)
	require.Equal(t, "binance", tick.Source)

	require.Equal(t, []string{"binance"}, aud.sources)
}

func TestFetchAndStoreAuditFailureIsNotFatal(t *testing.T) {
	src := &fakeSource{name: "binance", price: decimal.RequireFromString("100.00")}
	writer := &fakeWriter{}
	aud := &fakeAudit{err: errors.New("mongo down")}

	f := New(testConfig(), sources(src), writer, aud, nil)

	err := f.FetchAndStore(context.Background())
	require.NoError(t, err, "the audit trail is best effort")
	require.Len(t, writer.prices, 1)
}

func TestFetchAndStoreSurfacesWriteFailure(t *testing.T) {
	src := &fakeSource{name: "binance", price: decimal.RequireFromString("100.00")}
	writer := &fakeWriter{err: errors.New("pg down")}

	f := New(testConfig(), sources(src), writer, nil, nil)

	err := f.FetchAndStore(context.Background())
	require.Error(t, err)
}

func sources(ss ...source.Source) []source.Source {
	return ss
}
