package audit

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "fetch_audit"

// Store keeps a provenance trail of which provider supplied each stored
// price sample. Records age out through a TTL index on expires_at; the
// trail is for auditing only and plays no part in round resolution.
type Store struct {
	coll      *mongo.Collection
	retention time.Duration
}

func NewStore(db *mongo.Database, retention time.Duration) *Store {
	return &Store{
		coll:      db.Collection(CollectionName),
		retention: retention,
	}
}

func (s *Store) Record(ctx context.Context, src string, price decimal.Decimal, fetchedAt time.Time) error {
	_, err := s.coll.InsertOne(ctx, bson.M{
		"source":     src,
		"price":      price.String(),
		"fetched_at": fetchedAt,
		"expires_at": fetchedAt.Add(s.retention),
	})

	return err
}
