package comm

import (
	"time"
)

// Topic names for the NATS fabric between the feed and socket services.
const (
	TopicPriceTick = "price.tick"
)

// PriceTick is published by the feed service after every successful
// fetch+store cycle and consumed by the socket service for client push.
type PriceTick struct {
	Price     string    `json:"price"` // decimal string, already normalized
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source,omitempty"` // provider that supplied the sample
}

// FeedStatus lets the socket service tell clients the feed went quiet.
type FeedStatus struct {
	Available bool      `json:"available"`
	CheckedAt time.Time `json:"checked_at"`
}

type ServiceHeartbeat struct {
	ID        string    `json:"id"` // service id
	Timestamp time.Time `json:"timestamp"`
}

type ServiceShutdown struct {
	ID string `json:"id"` // service id
}
