package broker

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/updown-labs/updown-services/internal/comm"
	"github.com/updown-labs/updown-services/internal/socketsvc/ws"
)

// Broker consumes price ticks published by the feed service and hands them
// to the hub. It never talks to clients directly.
type Broker struct {
	Conn *nats.Conn
	hub  *ws.Hub
}

func NewBroker(conn *nats.Conn, hub *ws.Hub) *Broker {
	return &Broker{
		Conn: conn,
		hub:  hub,
	}
}

// Subscribe consumes price ticks from the feed service.
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// handleMessages receives a tick from the feed service.
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	tick := comm.PriceTick{}
	if err := json.Unmarshal(msgNats.Data, &tick); err != nil {
		log.Errorf("Error %s", err)
		return
	}

	if tick.Price == "" {
		log.Warn("dropping empty price tick")
		return
	}

	b.hub.SetLatest(tick)
}
