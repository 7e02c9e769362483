package mqtt

import (
	"context"
	"encoding/json"

	"github.com/kilianp07/sirene/core/events"
	"github.com/kilianp07/sirene/infra/logger"
	"github.com/kilianp07/sirene/internal/eventbus"
)

// Bridge forwards allocation events from the in-process bus to MQTT topics
// as JSON payloads. It is a pure consumer: publish failures are logged and
// dropped, never propagated back into the engine.
type Bridge struct {
	pub    Publisher
	bus    eventbus.EventBus
	prefix string
	log    logger.Logger
}

// NewBridge creates a bridge publishing under the given topic prefix.
func NewBridge(pub Publisher, bus eventbus.EventBus, prefix string, log logger.Logger) *Bridge {
	if log == nil {
		log = logger.NopLogger{}
	}
	if prefix == "" {
		prefix = "sirene"
	}
	return &Bridge{pub: pub, bus: bus, prefix: prefix, log: log}
}

// Run consumes bus events until the context is canceled or the bus closes.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.bus.Subscribe()
	defer b.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			b.forward(ev)
		}
	}
}

func (b *Bridge) forward(ev eventbus.Event) {
	var topic string
	switch ev.(type) {
	case events.AssignmentEvent:
		topic = b.prefix + "/dispatch/assignment"
	case events.NoUnitEvent:
		topic = b.prefix + "/dispatch/no_unit"
	case events.RebalanceEvent:
		topic = b.prefix + "/rebalance"
	case events.FleetResetEvent:
		topic = b.prefix + "/fleet/reset"
	default:
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		b.log.Errorf("marshal event: %v", err)
		return
	}
	if err := b.pub.Publish(topic, payload); err != nil {
		b.log.Errorf("publish %s: %v", topic, err)
	}
}
