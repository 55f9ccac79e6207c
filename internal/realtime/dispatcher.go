package realtime

import (
	"encoding/json"

	"ordersetu-be/internal/logger"
	"ordersetu-be/internal/metrics"

	"go.uber.org/zap"
)

// Sender is the one-way notification capability handed to the services.
// Send never blocks and never reports failure: delivery is at-most-once.
type Sender interface {
	Send(target Target, event Event)
}

type Stats struct {
	Connections int    `json:"connections"`
	Sent        uint64 `json:"sent"`
	Dropped     uint64 `json:"dropped"`
	Failed      uint64 `json:"failed"`
}

// Dispatcher resolves targets through the registry and hands encoded events
// to the live connection.
type Dispatcher struct {
	registry *Registry

	sent    metrics.Counter
	dropped metrics.Counter
	failed  metrics.Counter
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

func (d *Dispatcher) Send(target Target, event Event) {
	log := logger.L().With(
		zap.String("role", string(target.Role)),
		zap.String("key", target.Key),
		zap.String("event", string(event.EventType())),
	)

	conn, ok := d.registry.Resolve(target.Role, target.Key)
	if !ok {
		d.dropped.Inc()
		log.Debug("no subscriber online, event dropped")
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		d.failed.Inc()
		log.Error("failed to encode event", zap.Error(err))
		return
	}

	if err := conn.Deliver(payload); err != nil {
		d.failed.Inc()
		log.Warn("failed to deliver event", zap.Error(err))
		return
	}
	d.sent.Inc()
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Connections: d.registry.Len(),
		Sent:        d.sent.Load(),
		Dropped:     d.dropped.Load(),
		Failed:      d.failed.Load(),
	}
}
