package broker

import (
	"log"
	"time"

	"github.com/roadsense/telemetry-hub/internal/models"
)

// Dispatcher delivers stored batches to every live subscriber, best effort.
// Deliveries are independent: each subscriber gets its own goroutine and its
// own timeout, so one unresponsive subscriber never delays the others. A
// failed delivery unregisters that subscriber and is never surfaced to the
// ingestion caller.
type Dispatcher struct {
	registry *Registry
	timeout  time.Duration
}

// NewDispatcher creates a dispatcher fanning out through the given registry.
// The timeout bounds each per-subscriber delivery attempt.
func NewDispatcher(registry *Registry, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		timeout:  timeout,
	}
}

// Dispatch pushes a batch to all currently registered subscribers. Callers
// must invoke it only after the batch is durably committed. Dispatch returns
// once every delivery attempt has completed; the worst case is one timeout,
// since attempts run concurrently.
func (d *Dispatcher) Dispatch(batch []models.ProcessedAgentDataInDB) {
	if len(batch) == 0 {
		return
	}

	subs := d.registry.Snapshot()
	if len(subs) == 0 {
		return
	}

	done := make(chan struct{}, len(subs))
	for _, sub := range subs {
		go func(sub *Subscriber) {
			defer func() { done <- struct{}{} }()
			d.deliver(sub, batch)
		}(sub)
	}
	for range subs {
		<-done
	}
}

// deliver attempts a single bounded push. The actual network write happens
// in the subscriber's own writer goroutine, parked on Updates; this only
// hands the batch over.
func (d *Dispatcher) deliver(sub *Subscriber, batch []models.ProcessedAgentDataInDB) {
	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	select {
	case sub.ch <- batch:
	case <-sub.done:
		// unregistered mid-flight, nothing to do
	case <-timer.C:
		log.Printf("broadcast: subscriber %s unresponsive after %v, unregistering", sub.ID, d.timeout)
		d.registry.Unregister(sub.ID)
	}
}
