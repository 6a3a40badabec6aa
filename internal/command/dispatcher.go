package command

import (
	"context"
	"sync"
	"time"

	"github.com/MRSt3Ss/rat2/internal/channel"
	"github.com/MRSt3Ss/rat2/internal/models"

	"github.com/sirupsen/logrus"
)

// Dispatcher queues outbound commands and drains them to the upstream
// agent-command channel from a single consumer goroutine. The queue is
// unbounded FIFO across all devices; Enqueue never blocks the caller.
// Forwarding is fire-and-forget: a failed or timed-out send is logged
// and the command dropped, never retried, and the loop keeps running.
type Dispatcher struct {
	sink        channel.Sink
	log         *logrus.Logger
	sendTimeout time.Duration

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []models.QueuedCommand
	stopped bool
	done    chan struct{}

	enqueued  uint64
	forwarded uint64
	dropped   uint64
}

// NewDispatcher creates a Dispatcher forwarding to sink and starts its
// consumer loop. The consumer blocks until the queue is non-empty or
// Stop is called; there is no polling interval.
func NewDispatcher(sink channel.Sink, log *logrus.Logger, sendTimeout time.Duration) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = 5 * time.Second
	}
	d := &Dispatcher{
		sink:        sink,
		log:         log,
		sendTimeout: sendTimeout,
		done:        make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)

	go d.run()

	return d
}

// Enqueue appends a command to the tail of the queue and wakes the
// consumer. It never fails and never applies backpressure; the queue has
// no capacity bound.
func (d *Dispatcher) Enqueue(deviceID, commandString string) {
	record := models.QueuedCommand{
		DeviceID:   deviceID,
		Command:    commandString,
		EnqueuedAt: time.Now(),
	}

	d.mu.Lock()
	d.queue = append(d.queue, record)
	d.enqueued++
	d.mu.Unlock()

	d.cond.Signal()
}

// run is the single consumer loop. Commands are forwarded strictly in
// enqueue order, one at a time.
func (d *Dispatcher) run() {
	defer close(d.done)

	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.stopped {
			d.cond.Wait()
		}
		if d.stopped {
			d.mu.Unlock()
			return
		}
		record := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.forward(record)
	}
}

// forward attempts one best-effort delivery with a short timeout so a
// stalled upstream never starves subsequent commands.
func (d *Dispatcher) forward(record models.QueuedCommand) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	if err := d.sink.Send(ctx, record.DeviceID, record.Command); err != nil {
		d.log.WithError(err).WithFields(logrus.Fields{
			"device_id": record.DeviceID,
			"command":   record.Command,
		}).Error("Failed to forward command, dropping")

		d.mu.Lock()
		d.dropped++
		d.mu.Unlock()
		return
	}

	d.log.WithFields(logrus.Fields{
		"device_id": record.DeviceID,
		"command":   record.Command,
	}).Info("Command forwarded")

	d.mu.Lock()
	d.forwarded++
	d.mu.Unlock()
}

// Stop shuts the consumer loop down and waits for it to exit. Queued
// commands still pending are discarded.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.stopped = true
	d.mu.Unlock()

	d.cond.Signal()
	<-d.done
}

// Stats reports current queue depth and lifetime counters.
func (d *Dispatcher) Stats() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	return map[string]interface{}{
		"queue_length": len(d.queue),
		"enqueued":     d.enqueued,
		"forwarded":    d.forwarded,
		"dropped":      d.dropped,
	}
}
