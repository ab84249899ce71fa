// Package feed distributes newly created reports to connected viewers.
// Delivery is best-effort with no replay: a viewer that was not
// subscribed when a report was published loads it through the regular
// history endpoint instead.
package feed

import (
	"errors"
	"log/slog"

	"github.com/scamwall/scamwall-backend/internal/models"
)

var ErrClosed = errors.New("feed broker shut down")

const (
	opSubscribe = iota
	opUnsubscribe
	opPublish
)

type operation struct {
	op     int
	sub    *subscriber
	report *models.Report
}

type subscriber struct {
	outgoing chan *models.Report
	filter   func(*models.Report) bool
	done     chan struct{}
}

// Broker fans newly published reports out to subscribers. A single run
// loop owns the subscriber list, so events reach each subscriber in
// publish order. Slow subscribers have events dropped rather than
// stalling the loop.
type Broker struct {
	subs []*subscriber

	ops        chan *operation
	closed     chan struct{}
	bufferSize int
}

func NewBroker() *Broker {
	return &Broker{
		ops:        make(chan *operation),
		closed:     make(chan struct{}),
		bufferSize: 64,
	}
}

// Run processes subscribe/unsubscribe/publish operations until Close.
// Call it once, in its own goroutine.
func (b *Broker) Run() {
	for {
		var op *operation
		select {
		case op = <-b.ops:
		case <-b.closed:
			return
		}
		switch op.op {
		case opSubscribe:
			b.subs = append(b.subs, op.sub)
		case opUnsubscribe:
			for i, s := range b.subs {
				if s == op.sub {
					b.subs[i] = b.subs[len(b.subs)-1]
					b.subs = b.subs[:len(b.subs)-1]
					close(s.outgoing)
					break
				}
			}
		case opPublish:
			for _, s := range b.subs {
				if !s.filter(op.report) {
					continue
				}
				select {
				case s.outgoing <- op.report:
				default:
					slog.Warn("feed subscriber overflow, dropping event",
						"report_id", op.report.ID, "category", op.report.Category)
				}
			}
		}
	}
}

// Publish announces a newly created report to all matching subscribers.
func (b *Broker) Publish(r *models.Report) error {
	select {
	case <-b.closed:
		return ErrClosed
	default:
	}
	select {
	case b.ops <- &operation{op: opPublish, report: r}:
		return nil
	case <-b.closed:
		return ErrClosed
	}
}

// Subscribe registers a viewer. A nil filter receives everything. The
// returned cancel func must be called on viewer teardown; it is safe to
// call more than once.
func (b *Broker) Subscribe(filter func(*models.Report) bool) (<-chan *models.Report, func(), error) {
	if filter == nil {
		filter = func(*models.Report) bool { return true }
	}

	sub := &subscriber{
		outgoing: make(chan *models.Report, b.bufferSize),
		filter:   filter,
		done:     make(chan struct{}),
	}

	select {
	case <-b.closed:
		return nil, nil, ErrClosed
	default:
	}
	select {
	case b.ops <- &operation{op: opSubscribe, sub: sub}:
	case <-b.closed:
		return nil, nil, ErrClosed
	}

	cancel := func() {
		select {
		case <-sub.done:
			return
		default:
			close(sub.done)
		}
		select {
		case b.ops <- &operation{op: opUnsubscribe, sub: sub}:
		case <-b.closed:
		}
	}

	return sub.outgoing, cancel, nil
}

// CategoryFilter returns a subscription filter for one category, or a
// match-all filter when category is empty.
func CategoryFilter(category string) func(*models.Report) bool {
	if category == "" {
		return nil
	}
	return func(r *models.Report) bool {
		return r.Category == category
	}
}

// Close shuts the broker down. Pending subscriber channels are left to
// be garbage collected with their connections.
func (b *Broker) Close() {
	close(b.closed)
}
