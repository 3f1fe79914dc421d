package event

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/hoverintent/internal/event/topic"
)

// Bus delivers signals synchronously to every matching subscription.
//
// Publish runs handlers in the publisher's goroutine, in priority order and
// then subscription order. Handlers may subscribe, cancel and publish from
// inside a delivery; subscriptions added during a delivery do not receive the
// signal being delivered, cancelled ones are skipped.
type Bus struct {
	mu     sync.Mutex
	subs   []*Subscription
	seq    uint64
	config busConfig

	published        atomic.Uint64
	handlersExecuted atomic.Uint64
	handlerErrors    atomic.Uint64
	handlerPanics    atomic.Uint64
}

// NewBus creates a signal bus with the given options.
func NewBus(opts ...BusOption) *Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Bus{config: config}
}

// Subscribe registers fn for signals whose topic matches pattern.
func (b *Bus) Subscribe(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error) {
	if !pattern.IsValid() {
		return nil, fmt.Errorf("subscribe %q: %w", pattern, ErrInvalidTopic)
	}
	if fn == nil {
		return nil, ErrNilHandler
	}

	config := DefaultSubscriptionConfig()
	for _, opt := range opts {
		opt(&config)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	sub := &Subscription{
		id:      uuid.NewString(),
		seq:     b.seq,
		pattern: pattern,
		handler: fn,
		config:  config,
		bus:     b,
	}
	b.subs = append(b.subs, sub)
	return sub, nil
}

// Unsubscribe cancels sub.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil || sub.bus != b || !sub.IsActive() {
		return ErrSubscriptionNotFound
	}
	sub.Cancel()
	return nil
}

// Publish delivers sig to every matching subscription before returning.
// Handler failures are reported to the error handler and do not stop delivery.
func (b *Bus) Publish(ctx context.Context, sig Signal) error {
	if !sig.Topic.IsValid() {
		return fmt.Errorf("publish %q: %w", sig.Topic, ErrInvalidTopic)
	}
	if sig.Topic.IsWildcard() {
		return fmt.Errorf("publish %q: %w", sig.Topic, ErrWildcardPublish)
	}

	b.published.Add(1)

	for _, sub := range b.match(sig.Topic) {
		if !sub.IsActive() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		ok := b.deliver(ctx, sub, sig)
		if ok && sub.config.Once {
			sub.Cancel()
		}
	}
	return nil
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Stats returns delivery statistics.
func (b *Bus) Stats() Stats {
	return Stats{
		SignalsPublished:  b.published.Load(),
		HandlersExecuted:  b.handlersExecuted.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: b.Len(),
	}
}

// match returns a priority-ordered snapshot of subscriptions matching t.
func (b *Bus) match(t topic.Topic) []*Subscription {
	b.mu.Lock()
	var out []*Subscription
	for _, sub := range b.subs {
		if t.Matches(sub.pattern) {
			out = append(out, sub)
		}
	}
	b.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].config.Priority == out[j].config.Priority {
			return out[i].seq < out[j].seq
		}
		return out[i].config.Priority < out[j].config.Priority
	})
	return out
}

// deliver runs one handler with panic recovery.
func (b *Bus) deliver(ctx context.Context, sub *Subscription, sig Signal) (ok bool) {
	b.handlersExecuted.Add(1)

	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			b.report(sig, &PanicError{
				SubscriptionID: sub.id,
				Topic:          sig.Topic.String(),
				Value:          r,
				Stack:          string(debug.Stack()),
			})
			ok = false
		}
	}()

	if err := sub.handler(ctx, sig); err != nil {
		b.handlerErrors.Add(1)
		b.report(sig, &HandlerError{
			SubscriptionID: sub.id,
			Topic:          sig.Topic.String(),
			Err:            err,
		})
		return false
	}
	return true
}

func (b *Bus) report(sig Signal, err error) {
	if b.config.errorHandler != nil {
		b.config.errorHandler(sig, err)
		return
	}
	b.config.logger.Error("signal delivery failed", "topic", sig.Topic.String(), "error", err)
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}
