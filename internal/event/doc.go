// Package event provides the signal bus used for broadcast cancellation.
//
// Hover-intent tracking needs one process-wide notification: the forced-leave
// signal raised when the viewport scrolls far enough to make recorded pointer
// coordinates stale. Every live intent session subscribes to it and reacts
// exactly as if its pointer had left the intent cone. The same bus carries
// session lifecycle signals for observers.
//
// # Topics
//
// Signals use hierarchical dot-notation topics; subscriptions may use the
// wildcards described in package topic:
//
//	intent.leave                 forced leave (name is configurable)
//	intent.session.started       a session began tracking
//	intent.session.committed     the pointer reached the target
//	intent.session.abandoned     the session ended
//	intent.activation.replayed   a cached activation was re-dispatched
//
// # Delivery
//
// Delivery is synchronous and ordered by priority, then by subscription
// order. This matches the single-threaded model of intent tracking: Publish
// returns only after every handler has run.
//
//	bus := event.NewBus()
//	sub, err := bus.Subscribe(topic.Topic("intent.session.*"), func(ctx context.Context, sig event.Signal) error {
//	    log.Printf("%s from %s", sig.Topic, sig.Metadata.Source)
//	    return nil
//	}, event.WithPriority(event.PriorityLow))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sub.Cancel()
//
//	bus.Publish(ctx, event.NewSignal(topic.Topic("intent.leave"), nil, "host"))
//
// # Failure Isolation
//
// A handler that returns an error or panics is reported through the
// configured ErrorHandler (or logged via slog) and delivery continues with the
// next subscriber, so a misbehaving observer cannot stop a broadcast from
// reaching every session.
package event
