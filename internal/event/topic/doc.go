// Package topic provides hierarchical topic names and wildcard matching for
// the signal bus.
//
// Topics use dot notation:
//
//	intent.leave
//	intent.session.started
//	intent.activation.replayed
//
// Patterns may use "*" for exactly one segment and "**" for zero or more:
//
//	intent.session.*   matches intent.session.started, intent.session.abandoned
//	intent.**          matches every intent signal
//	**                 matches everything
package topic
