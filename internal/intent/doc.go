// Package intent detects whether the pointer is heading from a trigger
// element toward its target, so menus and dropdowns can stay open while the
// user crosses the gap between them.
//
// A Binding listens for over events on its roots. A qualifying trigger is
// debounced, then resolved to a target through a data attribute. The
// resulting Session tests each rate-limited pointer sample against a
// triangle spanning from the latest sample to the near edge of the target's
// bounding box:
//
//	trigger ──▶ apex ─┐
//	                  ├──▶ target box
//	                  ┘
//
// A sample inside the triangle narrows the cone toward the target; a sample
// outside, an idle pointer or a large scroll abandons the session and runs
// the leave callback. Only one session tracks at a time. Activations that
// arrive meanwhile are cached, latest wins, and replayed when the slot
// frees.
//
// Basic usage:
//
//	b, err := intent.Bind(surf, intent.Config{
//		Selector: surface.MatchClass("menu-item"),
//		OnHover:  func(evt *surface.Event, target, trigger *surface.Element) { target.SetHidden(false) },
//		OnLeave:  func(evt *surface.Event, target, trigger *surface.Element) { target.SetHidden(true) },
//	}, menubar)
//	if err != nil {
//		return err
//	}
//	defer b.Destroy()
//
// Callbacks may call evt.PreventDefault to veto the default follow-on
// behavior: a suppressed hover installs no tracking, a suppressed leave
// keeps the session alive.
//
// All methods must be called from the goroutine that dispatches surface
// events and runs Scheduler callbacks.
package intent
