// Package surface provides the element model that pointer intent tracking
// runs against.
//
// A Surface is a retained tree of rectangular elements, the terminal UI
// analogue of a document. Hosts feed it raw pointer samples and scroll
// offsets; it hit-tests the tree and dispatches events:
//
//   - leave, over, enter: boundary events, in that order, when the set of
//     hovered elements changes. Over bubbles to ancestors and to
//     surface-level listeners; enter and leave do not bubble.
//   - move: a surface-level event for every pointer sample.
//   - scroll: a surface-level event when the scroll offset changes.
//
// Listeners registered with On return a remove function. ListenerCount
// reports how many are registered, which lets tests assert that nothing
// leaks after an intent session ends.
//
//	s := surface.New(clock.NewManual(time.Time{}), surface.WithSize(80, 24))
//	menu := s.Append(nil, surface.NewElement("file", geom.RectFromSize(0, 0, 6, 1)))
//	menu.SetData("intent-target", "file-menu").AddClass("trigger")
//	remove := menu.On(surface.KindEnter, func(evt *surface.Event) { ... })
//	defer remove()
//	s.MoveTo(geom.Pt(2, 0))
package surface
