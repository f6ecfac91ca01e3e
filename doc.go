// Package hxview compiles declarative view templates into cloneable
// prototypes and keeps rendered lists in sync with a collection through
// keyed structural edits.
//
// hxview never touches a rendering target directly. Everything goes through
// a Driver, so the same templates render into a browser DOM bridge, a
// terminal tree or the in-memory tree of package lib/dom.
//
// # Templates and Compilation
//
// A template is a tree of immutable nodes built with El, Txt, Prop, Bind,
// Attr, AttrBind, On, EmbedTemplate, EmbedRenderable and RawNode:
//
//	row := hxview.El("li",
//	    hxview.Attr("class", "todo"),
//	    hxview.AttrBind("id", hxview.Path("ID")),
//	    hxview.On("click", toggle),
//	    hxview.Prop("Title"),
//	)
//	c, err := hxview.Compile(driver, row)
//
// Compile walks the tree once. Static structure, static attributes and
// static text are baked into detached prototype nodes; everything bound to
// a row becomes a short instruction sequence, the patch program. The
// program addresses nodes only by position (first child, indexed child,
// next sibling), so it is valid against every clone of the prototype.
//
// # Instantiation
//
// Instantiate clones the prototype, replays the program against the clone
// with a row, and mounts the result. Bound values may be Streams such as a
// *State, in which case the target keeps following the stream until the
// RenderResult is disposed.
//
// # Lists
//
// A Reconciler owns a collection and broadcasts every structural edit
// (Push, Insert, Remove, Move, Reset) on a replaying Bus. Each View
// rendered from it applies the edits to its own items:
//
//	todos := hxview.NewReconciler(c, hxview.WithKey(func(t Todo) any { return t.ID }))
//	view, _ := todos.Render(ul)
//	todos.Add(hxview.Push(Todo{ID: 1, Title: "write docs"}))
//	todos.Add(hxview.Move[Todo](0, 2))
//
// Moves relocate existing nodes. Reset diffs by key: surviving items are
// moved or updated in place, missing ones are rendered and stale ones are
// disposed. A view created late starts from a single Reset carrying the
// current rows.
//
// # Disposal
//
// Render results, views and scopes own what they created. Dispose releases
// it exactly once, children first. Failures while releasing are logged to
// the logger set with SetLogger or WithLogger, never returned.
//
// # Concurrency
//
// hxview is single threaded: Add, Publish and every callback run
// synchronously on the caller's goroutine. A *Compiled may be shared.
package hxview
