// Package listing is the filter, sort and windowing pipeline behind every card grid.
//
// The stages are pure functions over any Item:
//   - Filter: tab (status) selector plus case-insensitive substring search
//   - Sort: date-desc, date-asc or name, always stable, never in place
//   - Visible / Window: the first N results, growing on "load more"
//
// Pager accumulates server-paginated results (skip/limit) and guards against
// duplicate and stale loads. Feed composes a Pager with the view state so callers
// hold one explicit state object instead of scattered UI fields.
package listing
