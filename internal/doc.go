// Package internal contains the implementation packages for codetour.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - lines: Line range parsing into roaring-backed LineSets
//   - selection: Per-page selection store with change watchers
//   - reference: Prose references that select lines on activation
//   - viewer: Syntax-highlighted code viewers following the selection
//   - loader: Concurrent file fetching with per-file timeouts
//   - tour: Tour documents, sessions, tabs and page rendering
//   - registry: Loaded tours and their change events
//   - watcher: File system monitoring with debouncing
//   - server: HTTP pages, file content API and the WebSocket channel
//   - config, logging, errors, metrics, validation, version: ambient support
//   - testutils: Content fixtures shared by the tests
//
// # Inter-Package Communication
//
// A page view opens a tour.Session. The session owns one selection store;
// references write to it and viewers and the tab group watch it:
//
//   - Registry holds the tours and announces reloads
//   - Watcher monitors the tours directory and triggers registry syncs
//   - Server streams highlight, scroll and tab commands to the browser
//
// For detailed documentation, see the individual package documentation.
package internal
