// Package http provides the JSON endpoints of the catalog daemon.
//
// Item ids contain slashes, so clients path-escape them
// (/catalog/items/0%2Forg.mail%2FInbox/activate); the router matches on the
// raw path and unescapes the id parameter.
//
// Endpoints:
//   - GET /health: liveness and catalog readiness
//   - GET /catalog: latest ranked result
//   - PUT /catalog/query: replace the filter query
//   - GET /catalog/items/:id: item, counter and hidden flag
//   - POST /catalog/items/:id/{activate,secondary,deprioritize,ignore-notifications,hide}
//   - PUT /catalog/items/:id/label: rename (blank label clears)
//   - DELETE /catalog/items/:id/hide: unhide
//   - POST /notifications/recheck: sample the notification permission again
package http
