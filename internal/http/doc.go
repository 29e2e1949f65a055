// Package http exposes the roster application services over a JSON HTTP API.
//
// Handlers decode requests, resolve the acting principal from middleware
// supplied context, delegate to the application layer, and translate
// application errors into HTTP status codes. Routing uses the standard
// library mux with explicit method dispatch per path.
package http
