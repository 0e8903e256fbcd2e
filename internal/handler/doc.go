// Package handler implements the HTTP API of the gasmap editor.
//
// # Handlers
//
// NetworkHandler turns requests into editor operations through the network
// service: toolbar commands, pointer events, node and pipe inspection and
// edits, and document download. With a network library attached it also
// lists and deletes saved networks.
//
// Middleware provides panic recovery, CORS, request logging and request
// metrics.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 204).
// Error responses return JSON with {error, details} structure. Format and
// constraint errors map to 400, unknown ids to 404, a busy worker or a
// duplicate connection to 409 and I/O failures to 500.
//
// # Server-Sent Events
//
// The /events endpoint is served by the hub package and streams the editor's
// notifications.
package handler
