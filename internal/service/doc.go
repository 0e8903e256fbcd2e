// Package service coordinates the editor loop with its transports.
//
// NetworkService is the façade used by the HTTP handler and the CLI. Every
// call is turned into an event or a query on the editor loop, so the registry
// is only ever touched from the loop goroutine.
//
// # Event System
//
// The editor's outbound notifications (status messages, attribute snapshots,
// redraw requests and job results) are published on an EventBus by
// BusNotifier. The SSE hub subscribes to the bus and forwards every event to
// connected clients.
package service
