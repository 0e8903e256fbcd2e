// Package domain defines the core types of the gas-supply network editor.
//
// # Core Types
//
// Node is a supply Source or a Consumer placed in the scene. Every node owns
// exactly four Ports at fixed offsets (north, south, west, east).
//
// Port is a fixed connection point on a node. Its absolute position is the
// node position plus the port's offset and moves with the node.
//
// Pipe is an edge between two ports on two different nodes. A pipe starts
// provisional (one endpoint bound, the other following the pointer) and is
// committed once the registry accepts its second endpoint.
//
// # Persistence
//
// Document is the versioned, JSON-shaped persistence form of a network
// (.mj5 files). NodeRecord and PipeRecord mirror its entries.
//
// # Snapshots
//
// NodeAttr and PipeAttr are immutable attribute snapshots handed to the
// presentation layer. Graph is the derived view of a whole network.
//
// # Design Principles
//
// - No infrastructure dependencies
// - Invariants that span several objects live in the topology registry
// - Sentinel errors for every failure the editor can report
package domain
