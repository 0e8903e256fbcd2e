// Package repository defines the network library: named networks saved as
// documents in a database.
//
// # Repository Interface
//
// The Repository interface saves, loads, lists and deletes networks by name.
// A saved network is the same Document the file store writes, so the editor
// can load from either.
//
// # SQLite Implementation
//
// The sqlite subpackage stores each network as rows in networks, nodes and
// pipes tables. Saving a network replaces its rows in one transaction, and
// deleting a network cascades to its records. Record order is kept so that a
// loaded network is rebuilt in the order it was saved.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
