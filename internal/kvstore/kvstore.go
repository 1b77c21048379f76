// Package kvstore implements the narrow persistent-store adaptor from
// §4.I: open/set/get/erase/erase_all/commit, with a mem-backed
// implementation for tests and a file-backed implementation for the
// daemon. Every other package funnels persistence through the Store
// interface rather than touching a backing format directly.
package kvstore

import "errors"

// ErrNotFound is returned by Get when key has no value in the handle's
// namespace.
var ErrNotFound = errors.New("kvstore: key not found")

// Handle is an opaque reference to an opened namespace.
type Handle interface {
	Namespace() string
}

// Store is the narrow interface every store user funnels through
// (§4.I). Implementations may back this with a flash-resident
// key/value store, an in-memory map, or a file.
type Store interface {
	Open(namespace string) (Handle, error)
	Set(h Handle, key string, value []byte) error
	Get(h Handle, key string) ([]byte, error)
	Erase(h Handle, key string) error
	EraseAll(h Handle) error
	Commit(h Handle) error
}

// Namespaces used by the daemon, per §6.
const (
	NamespaceCodes   = "ir_codes"
	NamespaceActions = "ir_actions"
	NamespaceAC      = "ir_ac"
)
