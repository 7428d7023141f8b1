// Package session provides the in-memory core.StateStore used by default.
// Swap in a custom implementation for durable storage; the routing core only
// depends on the StateStore interface.
package session
