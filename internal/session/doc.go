// Package session implements the client side of a charging session: the
// charging-mode selection and the connection-request lifecycle.
//
// A ModeSelection is a tagged choice between immediate, optimized, and
// bounded charging; only the bounded mode carries a parameter (the kWh
// limit), and switching modes discards it.
//
// A Flow turns a validated vehicle identifier plus a mode selection into a
// connect request against the charging service, and tracks the
// IDLE/SUBMITTING/AUTHORIZED lifecycle. One request in flight per flow is
// enforced structurally; see Flow.
package session
