// Package auth implements the credential gate for the admin view.
//
// The Gate is a two-state machine (unauthenticated/authenticated) that
// persists its credential across restarts via a Store. The file-backed store
// keeps the token under a fixed key in the application config directory;
// presence of the credential at startup is treated as proof of a valid
// session (see Gate for the trust-on-presence contract).
//
// The gate deliberately knows nothing about what it gates: the admin view
// starts its sync loop when the gate opens and stops it when the gate
// closes.
package auth
