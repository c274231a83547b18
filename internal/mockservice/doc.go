// Package mockservice simulates the charging service for local development.
//
// It serves the console's full HTTP surface with an in-memory network of
// charging slots, a drifting solar/wind supply, and bearer-token admin
// authentication. It exists so the console can be developed and demoed
// without a real charging network.
package mockservice
