// Package tui implements the interactive operator console.
//
// The console has two screens. The charging terminal collects a vehicle
// identifier across four input segments, lets the operator pick a charge
// mode, and submits the connection request; on success it shows the session
// receipt. The admin screen gates a live network dashboard behind operator
// login and keeps it fresh with the dashboard sync loop.
//
// All screens follow the same structure: a model owning its sub-components,
// async work dispatched as commands that resolve to completion messages, and
// a View wrapped by RenderApplicationContainer for the shared full-screen
// chrome. Network requests never run on the update loop.
package tui
