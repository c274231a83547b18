// Package config provides user configuration management for the EcoCharge
// console.
//
// This package manages a YAML settings file holding operator preferences:
// the charging-service base address, the dashboard refresh cadence, and the
// endpoint discovery timeout. The file follows OS-specific conventions for
// storage location.
//
// # Settings File Location
//
//   - Linux: $XDG_CONFIG_HOME/ecocharge/settings.yaml or $HOME/.config/ecocharge/settings.yaml
//   - macOS: $HOME/.config/ecocharge/settings.yaml
//   - Windows: %LOCALAPPDATA%\ecocharge\settings.yaml
//
// # Security
//
// The admin credential is never stored in the settings file. It is managed
// separately by the auth package, in its own file under the same directory.
//
// # Thread Safety
//
// The global settings use sync.Once for safe initialization across
// goroutines. File operations are protected by a mutex to ensure atomic
// writes.
package config
