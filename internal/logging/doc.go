// Package logging provides structured logging for the EcoCharge console.
//
// The console is an interactive terminal application, so logging is silent by
// default: any unexpected output would be drawn over the UI. Verbosity is
// opted into with the ECOCHARGE_LOG_LEVEL environment variable:
//
//	ECOCHARGE_LOG_LEVEL=debug ecocharge admin
//
// Output goes to stderr so it can be redirected away from the UI:
//
//	ECOCHARGE_LOG_LEVEL=debug ecocharge admin 2>debug.log
//
// The package wraps a global zap logger with package-level helpers
// (Info, Debug, Warn, Error) plus domain helpers for service request logging.
package logging
