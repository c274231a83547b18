// Package api implements the HTTP client for the EcoCharge charging service.
//
// The service is an external collaborator that owns all business logic:
// tariff calculation, slot assignment, renewable-vs-grid source selection,
// and authentication. This package only submits intents and reads state.
//
// # Endpoints
//
//   - POST /connect - authorize a vehicle's charging session
//   - POST /admin/login - authenticate an administrator
//   - GET /admin/dashboard_stats - fetch a dashboard snapshot
//
// # Errors
//
// Every failure is classified into one of three kinds:
//
//   - KindValidation - detected locally, never sent to the service
//   - KindRequest - the service answered non-2xx with a {detail} reason
//   - KindTransport - no response obtained at all
//
// Callers surface Reason(err) to the operator; nothing in this package is
// fatal and every failure is recoverable by retrying.
package api
