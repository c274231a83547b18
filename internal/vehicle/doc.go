// Package vehicle implements the vehicle-identifier input state machine.
//
// A vehicle identifier is four fixed-format segments (2 letters, 2 digits,
// 2 letters, 4 digits) composed as "KA-12-AB-3456". The Composer sanitizes
// each segment as the operator types and derives validity from segment
// lengths alone; it performs no I/O and holds no UI state, so the input
// behavior is testable without a rendering surface.
package vehicle
