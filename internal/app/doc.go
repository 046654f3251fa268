// Package app wires a parsed page to the disturb engine.
//
// Start discovers the marker-class elements of a page.Document, applies the
// configured defaults and any per-element attribute overrides, and starts a
// disturb.Service over them. The returned Runtime backs the HTTP API.
package app
