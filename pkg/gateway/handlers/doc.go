// Package handlers contains the HTTP handlers for the gateway API
// surface: text generation, usage reporting, and health.
//
// Handlers only translate between HTTP and the typed pipeline; all
// request governance lives in the gateway and governance packages.
package handlers
