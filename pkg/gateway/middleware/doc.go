// Package middleware provides HTTP middleware for the gateway server:
// panic recovery, request ID propagation, and structured request logging.
//
// The server composes them outermost-first as recovery, logging, request
// ID, so a panic anywhere below still produces a well-formed JSON 500 and
// a log line carrying the request ID.
package middleware
