// Package middleware provides the HTTP middleware chain: request id
// assignment, structured request logging, metrics, and panic recovery.
package middleware
