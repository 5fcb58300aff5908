// Package handlers implements the HTTP API: policy version management,
// audit trail access, trip simulation, and health probes.
package handlers
