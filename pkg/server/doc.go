// Package server provides the Meridian HTTP API server: policy version
// management, audit access, trip simulation, health probes, and metrics.
package server
