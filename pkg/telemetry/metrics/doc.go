// Package metrics provides Prometheus instrumentation for Meridian:
// evaluation verdicts, version store operations, and HTTP traffic.
//
// All metrics live in a dedicated registry owned by a Collector, exposed
// through Collector.Handler() on the configured metrics path.
package metrics
