// Meridian is a travel policy compliance engine and versioned policy store.
//
// It serves an HTTP API that evaluates travel requests against the active
// corporate travel policy, providing:
//   - Deterministic compliance verdicts (compliant, needs approval, blocked)
//   - Effective-dated policy versions with draft/scheduled/active lifecycle
//   - An append-only audit trail of every policy change
//   - Scheduled archival of audit events for long-term retention
//
// Usage:
//
//	# Start server with default configuration
//	meridian run
//
//	# Start with custom configuration file
//	meridian run --config /path/to/config.yaml
//
//	# Show version information
//	meridian version
//
//	# Validate configuration and seed files
//	meridian validate --seed policy-seed.yaml
//
//	# Evaluate a trip locally without a server
//	meridian simulate --trip trip.json --seed policy-seed.yaml
//
//	# Export the audit trail
//	meridian audit export --format jsonl --output audit.jsonl
package main

func main() {
	Execute()
}
