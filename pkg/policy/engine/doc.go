// Package engine implements the travel policy rule evaluator.
//
// The evaluator is a pure function over a trip request and one policy
// configuration: it runs every rule check independently, collects zero or
// one finding per check, and reduces them to an overall compliance level.
// It performs no I/O and holds no mutable state, so it is safe to call
// from any number of goroutines. Administrators use the same entry point
// to simulate hypothetical trips against draft configurations.
package engine
