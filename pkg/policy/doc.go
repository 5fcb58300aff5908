// Package policy defines the travel policy domain model shared by the
// rule evaluator and the version store: employee grades, trip types,
// the ordered travel class ladder, and the policy configuration value
// object with its validation rules.
package policy
