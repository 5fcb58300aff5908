package engine

import (
	"time"

	"atlashq/meridian/pkg/policy"
)

// DateLayout is the wire format for trip dates.
const DateLayout = "2006-01-02"

// Level classifies the severity of a finding or an overall verdict.
type Level string

const (
	// LevelInfo marks informational findings, including the compliant marker.
	LevelInfo Level = "info"

	// LevelWarning marks findings that should be surfaced but not block
	// submission.
	LevelWarning Level = "warning"

	// LevelBlocked marks findings that must prevent submission.
	LevelBlocked Level = "blocked"
)

// severityRank orders levels for verdict aggregation.
var severityRank = map[Level]int{
	LevelInfo:    0,
	LevelWarning: 1,
	LevelBlocked: 2,
}

// FindingCode identifies which rule check produced a finding.
type FindingCode string

const (
	CodeInvalidDates          FindingCode = "invalid_dates"
	CodeInsufficientAdvance   FindingCode = "insufficient_advance_booking"
	CodeInvalidTripWindow     FindingCode = "invalid_trip_window"
	CodeExtendedTripWindow    FindingCode = "extended_trip_window"
	CodeInvalidEstimatedCost  FindingCode = "invalid_estimated_cost"
	CodeBudgetCapExceeded     FindingCode = "budget_cap_exceeded"
	CodeBudgetNearCap         FindingCode = "budget_near_cap"
	CodeTravelClassNotAllowed FindingCode = "travel_class_not_allowed"
	CodePolicyCompliant       FindingCode = "policy_compliant"
)

// TripRequest carries the trip parameters submitted for evaluation.
// Dates arrive as strings because a malformed date is a legitimate input
// the evaluator must render a verdict for, not reject.
type TripRequest struct {
	EmployeeGrade policy.Grade       `json:"employeeGrade"`
	TripType      policy.TripType    `json:"tripType"`
	DepartureDate string             `json:"departureDate"`
	ReturnDate    string             `json:"returnDate"`
	TravelClass   policy.TravelClass `json:"travelClass"`
	EstimatedCost float64            `json:"estimatedCost"`

	// Currency is carried for display only; no conversion happens here.
	Currency string `json:"currency"`
}

// Finding is one rule check's labeled outcome.
type Finding struct {
	Code    FindingCode    `json:"code"`
	Level   Level          `json:"level"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// Result is the compliance verdict for one evaluation. Results are
// ephemeral and never persisted.
type Result struct {
	PolicyVersion string    `json:"policyVersion"`
	Level         Level     `json:"level"`
	Findings      []Finding `json:"findings"`
	EvaluatedAt   time.Time `json:"evaluatedAt"`
}

// Blocked reports whether the verdict must prevent submission.
func (r *Result) Blocked() bool {
	return r.Level == LevelBlocked
}

// HasFinding reports whether the result contains a finding with the code.
func (r *Result) HasFinding(code FindingCode) bool {
	for _, f := range r.Findings {
		if f.Code == code {
			return true
		}
	}
	return false
}
