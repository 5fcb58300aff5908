package engine

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"atlashq/meridian/pkg/policy"
)

// Evaluator checks trip requests against a policy configuration.
// The zero value is usable; NewEvaluator attaches a logger.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates a new rule evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		logger: logger.With("component", "policy.engine"),
	}
}

// Evaluate runs every rule check against the trip and returns the verdict.
// All checks run independently: a blocked finding from one rule does not
// short-circuit the others. Only checks whose inputs are unusable are
// suppressed (date arithmetic after an unparseable date, the budget
// comparison after a non-finite or non-positive cost).
//
// policyVersion labels the verdict with the configuration's version id; it
// does not influence evaluation. now is the evaluation instant.
func (e *Evaluator) Evaluate(trip TripRequest, policyVersion string, cfg policy.Config, now time.Time) *Result {
	var findings []Finding

	departure, depErr := time.Parse(DateLayout, trip.DepartureDate)
	ret, retErr := time.Parse(DateLayout, trip.ReturnDate)
	datesValid := depErr == nil && retErr == nil

	if !datesValid {
		findings = append(findings, Finding{
			Code:    CodeInvalidDates,
			Level:   LevelBlocked,
			Message: "departure or return date could not be parsed",
			Context: map[string]any{
				"departureDate": trip.DepartureDate,
				"returnDate":    trip.ReturnDate,
			},
		})
	}

	if datesValid {
		if f := checkAdvanceBooking(trip, cfg, departure, now); f != nil {
			findings = append(findings, *f)
		}
		if ret.Before(departure) {
			findings = append(findings, Finding{
				Code:    CodeInvalidTripWindow,
				Level:   LevelBlocked,
				Message: "return date precedes departure date",
			})
		}
		if f := checkTripLength(cfg, departure, ret); f != nil {
			findings = append(findings, *f)
		}
	}

	if f := checkBudget(trip, cfg); f != nil {
		findings = append(findings, *f)
	}

	if f := checkTravelClass(trip, cfg); f != nil {
		findings = append(findings, *f)
	}

	if len(findings) == 0 {
		findings = append(findings, Finding{
			Code:    CodePolicyCompliant,
			Level:   LevelInfo,
			Message: "trip complies with travel policy",
		})
	}

	level := overallLevel(findings)

	if e.logger != nil {
		e.logger.Debug("trip evaluated",
			"policy_version", policyVersion,
			"level", string(level),
			"findings", len(findings),
		)
	}

	return &Result{
		PolicyVersion: policyVersion,
		Level:         level,
		Findings:      findings,
		EvaluatedAt:   now,
	}
}

// checkAdvanceBooking flags trips booked with less lead time than the
// configured minimum for the trip type. Lead time is the count of whole
// days between the evaluation instant's midnight and the departure date's
// midnight, truncated.
func checkAdvanceBooking(trip TripRequest, cfg policy.Config, departure, now time.Time) *Finding {
	required, ok := cfg.MinAdvanceDaysByTripType[trip.TripType]
	if !ok {
		return nil
	}

	lead := wholeDaysBetween(midnightOf(now.UTC()), departure)
	if lead >= required {
		return nil
	}

	return &Finding{
		Code:  CodeInsufficientAdvance,
		Level: LevelBlocked,
		Message: fmt.Sprintf("%s trips must be booked at least %d days in advance, got %d",
			trip.TripType, required, lead),
		Context: map[string]any{
			"daysProvided": lead,
			"daysRequired": required,
			"tripType":     string(trip.TripType),
		},
	}
}

// checkTripLength flags trips longer than the configured maximum. The
// length is the floored day count between return and departure, clamped
// at zero so an inverted window never yields a negative length.
func checkTripLength(cfg policy.Config, departure, ret time.Time) *Finding {
	length := wholeDaysBetween(departure, ret)
	if length < 0 {
		length = 0
	}
	if length <= cfg.MaxTripLengthDays {
		return nil
	}

	return &Finding{
		Code:  CodeExtendedTripWindow,
		Level: LevelWarning,
		Message: fmt.Sprintf("trip length of %d days exceeds the %d day policy maximum",
			length, cfg.MaxTripLengthDays),
		Context: map[string]any{
			"tripLengthDays": length,
			"maxLengthDays":  cfg.MaxTripLengthDays,
		},
	}
}

// checkBudget validates the estimated cost and compares it against the
// grade's ceiling. A non-finite or non-positive cost is itself a blocked
// finding and suppresses the ceiling comparison.
func checkBudget(trip TripRequest, cfg policy.Config) *Finding {
	cost := trip.EstimatedCost
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost <= 0 {
		return &Finding{
			Code:    CodeInvalidEstimatedCost,
			Level:   LevelBlocked,
			Message: "estimated cost must be a positive finite amount",
			Context: map[string]any{"estimatedCost": trip.EstimatedCost},
		}
	}

	ceiling, ok := cfg.MaxBudgetByGrade[trip.EmployeeGrade]
	if !ok {
		return nil
	}

	if cost > ceiling {
		return &Finding{
			Code:  CodeBudgetCapExceeded,
			Level: LevelBlocked,
			Message: fmt.Sprintf("estimated cost %.2f %s exceeds the %s budget cap of %.2f",
				cost, trip.Currency, trip.EmployeeGrade, ceiling),
			Context: map[string]any{
				"estimatedCost": cost,
				"budgetCap":     ceiling,
				"currency":      trip.Currency,
			},
		}
	}

	if cost/ceiling >= cfg.BudgetWarningThreshold {
		return &Finding{
			Code:  CodeBudgetNearCap,
			Level: LevelWarning,
			Message: fmt.Sprintf("estimated cost %.2f %s is within %.0f%% of the %s budget cap",
				cost, trip.Currency, cfg.BudgetWarningThreshold*100, trip.EmployeeGrade),
			Context: map[string]any{
				"estimatedCost": cost,
				"budgetCap":     ceiling,
				"threshold":     cfg.BudgetWarningThreshold,
			},
		}
	}

	return nil
}

// checkTravelClass flags requests for a fare class above the grade's ceiling.
func checkTravelClass(trip TripRequest, cfg policy.Config) *Finding {
	maxClass, ok := cfg.MaxTravelClassByGrade[trip.EmployeeGrade]
	if !ok {
		return nil
	}
	if trip.TravelClass.Rank() <= maxClass.Rank() {
		return nil
	}

	return &Finding{
		Code:  CodeTravelClassNotAllowed,
		Level: LevelBlocked,
		Message: fmt.Sprintf("travel class %q is not allowed for grade %s (maximum %q)",
			trip.TravelClass, trip.EmployeeGrade, maxClass),
		Context: map[string]any{
			"requestedClass": string(trip.TravelClass),
			"maxClass":       string(maxClass),
		},
	}
}

// overallLevel reduces findings to the most severe level present.
func overallLevel(findings []Finding) Level {
	level := LevelInfo
	for _, f := range findings {
		if severityRank[f.Level] > severityRank[level] {
			level = f.Level
		}
	}
	return level
}

// midnightOf truncates an instant to its calendar date.
func midnightOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// wholeDaysBetween returns the truncated count of 24h days from a to b.
func wholeDaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
