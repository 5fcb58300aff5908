package policy

import "fmt"

// ValidationError describes the first policy configuration field that
// failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid policy config: %s: %s", e.Field, e.Message)
}

// Validate checks a policy configuration against the domain invariants:
// per-trip-type advance days must be present and non-negative, per-grade
// budget ceilings must be present and positive, travel class ceilings must
// be valid classes and non-decreasing across the seniority order, the
// warning threshold must lie strictly between 0 and 1, and the maximum trip
// length must be positive. The first violation found is returned as a
// *ValidationError naming the offending field.
func Validate(c Config) error {
	for _, tt := range TripTypes {
		days, ok := c.MinAdvanceDaysByTripType[tt]
		if !ok {
			return &ValidationError{
				Field:   fmt.Sprintf("minAdvanceDaysByTripType.%s", tt),
				Message: "missing entry",
			}
		}
		if days < 0 {
			return &ValidationError{
				Field:   fmt.Sprintf("minAdvanceDaysByTripType.%s", tt),
				Message: fmt.Sprintf("must be non-negative, got %d", days),
			}
		}
	}

	for _, g := range GradesBySeniority {
		budget, ok := c.MaxBudgetByGrade[g]
		if !ok {
			return &ValidationError{
				Field:   fmt.Sprintf("maxBudgetByGrade.%s", g),
				Message: "missing entry",
			}
		}
		if budget <= 0 {
			return &ValidationError{
				Field:   fmt.Sprintf("maxBudgetByGrade.%s", g),
				Message: fmt.Sprintf("must be positive, got %g", budget),
			}
		}
	}

	for _, g := range GradesBySeniority {
		class, ok := c.MaxTravelClassByGrade[g]
		if !ok {
			return &ValidationError{
				Field:   fmt.Sprintf("maxTravelClassByGrade.%s", g),
				Message: "missing entry",
			}
		}
		if !class.Valid() {
			return &ValidationError{
				Field:   fmt.Sprintf("maxTravelClassByGrade.%s", g),
				Message: fmt.Sprintf("unknown travel class %q", class),
			}
		}
	}

	// Class ceilings may never drop as seniority rises.
	for i := 1; i < len(GradesBySeniority); i++ {
		junior, senior := GradesBySeniority[i-1], GradesBySeniority[i]
		if c.MaxTravelClassByGrade[senior].Rank() < c.MaxTravelClassByGrade[junior].Rank() {
			return &ValidationError{
				Field: fmt.Sprintf("maxTravelClassByGrade.%s", senior),
				Message: fmt.Sprintf("ceiling %q is below %s ceiling %q",
					c.MaxTravelClassByGrade[senior], junior, c.MaxTravelClassByGrade[junior]),
			}
		}
	}

	if c.BudgetWarningThreshold <= 0 || c.BudgetWarningThreshold >= 1 {
		return &ValidationError{
			Field:   "budgetWarningThreshold",
			Message: fmt.Sprintf("must be strictly between 0 and 1, got %g", c.BudgetWarningThreshold),
		}
	}

	if c.MaxTripLengthDays <= 0 {
		return &ValidationError{
			Field:   "maxTripLengthDays",
			Message: fmt.Sprintf("must be positive, got %d", c.MaxTripLengthDays),
		}
	}

	return nil
}
