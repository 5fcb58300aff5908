package policy

// Grade represents an employee seniority tier. Grades are ordered from
// least to most senior; the order is significant for the travel class
// ceiling invariant.
type Grade string

const (
	GradeStaff     Grade = "staff"
	GradeManager   Grade = "manager"
	GradeDirector  Grade = "director"
	GradeExecutive Grade = "executive"
)

// GradesBySeniority lists all grades from least to most senior.
var GradesBySeniority = []Grade{GradeStaff, GradeManager, GradeDirector, GradeExecutive}

// Valid reports whether g is a known grade.
func (g Grade) Valid() bool {
	switch g {
	case GradeStaff, GradeManager, GradeDirector, GradeExecutive:
		return true
	}
	return false
}

// TripType distinguishes domestic from international travel for
// advance-booking requirements.
type TripType string

const (
	TripDomestic      TripType = "domestic"
	TripInternational TripType = "international"
)

// TripTypes lists all trip types.
var TripTypes = []TripType{TripDomestic, TripInternational}

// Valid reports whether t is a known trip type.
func (t TripType) Valid() bool {
	return t == TripDomestic || t == TripInternational
}

// TravelClass represents an ordinal fare class.
type TravelClass string

const (
	ClassEconomy        TravelClass = "economy"
	ClassPremiumEconomy TravelClass = "premium_economy"
	ClassBusiness       TravelClass = "business"
	ClassFirst          TravelClass = "first"
)

// travelClassRank maps each class to its position on the fare ladder.
var travelClassRank = map[TravelClass]int{
	ClassEconomy:        0,
	ClassPremiumEconomy: 1,
	ClassBusiness:       2,
	ClassFirst:          3,
}

// Rank returns the ordinal position of the class on the fare ladder
// (economy < premium_economy < business < first). Unknown classes rank
// below economy.
func (c TravelClass) Rank() int {
	if r, ok := travelClassRank[c]; ok {
		return r
	}
	return -1
}

// Valid reports whether c is a known travel class.
func (c TravelClass) Valid() bool {
	_, ok := travelClassRank[c]
	return ok
}

// Config is the policy configuration value object. A Config is immutable
// once attached to a version record; the store hands out copies.
type Config struct {
	// MinAdvanceDaysByTripType is the minimum number of whole days a trip
	// must be booked ahead of departure, per trip type.
	MinAdvanceDaysByTripType map[TripType]int `yaml:"min_advance_days_by_trip_type" json:"minAdvanceDaysByTripType"`

	// MaxBudgetByGrade is the currency-agnostic spending ceiling per grade.
	MaxBudgetByGrade map[Grade]float64 `yaml:"max_budget_by_grade" json:"maxBudgetByGrade"`

	// MaxTravelClassByGrade is the highest fare class each grade may book.
	// Ceilings must be non-decreasing across the seniority order.
	MaxTravelClassByGrade map[Grade]TravelClass `yaml:"max_travel_class_by_grade" json:"maxTravelClassByGrade"`

	// BudgetWarningThreshold is the fraction of the budget ceiling at which
	// a near-cap warning is raised. Strictly between 0 and 1.
	BudgetWarningThreshold float64 `yaml:"budget_warning_threshold" json:"budgetWarningThreshold"`

	// MaxTripLengthDays is the trip duration above which a warning is raised.
	MaxTripLengthDays int `yaml:"max_trip_length_days" json:"maxTripLengthDays"`
}

// Clone returns a deep copy of the config. Map fields are copied so the
// caller cannot mutate a stored configuration.
func (c Config) Clone() Config {
	out := c
	out.MinAdvanceDaysByTripType = make(map[TripType]int, len(c.MinAdvanceDaysByTripType))
	for k, v := range c.MinAdvanceDaysByTripType {
		out.MinAdvanceDaysByTripType[k] = v
	}
	out.MaxBudgetByGrade = make(map[Grade]float64, len(c.MaxBudgetByGrade))
	for k, v := range c.MaxBudgetByGrade {
		out.MaxBudgetByGrade[k] = v
	}
	out.MaxTravelClassByGrade = make(map[Grade]TravelClass, len(c.MaxTravelClassByGrade))
	for k, v := range c.MaxTravelClassByGrade {
		out.MaxTravelClassByGrade[k] = v
	}
	return out
}
