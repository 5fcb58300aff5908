package policy

// Baseline returns the built-in policy configuration used when the version
// store holds no records at all. It is deliberately conservative.
func Baseline() Config {
	return Config{
		MinAdvanceDaysByTripType: map[TripType]int{
			TripDomestic:      3,
			TripInternational: 14,
		},
		MaxBudgetByGrade: map[Grade]float64{
			GradeStaff:     3500,
			GradeManager:   6000,
			GradeDirector:  9500,
			GradeExecutive: 15000,
		},
		MaxTravelClassByGrade: map[Grade]TravelClass{
			GradeStaff:     ClassEconomy,
			GradeManager:   ClassPremiumEconomy,
			GradeDirector:  ClassBusiness,
			GradeExecutive: ClassFirst,
		},
		BudgetWarningThreshold: 0.85,
		MaxTripLengthDays:      14,
	}
}
