package labtests

// DefaultDefinitions returns the built-in reference ranges for common panels.
// Values follow widely published adult reference intervals; age brackets
// adjust where pediatric/elderly norms differ.
func DefaultDefinitions() []TestDefinition {
	return []TestDefinition{
		{
			Name: "Glucose", Unit: "mg/dL", Kind: RangeNumeric, Low: 70, High: 110,
			AgeAdjustments: []AgeAdjustment{
				{MinAge: 0, MaxAge: 5, Low: 60, High: 100},
				{MinAge: 60, MaxAge: 200, Low: 70, High: 120},
			},
		},
		{
			Name: "Hemoglobin", Unit: "g/dL", Kind: RangeNumeric, Low: 13.0, High: 17.0,
			AgeAdjustments: []AgeAdjustment{
				{MinAge: 0, MaxAge: 12, Low: 11.0, High: 15.5},
			},
		},
		{Name: "Hematocrit", Unit: "%", Kind: RangeNumeric, Low: 38.0, High: 50.0},
		{Name: "WBC", Unit: "10^3/uL", Kind: RangeNumeric, Low: 4.0, High: 11.0},
		{Name: "Platelet Count", Unit: "10^3/uL", Kind: RangeNumeric, Low: 150, High: 450},
		{Name: "Total Cholesterol", Unit: "mg/dL", Kind: RangeNumeric, Low: 0, High: 200},
		{Name: "HDL Cholesterol", Unit: "mg/dL", Kind: RangeNumeric, Low: 40, High: 100},
		{Name: "LDL Cholesterol", Unit: "mg/dL", Kind: RangeNumeric, Low: 0, High: 130},
		{Name: "Triglycerides", Unit: "mg/dL", Kind: RangeNumeric, Low: 0, High: 150},
		{
			Name: "Creatinine", Unit: "mg/dL", Kind: RangeNumeric, Low: 0.6, High: 1.3,
			AgeAdjustments: []AgeAdjustment{
				{MinAge: 0, MaxAge: 12, Low: 0.3, High: 0.7},
			},
		},
		{Name: "BUN", Unit: "mg/dL", Kind: RangeNumeric, Low: 7, High: 20},
		{Name: "ALT", Unit: "U/L", Kind: RangeNumeric, Low: 7, High: 56},
		{Name: "AST", Unit: "U/L", Kind: RangeNumeric, Low: 10, High: 40},
		{Name: "TSH", Unit: "mIU/L", Kind: RangeNumeric, Low: 0.4, High: 4.0},
		{Name: "Vitamin D", Unit: "ng/mL", Kind: RangeNumeric, Low: 30, High: 100},
		{Name: "Vitamin B12", Unit: "pg/mL", Kind: RangeNumeric, Low: 200, High: 900},
		{Name: "HbA1c", Unit: "%", Kind: RangeNumeric, Low: 4.0, High: 5.6},
		{
			Name: "Urine Protein", Kind: RangeCategorical,
			Accepted: []string{"negative", "nil", "absent", "trace"},
			Abnormal: []string{"positive", "present", "1+", "2+", "3+"},
		},
		{
			Name: "Urine Glucose", Kind: RangeCategorical,
			Accepted: []string{"negative", "nil", "absent"},
			Abnormal: []string{"positive", "present", "trace", "1+", "2+"},
		},
		{
			Name: "Occult Blood", Kind: RangeCategorical,
			Accepted: []string{"negative", "absent"},
			Abnormal: []string{"positive", "present"},
		},
	}
}

// DefaultRegistry builds a registry over DefaultDefinitions.
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultDefinitions())
}
