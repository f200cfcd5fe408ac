package core

// MonthNames holds the abbreviated month labels used by the yearly totals.
var MonthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type (
	// MonthlyReport lists a month's costs in their original currency, with a
	// total converted into the display currency.
	MonthlyReport struct {
		Year  int          `json:"year"`
		Month int          `json:"month"` // 1-12
		Costs []ReportLine `json:"costs"`
		Total ReportTotal  `json:"total"`
	}

	ReportLine struct {
		Sum         float64  `json:"sum"`
		Currency    Currency `json:"currency"`
		Category    string   `json:"category"`
		Description string   `json:"description"`
		Day         int      `json:"day"`
	}

	ReportTotal struct {
		Currency Currency `json:"currency"`
		Total    float64  `json:"total"`
	}

	// CategoryTotal is one slice of the per-category breakdown.
	CategoryTotal struct {
		ID    string  `json:"id"`
		Label string  `json:"label"`
		Value float64 `json:"value"`
	}

	// MonthTotal is one bar of the yearly breakdown.
	MonthTotal struct {
		Month string  `json:"month"`
		Value float64 `json:"value"`
	}
)
