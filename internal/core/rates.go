package core

// RateTable maps a currency code to its multiplier relative to a common base
// unit. Keys are plain strings because remote tables carry codes outside the
// supported Currency set.
type RateTable map[string]float64

// FallbackRates returns the table used when the exchange endpoint cannot be
// reached or returns an unusable body. The EURO key does not match the EUR
// code; with this table EUR amounts convert at multiplier 1.
func FallbackRates() RateTable {
	return RateTable{
		"USD":  1,
		"GBP":  1.27,
		"EURO": 0.85,
		"ILS":  3.65,
	}
}

// Rate returns the multiplier for code. A missing or zero entry yields 1.
func (t RateTable) Rate(code Currency) float64 {
	if r, ok := t[string(code)]; ok && r != 0 {
		return r
	}
	return 1
}

// Convert converts amount from one currency to another through the base unit
// of rates. Same-currency conversions return amount untouched.
func Convert(amount float64, from, to Currency, rates RateTable) float64 {
	if from == to {
		return amount
	}
	return amount / rates.Rate(from) * rates.Rate(to)
}
