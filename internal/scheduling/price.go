package scheduling

import "strconv"

// Price is hourlyRate × hours(interval). The result keeps full precision;
// rounding belongs to FormatPrice.
func Price(hourlyRate float64, interval Interval) float64 {
	return hourlyRate * interval.Hours()
}

// FormatPrice renders a price with two decimals for display.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
