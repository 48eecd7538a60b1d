package view

import "math"

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Floor(v*p+0.5) / p
}

// FahrenheitToCelsius converts and rounds to one decimal.
func FahrenheitToCelsius(f float64) float64 {
	return roundTo((f-32)*5/9, 1)
}

// SecondsToHours converts run-time seconds to hours, one decimal.
func SecondsToHours(s float64) float64 {
	return roundTo(s/3600, 1)
}

// KPaToBar converts kilopascals to bar, two decimals.
func KPaToBar(kpa float64) float64 {
	return roundTo(kpa/100, 2)
}

// Round1 rounds to one decimal.
func Round1(v float64) float64 {
	return roundTo(v, 1)
}

// NormalizeTemperature converts to Celsius when unit names Fahrenheit,
// otherwise rounds to one decimal.
func NormalizeTemperature(v float64, unit string) float64 {
	if isFahrenheit(unit) {
		return FahrenheitToCelsius(v)
	}
	return Round1(v)
}

func isFahrenheit(unit string) bool {
	for _, r := range unit {
		if r == 'f' || r == 'F' {
			return true
		}
	}
	return false
}
