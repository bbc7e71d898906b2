package ds4

import "math"

// GyroDpsToRaw converts an angular velocity in degrees/second into the raw
// int16 report representation: clamp to ±GyroInputMaxDps, then scale so the
// clamp range spans ±GyroRawScale counts.
func GyroDpsToRaw(dps float64) int16 {
	clamped := math.Max(-GyroInputMaxDps, math.Min(GyroInputMaxDps, dps))
	return clampI16(math.Round(clamped / GyroInputMaxDps * GyroRawScale))
}

// AccelGToRaw converts an acceleration in g into the raw int16 report
// representation: clamp to ±AccelInputMaxG, scale onto ±AccelRawScale counts.
func AccelGToRaw(g float64) int16 {
	clamped := math.Max(-AccelInputMaxG, math.Min(AccelInputMaxG, g))
	return clampI16(math.Round(clamped / AccelInputMaxG * AccelRawScale))
}

// RestingAccelRaw returns the accelerometer vector for a controller lying
// flat and still: gravity only.
func RestingAccelRaw() (x, y, z int16) {
	return DefaultAccelXRaw, DefaultAccelYRaw, DefaultAccelZRaw
}

func clampI16(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
