package analysis

import "math"

// rollingWindowSeconds is the window for normalized power smoothing,
// assuming 1 Hz power samples.
const rollingWindowSeconds = 30

// NormalizedPower calculates normalized power from a 1 Hz power stream:
// 30-second rolling average, raised to the fourth power, averaged, and
// fourth-rooted. Streams shorter than the rolling window fall back to plain
// average power.
func NormalizedPower(watts []int) int {
	if len(watts) == 0 {
		return 0
	}

	if len(watts) < rollingWindowSeconds {
		sum := 0
		for _, w := range watts {
			if w > 0 {
				sum += w
			}
		}
		return sum / len(watts)
	}

	// Rolling sum avoids recomputing the window at every sample
	windowSum := 0.0
	cleaned := make([]float64, len(watts))
	for i, w := range watts {
		if w > 0 {
			cleaned[i] = float64(w)
		}
	}

	var fourthPowerSum float64
	count := 0
	for i := range cleaned {
		windowSum += cleaned[i]
		if i >= rollingWindowSeconds {
			windowSum -= cleaned[i-rollingWindowSeconds]
		}
		if i >= rollingWindowSeconds-1 {
			avg := windowSum / rollingWindowSeconds
			fourthPowerSum += avg * avg * avg * avg
			count++
		}
	}

	if count == 0 {
		return 0
	}

	return int(math.Round(math.Pow(fourthPowerSum/float64(count), 0.25)))
}

// PowerZone is one band of the standard 6-zone power model, bounded as
// percentages of FTP. MaxPercent of 0 means unbounded (zone 6).
type PowerZone struct {
	Name       string
	MinPercent float64
	MaxPercent float64
}

// PowerZones is the standard 6-zone model.
var PowerZones = []PowerZone{
	{Name: "Recovery", MinPercent: 0, MaxPercent: 55},
	{Name: "Endurance", MinPercent: 55, MaxPercent: 75},
	{Name: "Tempo", MinPercent: 76, MaxPercent: 90},
	{Name: "Threshold", MinPercent: 91, MaxPercent: 105},
	{Name: "VO2max", MinPercent: 106, MaxPercent: 120},
	{Name: "Anaerobic", MinPercent: 121, MaxPercent: 0},
}

// ZoneForPower returns the index into PowerZones for a power value. Zones
// are matched on lower bounds so every power maps to exactly one zone.
func ZoneForPower(power, ftp int) int {
	if ftp <= 0 {
		return 0
	}
	percent := float64(power) / float64(ftp) * 100
	for i := len(PowerZones) - 1; i > 0; i-- {
		if percent >= PowerZones[i].MinPercent {
			return i
		}
	}
	return 0
}

// TimeInZones returns the fraction of samples spent in each power zone.
func TimeInZones(watts []int, ftp int) []float64 {
	fractions := make([]float64, len(PowerZones))
	if len(watts) == 0 || ftp <= 0 {
		return fractions
	}

	counts := make([]int, len(PowerZones))
	total := 0
	for _, w := range watts {
		if w < 0 {
			continue
		}
		counts[ZoneForPower(w, ftp)]++
		total++
	}

	if total == 0 {
		return fractions
	}
	for i, c := range counts {
		fractions[i] = float64(c) / float64(total)
	}
	return fractions
}
