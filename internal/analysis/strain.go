package analysis

// Intensity thresholds as fractions of FTP
const (
	lowIntensityMax    = 0.75 // below this, effort is primarily aerobic
	thresholdWatermark = 1.0  // 0.75-1.0 is the tempo/threshold band
	peakPowerWatermark = 1.2  // max power above this adds neuromuscular strain
)

// DailyStrain is one day's strain score and its split across the three
// training systems. Total always equals Low+High+Peak.
type DailyStrain struct {
	Total float64
	Low   float64 // aerobic
	High  float64 // anaerobic
	Peak  float64 // neuromuscular
}

// Add sums two strain breakdowns (multiple activities on the same day).
func (d DailyStrain) Add(o DailyStrain) DailyStrain {
	return DailyStrain{
		Total: d.Total + o.Total,
		Low:   d.Low + o.Low,
		High:  d.High + o.High,
		Peak:  d.Peak + o.Peak,
	}
}

// IsZero reports whether no strain was recorded.
func (d DailyStrain) IsZero() bool {
	return d.Total == 0 && d.Low == 0 && d.High == 0 && d.Peak == 0
}

// StrainInput describes one completed workout. Power fields are nil when
// the activity had no power meter.
type StrainInput struct {
	DurationSeconds int
	AveragePower    *float64 // watts
	NormalizedPower *float64 // watts
	MaxPower        *float64 // watts
	FTP             int      // watts
	ActivityType    string   // Strava type, e.g. "Ride", "VirtualRide"
}

// strainPerHour estimates hourly strain for activities without power data.
var strainPerHour = map[string]float64{
	"Ride":        50,
	"VirtualRide": 60, // indoor efforts tend to be more consistent
	"Run":         70,
	"Walk":        25,
	"Hike":        40,
	"Swim":        55,
}

const defaultStrainPerHour = 50

// ComputeStrain calculates a workout's strain score and allocates it across
// the Low/High/Peak systems based on intensity and duration.
//
// The total follows the standard stress-score formula: one hour at threshold
// power scores 100 points. Degenerate inputs (missing FTP, zero duration)
// produce a zero result rather than an error so that a single bad activity
// cannot abort a bulk recomputation.
func ComputeStrain(in StrainInput) DailyStrain {
	if in.FTP <= 0 || in.DurationSeconds <= 0 {
		return DailyStrain{}
	}

	power := 0.0
	if in.NormalizedPower != nil && *in.NormalizedPower > 0 {
		power = *in.NormalizedPower
	} else if in.AveragePower != nil && *in.AveragePower > 0 {
		power = *in.AveragePower
	}

	if power <= 0 {
		return estimateStrainFromDuration(in.DurationSeconds, in.ActivityType)
	}

	ftp := float64(in.FTP)
	intensityFactor := power / ftp
	total := float64(in.DurationSeconds) * power * intensityFactor / (ftp * 3600) * 100

	low, high, peak := allocateByIntensity(total, intensityFactor, in.DurationSeconds, in.MaxPower, in.FTP)

	return DailyStrain{Total: total, Low: low, High: high, Peak: peak}
}

// allocateByIntensity splits a total strain score across the three systems.
//
// Longer, easier efforts load the aerobic system; shorter, harder efforts
// load the anaerobic and neuromuscular systems. The three ratios are
// renormalized before being applied so the parts sum to the total exactly.
func allocateByIntensity(total, intensityFactor float64, durationSeconds int, maxPower *float64, ftp int) (low, high, peak float64) {
	if total <= 0 {
		return 0, 0, 0
	}

	var lowRatio, highRatio, peakRatio float64
	switch {
	case intensityFactor <= lowIntensityMax:
		// The lower the intensity, the more goes to Low
		lowRatio = 0.7 + 0.2*(1-intensityFactor/lowIntensityMax)
		peakRatio = 0.05
		highRatio = 1 - lowRatio - peakRatio
	case intensityFactor <= thresholdWatermark:
		// Tempo/threshold band: interpolate Low 50%->20%, High 40%->80%
		progress := (intensityFactor - lowIntensityMax) / (thresholdWatermark - lowIntensityMax)
		lowRatio = 0.5 - 0.3*progress
		highRatio = 0.4 + 0.4*progress
		peakRatio = 0.1 * progress
	default:
		// Above threshold
		lowRatio = 0.15
		highRatio = 0.55
		peakRatio = 0.30
	}

	// Efforts beyond two hours shift strain back toward the aerobic system,
	// capped at 15 points, drawn 70/30 from High/Peak.
	hours := float64(durationSeconds) / 3600
	if hours > 2 {
		shift := (hours - 2) * 0.05
		if shift > 0.15 {
			shift = 0.15
		}
		lowRatio += shift
		highRatio -= shift * 0.7
		peakRatio -= shift * 0.3
	}

	// Power spikes well above FTP add neuromuscular strain, capped at 15
	// points, drawn 70/30 from High/Low.
	if maxPower != nil && ftp > 0 {
		maxRatio := *maxPower / float64(ftp)
		if maxRatio > peakPowerWatermark {
			bonus := (maxRatio - peakPowerWatermark) * 0.1
			if bonus > 0.15 {
				bonus = 0.15
			}
			peakRatio += bonus
			highRatio -= bonus * 0.7
			lowRatio -= bonus * 0.3
		}
	}

	// The two shifts can push a ratio below zero on very long, very easy
	// rides; no system may receive a negative share.
	if lowRatio < 0 {
		lowRatio = 0
	}
	if highRatio < 0 {
		highRatio = 0
	}
	if peakRatio < 0 {
		peakRatio = 0
	}

	sum := lowRatio + highRatio + peakRatio
	lowRatio /= sum
	highRatio /= sum
	peakRatio /= sum

	return total * lowRatio, total * highRatio, total * peakRatio
}

// estimateStrainFromDuration estimates strain for activities without power
// data, assuming a moderate effort of unknown structure.
func estimateStrainFromDuration(durationSeconds int, activityType string) DailyStrain {
	rate, ok := strainPerHour[activityType]
	if !ok {
		rate = defaultStrainPerHour
	}

	total := float64(durationSeconds) / 3600 * rate
	return DailyStrain{
		Total: total,
		Low:   total * 0.65,
		High:  total * 0.28,
		Peak:  total * 0.07,
	}
}
