package analysis

import "errors"

// EWMA time constants in days for the single-dimension fitness model.
const (
	CTLTimeConstant = 42 // chronic training load - "fitness"
	ATLTimeConstant = 7  // acute training load - "fatigue"
)

// ErrInvalidFTP is returned when a stress-score calculation is attempted
// without a positive FTP configured.
var ErrInvalidFTP = errors.New("ftp must be greater than zero")

// ErrInvalidHRReserve is returned when the threshold heart rate does not
// exceed the resting heart rate.
var ErrInvalidHRReserve = errors.New("threshold heart rate must be greater than resting heart rate")

// EWMAStep applies one day of the exponentially-weighted moving average:
//
//	new = previous + (dailyStress - previous) / timeConstant
//
// Unlike the 3D model this recurrence is strictly per-day: a gap in the
// record is bridged by calling it once per missing day with zero stress,
// which is the standard convention for CTL/ATL.
func EWMAStep(previous, dailyStress, timeConstantDays float64) float64 {
	return previous + (dailyStress-previous)/timeConstantDays
}

// StressScore calculates the training stress score for a workout:
//
//	score = duration * NP * IF / (FTP * 3600) * 100
//
// where IF = NP/FTP. One hour at FTP scores 100. A missing FTP is a
// configuration error the caller must surface, not paper over.
func StressScore(durationSeconds int, normalizedPower float64, ftp int) (float64, error) {
	if ftp <= 0 {
		return 0, ErrInvalidFTP
	}
	if durationSeconds <= 0 || normalizedPower <= 0 {
		return 0, nil
	}

	intensityFactor := normalizedPower / float64(ftp)
	score := float64(durationSeconds) * normalizedPower * intensityFactor / (float64(ftp) * 3600) * 100
	return score, nil
}

// IntensityFactor is the ratio of normalized power to FTP.
func IntensityFactor(normalizedPower float64, ftp int) (float64, error) {
	if ftp <= 0 {
		return 0, ErrInvalidFTP
	}
	if normalizedPower <= 0 {
		return 0, nil
	}
	return normalizedPower / float64(ftp), nil
}

// StressFromHeartRate estimates a stress score from heart rate when no power
// data exists, using the heart-rate-reserve intensity factor:
//
//	hrIF  = (avgHR - restHR) / (lthr - restHR), clamped to [0, 1.2]
//	score = duration * hrIF^2 / 3600 * 100
//
// A threshold HR at or below resting HR is a profile configuration error and
// is rejected. An average HR below resting is treated as a sensor artifact
// and scores zero: bulk replays over noisy history must keep going.
func StressFromHeartRate(durationSeconds int, avgHR, maxHR, lthr, restHR float64) (float64, error) {
	if lthr <= restHR {
		return 0, ErrInvalidHRReserve
	}
	if durationSeconds <= 0 {
		return 0, nil
	}
	if avgHR < restHR {
		return 0, nil
	}

	hrIF := (avgHR - restHR) / (lthr - restHR)
	if hrIF > 1.2 {
		hrIF = 1.2
	}
	if hrIF < 0 {
		hrIF = 0
	}

	return float64(durationSeconds) * hrIF * hrIF / 3600 * 100, nil
}
