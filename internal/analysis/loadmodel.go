package analysis

import (
	"fmt"
	"math"
)

// Time constants in days for each system's impulse response. Training load
// decays slowly (fitness), recovery load decays fast (fatigue).
var (
	tlTimeConstants = [3]float64{60, 22, 22} // low, high, peak
	rlTimeConstants = [3]float64{7, 5, 5}
)

// TrainingStatus is the categorical readiness derived from a LoadState.
type TrainingStatus int

const (
	StatusVeryFresh TrainingStatus = iota // extended recovery, high readiness
	StatusFresh                           // recovered, ready for training
	StatusTired                           // short-term systems need recovery
	StatusVeryTired                       // all systems need recovery
	StatusDetraining                      // prolonged inactivity
)

var statusNames = map[TrainingStatus]string{
	StatusVeryFresh:  "very_fresh",
	StatusFresh:      "fresh",
	StatusTired:      "tired",
	StatusVeryTired:  "very_tired",
	StatusDetraining: "detraining",
}

// String returns the storage/API representation of the status.
func (s TrainingStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "fresh"
}

// ParseTrainingStatus maps a stored string back to a status. Unrecognized
// values are rejected so a corrupted row cannot silently reclassify a day.
func ParseTrainingStatus(s string) (TrainingStatus, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return StatusFresh, fmt.Errorf("unknown training status %q", s)
}

// Description returns a human-readable explanation of the status.
func (s TrainingStatus) Description() string {
	switch s {
	case StatusVeryFresh:
		return "Very fresh - ready for a big effort"
	case StatusFresh:
		return "Fresh - ready for training"
	case StatusTired:
		return "Tired - favor low intensity"
	case StatusVeryTired:
		return "Very tired - rest recommended"
	case StatusDetraining:
		return "Detraining - time to get back on the bike"
	default:
		return ""
	}
}

// SystemLoad is one system's (training load, recovery load) pair.
type SystemLoad struct {
	TL float64 // training load: slow-decaying fitness accumulation
	RL float64 // recovery load: fast-decaying fatigue accumulation
}

// Form is the system's readiness: training load minus recovery load.
func (s SystemLoad) Form() float64 {
	return s.TL - s.RL
}

// LoadState is the full 3D training-load state for one day.
type LoadState struct {
	Low  SystemLoad // aerobic, 60-day time constant
	High SystemLoad // anaerobic, 22-day time constant
	Peak SystemLoad // neuromuscular, 22-day time constant
}

// TotalTL is the summed training load across all systems.
func (ls LoadState) TotalTL() float64 {
	return ls.Low.TL + ls.High.TL + ls.Peak.TL
}

// TotalRL is the summed recovery load across all systems.
func (ls LoadState) TotalRL() float64 {
	return ls.Low.RL + ls.High.RL + ls.Peak.RL
}

// StatusThresholds are the tunable constants behind status classification.
// The defaults match the values the model was calibrated with; they have no
// documented physiological derivation.
type StatusThresholds struct {
	DetrainingTL  float64 // total TL below this means detraining
	VeryFreshForm float64 // weighted form above this means very fresh
	LowWeight     float64
	HighWeight    float64
	PeakWeight    float64
}

// DefaultThresholds returns the standard classification thresholds. The
// aerobic system carries the largest weight: it has the longest memory and
// most directly reflects base fitness against accumulated fatigue.
func DefaultThresholds() StatusThresholds {
	return StatusThresholds{
		DetrainingTL:  10,
		VeryFreshForm: 10,
		LowWeight:     0.5,
		HighWeight:    0.3,
		PeakWeight:    0.2,
	}
}

// OverallForm is the weighted readiness across all three systems.
func (t StatusThresholds) OverallForm(ls LoadState) float64 {
	return t.LowWeight*ls.Low.Form() + t.HighWeight*ls.High.Form() + t.PeakWeight*ls.Peak.Form()
}

// Advance applies the impulse-response recurrence to a load state:
//
//	TL_new = TL_old * exp(-t/tau_tl) + strain
//	RL_new = RL_old * exp(-t/tau_rl) + strain
//
// Both loads receive the same strain increment; they differ only in decay
// rate. A rest day is an Advance with zero strain. daysElapsed may be any
// positive value, so gaps in the record decay correctly without synthesizing
// per-day steps. Callers must not pass a negative daysElapsed.
func Advance(state LoadState, strain DailyStrain, daysElapsed float64) LoadState {
	systems := [3]*SystemLoad{&state.Low, &state.High, &state.Peak}
	increments := [3]float64{strain.Low, strain.High, strain.Peak}

	for i, sys := range systems {
		sys.TL = sys.TL*math.Exp(-daysElapsed/tlTimeConstants[i]) + increments[i]
		sys.RL = sys.RL*math.Exp(-daysElapsed/rlTimeConstants[i]) + increments[i]
	}

	return state
}

// ClassifyStatus derives the training status from a load state. Rules are
// checked in precedence order; the detraining check comes first so that a
// decayed-to-nothing state never reads as fresh.
func ClassifyStatus(ls LoadState, t StatusThresholds) TrainingStatus {
	if ls.TotalTL() < t.DetrainingTL {
		return StatusDetraining
	}

	formLow := ls.Low.Form()
	formHigh := ls.High.Form()
	formPeak := ls.Peak.Form()

	allNegative := formLow < 0 && formHigh < 0 && formPeak < 0
	allPositive := formLow >= 0 && formHigh >= 0 && formPeak >= 0

	switch {
	case allNegative:
		return StatusVeryTired
	case allPositive && t.OverallForm(ls) > t.VeryFreshForm:
		return StatusVeryFresh
	case allPositive || formLow >= 0:
		// A fresh aerobic system outweighs lingering short-term fatigue
		return StatusFresh
	default:
		return StatusTired
	}
}
