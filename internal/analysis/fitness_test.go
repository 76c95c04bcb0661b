package analysis

import (
	"errors"
	"math"
	"testing"
)

func TestEWMAStep(t *testing.T) {
	tests := []struct {
		name         string
		previous     float64
		dailyStress  float64
		timeConstant float64
		expected     float64
		delta        float64
	}{
		{
			name:         "CTL step from seed",
			previous:     50,
			dailyStress:  100,
			timeConstant: CTLTimeConstant,
			// 50 + (100-50)/42
			expected: 51.19,
			delta:    0.01,
		},
		{
			name:         "ATL responds much faster",
			previous:     50,
			dailyStress:  100,
			timeConstant: ATLTimeConstant,
			// 50 + (100-50)/7
			expected: 57.14,
			delta:    0.01,
		},
		{
			name:         "rest day decays toward zero",
			previous:     50,
			dailyStress:  0,
			timeConstant: CTLTimeConstant,
			expected:     48.81,
			delta:        0.01,
		},
		{
			name:         "steady state holds",
			previous:     100,
			dailyStress:  100,
			timeConstant: CTLTimeConstant,
			expected:     100,
			delta:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EWMAStep(tt.previous, tt.dailyStress, tt.timeConstant)
			if math.Abs(result-tt.expected) > tt.delta {
				t.Errorf("EWMAStep() = %v, want %v (±%v)", result, tt.expected, tt.delta)
			}
		})
	}
}

func TestEWMAStepStaysBetweenInputs(t *testing.T) {
	// Each step moves toward the day's stress without overshooting it.
	cases := []struct{ prev, stress float64 }{
		{0, 100},
		{100, 0},
		{50, 80},
		{80, 50},
		{200, 10},
	}

	for _, c := range cases {
		for _, tau := range []float64{ATLTimeConstant, CTLTimeConstant} {
			result := EWMAStep(c.prev, c.stress, tau)
			lo, hi := math.Min(c.prev, c.stress), math.Max(c.prev, c.stress)
			if result < lo || result > hi {
				t.Errorf("EWMAStep(%v, %v, %v) = %v, outside [%v, %v]",
					c.prev, c.stress, tau, result, lo, hi)
			}
		}
	}
}

func TestEWMAConvergence(t *testing.T) {
	// 6 weeks of identical daily stress pulls ATL almost all the way to the
	// stress level, while CTL is still climbing.
	ctl, atl := 0.0, 0.0
	for i := 0; i < 42; i++ {
		ctl = EWMAStep(ctl, 100, CTLTimeConstant)
		atl = EWMAStep(atl, 100, ATLTimeConstant)
	}

	if atl < 99 {
		t.Errorf("ATL after 42 days = %v, want > 99", atl)
	}
	if ctl < 60 || ctl > 70 {
		t.Errorf("CTL after 42 days = %v, want ~63", ctl)
	}
	if atl <= ctl {
		t.Errorf("ATL (%v) should lead CTL (%v) during a consistent block", atl, ctl)
	}
}

func TestStressScore(t *testing.T) {
	tests := []struct {
		name            string
		durationSeconds int
		normalizedPower float64
		ftp             int
		expected        float64
		delta           float64
		wantErr         error
	}{
		{
			name:            "one hour at FTP scores 100",
			durationSeconds: 3600,
			normalizedPower: 250,
			ftp:             250,
			expected:        100,
			delta:           1e-9,
		},
		{
			name:            "half hour at FTP scores 50",
			durationSeconds: 1800,
			normalizedPower: 250,
			ftp:             250,
			expected:        50,
			delta:           1e-9,
		},
		{
			name:            "two hours at 75 percent",
			durationSeconds: 7200,
			normalizedPower: 187.5,
			ftp:             250,
			// 2h * 0.75^2 * 100
			expected: 112.5,
			delta:    1e-9,
		},
		{
			name:            "zero FTP is a configuration error",
			durationSeconds: 3600,
			normalizedPower: 250,
			ftp:             0,
			wantErr:         ErrInvalidFTP,
		},
		{
			name:            "zero duration scores zero",
			durationSeconds: 0,
			normalizedPower: 250,
			ftp:             250,
			expected:        0,
		},
		{
			name:            "zero power scores zero",
			durationSeconds: 3600,
			normalizedPower: 0,
			ftp:             250,
			expected:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := StressScore(tt.durationSeconds, tt.normalizedPower, tt.ftp)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("StressScore() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("StressScore() unexpected error: %v", err)
			}
			if math.Abs(result-tt.expected) > tt.delta {
				t.Errorf("StressScore() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestIntensityFactor(t *testing.T) {
	got, err := IntensityFactor(225, 250)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-0.9) > 1e-9 {
		t.Errorf("IntensityFactor(225, 250) = %v, want 0.9", got)
	}

	if _, err := IntensityFactor(225, 0); !errors.Is(err, ErrInvalidFTP) {
		t.Errorf("IntensityFactor with zero FTP: error = %v, want ErrInvalidFTP", err)
	}
}

func TestStressFromHeartRate(t *testing.T) {
	tests := []struct {
		name            string
		durationSeconds int
		avgHR           float64
		maxHR           float64
		lthr            float64
		restHR          float64
		expected        float64
		delta           float64
		wantErr         error
	}{
		{
			name:            "one hour at threshold HR scores 100",
			durationSeconds: 3600,
			avgHR:           170,
			maxHR:           190,
			lthr:            170,
			restHR:          50,
			expected:        100,
			delta:           1e-9,
		},
		{
			name:            "moderate effort",
			durationSeconds: 3600,
			avgHR:           150,
			maxHR:           190,
			lthr:            170,
			restHR:          50,
			// hrIF = 100/120 = 0.833, score = 0.694 * 100
			expected: 69.44,
			delta:    0.01,
		},
		{
			name:            "intensity clamps at 1.2",
			durationSeconds: 3600,
			avgHR:           250,
			maxHR:           190,
			lthr:            170,
			restHR:          50,
			// hrIF clamped to 1.2, score = 1.44 * 100
			expected: 144,
			delta:    1e-9,
		},
		{
			name:            "threshold at resting HR is a configuration error",
			durationSeconds: 3600,
			avgHR:           150,
			maxHR:           190,
			lthr:            50,
			restHR:          50,
			wantErr:         ErrInvalidHRReserve,
		},
		{
			name:            "threshold below resting HR is a configuration error",
			durationSeconds: 3600,
			avgHR:           150,
			maxHR:           190,
			lthr:            40,
			restHR:          50,
			wantErr:         ErrInvalidHRReserve,
		},
		{
			name:            "average below resting reads as sensor noise",
			durationSeconds: 3600,
			avgHR:           40,
			maxHR:           190,
			lthr:            170,
			restHR:          50,
			expected:        0,
		},
		{
			name:            "zero duration scores zero",
			durationSeconds: 0,
			avgHR:           150,
			maxHR:           190,
			lthr:            170,
			restHR:          50,
			expected:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := StressFromHeartRate(tt.durationSeconds, tt.avgHR, tt.maxHR, tt.lthr, tt.restHR)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("StressFromHeartRate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("StressFromHeartRate() unexpected error: %v", err)
			}
			if math.Abs(result-tt.expected) > tt.delta {
				t.Errorf("StressFromHeartRate() = %v, want %v (±%v)", result, tt.expected, tt.delta)
			}
		})
	}
}
