package analysis

import (
	"math"
	"testing"
)

func floatPtr(f float64) *float64 {
	return &f
}

func TestComputeStrain(t *testing.T) {
	tests := []struct {
		name     string
		input    StrainInput
		expected DailyStrain
		delta    float64
	}{
		{
			name: "one hour at threshold scores 100",
			input: StrainInput{
				DurationSeconds: 3600,
				NormalizedPower: floatPtr(250),
				FTP:             250,
				ActivityType:    "Ride",
			},
			// IF = 1.0, lands at the top of the tempo band:
			// low 0.2, high 0.8, peak 0.1, renormalized by 1.1
			expected: DailyStrain{Total: 100, Low: 18.18, High: 72.73, Peak: 9.09},
			delta:    0.01,
		},
		{
			name: "sweet spot ride",
			input: StrainInput{
				DurationSeconds: 3600,
				NormalizedPower: floatPtr(225),
				MaxPower:        floatPtr(300),
				FTP:             250,
				ActivityType:    "Ride",
			},
			// IF = 0.9, progress 0.6 through the tempo band:
			// ratios 0.32/0.64/0.06 renormalized by 1.02.
			// Max power at exactly 1.2x FTP adds no peak bonus.
			expected: DailyStrain{Total: 81, Low: 25.41, High: 50.82, Peak: 4.76},
			delta:    0.01,
		},
		{
			name: "easy endurance ride loads the aerobic system",
			input: StrainInput{
				DurationSeconds: 3600,
				NormalizedPower: floatPtr(150),
				FTP:             250,
				ActivityType:    "Ride",
			},
			// IF = 0.6: low = 0.7 + 0.2*(1-0.8) = 0.74, peak 0.05, high 0.21
			expected: DailyStrain{Total: 36, Low: 26.64, High: 7.56, Peak: 1.8},
			delta:    0.01,
		},
		{
			name: "supra-threshold effort loads anaerobic and peak",
			input: StrainInput{
				DurationSeconds: 3600,
				NormalizedPower: floatPtr(275),
				FTP:             250,
				ActivityType:    "Ride",
			},
			// IF = 1.1: fixed 0.15/0.55/0.30 split
			expected: DailyStrain{Total: 121, Low: 18.15, High: 66.55, Peak: 36.3},
			delta:    0.01,
		},
		{
			name: "four hour ride shifts strain toward aerobic",
			input: StrainInput{
				DurationSeconds: 14400,
				NormalizedPower: floatPtr(150),
				FTP:             250,
				ActivityType:    "Ride",
			},
			// Base 0.74/0.21/0.05 plus 0.10 shift drawn 70/30 from high/peak
			expected: DailyStrain{Total: 144, Low: 120.96, High: 20.16, Peak: 2.88},
			delta:    0.01,
		},
		{
			name: "sprint spikes add peak strain",
			input: StrainInput{
				DurationSeconds: 3600,
				NormalizedPower: floatPtr(225),
				MaxPower:        floatPtr(400),
				FTP:             250,
				ActivityType:    "Ride",
			},
			// maxRatio 1.6: bonus 0.04 drawn 70/30 from high/low.
			// 0.308/0.612/0.10 renormalized by 1.02.
			expected: DailyStrain{Total: 81, Low: 24.46, High: 48.60, Peak: 7.94},
			delta:    0.01,
		},
		{
			name: "falls back to average power without NP",
			input: StrainInput{
				DurationSeconds: 3600,
				AveragePower:    floatPtr(150),
				FTP:             250,
				ActivityType:    "Ride",
			},
			expected: DailyStrain{Total: 36, Low: 26.64, High: 7.56, Peak: 1.8},
			delta:    0.01,
		},
		{
			name: "no power data estimates from duration",
			input: StrainInput{
				DurationSeconds: 7200,
				FTP:             250,
				ActivityType:    "Ride",
			},
			// 2 hours at 50/hr, split 65/28/7
			expected: DailyStrain{Total: 100, Low: 65, High: 28, Peak: 7},
			delta:    0.01,
		},
		{
			name: "unknown activity type uses default rate",
			input: StrainInput{
				DurationSeconds: 3600,
				FTP:             250,
				ActivityType:    "Rowing",
			},
			expected: DailyStrain{Total: 50, Low: 32.5, High: 14, Peak: 3.5},
			delta:    0.01,
		},
		{
			name: "missing FTP produces zero strain",
			input: StrainInput{
				DurationSeconds: 3600,
				NormalizedPower: floatPtr(225),
				FTP:             0,
				ActivityType:    "Ride",
			},
			expected: DailyStrain{},
			delta:    0,
		},
		{
			name: "zero duration produces zero strain",
			input: StrainInput{
				DurationSeconds: 0,
				NormalizedPower: floatPtr(225),
				FTP:             250,
				ActivityType:    "Ride",
			},
			expected: DailyStrain{},
			delta:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeStrain(tt.input)
			if math.Abs(result.Total-tt.expected.Total) > tt.delta {
				t.Errorf("Total = %v, want %v (±%v)", result.Total, tt.expected.Total, tt.delta)
			}
			if math.Abs(result.Low-tt.expected.Low) > tt.delta {
				t.Errorf("Low = %v, want %v (±%v)", result.Low, tt.expected.Low, tt.delta)
			}
			if math.Abs(result.High-tt.expected.High) > tt.delta {
				t.Errorf("High = %v, want %v (±%v)", result.High, tt.expected.High, tt.delta)
			}
			if math.Abs(result.Peak-tt.expected.Peak) > tt.delta {
				t.Errorf("Peak = %v, want %v (±%v)", result.Peak, tt.expected.Peak, tt.delta)
			}
		})
	}
}

func TestComputeStrainComponentsSumToTotal(t *testing.T) {
	// The split must always account for every point of the total, across
	// every branch of the allocator.
	inputs := []StrainInput{
		{DurationSeconds: 3600, NormalizedPower: floatPtr(120), FTP: 250, ActivityType: "Ride"},
		{DurationSeconds: 3600, NormalizedPower: floatPtr(187.5), FTP: 250, ActivityType: "Ride"},
		{DurationSeconds: 3600, NormalizedPower: floatPtr(225), FTP: 250, ActivityType: "Ride"},
		{DurationSeconds: 3600, NormalizedPower: floatPtr(250), FTP: 250, ActivityType: "Ride"},
		{DurationSeconds: 3600, NormalizedPower: floatPtr(300), FTP: 250, ActivityType: "Ride"},
		{DurationSeconds: 18000, NormalizedPower: floatPtr(150), FTP: 250, ActivityType: "Ride"},
		{DurationSeconds: 3600, NormalizedPower: floatPtr(225), MaxPower: floatPtr(700), FTP: 250, ActivityType: "Ride"},
		{DurationSeconds: 14400, NormalizedPower: floatPtr(160), MaxPower: floatPtr(500), FTP: 200, ActivityType: "Ride"},
		{DurationSeconds: 5400, FTP: 250, ActivityType: "VirtualRide"},
	}

	for _, in := range inputs {
		result := ComputeStrain(in)
		sum := result.Low + result.High + result.Peak
		if math.Abs(sum-result.Total) > 1e-9 {
			t.Errorf("components sum to %v, total is %v (input %+v)", sum, result.Total, in)
		}
	}
}

func TestComputeStrainLongEasyRideNeverGoesNegative(t *testing.T) {
	// A five hour ride at IF 0.2: the full duration shift would push the
	// anaerobic ratio below zero without clamping.
	result := ComputeStrain(StrainInput{
		DurationSeconds: 18000,
		NormalizedPower: floatPtr(50),
		FTP:             250,
		ActivityType:    "Ride",
	})

	if result.Low < 0 || result.High < 0 || result.Peak < 0 {
		t.Errorf("negative component in %+v", result)
	}

	sum := result.Low + result.High + result.Peak
	if math.Abs(sum-result.Total) > 1e-9 {
		t.Errorf("components sum to %v, total is %v", sum, result.Total)
	}
}

func TestDailyStrainAdd(t *testing.T) {
	a := DailyStrain{Total: 50, Low: 30, High: 15, Peak: 5}
	b := DailyStrain{Total: 30, Low: 20, High: 8, Peak: 2}

	sum := a.Add(b)
	if sum.Total != 80 || sum.Low != 50 || sum.High != 23 || sum.Peak != 7 {
		t.Errorf("Add() = %+v, want {80 50 23 7}", sum)
	}
}

func TestDailyStrainIsZero(t *testing.T) {
	if !(DailyStrain{}).IsZero() {
		t.Error("zero value should report IsZero")
	}
	if (DailyStrain{Total: 1, Low: 1}).IsZero() {
		t.Error("non-zero strain should not report IsZero")
	}
}
