package store

import "time"

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Activity represents a Strava activity summary
type Activity struct {
	ID                   int64
	AthleteID            int64
	Name                 string
	Type                 string
	StartDate            time.Time
	StartDateLocal       time.Time
	Timezone             string
	Distance             float64 // meters
	MovingTime           int     // seconds
	ElapsedTime          int     // seconds
	TotalElevationGain   float64
	AverageSpeed         float64  // m/s
	MaxSpeed             float64  // m/s
	AverageWatts         *float64 // nullable
	WeightedAverageWatts *float64 // normalized power from Strava, nullable
	MaxWatts             *float64 // nullable
	DeviceWatts          bool     // true when power came from a meter, not estimated
	Kilojoules           *float64 // nullable
	AverageHeartrate     *float64 // nullable
	MaxHeartrate         *float64 // nullable
	AverageCadence       *float64 // nullable
	StreamsSynced        bool
}

// StreamPoint represents a single data point from activity streams
type StreamPoint struct {
	ActivityID     int64
	TimeOffset     int      // seconds
	Watts          *int     // nullable
	Heartrate      *int     // bpm
	Cadence        *int     // rpm
	VelocitySmooth *float64 // m/s
	Altitude       *float64 // meters
	Distance       *float64 // cumulative meters
}

// LoadRecord is one day of the 3D load model: the strain that landed on the
// day plus the post-strain load state and its classification.
type LoadRecord struct {
	AthleteID   int64
	Date        string // YYYY-MM-DD
	StrainTotal float64
	StrainLow   float64
	StrainHigh  float64
	StrainPeak  float64
	TLLow       float64
	RLLow       float64
	TLHigh      float64
	RLHigh      float64
	TLPeak      float64
	RLPeak      float64
	FormLow     float64
	FormHigh    float64
	FormPeak    float64
	Status      string
}

// TotalForm sums the per-system forms as they were persisted.
func (r LoadRecord) TotalForm() float64 {
	return r.FormLow + r.FormHigh + r.FormPeak
}

// FitnessRecord is one day of the single-dimension CTL/ATL/TSB model.
type FitnessRecord struct {
	AthleteID int64
	Date      string // YYYY-MM-DD
	Stress    float64
	CTL       float64
	ATL       float64
	TSB       float64
}

// Signature is one entry in the append-only fitness signature history.
type Signature struct {
	ID             int64
	AthleteID      int64
	FTP            int
	ThresholdPower float64 // watts
	HIE            float64 // joules above threshold
	PeakPower      float64 // watts
	Source         string  // "estimated", "breakthrough", or "manual"
	SetAt          time.Time
}
