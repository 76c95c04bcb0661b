package service

const (
	// Lookback windows for history rebuilds. A rebuild seeds the model this
	// many days before the requested start so decay has converged by the
	// time the requested range begins. 60 days covers the slowest system's
	// time constant; 42 covers CTL.
	LoadLookbackDays    = 60
	FitnessLookbackDays = 42

	// Stream sync batch size, sized to stay inside Strava's 15-minute
	// rate-limit window
	StreamSyncBatchSize = 50

	// Pagination limits
	RecentActivitiesLimit = 10

	// Trend window shown on the dashboard
	TrendDays = 90

	// This-week summaries cover the trailing seven days
	WeeklyStrainDays = 7

	// The weekly strain average spans this many trailing weeks
	WeeklyAverageWeeks = 4

	// DateLayout is the canonical day key for daily tables
	DateLayout = "2006-01-02"
)
