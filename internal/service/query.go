package service

import (
	"fmt"
	"time"

	"velofit/internal/analysis"
	"velofit/internal/store"
)

// QueryService answers read queries against the stored timelines
type QueryService struct {
	store       *store.DB
	thresholds  analysis.StatusThresholds
	athleteID   int64
	fallbackFTP int // configured FTP, used when no signature exists
}

// NewQueryService creates a new query service
func NewQueryService(db *store.DB, thresholds analysis.StatusThresholds, athleteID int64, fallbackFTP int) *QueryService {
	return &QueryService{
		store:       db,
		thresholds:  thresholds,
		athleteID:   athleteID,
		fallbackFTP: fallbackFTP,
	}
}

// DashboardData contains all data needed for the dashboard
type DashboardData struct {
	// 3D load model, forms as persisted by the rebuild
	LoadState   analysis.LoadState
	FormLow     float64
	FormHigh    float64
	FormPeak    float64
	Status      analysis.TrainingStatus
	OverallForm float64

	// Single-dimension model
	CTL float64
	ATL float64
	TSB float64

	// This week
	WeekStrainAvg float64
	WeekRideCount int
	WeekTime      int // seconds

	// Recent activities
	RecentActivities []store.Activity

	// Current signature, nil when never set
	Signature *store.Signature
}

// GetDashboardData assembles the dashboard from the latest stored records
func (q *QueryService) GetDashboardData() (*DashboardData, error) {
	data := &DashboardData{Status: analysis.StatusDetraining}

	load, err := q.store.LatestLoadRecord(q.athleteID)
	if err != nil {
		return nil, fmt.Errorf("loading latest load record: %w", err)
	}
	if load != nil {
		data.LoadState = analysis.LoadState{
			Low:  analysis.SystemLoad{TL: load.TLLow, RL: load.RLLow},
			High: analysis.SystemLoad{TL: load.TLHigh, RL: load.RLHigh},
			Peak: analysis.SystemLoad{TL: load.TLPeak, RL: load.RLPeak},
		}
		data.FormLow = load.FormLow
		data.FormHigh = load.FormHigh
		data.FormPeak = load.FormPeak
		data.OverallForm = q.thresholds.OverallForm(data.LoadState)

		status, err := analysis.ParseTrainingStatus(load.Status)
		if err != nil {
			// A bad stored row should not take down the dashboard; classify
			// from the state instead
			status = analysis.ClassifyStatus(data.LoadState, q.thresholds)
		}
		data.Status = status
	}

	fitness, err := q.store.LatestFitnessRecord(q.athleteID)
	if err != nil {
		return nil, fmt.Errorf("loading latest fitness record: %w", err)
	}
	if fitness != nil {
		data.CTL = fitness.CTL
		data.ATL = fitness.ATL
		data.TSB = fitness.TSB
	}

	weekAvg, err := q.WeeklyStrainAverage()
	if err != nil {
		return nil, err
	}
	data.WeekStrainAvg = weekAvg

	recent, err := q.store.ListActivities(RecentActivitiesLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("loading recent activities: %w", err)
	}
	data.RecentActivities = recent

	weekStart := dayStart(time.Now()).AddDate(0, 0, -(WeeklyStrainDays - 1))
	for _, a := range recent {
		if !a.StartDateLocal.Before(weekStart) {
			data.WeekRideCount++
			data.WeekTime += a.MovingTime
		}
	}

	sig, err := q.store.LatestSignature(q.athleteID)
	if err != nil && err != store.ErrNoSignature {
		return nil, fmt.Errorf("loading signature: %w", err)
	}
	data.Signature = sig

	return data, nil
}

// WeeklyStrainAverage is the average total strain per week over the trailing
// WeeklyAverageWeeks weeks. Days with no stored record count as zero.
func (q *QueryService) WeeklyStrainAverage() (float64, error) {
	to := dayStart(time.Now())
	from := to.AddDate(0, 0, -(WeeklyAverageWeeks*7 - 1))

	records, err := q.store.GetLoadRecords(q.athleteID, from.Format(DateLayout), to.Format(DateLayout))
	if err != nil {
		return 0, fmt.Errorf("loading load records: %w", err)
	}

	var sum float64
	for _, r := range records {
		sum += r.StrainTotal
	}
	return sum / WeeklyAverageWeeks, nil
}

// ListActivities returns a page of stored activities, newest first, plus the
// total count for pagination.
func (q *QueryService) ListActivities(limit, offset int) ([]store.Activity, int, error) {
	activities, err := q.store.ListActivities(limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing activities: %w", err)
	}

	total, err := q.store.CountActivities()
	if err != nil {
		return nil, 0, fmt.Errorf("counting activities: %w", err)
	}

	return activities, total, nil
}

// ActivityDetail is one activity with its power breakdown
type ActivityDetail struct {
	Activity store.Activity

	// Fraction of ride time in each of analysis.PowerZones, nil when no
	// power stream is stored or no FTP is known
	ZoneFractions []float64
	FTP           int
}

// GetActivityDetail loads one activity and, when a power stream and an FTP
// are available, its time-in-zone distribution.
func (q *QueryService) GetActivityDetail(activityID int64) (*ActivityDetail, error) {
	activity, err := q.store.GetActivity(activityID)
	if err != nil {
		return nil, fmt.Errorf("loading activity: %w", err)
	}

	detail := &ActivityDetail{Activity: *activity}

	sig, err := q.store.SignatureAt(q.athleteID, activity.StartDateLocal)
	switch {
	case err == nil:
		detail.FTP = sig.FTP
	case err == store.ErrNoSignature:
		detail.FTP = q.fallbackFTP
	default:
		return nil, fmt.Errorf("loading signature: %w", err)
	}
	if detail.FTP <= 0 {
		return detail, nil
	}

	watts, err := q.store.GetWattsStream(activityID)
	if err != nil {
		return nil, fmt.Errorf("loading watts stream: %w", err)
	}
	if len(watts) > 0 {
		detail.ZoneFractions = analysis.TimeInZones(watts, detail.FTP)
	}

	return detail, nil
}

// TrendPoint is one day of the combined trend chart
type TrendPoint struct {
	Date    string
	Strain  float64
	TotalTL float64
	TotalRL float64
	Form    float64
	CTL     float64
	ATL     float64
	TSB     float64
	Status  string
}

// GetTrend returns the last n days of both timelines merged by date.
// Days present in only one table still produce a point.
func (q *QueryService) GetTrend(days int) ([]TrendPoint, error) {
	to := dayStart(time.Now())
	from := to.AddDate(0, 0, -(days - 1))

	loads, err := q.store.GetLoadRecords(q.athleteID, from.Format(DateLayout), to.Format(DateLayout))
	if err != nil {
		return nil, fmt.Errorf("loading load records: %w", err)
	}

	fitness, err := q.store.GetFitnessRecords(q.athleteID, from.Format(DateLayout), to.Format(DateLayout))
	if err != nil {
		return nil, fmt.Errorf("loading fitness records: %w", err)
	}

	byDate := make(map[string]*TrendPoint, len(loads))
	var order []string

	for _, r := range loads {
		p := &TrendPoint{
			Date:    r.Date,
			Strain:  r.StrainTotal,
			TotalTL: r.TLLow + r.TLHigh + r.TLPeak,
			TotalRL: r.RLLow + r.RLHigh + r.RLPeak,
			Form:    r.TotalForm(),
			Status:  r.Status,
		}
		byDate[r.Date] = p
		order = append(order, r.Date)
	}

	for _, r := range fitness {
		p, ok := byDate[r.Date]
		if !ok {
			p = &TrendPoint{Date: r.Date}
			byDate[r.Date] = p
			order = append(order, r.Date)
		}
		p.CTL = r.CTL
		p.ATL = r.ATL
		p.TSB = r.TSB
	}

	// Both source lists are date-ascending, but fitness-only dates land at
	// the end of the merged order
	sortDates(order)

	points := make([]TrendPoint, 0, len(order))
	for _, d := range order {
		points = append(points, *byDate[d])
	}
	return points, nil
}

// sortDates sorts YYYY-MM-DD strings ascending. Insertion sort is fine for
// the dashboard's trend window.
func sortDates(dates []string) {
	for i := 1; i < len(dates); i++ {
		for j := i; j > 0 && dates[j] < dates[j-1]; j-- {
			dates[j], dates[j-1] = dates[j-1], dates[j]
		}
	}
}

// ProjectionOption is a canned weekly plan the athlete can preview
type ProjectionOption struct {
	Name        string
	Description string
	Week        []analysis.PlannedWorkout
}

// ProjectionOptions returns the built-in plan proposals, scaled so the plan
// roughly matches the athlete's recent weekly strain.
func ProjectionOptions(weeklyStrainAvg float64) []ProjectionOption {
	// Keep projections meaningful for a new athlete with no history
	daily := weeklyStrainAvg / 7
	if daily < 30 {
		daily = 50
	}

	return []ProjectionOption{
		{
			Name:        "Recovery week",
			Description: "Easy spinning and two rest days",
			Week: []analysis.PlannedWorkout{
				{Type: analysis.WorkoutRecovery, TargetStress: daily * 0.6},
				{},
				{Type: analysis.WorkoutRecovery, TargetStress: daily * 0.6},
				{Type: analysis.WorkoutEndurance, TargetStress: daily * 0.8},
				{},
				{Type: analysis.WorkoutEndurance, TargetStress: daily},
				{Type: analysis.WorkoutRecovery, TargetStress: daily * 0.5},
			},
		},
		{
			Name:        "Base week",
			Description: "Steady aerobic volume",
			Week: []analysis.PlannedWorkout{
				{Type: analysis.WorkoutEndurance, TargetStress: daily},
				{Type: analysis.WorkoutEndurance, TargetStress: daily * 0.8},
				{},
				{Type: analysis.WorkoutTempo, TargetStress: daily},
				{Type: analysis.WorkoutEndurance, TargetStress: daily * 0.8},
				{Type: analysis.WorkoutEndurance, TargetStress: daily * 1.5},
				{},
			},
		},
		{
			Name:        "Build week",
			Description: "Intensity on top of base",
			Week: []analysis.PlannedWorkout{
				{Type: analysis.WorkoutVO2Max, TargetStress: daily},
				{Type: analysis.WorkoutRecovery, TargetStress: daily * 0.5},
				{Type: analysis.WorkoutThreshold, TargetStress: daily * 1.2},
				{},
				{Type: analysis.WorkoutTempo, TargetStress: daily},
				{Type: analysis.WorkoutEndurance, TargetStress: daily * 1.5},
				{},
			},
		},
	}
}

// ProjectPlan simulates a plan forward from the current stored state
func (q *QueryService) ProjectPlan(plan []analysis.PlannedWorkout, horizonDays int) ([]analysis.ProjectedDay, error) {
	var state analysis.LoadState

	latest, err := q.store.LatestLoadRecord(q.athleteID)
	if err != nil {
		return nil, fmt.Errorf("loading latest load record: %w", err)
	}
	if latest != nil {
		state = analysis.LoadState{
			Low:  analysis.SystemLoad{TL: latest.TLLow, RL: latest.RLLow},
			High: analysis.SystemLoad{TL: latest.TLHigh, RL: latest.RLHigh},
			Peak: analysis.SystemLoad{TL: latest.TLPeak, RL: latest.RLPeak},
		}
	}

	return analysis.ProjectLoad(state, plan, horizonDays, q.thresholds), nil
}
