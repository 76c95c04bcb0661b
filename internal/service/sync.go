package service

import (
	"context"
	"fmt"
	"time"

	"velofit/internal/analysis"
	"velofit/internal/store"
	"velofit/internal/strava"
)

// SyncService orchestrates syncing data from Strava and keeping the derived
// timelines current.
type SyncService struct {
	client    *strava.Client
	store     *store.DB
	history   *HistoryService
	athleteID int64
}

// NewSyncService creates a new sync service
func NewSyncService(client *strava.Client, db *store.DB, history *HistoryService, athleteID int64) *SyncService {
	return &SyncService{
		client:    client,
		store:     db,
		history:   history,
		athleteID: athleteID,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase           string // "activities", "streams", "power", "history"
	Total           int
	Completed       int
	CurrentActivity string
	Error           error
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	ActivitiesFetched int
	ActivitiesStored  int
	StreamsFetched    int
	PowerComputed     int
	HistoryFrom       time.Time
	HistoryTo         time.Time
	Errors            []error
}

// SyncAll performs a full sync: activities, streams, normalized power, then
// a rebuild of both daily timelines covering the affected range.
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}

	if err := s.syncActivities(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing activities: %w", err)
	}

	if err := s.syncStreams(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing streams: %w", err)
	}

	if err := s.computePower(ctx, progress, result); err != nil {
		return result, fmt.Errorf("computing power: %w", err)
	}

	if err := s.rebuildHistories(ctx, progress, result); err != nil {
		return result, fmt.Errorf("rebuilding history: %w", err)
	}

	return result, nil
}

// syncActivities fetches new activities from Strava and stores them
func (s *SyncService) syncActivities(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	lastSyncStr, _ := s.store.GetSyncState("last_activity_sync")
	var after time.Time
	if lastSyncStr != "" {
		after, _ = time.Parse(time.RFC3339, lastSyncStr)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "activities"}
	}

	page := 1
	perPage := 100

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		activities, err := s.client.GetActivities(ctx, after, page, perPage)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", page, err)
		}

		if len(activities) == 0 {
			break
		}

		result.ActivitiesFetched += len(activities)

		for _, a := range activities {
			stored := convertActivity(a)
			if err := s.store.UpsertActivity(stored); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
				continue
			}
			result.ActivitiesStored++

			day := dayStart(a.StartDateLocal)
			if result.HistoryFrom.IsZero() || day.Before(result.HistoryFrom) {
				result.HistoryFrom = day
			}
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:     "activities",
				Total:     result.ActivitiesFetched,
				Completed: result.ActivitiesStored,
			}
		}

		if len(activities) < perPage {
			break // Last page
		}

		page++
	}

	s.store.SetSyncState("last_activity_sync", time.Now().Format(time.RFC3339))

	return nil
}

// syncStreams fetches power streams for activities that need them
func (s *SyncService) syncStreams(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	activities, err := s.store.GetActivitiesNeedingStreams(StreamSyncBatchSize)
	if err != nil {
		return fmt.Errorf("getting activities needing streams: %w", err)
	}

	if len(activities) == 0 {
		return nil
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "streams", Total: len(activities)}
	}

	for i, activity := range activities {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:           "streams",
				Total:           len(activities),
				Completed:       i,
				CurrentActivity: activity.Name,
			}
		}

		streams, err := s.client.GetActivityStreams(ctx, activity.ID)
		if err != nil {
			// Some activities have no streams at all; keep going
			result.Errors = append(result.Errors, fmt.Errorf("activity %d (%s): %w", activity.ID, activity.Name, err))
			continue
		}

		points := convertStreams(activity.ID, streams)
		if len(points) > 0 {
			if err := s.store.SaveStreams(activity.ID, points); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("saving streams for %d: %w", activity.ID, err))
				continue
			}
		}

		if err := s.store.MarkStreamsSynced(activity.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("marking synced for %d: %w", activity.ID, err))
			continue
		}

		result.StreamsFetched++
	}

	if progress != nil {
		progress <- SyncProgress{
			Phase:     "streams",
			Total:     len(activities),
			Completed: len(activities),
		}
	}

	return nil
}

// computePower fills in normalized power from raw streams for activities
// where Strava's summary omitted a weighted average.
func (s *SyncService) computePower(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	activities, err := s.store.ListActivities(500, 0)
	if err != nil {
		return fmt.Errorf("listing activities: %w", err)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "power", Total: len(activities)}
	}

	for i, activity := range activities {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !activity.StreamsSynced {
			continue
		}
		if activity.WeightedAverageWatts != nil && *activity.WeightedAverageWatts > 0 {
			continue
		}

		watts, err := s.store.GetWattsStream(activity.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("loading watts for %d: %w", activity.ID, err))
			continue
		}
		if len(watts) == 0 {
			continue
		}

		np := analysis.NormalizedPower(watts)
		if np <= 0 {
			continue
		}

		if err := s.store.UpdateComputedPower(activity.ID, float64(np)); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("storing power for %d: %w", activity.ID, err))
			continue
		}
		result.PowerComputed++

		if progress != nil {
			progress <- SyncProgress{Phase: "power", Total: len(activities), Completed: i}
		}
	}

	return nil
}

// rebuildHistories recomputes both daily timelines from the earliest newly
// stored activity through today.
func (s *SyncService) rebuildHistories(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	if result.HistoryFrom.IsZero() && result.PowerComputed == 0 {
		return nil // nothing changed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	from := result.HistoryFrom
	if from.IsZero() {
		// Power backfill can touch old activities; replay the whole window
		// the dashboard shows
		from = time.Now().AddDate(0, 0, -TrendDays)
	}
	to := dayStart(time.Now())

	if progress != nil {
		progress <- SyncProgress{Phase: "history", Total: 2}
	}

	// Days in this range just gained activities or power values, so stored
	// records must not be reused: force recalculation.
	start, end, err := s.history.RebuildLoadHistory(s.athleteID, from, to, true)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "history", Total: 2, Completed: 1}
	}

	if _, _, err := s.history.RebuildFitnessHistory(s.athleteID, from, to, true); err != nil {
		return fmt.Errorf("fitness history: %w", err)
	}

	result.HistoryFrom = start
	result.HistoryTo = end

	if progress != nil {
		progress <- SyncProgress{Phase: "history", Total: 2, Completed: 2}
	}

	return nil
}

// RateLimitStatus returns the current rate limit status from the client
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return s.client.RateLimitStatus()
}

// convertActivity converts a Strava API activity to a store activity
func convertActivity(a strava.Activity) *store.Activity {
	activity := &store.Activity{
		ID:                 a.ID,
		AthleteID:          a.Athlete.ID,
		Name:               a.Name,
		Type:               a.Type,
		StartDate:          a.StartDate,
		StartDateLocal:     a.StartDateLocal,
		Timezone:           a.Timezone,
		Distance:           a.Distance,
		MovingTime:         a.MovingTime,
		ElapsedTime:        a.ElapsedTime,
		TotalElevationGain: a.TotalElevationGain,
		AverageSpeed:       a.AverageSpeed,
		MaxSpeed:           a.MaxSpeed,
		DeviceWatts:        a.DeviceWatts,
		StreamsSynced:      false,
	}

	if a.AverageWatts > 0 {
		activity.AverageWatts = &a.AverageWatts
	}
	if a.WeightedAverageWatts > 0 {
		activity.WeightedAverageWatts = &a.WeightedAverageWatts
	}
	if a.MaxWatts > 0 {
		activity.MaxWatts = &a.MaxWatts
	}
	if a.Kilojoules > 0 {
		activity.Kilojoules = &a.Kilojoules
	}
	if a.AverageHeartrate > 0 {
		activity.AverageHeartrate = &a.AverageHeartrate
	}
	if a.MaxHeartrate > 0 {
		activity.MaxHeartrate = &a.MaxHeartrate
	}
	if a.AverageCadence > 0 {
		activity.AverageCadence = &a.AverageCadence
	}

	return activity
}

// convertStreams converts Strava API streams to store stream points
func convertStreams(activityID int64, s *strava.Streams) []store.StreamPoint {
	if s == nil || s.Time == nil {
		return nil
	}

	length := len(s.Time.Data)
	points := make([]store.StreamPoint, length)

	for i := 0; i < length; i++ {
		p := store.StreamPoint{
			ActivityID: activityID,
			TimeOffset: s.Time.Data[i],
		}

		if s.Watts != nil && i < len(s.Watts.Data) {
			w := s.Watts.Data[i]
			p.Watts = &w
		}

		if s.Heartrate != nil && i < len(s.Heartrate.Data) {
			hr := s.Heartrate.Data[i]
			p.Heartrate = &hr
		}

		if s.Cadence != nil && i < len(s.Cadence.Data) {
			cad := s.Cadence.Data[i]
			p.Cadence = &cad
		}

		if s.VelocitySmooth != nil && i < len(s.VelocitySmooth.Data) {
			vel := s.VelocitySmooth.Data[i]
			p.VelocitySmooth = &vel
		}

		if s.Altitude != nil && i < len(s.Altitude.Data) {
			alt := s.Altitude.Data[i]
			p.Altitude = &alt
		}

		if s.Distance != nil && i < len(s.Distance.Data) {
			dist := s.Distance.Data[i]
			p.Distance = &dist
		}

		points[i] = p
	}

	return points
}
