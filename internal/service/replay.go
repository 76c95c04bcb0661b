package service

import (
	"fmt"
	"time"

	"velofit/internal/analysis"
	"velofit/internal/config"
	"velofit/internal/store"
)

// HistoryService rebuilds the daily load and fitness timelines from stored
// activities. Rebuilds are idempotent: running the same rebuild twice writes
// identical rows.
type HistoryService struct {
	db         *store.DB
	athlete    config.AthleteConfig
	thresholds analysis.StatusThresholds
}

// NewHistoryService creates a history service from athlete and model config
func NewHistoryService(db *store.DB, cfg *config.Config) *HistoryService {
	thresholds := analysis.DefaultThresholds()
	if cfg.Model.DetrainingTL > 0 {
		thresholds.DetrainingTL = cfg.Model.DetrainingTL
	}
	if cfg.Model.VeryFreshForm > 0 {
		thresholds.VeryFreshForm = cfg.Model.VeryFreshForm
	}

	return &HistoryService{
		db:         db,
		athlete:    cfg.Athlete,
		thresholds: thresholds,
	}
}

// Thresholds returns the status thresholds in effect.
func (h *HistoryService) Thresholds() analysis.StatusThresholds {
	return h.thresholds
}

// RebuildLoadHistory computes the 3D load timeline for every day in
// [start, end] and writes the new days in one batch. The model is seeded by
// folding forward from LoadLookbackDays before start, so the state entering
// the range reflects prior training. Days already persisted are reused
// as-is, seeding the following day without being recomputed. With
// recalculate set, stored records are ignored entirely and the model starts
// from zero at the warm-up boundary, overwriting the range.
// Returns the range covered.
func (h *HistoryService) RebuildLoadHistory(athleteID int64, start, end time.Time, recalculate bool) (time.Time, time.Time, error) {
	start = dayStart(start)
	end = dayStart(end)
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s before start %s", end.Format(DateLayout), start.Format(DateLayout))
	}

	// FTP problems should fail the whole rebuild up front, not surface as a
	// mysteriously flat timeline.
	if _, err := h.ftpAt(athleteID, start); err != nil {
		return time.Time{}, time.Time{}, err
	}

	warmStart := start.AddDate(0, 0, -LoadLookbackDays)

	strains, err := h.dailyStrains(athleteID, warmStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("computing daily strains: %w", err)
	}

	var state analysis.LoadState
	var existing map[string]store.LoadRecord
	if !recalculate {
		prior, err := h.db.GetLoadRecordBefore(athleteID, warmStart.Format(DateLayout))
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("loading prior state: %w", err)
		}
		if prior != nil {
			state = loadStateFromRecord(prior)
			// Decay across the gap between the prior record and the warm-up
			// start, with no strain added
			priorDate, err := time.Parse(DateLayout, prior.Date)
			if err != nil {
				return time.Time{}, time.Time{}, fmt.Errorf("parsing prior record date: %w", err)
			}
			if gap := daysBetween(priorDate, warmStart) - 1; gap > 0 {
				state = analysis.Advance(state, analysis.DailyStrain{}, float64(gap))
			}
		}

		stored, err := h.db.GetLoadRecords(athleteID, warmStart.Format(DateLayout), end.Format(DateLayout))
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("loading existing records: %w", err)
		}
		existing = make(map[string]store.LoadRecord, len(stored))
		for _, r := range stored {
			existing[r.Date] = r
		}
	}

	// Fold forward one day at a time. Days with no activities still advance
	// the model so rest decays the loads.
	records := make([]store.LoadRecord, 0, daysBetween(start, end)+1)
	for day := warmStart; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(DateLayout)

		// A day that is already persisted is reused as-is: its row stays
		// untouched and its state seeds the next day.
		if r, ok := existing[key]; ok {
			state = loadStateFromRecord(&r)
			continue
		}

		strain := strains[key]
		state = analysis.Advance(state, strain, 1)

		if day.Before(start) {
			continue
		}

		records = append(records, loadRecordFromState(athleteID, key, strain, state,
			analysis.ClassifyStatus(state, h.thresholds)))
	}

	if err := h.db.UpsertLoadRecords(records); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("writing load records: %w", err)
	}

	return start, end, nil
}

// RebuildFitnessHistory recomputes the CTL/ATL/TSB timeline for every day in
// [start, end], mirroring RebuildLoadHistory with the single-dimension model
// and its shorter warm-up.
func (h *HistoryService) RebuildFitnessHistory(athleteID int64, start, end time.Time, recalculate bool) (time.Time, time.Time, error) {
	start = dayStart(start)
	end = dayStart(end)
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s before start %s", end.Format(DateLayout), start.Format(DateLayout))
	}

	if _, err := h.ftpAt(athleteID, start); err != nil {
		return time.Time{}, time.Time{}, err
	}

	warmStart := start.AddDate(0, 0, -FitnessLookbackDays)

	stresses, err := h.dailyStresses(athleteID, warmStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("computing daily stress: %w", err)
	}

	var ctl, atl float64
	var existing map[string]store.FitnessRecord
	if !recalculate {
		prior, err := h.db.GetFitnessRecordBefore(athleteID, warmStart.Format(DateLayout))
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("loading prior fitness: %w", err)
		}
		if prior != nil {
			ctl, atl = prior.CTL, prior.ATL
			priorDate, err := time.Parse(DateLayout, prior.Date)
			if err != nil {
				return time.Time{}, time.Time{}, fmt.Errorf("parsing prior record date: %w", err)
			}
			// EWMA is strictly per-day: bridge the gap with zero-stress days
			for i := daysBetween(priorDate, warmStart) - 1; i > 0; i-- {
				ctl = analysis.EWMAStep(ctl, 0, analysis.CTLTimeConstant)
				atl = analysis.EWMAStep(atl, 0, analysis.ATLTimeConstant)
			}
		}

		stored, err := h.db.GetFitnessRecords(athleteID, warmStart.Format(DateLayout), end.Format(DateLayout))
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("loading existing records: %w", err)
		}
		existing = make(map[string]store.FitnessRecord, len(stored))
		for _, r := range stored {
			existing[r.Date] = r
		}
	}

	records := make([]store.FitnessRecord, 0, daysBetween(start, end)+1)
	for day := warmStart; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(DateLayout)

		// Persisted days are reused as-is and seed the next day
		if r, ok := existing[key]; ok {
			ctl, atl = r.CTL, r.ATL
			continue
		}

		stress := stresses[key]

		ctl = analysis.EWMAStep(ctl, stress, analysis.CTLTimeConstant)
		atl = analysis.EWMAStep(atl, stress, analysis.ATLTimeConstant)

		if day.Before(start) {
			continue
		}

		records = append(records, store.FitnessRecord{
			AthleteID: athleteID,
			Date:      key,
			Stress:    stress,
			CTL:       ctl,
			ATL:       atl,
			TSB:       ctl - atl,
		})
	}

	if err := h.db.UpsertFitnessRecords(records); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("writing fitness records: %w", err)
	}

	return start, end, nil
}

// dailyStrains loads all activities since a date and aggregates their strain
// per local calendar day.
func (h *HistoryService) dailyStrains(athleteID int64, since time.Time) (map[string]analysis.DailyStrain, error) {
	activities, err := h.db.ListActivitiesSince(athleteID, since)
	if err != nil {
		return nil, err
	}

	strains := make(map[string]analysis.DailyStrain, len(activities))
	for _, a := range activities {
		ftp, err := h.ftpAt(athleteID, a.StartDateLocal)
		if err != nil {
			return nil, err
		}

		strain := analysis.ComputeStrain(analysis.StrainInput{
			DurationSeconds: a.MovingTime,
			AveragePower:    a.AverageWatts,
			NormalizedPower: a.WeightedAverageWatts,
			MaxPower:        a.MaxWatts,
			FTP:             ftp,
			ActivityType:    a.Type,
		})

		key := a.StartDateLocal.Format(DateLayout)
		strains[key] = strains[key].Add(strain)
	}

	return strains, nil
}

// dailyStresses loads all activities since a date and aggregates their
// single-dimension stress per local calendar day. Power is preferred;
// heart rate is the fallback; a type-based duration estimate covers the rest.
func (h *HistoryService) dailyStresses(athleteID int64, since time.Time) (map[string]float64, error) {
	activities, err := h.db.ListActivitiesSince(athleteID, since)
	if err != nil {
		return nil, err
	}

	stresses := make(map[string]float64, len(activities))
	for _, a := range activities {
		ftp, err := h.ftpAt(athleteID, a.StartDateLocal)
		if err != nil {
			return nil, err
		}

		stress, err := h.activityStress(&a, ftp)
		if err != nil {
			return nil, fmt.Errorf("activity %d: %w", a.ID, err)
		}

		key := a.StartDateLocal.Format(DateLayout)
		stresses[key] += stress
	}

	return stresses, nil
}

// activityStress computes a single activity's stress score
func (h *HistoryService) activityStress(a *store.Activity, ftp int) (float64, error) {
	power := 0.0
	if a.WeightedAverageWatts != nil && *a.WeightedAverageWatts > 0 {
		power = *a.WeightedAverageWatts
	} else if a.AverageWatts != nil && *a.AverageWatts > 0 {
		power = *a.AverageWatts
	}

	if power > 0 {
		return analysis.StressScore(a.MovingTime, power, ftp)
	}

	// No silent fallback past heart rate: a broken HR profile is an invalid
	// configuration and fails the rebuild before anything is written.
	if a.AverageHeartrate != nil && *a.AverageHeartrate > 0 {
		return analysis.StressFromHeartRate(
			a.MovingTime, *a.AverageHeartrate, h.athlete.MaxHR,
			h.athlete.ThresholdHR, h.athlete.RestingHR,
		)
	}

	return analysis.ComputeStrain(analysis.StrainInput{
		DurationSeconds: a.MovingTime,
		FTP:             ftp,
		ActivityType:    a.Type,
	}).Total, nil
}

// ftpAt resolves the FTP in effect at a point in time: the signature history
// when one exists, the configured FTP otherwise.
func (h *HistoryService) ftpAt(athleteID int64, at time.Time) (int, error) {
	sig, err := h.db.SignatureAt(athleteID, at)
	if err == nil {
		return sig.FTP, nil
	}
	if err != store.ErrNoSignature {
		return 0, err
	}

	if h.athlete.FTP <= 0 {
		return 0, config.ErrNoFTP
	}
	return h.athlete.FTP, nil
}

func loadStateFromRecord(r *store.LoadRecord) analysis.LoadState {
	return analysis.LoadState{
		Low:  analysis.SystemLoad{TL: r.TLLow, RL: r.RLLow},
		High: analysis.SystemLoad{TL: r.TLHigh, RL: r.RLHigh},
		Peak: analysis.SystemLoad{TL: r.TLPeak, RL: r.RLPeak},
	}
}

func loadRecordFromState(athleteID int64, date string, strain analysis.DailyStrain, state analysis.LoadState, status analysis.TrainingStatus) store.LoadRecord {
	return store.LoadRecord{
		AthleteID:   athleteID,
		Date:        date,
		StrainTotal: strain.Total,
		StrainLow:   strain.Low,
		StrainHigh:  strain.High,
		StrainPeak:  strain.Peak,
		TLLow:       state.Low.TL,
		RLLow:       state.Low.RL,
		TLHigh:      state.High.TL,
		RLHigh:      state.High.RL,
		TLPeak:      state.Peak.TL,
		RLPeak:      state.Peak.RL,
		FormLow:     state.Low.Form(),
		FormHigh:    state.High.Form(),
		FormPeak:    state.Peak.Form(),
		Status:      status.String(),
	}
}

// dayStart truncates a time to midnight in its own location
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole days from a to b
func daysBetween(a, b time.Time) int {
	return int(dayStart(b).Sub(dayStart(a)).Hours() / 24)
}
