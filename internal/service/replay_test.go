package service

import (
	"errors"
	"math"
	"testing"
	"time"

	"velofit/internal/analysis"
	"velofit/internal/config"
	"velofit/internal/store"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Athlete.FTP = 250
	return &cfg
}

func testHistoryService(t *testing.T) (*HistoryService, *store.DB) {
	t.Helper()
	db := store.NewTestDB(t)
	return NewHistoryService(db, testConfig()), db
}

var nextActivityID int64

func insertRide(t *testing.T, db *store.DB, day time.Time, durationSeconds int, np float64) {
	t.Helper()
	nextActivityID++

	start := day.Add(10 * time.Hour)
	a := &store.Activity{
		ID:             nextActivityID,
		AthleteID:      1,
		Name:           "Morning Ride",
		Type:           "Ride",
		StartDate:      start,
		StartDateLocal: start,
		Distance:       30000,
		MovingTime:     durationSeconds,
		ElapsedTime:    durationSeconds,
		DeviceWatts:    true,
	}
	if np > 0 {
		a.WeightedAverageWatts = &np
	}

	if err := db.UpsertActivity(a); err != nil {
		t.Fatalf("inserting activity: %v", err)
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRebuildLoadHistory(t *testing.T) {
	h, db := testHistoryService(t)

	insertRide(t, db, day(2024, 3, 1), 3600, 225)
	insertRide(t, db, day(2024, 3, 3), 5400, 180)

	start, end, err := h.RebuildLoadHistory(1, day(2024, 3, 1), day(2024, 3, 7), false)
	if err != nil {
		t.Fatalf("RebuildLoadHistory() error: %v", err)
	}
	if !start.Equal(day(2024, 3, 1)) || !end.Equal(day(2024, 3, 7)) {
		t.Errorf("returned range [%v, %v], want [2024-03-01, 2024-03-07]", start, end)
	}

	records, err := db.GetLoadRecords(1, "2024-03-01", "2024-03-07")
	if err != nil {
		t.Fatalf("GetLoadRecords() error: %v", err)
	}

	// Every day in the range gets a record, training or not
	if len(records) != 7 {
		t.Fatalf("got %d records, want 7", len(records))
	}

	// Ride days carry their strain; rest days carry zero
	if records[0].StrainTotal <= 0 {
		t.Errorf("2024-03-01 strain = %v, want > 0", records[0].StrainTotal)
	}
	if records[1].StrainTotal != 0 {
		t.Errorf("2024-03-02 strain = %v, want 0 (rest day)", records[1].StrainTotal)
	}
	if records[2].StrainTotal <= 0 {
		t.Errorf("2024-03-03 strain = %v, want > 0", records[2].StrainTotal)
	}

	// Rest days decay the training load
	tl := func(r store.LoadRecord) float64 { return r.TLLow + r.TLHigh + r.TLPeak }
	if tl(records[1]) >= tl(records[0]) {
		t.Errorf("rest day TL %v did not decay from %v", tl(records[1]), tl(records[0]))
	}
	for _, r := range records {
		if r.Status == "" {
			t.Errorf("day %s has no status", r.Date)
		}
	}

	// Forms are persisted at write time so readers never rederive them
	for _, r := range records {
		if math.Abs(r.FormLow-(r.TLLow-r.RLLow)) > 1e-9 ||
			math.Abs(r.FormHigh-(r.TLHigh-r.RLHigh)) > 1e-9 ||
			math.Abs(r.FormPeak-(r.TLPeak-r.RLPeak)) > 1e-9 {
			t.Errorf("day %s stored forms %v/%v/%v inconsistent with loads", r.Date, r.FormLow, r.FormHigh, r.FormPeak)
		}
	}
}

func TestRebuildLoadHistoryIsIdempotent(t *testing.T) {
	h, db := testHistoryService(t)

	insertRide(t, db, day(2024, 3, 1), 3600, 225)
	insertRide(t, db, day(2024, 3, 4), 7200, 170)
	insertRide(t, db, day(2024, 3, 10), 3600, 260)

	if _, _, err := h.RebuildLoadHistory(1, day(2024, 3, 1), day(2024, 3, 14), false); err != nil {
		t.Fatalf("first rebuild: %v", err)
	}
	first, err := db.GetLoadRecords(1, "2024-03-01", "2024-03-14")
	if err != nil {
		t.Fatalf("GetLoadRecords() error: %v", err)
	}

	if _, _, err := h.RebuildLoadHistory(1, day(2024, 3, 1), day(2024, 3, 14), false); err != nil {
		t.Fatalf("second rebuild: %v", err)
	}
	second, err := db.GetLoadRecords(1, "2024-03-01", "2024-03-14")
	if err != nil {
		t.Fatalf("GetLoadRecords() error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("record count changed: %d then %d", len(first), len(second))
	}
	for i := range first {
		if math.Abs(first[i].TLLow-second[i].TLLow) > 1e-9 ||
			math.Abs(first[i].RLLow-second[i].RLLow) > 1e-9 ||
			math.Abs(first[i].StrainTotal-second[i].StrainTotal) > 1e-9 ||
			first[i].Status != second[i].Status {
			t.Errorf("day %s differs between rebuilds: %+v vs %+v", first[i].Date, first[i], second[i])
		}
	}
}

func TestRebuildLoadHistoryWarmsUpFromLookback(t *testing.T) {
	h, db := testHistoryService(t)

	// Training inside the lookback window but before the rebuild range
	insertRide(t, db, day(2024, 2, 20), 7200, 220)

	if _, _, err := h.RebuildLoadHistory(1, day(2024, 3, 1), day(2024, 3, 7), false); err != nil {
		t.Fatalf("RebuildLoadHistory() error: %v", err)
	}

	records, err := db.GetLoadRecords(1, "2024-03-01", "2024-03-07")
	if err != nil {
		t.Fatalf("GetLoadRecords() error: %v", err)
	}

	// The February ride must still be felt on March 1st via decay
	if records[0].TLLow <= 0 {
		t.Errorf("TLLow on range start = %v, want > 0 from warm-up", records[0].TLLow)
	}
}

func TestRebuildLoadHistoryRecalculateIgnoresPriorState(t *testing.T) {
	h, db := testHistoryService(t)

	// A stale record far before the warm-up window with inflated loads
	stale := []store.LoadRecord{{
		AthleteID: 1, Date: "2023-01-01",
		TLLow: 500, RLLow: 10, TLHigh: 500, RLHigh: 10, TLPeak: 500, RLPeak: 10,
		Status: "very_fresh",
	}}
	if err := db.UpsertLoadRecords(stale); err != nil {
		t.Fatalf("seeding stale record: %v", err)
	}

	insertRide(t, db, day(2024, 3, 1), 3600, 225)

	if _, _, err := h.RebuildLoadHistory(1, day(2024, 3, 1), day(2024, 3, 1), true); err != nil {
		t.Fatalf("RebuildLoadHistory() error: %v", err)
	}

	records, err := db.GetLoadRecords(1, "2024-03-01", "2024-03-01")
	if err != nil {
		t.Fatalf("GetLoadRecords() error: %v", err)
	}

	// With recalculate set, the stale 500s play no part: the state is just
	// the single ride's strain
	if records[0].TLLow > 100 {
		t.Errorf("TLLow = %v, stale prior state leaked into recalculation", records[0].TLLow)
	}
}

func TestRebuildLoadHistoryReusesStoredDays(t *testing.T) {
	h, db := testHistoryService(t)

	insertRide(t, db, day(2024, 3, 1), 3600, 225)

	// A day inside the range that was already computed, with loads no replay
	// of the activities would produce
	persisted := []store.LoadRecord{{
		AthleteID: 1, Date: "2024-03-02",
		TLLow: 999, RLLow: 100, FormLow: 899,
		Status: "very_fresh",
	}}
	if err := db.UpsertLoadRecords(persisted); err != nil {
		t.Fatalf("seeding persisted record: %v", err)
	}

	if _, _, err := h.RebuildLoadHistory(1, day(2024, 3, 1), day(2024, 3, 3), false); err != nil {
		t.Fatalf("RebuildLoadHistory() error: %v", err)
	}

	records, err := db.GetLoadRecords(1, "2024-03-01", "2024-03-03")
	if err != nil {
		t.Fatalf("GetLoadRecords() error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	// The stored day is untouched, not recomputed from the ride history
	if records[1].TLLow != 999 || records[1].RLLow != 100 || records[1].Status != "very_fresh" {
		t.Errorf("stored day was overwritten: %+v", records[1])
	}

	// The following rest day decays from the stored state, not from a
	// recomputed one
	wantTL := 999 * math.Exp(-1.0/60)
	if math.Abs(records[2].TLLow-wantTL) > 1e-6 {
		t.Errorf("day after stored record TLLow = %v, want %v seeded from stored state", records[2].TLLow, wantTL)
	}
}

func TestRebuildFitnessHistoryReusesStoredDays(t *testing.T) {
	h, db := testHistoryService(t)

	insertRide(t, db, day(2024, 3, 1), 3600, 250)

	persisted := []store.FitnessRecord{{
		AthleteID: 1, Date: "2024-03-02",
		Stress: 0, CTL: 50, ATL: 60, TSB: -10,
	}}
	if err := db.UpsertFitnessRecords(persisted); err != nil {
		t.Fatalf("seeding persisted record: %v", err)
	}

	if _, _, err := h.RebuildFitnessHistory(1, day(2024, 3, 1), day(2024, 3, 3), false); err != nil {
		t.Fatalf("RebuildFitnessHistory() error: %v", err)
	}

	records, err := db.GetFitnessRecords(1, "2024-03-01", "2024-03-03")
	if err != nil {
		t.Fatalf("GetFitnessRecords() error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	// The stored day is reused as-is
	if records[1].CTL != 50 || records[1].ATL != 60 {
		t.Errorf("stored day was overwritten: %+v", records[1])
	}

	// The next rest day continues the EWMA from the stored values
	if math.Abs(records[2].CTL-(50-50.0/42)) > 1e-9 {
		t.Errorf("day 3 CTL = %v, want %v from stored seed", records[2].CTL, 50-50.0/42)
	}
	if math.Abs(records[2].ATL-(60-60.0/7)) > 1e-9 {
		t.Errorf("day 3 ATL = %v, want %v from stored seed", records[2].ATL, 60-60.0/7)
	}
}

func TestRebuildLoadHistoryRequiresFTP(t *testing.T) {
	db := store.NewTestDB(t)
	cfg := config.DefaultConfig() // no FTP
	h := NewHistoryService(db, &cfg)

	insertRide(t, db, day(2024, 3, 1), 3600, 225)

	_, _, err := h.RebuildLoadHistory(1, day(2024, 3, 1), day(2024, 3, 7), false)
	if err != config.ErrNoFTP {
		t.Errorf("RebuildLoadHistory() error = %v, want ErrNoFTP", err)
	}
}

func TestRebuildLoadHistoryUsesSignatureFTP(t *testing.T) {
	db := store.NewTestDB(t)
	cfg := config.DefaultConfig() // no configured FTP
	h := NewHistoryService(db, &cfg)

	sig := &store.Signature{
		AthleteID: 1, FTP: 250, ThresholdPower: 250, HIE: 20000, PeakPower: 625,
		Source: "manual", SetAt: day(2024, 1, 1),
	}
	if err := db.AddSignature(sig); err != nil {
		t.Fatalf("AddSignature() error: %v", err)
	}

	insertRide(t, db, day(2024, 3, 1), 3600, 250)

	if _, _, err := h.RebuildLoadHistory(1, day(2024, 3, 1), day(2024, 3, 1), false); err != nil {
		t.Fatalf("RebuildLoadHistory() error: %v", err)
	}

	records, err := db.GetLoadRecords(1, "2024-03-01", "2024-03-01")
	if err != nil {
		t.Fatalf("GetLoadRecords() error: %v", err)
	}

	// One hour at signature FTP is 100 strain points
	if math.Abs(records[0].StrainTotal-100) > 0.01 {
		t.Errorf("StrainTotal = %v, want 100", records[0].StrainTotal)
	}
}

func TestRebuildFitnessHistory(t *testing.T) {
	h, db := testHistoryService(t)

	// One hour at FTP on day one: stress 100
	insertRide(t, db, day(2024, 3, 1), 3600, 250)

	if _, _, err := h.RebuildFitnessHistory(1, day(2024, 3, 1), day(2024, 3, 3), true); err != nil {
		t.Fatalf("RebuildFitnessHistory() error: %v", err)
	}

	records, err := db.GetFitnessRecords(1, "2024-03-01", "2024-03-03")
	if err != nil {
		t.Fatalf("GetFitnessRecords() error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	// Day 1 from a zero seed: CTL = 100/42, ATL = 100/7
	if math.Abs(records[0].Stress-100) > 0.01 {
		t.Errorf("day 1 stress = %v, want 100", records[0].Stress)
	}
	if math.Abs(records[0].CTL-100.0/42) > 0.01 {
		t.Errorf("day 1 CTL = %v, want %v", records[0].CTL, 100.0/42)
	}
	if math.Abs(records[0].ATL-100.0/7) > 0.01 {
		t.Errorf("day 1 ATL = %v, want %v", records[0].ATL, 100.0/7)
	}

	// TSB is always CTL minus ATL
	for _, r := range records {
		if math.Abs(r.TSB-(r.CTL-r.ATL)) > 1e-9 {
			t.Errorf("day %s TSB = %v, want CTL-ATL = %v", r.Date, r.TSB, r.CTL-r.ATL)
		}
	}

	// Rest days pull both averages down
	if records[1].CTL >= records[0].CTL || records[1].ATL >= records[0].ATL {
		t.Errorf("rest day did not decay: %+v then %+v", records[0], records[1])
	}
}

func TestRebuildFitnessHistoryIsIdempotent(t *testing.T) {
	h, db := testHistoryService(t)

	insertRide(t, db, day(2024, 3, 1), 3600, 225)
	insertRide(t, db, day(2024, 3, 5), 5400, 200)

	if _, _, err := h.RebuildFitnessHistory(1, day(2024, 3, 1), day(2024, 3, 10), false); err != nil {
		t.Fatalf("first rebuild: %v", err)
	}
	first, _ := db.GetFitnessRecords(1, "2024-03-01", "2024-03-10")

	if _, _, err := h.RebuildFitnessHistory(1, day(2024, 3, 1), day(2024, 3, 10), false); err != nil {
		t.Fatalf("second rebuild: %v", err)
	}
	second, _ := db.GetFitnessRecords(1, "2024-03-01", "2024-03-10")

	if len(first) != len(second) {
		t.Fatalf("record count changed: %d then %d", len(first), len(second))
	}
	for i := range first {
		if math.Abs(first[i].CTL-second[i].CTL) > 1e-9 ||
			math.Abs(first[i].ATL-second[i].ATL) > 1e-9 {
			t.Errorf("day %s differs between rebuilds: %+v vs %+v", first[i].Date, first[i], second[i])
		}
	}
}

func TestRebuildFitnessHistoryHeartRateFallback(t *testing.T) {
	h, db := testHistoryService(t)

	// A ride with HR data but no power
	nextActivityID++
	hr := 150.0
	start := day(2024, 3, 1).Add(10 * time.Hour)
	a := &store.Activity{
		ID:               nextActivityID,
		AthleteID:        1,
		Name:             "No power meter today",
		Type:             "Ride",
		StartDate:        start,
		StartDateLocal:   start,
		MovingTime:       3600,
		ElapsedTime:      3600,
		AverageHeartrate: &hr,
	}
	if err := db.UpsertActivity(a); err != nil {
		t.Fatalf("inserting activity: %v", err)
	}

	if _, _, err := h.RebuildFitnessHistory(1, day(2024, 3, 1), day(2024, 3, 1), true); err != nil {
		t.Fatalf("RebuildFitnessHistory() error: %v", err)
	}

	records, err := db.GetFitnessRecords(1, "2024-03-01", "2024-03-01")
	if err != nil {
		t.Fatalf("GetFitnessRecords() error: %v", err)
	}

	// hrIF = (150-50)/(165-50) = 0.8696, score = 0.756 * 100
	if math.Abs(records[0].Stress-75.61) > 0.1 {
		t.Errorf("stress = %v, want ~75.61 from HR fallback", records[0].Stress)
	}
}

func TestRebuildFitnessHistoryRejectsBrokenHRProfile(t *testing.T) {
	db := store.NewTestDB(t)
	cfg := testConfig()
	cfg.Athlete.ThresholdHR = 40
	cfg.Athlete.RestingHR = 50
	h := NewHistoryService(db, cfg)

	// An HR-only ride forces the heart rate path
	nextActivityID++
	hr := 150.0
	start := day(2024, 3, 1).Add(10 * time.Hour)
	a := &store.Activity{
		ID:               nextActivityID,
		AthleteID:        1,
		Name:             "No power meter today",
		Type:             "Ride",
		StartDate:        start,
		StartDateLocal:   start,
		MovingTime:       3600,
		ElapsedTime:      3600,
		AverageHeartrate: &hr,
	}
	if err := db.UpsertActivity(a); err != nil {
		t.Fatalf("inserting activity: %v", err)
	}

	// A threshold HR at or below resting HR must fail the rebuild, not
	// silently degrade to a duration estimate
	_, _, err := h.RebuildFitnessHistory(1, day(2024, 3, 1), day(2024, 3, 1), true)
	if !errors.Is(err, analysis.ErrInvalidHRReserve) {
		t.Fatalf("RebuildFitnessHistory() error = %v, want ErrInvalidHRReserve", err)
	}

	// Nothing may be written when the rebuild fails
	records, err := db.GetFitnessRecords(1, "2024-03-01", "2024-03-01")
	if err != nil {
		t.Fatalf("GetFitnessRecords() error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records after failed rebuild, want 0", len(records))
	}
}

func TestRebuildRejectsInvertedRange(t *testing.T) {
	h, _ := testHistoryService(t)

	if _, _, err := h.RebuildLoadHistory(1, day(2024, 3, 7), day(2024, 3, 1), false); err == nil {
		t.Error("expected error for end before start")
	}
	if _, _, err := h.RebuildFitnessHistory(1, day(2024, 3, 7), day(2024, 3, 1), false); err == nil {
		t.Error("expected error for end before start")
	}
}
