package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// UpsertFitnessRecords writes a batch of daily CTL/ATL/TSB records in one
// transaction, mirroring UpsertLoadRecords.
func (db *DB) UpsertFitnessRecords(records []FitnessRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO fitness_metrics (athlete_id, date, stress, ctl, atl, tsb, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(athlete_id, date) DO UPDATE SET
			stress = excluded.stress,
			ctl = excluded.ctl,
			atl = excluded.atl,
			tsb = excluded.tsb,
			computed_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.AthleteID, r.Date, r.Stress, r.CTL, r.ATL, r.TSB); err != nil {
			return fmt.Errorf("upserting fitness record for %s: %w", r.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// GetFitnessRecords returns fitness records in [from, to] ordered by date ascending
func (db *DB) GetFitnessRecords(athleteID int64, from, to string) ([]FitnessRecord, error) {
	rows, err := db.Query(`
		SELECT athlete_id, date, stress, ctl, atl, tsb
		FROM fitness_metrics
		WHERE athlete_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, athleteID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []FitnessRecord
	for rows.Next() {
		var r FitnessRecord
		if err := rows.Scan(&r.AthleteID, &r.Date, &r.Stress, &r.CTL, &r.ATL, &r.TSB); err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// GetFitnessRecordBefore returns the most recent fitness record strictly
// before a date, or nil when none exists.
func (db *DB) GetFitnessRecordBefore(athleteID int64, date string) (*FitnessRecord, error) {
	row := db.QueryRow(`
		SELECT athlete_id, date, stress, ctl, atl, tsb
		FROM fitness_metrics
		WHERE athlete_id = ? AND date < ?
		ORDER BY date DESC
		LIMIT 1
	`, athleteID, date)

	var r FitnessRecord
	err := row.Scan(&r.AthleteID, &r.Date, &r.Stress, &r.CTL, &r.ATL, &r.TSB)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// LatestFitnessRecord returns the most recent fitness record, or nil when
// the athlete has no history yet.
func (db *DB) LatestFitnessRecord(athleteID int64) (*FitnessRecord, error) {
	row := db.QueryRow(`
		SELECT athlete_id, date, stress, ctl, atl, tsb
		FROM fitness_metrics
		WHERE athlete_id = ?
		ORDER BY date DESC
		LIMIT 1
	`, athleteID)

	var r FitnessRecord
	err := row.Scan(&r.AthleteID, &r.Date, &r.Stress, &r.CTL, &r.ATL, &r.TSB)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
