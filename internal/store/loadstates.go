package store

import (
	"database/sql"
	"errors"
	"fmt"
)

const loadColumns = `athlete_id, date, strain_total, strain_low, strain_high, strain_peak,
		tl_low, rl_low, tl_high, rl_high, tl_peak, rl_peak,
		form_low, form_high, form_peak, status`

// UpsertLoadRecords writes a batch of daily load records in one transaction.
// History rebuilds produce the whole range at once; writing it atomically
// means a failed rebuild never leaves a partially updated timeline.
func (db *DB) UpsertLoadRecords(records []LoadRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO load_states (
			athlete_id, date, strain_total, strain_low, strain_high, strain_peak,
			tl_low, rl_low, tl_high, rl_high, tl_peak, rl_peak,
			form_low, form_high, form_peak, status, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(athlete_id, date) DO UPDATE SET
			strain_total = excluded.strain_total,
			strain_low = excluded.strain_low,
			strain_high = excluded.strain_high,
			strain_peak = excluded.strain_peak,
			tl_low = excluded.tl_low,
			rl_low = excluded.rl_low,
			tl_high = excluded.tl_high,
			rl_high = excluded.rl_high,
			tl_peak = excluded.tl_peak,
			rl_peak = excluded.rl_peak,
			form_low = excluded.form_low,
			form_high = excluded.form_high,
			form_peak = excluded.form_peak,
			status = excluded.status,
			computed_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.AthleteID, r.Date, r.StrainTotal, r.StrainLow, r.StrainHigh, r.StrainPeak,
			r.TLLow, r.RLLow, r.TLHigh, r.RLHigh, r.TLPeak, r.RLPeak,
			r.FormLow, r.FormHigh, r.FormPeak, r.Status,
		)
		if err != nil {
			return fmt.Errorf("upserting load record for %s: %w", r.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// GetLoadRecords returns load records in [from, to] ordered by date ascending.
// Dates are YYYY-MM-DD strings, which compare correctly as text.
func (db *DB) GetLoadRecords(athleteID int64, from, to string) ([]LoadRecord, error) {
	rows, err := db.Query(`
		SELECT `+loadColumns+`
		FROM load_states
		WHERE athlete_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, athleteID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLoadRecords(rows)
}

// GetLoadRecordBefore returns the most recent load record strictly before a
// date, or nil when none exists. Rebuilds use it to seed the model.
func (db *DB) GetLoadRecordBefore(athleteID int64, date string) (*LoadRecord, error) {
	row := db.QueryRow(`
		SELECT `+loadColumns+`
		FROM load_states
		WHERE athlete_id = ? AND date < ?
		ORDER BY date DESC
		LIMIT 1
	`, athleteID, date)

	r, err := scanLoadRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// LatestLoadRecord returns the most recent load record, or nil when the
// athlete has no history yet.
func (db *DB) LatestLoadRecord(athleteID int64) (*LoadRecord, error) {
	row := db.QueryRow(`
		SELECT `+loadColumns+`
		FROM load_states
		WHERE athlete_id = ?
		ORDER BY date DESC
		LIMIT 1
	`, athleteID)

	r, err := scanLoadRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func scanLoadRecord(scan func(...any) error) (*LoadRecord, error) {
	var r LoadRecord
	err := scan(
		&r.AthleteID, &r.Date, &r.StrainTotal, &r.StrainLow, &r.StrainHigh, &r.StrainPeak,
		&r.TLLow, &r.RLLow, &r.TLHigh, &r.RLHigh, &r.TLPeak, &r.RLPeak,
		&r.FormLow, &r.FormHigh, &r.FormPeak, &r.Status,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanLoadRecords(rows *sql.Rows) ([]LoadRecord, error) {
	var records []LoadRecord
	for rows.Next() {
		r, err := scanLoadRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}
