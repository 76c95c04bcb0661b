package store

import (
	"database/sql"
	"errors"
	"time"
)

// AddSignature appends a fitness signature entry. The history is append-only
// so FTP changes over time stay auditable.
func (db *DB) AddSignature(s *Signature) error {
	_, err := db.Exec(`
		INSERT INTO fitness_signatures (athlete_id, ftp, threshold_power, hie, peak_power, source, set_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.AthleteID, s.FTP, s.ThresholdPower, s.HIE, s.PeakPower, s.Source, s.SetAt.Format(time.RFC3339))
	return err
}

// LatestSignature returns the most recently set signature.
func (db *DB) LatestSignature(athleteID int64) (*Signature, error) {
	row := db.QueryRow(`
		SELECT id, athlete_id, ftp, threshold_power, hie, peak_power, source, set_at
		FROM fitness_signatures
		WHERE athlete_id = ?
		ORDER BY set_at DESC, id DESC
		LIMIT 1
	`, athleteID)

	return scanSignature(row.Scan)
}

// SignatureAt returns the signature in effect at a given time: the latest
// entry set at or before it. Falls back to the earliest entry when the time
// predates all of them.
func (db *DB) SignatureAt(athleteID int64, at time.Time) (*Signature, error) {
	row := db.QueryRow(`
		SELECT id, athlete_id, ftp, threshold_power, hie, peak_power, source, set_at
		FROM fitness_signatures
		WHERE athlete_id = ? AND set_at <= ?
		ORDER BY set_at DESC, id DESC
		LIMIT 1
	`, athleteID, at.Format(time.RFC3339))

	s, err := scanSignature(row.Scan)
	if errors.Is(err, ErrNoSignature) {
		row = db.QueryRow(`
			SELECT id, athlete_id, ftp, threshold_power, hie, peak_power, source, set_at
			FROM fitness_signatures
			WHERE athlete_id = ?
			ORDER BY set_at ASC, id ASC
			LIMIT 1
		`, athleteID)
		return scanSignature(row.Scan)
	}
	return s, err
}

// ListSignatures returns the full signature history, oldest first.
func (db *DB) ListSignatures(athleteID int64) ([]Signature, error) {
	rows, err := db.Query(`
		SELECT id, athlete_id, ftp, threshold_power, hie, peak_power, source, set_at
		FROM fitness_signatures
		WHERE athlete_id = ?
		ORDER BY set_at ASC, id ASC
	`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signatures []Signature
	for rows.Next() {
		s, err := scanSignature(rows.Scan)
		if err != nil {
			return nil, err
		}
		signatures = append(signatures, *s)
	}

	return signatures, rows.Err()
}

func scanSignature(scan func(...any) error) (*Signature, error) {
	var s Signature
	var setAt string

	err := scan(&s.ID, &s.AthleteID, &s.FTP, &s.ThresholdPower, &s.HIE, &s.PeakPower, &s.Source, &setAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSignature
	}
	if err != nil {
		return nil, err
	}

	s.SetAt, err = time.Parse(time.RFC3339, setAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
