package service

import (
	"fmt"
	"time"

	"velofit/internal/store"
)

// Signature defaults derived from FTP when the athlete has never done
// formal testing. HIE (high-intensity energy, the W' analogue) starts at a
// typical trained-cyclist value; peak power at 2.5x threshold.
const (
	defaultHIEJoules       = 20000
	defaultPeakPowerFactor = 2.5
)

// Signature sources
const (
	SourceManual       = "manual"
	SourceEstimated    = "estimated"
	SourceBreakthrough = "breakthrough"
)

// SignatureService manages the append-only fitness signature history
type SignatureService struct {
	store     *store.DB
	athleteID int64
}

// NewSignatureService creates a new signature service
func NewSignatureService(db *store.DB, athleteID int64) *SignatureService {
	return &SignatureService{store: db, athleteID: athleteID}
}

// SetFTP records a new FTP, deriving the rest of the signature from it.
// Threshold power equals FTP by definition here; HIE and peak power get
// population defaults until better estimates exist.
func (s *SignatureService) SetFTP(ftp int, effectiveAt time.Time) (*store.Signature, error) {
	if ftp <= 0 {
		return nil, fmt.Errorf("ftp must be positive, got %d", ftp)
	}

	sig := &store.Signature{
		AthleteID:      s.athleteID,
		FTP:            ftp,
		ThresholdPower: float64(ftp),
		HIE:            defaultHIEJoules,
		PeakPower:      float64(ftp) * defaultPeakPowerFactor,
		Source:         SourceManual,
		SetAt:          effectiveAt,
	}

	if err := s.store.AddSignature(sig); err != nil {
		return nil, fmt.Errorf("saving signature: %w", err)
	}
	return sig, nil
}

// Current returns the latest signature, or nil when none has been set
func (s *SignatureService) Current() (*store.Signature, error) {
	sig, err := s.store.LatestSignature(s.athleteID)
	if err == store.ErrNoSignature {
		return nil, nil
	}
	return sig, err
}

// History returns the full signature history, oldest first
func (s *SignatureService) History() ([]store.Signature, error) {
	return s.store.ListSignatures(s.athleteID)
}
