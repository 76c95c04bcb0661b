package store

import (
	"errors"
	"testing"
	"time"
)

func TestSignatureHistory(t *testing.T) {
	db := NewTestDB(t)

	if _, err := db.LatestSignature(1); !errors.Is(err, ErrNoSignature) {
		t.Fatalf("LatestSignature on empty history: error = %v, want ErrNoSignature", err)
	}

	entries := []Signature{
		{AthleteID: 1, FTP: 240, ThresholdPower: 240, HIE: 20000, PeakPower: 600,
			Source: "manual", SetAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{AthleteID: 1, FTP: 250, ThresholdPower: 250, HIE: 20000, PeakPower: 625,
			Source: "breakthrough", SetAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	for i := range entries {
		if err := db.AddSignature(&entries[i]); err != nil {
			t.Fatalf("AddSignature() error: %v", err)
		}
	}

	latest, err := db.LatestSignature(1)
	if err != nil {
		t.Fatalf("LatestSignature() error: %v", err)
	}
	if latest.FTP != 250 {
		t.Errorf("LatestSignature().FTP = %v, want 250", latest.FTP)
	}
	if latest.Source != "breakthrough" {
		t.Errorf("LatestSignature().Source = %q, want breakthrough", latest.Source)
	}

	history, err := db.ListSignatures(1)
	if err != nil {
		t.Fatalf("ListSignatures() error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history has %d entries, want 2 (append-only)", len(history))
	}
	if history[0].FTP != 240 || history[1].FTP != 250 {
		t.Errorf("history not ordered oldest first: %+v", history)
	}
}

func TestSignatureAt(t *testing.T) {
	db := NewTestDB(t)

	entries := []Signature{
		{AthleteID: 1, FTP: 240, ThresholdPower: 240, HIE: 20000, PeakPower: 600,
			Source: "manual", SetAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{AthleteID: 1, FTP: 250, ThresholdPower: 250, HIE: 20000, PeakPower: 625,
			Source: "breakthrough", SetAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	for i := range entries {
		if err := db.AddSignature(&entries[i]); err != nil {
			t.Fatalf("AddSignature() error: %v", err)
		}
	}

	tests := []struct {
		name    string
		at      time.Time
		wantFTP int
	}{
		{"between entries uses the earlier", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 240},
		{"after the last uses the latest", time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), 250},
		{"before all entries falls back to the first", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), 240},
		{"exactly at an entry uses it", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := db.SignatureAt(1, tt.at)
			if err != nil {
				t.Fatalf("SignatureAt() error: %v", err)
			}
			if s.FTP != tt.wantFTP {
				t.Errorf("SignatureAt(%v).FTP = %v, want %v", tt.at, s.FTP, tt.wantFTP)
			}
		})
	}
}
