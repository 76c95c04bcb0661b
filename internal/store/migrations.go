package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Activities (summary data from /athlete/activities)
		`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			start_date TEXT NOT NULL,
			start_date_local TEXT NOT NULL,
			timezone TEXT,
			distance REAL NOT NULL,
			moving_time INTEGER NOT NULL,
			elapsed_time INTEGER NOT NULL,
			total_elevation_gain REAL,
			average_speed REAL,
			max_speed REAL,
			average_watts REAL,
			weighted_average_watts REAL,
			max_watts REAL,
			device_watts INTEGER NOT NULL DEFAULT 0,
			kilojoules REAL,
			average_heartrate REAL,
			max_heartrate REAL,
			average_cadence REAL,
			streams_synced INTEGER DEFAULT 0,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_start_date ON activities(start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(type)`,

		// Streams (second-by-second data from /activities/{id}/streams)
		`CREATE TABLE IF NOT EXISTS streams (
			activity_id INTEGER NOT NULL,
			time_offset INTEGER NOT NULL,
			watts INTEGER,
			heartrate INTEGER,
			cadence INTEGER,
			velocity_smooth REAL,
			altitude REAL,
			distance REAL,
			PRIMARY KEY (activity_id, time_offset),
			FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_streams_activity ON streams(activity_id)`,

		// Daily 3D load states, one row per athlete per day
		`CREATE TABLE IF NOT EXISTS load_states (
			athlete_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			strain_total REAL NOT NULL DEFAULT 0,
			strain_low REAL NOT NULL DEFAULT 0,
			strain_high REAL NOT NULL DEFAULT 0,
			strain_peak REAL NOT NULL DEFAULT 0,
			tl_low REAL NOT NULL DEFAULT 0,
			rl_low REAL NOT NULL DEFAULT 0,
			tl_high REAL NOT NULL DEFAULT 0,
			rl_high REAL NOT NULL DEFAULT 0,
			tl_peak REAL NOT NULL DEFAULT 0,
			rl_peak REAL NOT NULL DEFAULT 0,
			form_low REAL NOT NULL DEFAULT 0,
			form_high REAL NOT NULL DEFAULT 0,
			form_peak REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			computed_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (athlete_id, date)
		)`,

		// Daily CTL/ATL/TSB, one row per athlete per day
		`CREATE TABLE IF NOT EXISTS fitness_metrics (
			athlete_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			stress REAL NOT NULL DEFAULT 0,
			ctl REAL NOT NULL DEFAULT 0,
			atl REAL NOT NULL DEFAULT 0,
			tsb REAL NOT NULL DEFAULT 0,
			computed_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (athlete_id, date)
		)`,

		// Fitness signatures are append-only: history of FTP and the
		// derived curve parameters over time
		`CREATE TABLE IF NOT EXISTS fitness_signatures (
			id INTEGER PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			ftp INTEGER NOT NULL,
			threshold_power REAL NOT NULL,
			hie REAL NOT NULL,
			peak_power REAL NOT NULL,
			source TEXT NOT NULL DEFAULT 'manual',
			set_at TEXT NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_signatures_athlete ON fitness_signatures(athlete_id, set_at)`,

		// Sync State (key-value store for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
