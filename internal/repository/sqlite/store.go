// Package sqlite keeps the history of completed forecasts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cstarr7/power-rankings/internal/models"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS forecast_runs (
	run_id        INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at    TEXT    NOT NULL,
	league        TEXT    NOT NULL DEFAULT '',
	seed          TEXT    NOT NULL,
	sim_count     INTEGER NOT NULL,
	playoff_slots INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS team_forecasts (
	run_id       INTEGER NOT NULL REFERENCES forecast_runs(run_id),
	team_id      TEXT    NOT NULL,
	team_name    TEXT    NOT NULL,
	playoff_odds REAL    NOT NULL,
	mean_wins    REAL    NOT NULL,
	mean_points  REAL    NOT NULL,
	PRIMARY KEY (run_id, team_id)
);

CREATE INDEX IF NOT EXISTS idx_team_forecasts_team ON team_forecasts(team_id, run_id);
`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveForecast writes one run and a row per team in a single transaction
// and returns the run id.
func (s *Store) SaveForecast(ctx context.Context, f *models.Forecast) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO forecast_runs (created_at, league, seed, sim_count, playoff_slots) VALUES (?, ?, ?, ?, ?)`,
		f.CreatedAt.UTC().Format(time.RFC3339Nano), f.League, strconv.FormatUint(f.Seed, 10), f.SimCount, f.Playoffs,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO team_forecasts (run_id, team_id, team_name, playoff_odds, mean_wins, mean_points) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare team insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range f.Teams {
		if _, err := stmt.ExecContext(ctx, runID, t.TeamID, t.TeamName, t.PlayoffOdds, t.MeanWins, t.MeanPoints); err != nil {
			return 0, fmt.Errorf("insert team %s: %w", t.TeamID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// History returns up to limit runs for a team, newest first.
func (s *Store) History(ctx context.Context, teamID string, limit int) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, r.created_at, t.team_id, t.team_name, t.playoff_odds, t.mean_wins, t.mean_points, r.seed, r.sim_count
		FROM team_forecasts t
		JOIN forecast_runs r ON r.run_id = t.run_id
		WHERE t.team_id = ?
		ORDER BY r.run_id DESC
		LIMIT ?`, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var createdAt, seed string
		if err := rows.Scan(&e.RunID, &createdAt, &e.TeamID, &e.TeamName, &e.PlayoffOdds, &e.MeanWins, &e.MeanPoints, &seed, &e.SimCount); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		if e.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("parse seed %q: %w", seed, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
