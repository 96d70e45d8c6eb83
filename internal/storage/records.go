package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	teamSnapshotColumns = `id, season_id, timestamp, source, team_name, position, points, wins, draws, losses,
		goals_for, goals_against, goal_difference, games_played, form`
	playerRecordColumns = `id, season_id, timestamp, name, position, rating, goals, assists, appearances, age, nationality`
)

const insertTeamSnapshot = `INSERT INTO team_snapshots
	(season_id, timestamp, source, team_name, position, points, wins, draws, losses,
	 goals_for, goals_against, goal_difference, games_played, form)
	VALUES
	(:season_id, :timestamp, :source, :team_name, :position, :points, :wins, :draws, :losses,
	 :goals_for, :goals_against, :goal_difference, :games_played, :form)`

const insertPlayerRecord = `INSERT INTO player_records
	(season_id, timestamp, name, position, rating, goals, assists, appearances, age, nationality)
	VALUES
	(:season_id, :timestamp, :name, :position, :rating, :goals, :assists, :appearances, :age, :nationality)`

// SaveScreenshot appends the records extracted from one screenshot and the
// dedup marker for its filename in a single transaction.
func (s *SQLiteStore) SaveScreenshot(marker ProcessedScreenshot, snapshots []TeamSnapshot, players []PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if marker.ProcessedAt.IsZero() {
		marker.ProcessedAt = time.Now().UTC()
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	for _, snap := range snapshots {
		if _, err := tx.NamedExec(insertTeamSnapshot, newTeamSnapshotRow(snap)); err != nil {
			return fmt.Errorf("failed to insert team snapshot: %w", err)
		}
	}
	for _, p := range players {
		if _, err := tx.NamedExec(insertPlayerRecord, newPlayerRecordRow(p)); err != nil {
			return fmt.Errorf("failed to insert player record: %w", err)
		}
	}

	var payload sql.NullString
	if len(marker.Payload) > 0 {
		payload = sql.NullString{String: string(marker.Payload), Valid: true}
	}
	_, err = tx.Exec(
		`INSERT INTO processed_screenshots (filename, type, payload, confidence, content_hash, processed_at) VALUES (?, ?, ?, ?, ?, ?)`,
		marker.Filename, marker.Type, payload, marker.Confidence, marker.ContentHash, marker.ProcessedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to mark %s as processed: %w", marker.Filename, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	return nil
}

// IsProcessed checks whether a screenshot with this filename was already
// extracted.
func (s *SQLiteStore) IsProcessed(filename string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.Get(&count, `SELECT COUNT(*) FROM processed_screenshots WHERE filename = ?`, filename); err != nil {
		return false, fmt.Errorf("failed to check processed screenshot: %w", err)
	}
	return count > 0, nil
}

// ListProcessed returns the dedup ledger, oldest first.
func (s *SQLiteStore) ListProcessed() ([]ProcessedScreenshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []processedRow
	err := s.db.Select(&rows,
		`SELECT id, filename, type, payload, confidence, content_hash, processed_at FROM processed_screenshots ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query processed screenshots: %w", err)
	}

	markers := make([]ProcessedScreenshot, 0, len(rows))
	for _, r := range rows {
		markers = append(markers, r.toMarker())
	}
	return markers, nil
}

// TeamSnapshots returns the snapshot history of a season sorted by time.
func (s *SQLiteStore) TeamSnapshots(seasonID int64) ([]TeamSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return selectTeamSnapshots(s.db, seasonID)
}

// PlayerRecords returns the player records of a season in storage order.
func (s *SQLiteStore) PlayerRecords(seasonID int64) ([]PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return selectPlayerRecords(s.db, seasonID)
}

func selectTeamSnapshots(q sqlx.Queryer, seasonID int64) ([]TeamSnapshot, error) {
	var rows []teamSnapshotRow
	err := sqlx.Select(q, &rows,
		`SELECT `+teamSnapshotColumns+` FROM team_snapshots WHERE season_id = ? ORDER BY timestamp, id`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team snapshots: %w", err)
	}

	snapshots := make([]TeamSnapshot, 0, len(rows))
	for _, r := range rows {
		snapshots = append(snapshots, r.toSnapshot())
	}
	return snapshots, nil
}

func selectPlayerRecords(q sqlx.Queryer, seasonID int64) ([]PlayerRecord, error) {
	var rows []playerRecordRow
	err := sqlx.Select(q, &rows,
		`SELECT `+playerRecordColumns+` FROM player_records WHERE season_id = ? ORDER BY id`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query player records: %w", err)
	}

	records := make([]PlayerRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.toRecord())
	}
	return records, nil
}
