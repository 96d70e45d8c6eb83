package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const seasonColumns = `id, name, start_date, end_date, game_version, is_active, created_at`

// CreateSeason inserts a new season and makes it the only active one.
// Other processes writing the same file race on the flag; the last write wins.
func (s *SQLiteStore) CreateSeason(season Season) (*Season, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	season.Name = strings.TrimSpace(season.Name)
	if season.Name == "" {
		return nil, fmt.Errorf("season name is required")
	}
	if season.CreatedAt.IsZero() {
		season.CreatedAt = time.Now().UTC()
	}
	if season.StartDate.IsZero() {
		season.StartDate = season.CreatedAt
	}
	season.IsActive = true

	var endDate sql.NullInt64
	if season.EndDate != nil {
		endDate = sql.NullInt64{Int64: season.EndDate.UnixMilli(), Valid: true}
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin create season: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE seasons SET is_active = 0 WHERE is_active = 1`); err != nil {
		return nil, fmt.Errorf("failed to deactivate seasons: %w", err)
	}

	res, err := tx.Exec(
		`INSERT INTO seasons (name, start_date, end_date, game_version, is_active, created_at) VALUES (?, ?, ?, ?, 1, ?)`,
		season.Name, season.StartDate.UnixMilli(), endDate, season.GameVersion, season.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert season: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read season id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit create season: %w", err)
	}

	created, err := s.getSeason(id)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ActivateSeason makes id the only active season.
func (s *SQLiteStore) ActivateSeason(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin activate season: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.Get(&count, `SELECT COUNT(*) FROM seasons WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to look up season: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %d", ErrSeasonNotFound, id)
	}

	if _, err := tx.Exec(`UPDATE seasons SET is_active = CASE WHEN id = ? THEN 1 ELSE 0 END`, id); err != nil {
		return fmt.Errorf("failed to activate season: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit activate season: %w", err)
	}
	return nil
}

// GetSeason retrieves a season by id.
func (s *SQLiteStore) GetSeason(id int64) (*Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getSeason(id)
}

func (s *SQLiteStore) getSeason(id int64) (*Season, error) {
	var row seasonRow
	err := s.db.Get(&row, `SELECT `+seasonColumns+` FROM seasons WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrSeasonNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query season: %w", err)
	}
	season := row.toSeason()
	return &season, nil
}

// GetActiveSeason returns the active season.
// Returns nil, nil if no season is active.
func (s *SQLiteStore) GetActiveSeason() (*Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var row seasonRow
	err := s.db.Get(&row, `SELECT `+seasonColumns+` FROM seasons WHERE is_active = 1 ORDER BY id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active season: %w", err)
	}
	season := row.toSeason()
	return &season, nil
}

// ListSeasons returns all seasons, newest first.
func (s *SQLiteStore) ListSeasons() ([]Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []seasonRow
	if err := s.db.Select(&rows, `SELECT `+seasonColumns+` FROM seasons ORDER BY id DESC`); err != nil {
		return nil, fmt.Errorf("failed to query seasons: %w", err)
	}

	seasons := make([]Season, 0, len(rows))
	for _, r := range rows {
		seasons = append(seasons, r.toSeason())
	}
	return seasons, nil
}
