package storage

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// TopPlayersLimit is the size of the top scorer and top assister lists.
const TopPlayersLimit = 10

// Progress returns the snapshot history of a season together with its top
// scorers and top assisters.
func (s *SQLiteStore) Progress(seasonID int64) (*SeasonProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snapshots []TeamSnapshot
	var players []PlayerRecord

	var g errgroup.Group
	g.Go(func() error {
		var err error
		snapshots, err = selectTeamSnapshots(s.db, seasonID)
		return err
	})
	g.Go(func() error {
		var err error
		players, err = selectPlayerRecords(s.db, seasonID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load progress for season %d: %w", seasonID, err)
	}

	return &SeasonProgress{
		Snapshots:    snapshots,
		TopScorers:   topPlayers(players, func(p PlayerRecord) int { return p.Goals }),
		TopAssisters: topPlayers(players, func(p PlayerRecord) int { return p.Assists }),
	}, nil
}

// topPlayers ranks records by the given stat. Ties keep storage order.
func topPlayers(records []PlayerRecord, stat func(PlayerRecord) int) []PlayerRecord {
	ranked := make([]PlayerRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return stat(ranked[i]) > stat(ranked[j])
	})
	if len(ranked) > TopPlayersLimit {
		ranked = ranked[:TopPlayersLimit]
	}
	return ranked
}

// Export reads every season, snapshot and player record in one transaction.
func (s *SQLiteStore) Export(now time.Time) (*ExportDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin export: %w", err)
	}
	defer tx.Rollback()

	var seasonRows []seasonRow
	if err := tx.Select(&seasonRows, `SELECT `+seasonColumns+` FROM seasons ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to export seasons: %w", err)
	}
	var snapshotRows []teamSnapshotRow
	if err := tx.Select(&snapshotRows, `SELECT `+teamSnapshotColumns+` FROM team_snapshots ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to export team snapshots: %w", err)
	}
	var playerRows []playerRecordRow
	if err := tx.Select(&playerRows, `SELECT `+playerRecordColumns+` FROM player_records ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to export player records: %w", err)
	}

	doc := &ExportDocument{
		ExportDate:    now.UTC(),
		Seasons:       make([]Season, 0, len(seasonRows)),
		TeamSnapshots: make([]TeamSnapshot, 0, len(snapshotRows)),
		PlayerRecords: make([]PlayerRecord, 0, len(playerRows)),
	}
	for _, r := range seasonRows {
		doc.Seasons = append(doc.Seasons, r.toSeason())
	}
	for _, r := range snapshotRows {
		doc.TeamSnapshots = append(doc.TeamSnapshots, r.toSnapshot())
	}
	for _, r := range playerRows {
		doc.PlayerRecords = append(doc.PlayerRecords, r.toRecord())
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to finish export: %w", err)
	}
	return doc, nil
}
