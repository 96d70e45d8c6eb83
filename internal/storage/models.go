package storage

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Season is a user-defined tracking period, usually one career playthrough.
type Season struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	GameVersion string     `json:"gameVersion"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TeamSnapshot is a point-in-time league standing of the tracked team.
type TeamSnapshot struct {
	ID             int64     `json:"id"`
	SeasonID       int64     `json:"seasonId" validate:"required"`
	Timestamp      time.Time `json:"timestamp" validate:"required"`
	Source         string    `json:"source" validate:"oneof=league_table team_stats"`
	TeamName       string    `json:"teamName,omitempty"`
	Position       int       `json:"position" validate:"gte=0"`
	Points         int       `json:"points" validate:"gte=0"`
	Wins           int       `json:"wins" validate:"gte=0"`
	Draws          int       `json:"draws" validate:"gte=0"`
	Losses         int       `json:"losses" validate:"gte=0"`
	GoalsFor       int       `json:"goalsFor" validate:"gte=0"`
	GoalsAgainst   int       `json:"goalsAgainst" validate:"gte=0"`
	GoalDifference int       `json:"goalDifference"`
	GamesPlayed    int       `json:"gamesPlayed" validate:"gte=0"`
	Form           string    `json:"form,omitempty"`
}

// PlayerRecord is a point-in-time stat line of one player.
type PlayerRecord struct {
	ID          int64     `json:"id"`
	SeasonID    int64     `json:"seasonId" validate:"required"`
	Timestamp   time.Time `json:"timestamp" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Position    string    `json:"position"`
	Rating      float64   `json:"rating" validate:"gte=0,lte=99"`
	Goals       int       `json:"goals" validate:"gte=0"`
	Assists     int       `json:"assists" validate:"gte=0"`
	Appearances int       `json:"appearances" validate:"gte=0"`
	Age         *int      `json:"age,omitempty" validate:"omitempty,gte=10,lte=60"`
	Nationality string    `json:"nationality,omitempty"`
}

// ProcessedScreenshot marks a filename as already extracted.
type ProcessedScreenshot struct {
	ID          int64           `json:"id"`
	Filename    string          `json:"filename"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Confidence  float64         `json:"confidence"`
	ContentHash string          `json:"contentHash,omitempty"`
	ProcessedAt time.Time       `json:"processedAt"`
}

// SeasonProgress is the aggregate view of one season.
type SeasonProgress struct {
	Snapshots    []TeamSnapshot
	TopScorers   []PlayerRecord
	TopAssisters []PlayerRecord
}

// ExportDocument is the full backup written by the export command.
type ExportDocument struct {
	ExportDate    time.Time      `json:"exportDate"`
	Seasons       []Season       `json:"seasons"`
	TeamSnapshots []TeamSnapshot `json:"teamSnapshots"`
	PlayerRecords []PlayerRecord `json:"playerRecords"`
}

// Table models. Timestamps are stored as unix milliseconds.

type seasonRow struct {
	ID          int64         `db:"id"`
	Name        string        `db:"name"`
	StartDate   int64         `db:"start_date"`
	EndDate     sql.NullInt64 `db:"end_date"`
	GameVersion string        `db:"game_version"`
	IsActive    bool          `db:"is_active"`
	CreatedAt   int64         `db:"created_at"`
}

type teamSnapshotRow struct {
	ID             int64  `db:"id"`
	SeasonID       int64  `db:"season_id"`
	Timestamp      int64  `db:"timestamp"`
	Source         string `db:"source"`
	TeamName       string `db:"team_name"`
	Position       int    `db:"position"`
	Points         int    `db:"points"`
	Wins           int    `db:"wins"`
	Draws          int    `db:"draws"`
	Losses         int    `db:"losses"`
	GoalsFor       int    `db:"goals_for"`
	GoalsAgainst   int    `db:"goals_against"`
	GoalDifference int    `db:"goal_difference"`
	GamesPlayed    int    `db:"games_played"`
	Form           string `db:"form"`
}

type playerRecordRow struct {
	ID          int64         `db:"id"`
	SeasonID    int64         `db:"season_id"`
	Timestamp   int64         `db:"timestamp"`
	Name        string        `db:"name"`
	Position    string        `db:"position"`
	Rating      float64       `db:"rating"`
	Goals       int           `db:"goals"`
	Assists     int           `db:"assists"`
	Appearances int           `db:"appearances"`
	Age         sql.NullInt64 `db:"age"`
	Nationality string        `db:"nationality"`
}

type processedRow struct {
	ID          int64          `db:"id"`
	Filename    string         `db:"filename"`
	Type        string         `db:"type"`
	Payload     sql.NullString `db:"payload"`
	Confidence  float64        `db:"confidence"`
	ContentHash string         `db:"content_hash"`
	ProcessedAt int64          `db:"processed_at"`
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func (r seasonRow) toSeason() Season {
	s := Season{
		ID:          r.ID,
		Name:        r.Name,
		StartDate:   fromMillis(r.StartDate),
		GameVersion: r.GameVersion,
		IsActive:    r.IsActive,
		CreatedAt:   fromMillis(r.CreatedAt),
	}
	if r.EndDate.Valid {
		end := fromMillis(r.EndDate.Int64)
		s.EndDate = &end
	}
	return s
}

func newTeamSnapshotRow(s TeamSnapshot) teamSnapshotRow {
	return teamSnapshotRow{
		SeasonID:       s.SeasonID,
		Timestamp:      s.Timestamp.UnixMilli(),
		Source:         s.Source,
		TeamName:       s.TeamName,
		Position:       s.Position,
		Points:         s.Points,
		Wins:           s.Wins,
		Draws:          s.Draws,
		Losses:         s.Losses,
		GoalsFor:       s.GoalsFor,
		GoalsAgainst:   s.GoalsAgainst,
		GoalDifference: s.GoalDifference,
		GamesPlayed:    s.GamesPlayed,
		Form:           s.Form,
	}
}

func (r teamSnapshotRow) toSnapshot() TeamSnapshot {
	return TeamSnapshot{
		ID:             r.ID,
		SeasonID:       r.SeasonID,
		Timestamp:      fromMillis(r.Timestamp),
		Source:         r.Source,
		TeamName:       r.TeamName,
		Position:       r.Position,
		Points:         r.Points,
		Wins:           r.Wins,
		Draws:          r.Draws,
		Losses:         r.Losses,
		GoalsFor:       r.GoalsFor,
		GoalsAgainst:   r.GoalsAgainst,
		GoalDifference: r.GoalDifference,
		GamesPlayed:    r.GamesPlayed,
		Form:           r.Form,
	}
}

func newPlayerRecordRow(p PlayerRecord) playerRecordRow {
	row := playerRecordRow{
		SeasonID:    p.SeasonID,
		Timestamp:   p.Timestamp.UnixMilli(),
		Name:        p.Name,
		Position:    p.Position,
		Rating:      p.Rating,
		Goals:       p.Goals,
		Assists:     p.Assists,
		Appearances: p.Appearances,
		Nationality: p.Nationality,
	}
	if p.Age != nil {
		row.Age = sql.NullInt64{Int64: int64(*p.Age), Valid: true}
	}
	return row
}

func (r playerRecordRow) toRecord() PlayerRecord {
	p := PlayerRecord{
		ID:          r.ID,
		SeasonID:    r.SeasonID,
		Timestamp:   fromMillis(r.Timestamp),
		Name:        r.Name,
		Position:    r.Position,
		Rating:      r.Rating,
		Goals:       r.Goals,
		Assists:     r.Assists,
		Appearances: r.Appearances,
		Nationality: r.Nationality,
	}
	if r.Age.Valid {
		age := int(r.Age.Int64)
		p.Age = &age
	}
	return p
}

func (r processedRow) toMarker() ProcessedScreenshot {
	m := ProcessedScreenshot{
		ID:          r.ID,
		Filename:    r.Filename,
		Type:        r.Type,
		Confidence:  r.Confidence,
		ContentHash: r.ContentHash,
		ProcessedAt: fromMillis(r.ProcessedAt),
	}
	if r.Payload.Valid {
		m.Payload = json.RawMessage(r.Payload.String)
	}
	return m
}
