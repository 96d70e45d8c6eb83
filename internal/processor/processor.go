package processor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/raine/career-tracker/internal/extract"
	"github.com/raine/career-tracker/internal/storage"
	"github.com/raine/career-tracker/internal/vision"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfidenceThreshold is the minimum confidence (exclusive) an extraction
// needs before anything is written.
const ConfidenceThreshold = 0.3

// Status is the outcome of processing one upload.
type Status string

const (
	StatusSaved         Status = "saved"
	StatusSkipped       Status = "skipped"
	StatusLowConfidence Status = "low_confidence"
	StatusUnrecognized  Status = "unrecognized"
	StatusRejected      Status = "rejected"
	StatusFailed        Status = "failed"
)

// Upload is one screenshot held in memory until it is processed.
type Upload struct {
	Name     string
	Data     []byte
	MIMEType string
}

// LoadUpload reads an image file. The upload is named after the file's base
// name, which is also the dedup key.
func LoadUpload(path string) (Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Upload{
		Name:     filepath.Base(path),
		Data:     data,
		MIMEType: vision.DetectMIMEType(path, data),
	}, nil
}

// FileResult describes what happened to one upload.
type FileResult struct {
	Filename   string
	Status     Status
	Extraction extract.Extraction
	Snapshots  int
	Players    int
	Warnings   []string
	Err        error
}

// Store is the subset of storage the processor writes through.
type Store interface {
	IsProcessed(filename string) (bool, error)
	SaveScreenshot(marker storage.ProcessedScreenshot, snapshots []storage.TeamSnapshot, players []storage.PlayerRecord) error
}

// Processor runs uploads through the vision analyzer one at a time and
// persists the confident results.
type Processor struct {
	analyzer vision.Analyzer
	store    Store
	validate *validator.Validate
	now      func() time.Time
}

func New(analyzer vision.Analyzer, store Store) *Processor {
	return &Processor{
		analyzer: analyzer,
		store:    store,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Process handles uploads sequentially for the given season. A failure on one
// upload is recorded in its result and never stops the remaining uploads;
// only context cancellation ends the run early.
func (p *Processor) Process(ctx context.Context, seasonID int64, uploads []Upload) []FileResult {
	batchID := uuid.New().String()
	logger := log.With().Str("batch", batchID).Int64("seasonID", seasonID).Logger()
	logger.Info().Int("files", len(uploads)).Msg("processing screenshots")

	results := make([]FileResult, 0, len(uploads))
	for _, upload := range uploads {
		if err := ctx.Err(); err != nil {
			results = append(results, FileResult{
				Filename:   upload.Name,
				Status:     StatusFailed,
				Extraction: extract.Failed(err),
				Err:        err,
			})
			continue
		}

		result := p.processOne(ctx, seasonID, upload)
		logResult(logger, result)
		results = append(results, result)
	}

	return results
}

func (p *Processor) processOne(ctx context.Context, seasonID int64, upload Upload) FileResult {
	result := FileResult{Filename: upload.Name}

	processed, err := p.store.IsProcessed(upload.Name)
	if err != nil {
		result.Status = StatusFailed
		result.Extraction = extract.Unknown(err.Error())
		result.Err = err
		return result
	}
	if processed {
		result.Status = StatusSkipped
		return result
	}

	reply, err := p.analyzer.Analyze(ctx, upload.Data, upload.MIMEType)
	if err != nil {
		result.Status = StatusFailed
		result.Extraction = extract.Failed(err)
		result.Err = err
		return result
	}

	ex := extract.Interpret(reply.Text)
	result.Extraction = ex

	if ex.Type == extract.TypeUnknown {
		result.Status = StatusUnrecognized
		return result
	}
	if !(ex.Confidence > ConfidenceThreshold && ex.HasData()) {
		result.Status = StatusLowConfidence
		return result
	}

	timestamp := p.now()
	snapshots, players, warnings := p.mapRecords(seasonID, timestamp, ex)
	result.Warnings = warnings
	if len(snapshots) == 0 && len(players) == 0 {
		result.Status = StatusRejected
		return result
	}

	marker := storage.ProcessedScreenshot{
		Filename:    upload.Name,
		Type:        string(ex.Type),
		Payload:     ex.Data,
		Confidence:  ex.Confidence,
		ContentHash: hashImage(upload.Data),
		ProcessedAt: timestamp,
	}
	if err := p.store.SaveScreenshot(marker, snapshots, players); err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	result.Status = StatusSaved
	result.Snapshots = len(snapshots)
	result.Players = len(players)
	return result
}

// mapRecords converts an extraction into storage records. Records that fail
// validation are dropped and reported as warnings.
func (p *Processor) mapRecords(seasonID int64, ts time.Time, ex extract.Extraction) ([]storage.TeamSnapshot, []storage.PlayerRecord, []string) {
	var warnings []string

	switch ex.Type {
	case extract.TypeLeagueTable, extract.TypeTeamStats:
		team, err := ex.Team()
		if err != nil {
			return nil, nil, []string{err.Error()}
		}
		snap := teamSnapshot(seasonID, ts, ex.Type, team)
		if err := p.validate.Struct(snap); err != nil {
			return nil, nil, []string{fmt.Sprintf("team snapshot rejected: %v", err)}
		}
		return []storage.TeamSnapshot{snap}, nil, nil

	case extract.TypePlayerStats:
		payloads, err := ex.Players()
		if err != nil {
			return nil, nil, []string{err.Error()}
		}
		var players []storage.PlayerRecord
		for i, pp := range payloads {
			rec := playerRecord(seasonID, ts, pp)
			if err := p.validate.Struct(rec); err != nil {
				warnings = append(warnings, fmt.Sprintf("player %d (%q) rejected: %v", i+1, pp.Name, err))
				continue
			}
			players = append(players, rec)
		}
		return nil, players, warnings
	}

	return nil, nil, []string{fmt.Sprintf("no record mapping for type %s", ex.Type)}
}

// Stat values are clamped into storable ranges so one misread number does not
// discard the rest of a confident extraction.
const (
	maxRating = 99
	minAge    = 10
	maxAge    = 60
)

func teamSnapshot(seasonID int64, ts time.Time, typ extract.ScreenshotType, t *extract.TeamPayload) storage.TeamSnapshot {
	wins, draws, losses := nonNegative(t.Wins), nonNegative(t.Draws), nonNegative(t.Losses)
	goalsFor, goalsAgainst := nonNegative(t.GoalsFor), nonNegative(t.GoalsAgainst)

	gamesPlayed := wins + draws + losses
	if t.GamesPlayed != nil {
		gamesPlayed = nonNegative(*t.GamesPlayed)
	}
	return storage.TeamSnapshot{
		SeasonID:       seasonID,
		Timestamp:      ts,
		Source:         string(typ),
		TeamName:       t.TeamName,
		Position:       nonNegative(t.Position),
		Points:         nonNegative(t.Points),
		Wins:           wins,
		Draws:          draws,
		Losses:         losses,
		GoalsFor:       goalsFor,
		GoalsAgainst:   goalsAgainst,
		GoalDifference: goalsFor - goalsAgainst,
		GamesPlayed:    gamesPlayed,
		Form:           t.Form,
	}
}

func playerRecord(seasonID int64, ts time.Time, p extract.PlayerPayload) storage.PlayerRecord {
	rating := p.Rating
	if rating < 0 {
		rating = 0
	} else if rating > maxRating {
		rating = maxRating
	}

	var age *int
	if p.Age != nil && *p.Age >= minAge && *p.Age <= maxAge {
		v := *p.Age
		age = &v
	}

	return storage.PlayerRecord{
		SeasonID:    seasonID,
		Timestamp:   ts,
		Name:        strings.TrimSpace(p.Name),
		Position:    p.Position,
		Rating:      rating,
		Goals:       nonNegative(p.Goals),
		Assists:     nonNegative(p.Assists),
		Appearances: nonNegative(p.Appearances),
		Age:         age,
		Nationality: p.Nationality,
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func hashImage(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func logResult(logger zerolog.Logger, r FileResult) {
	evt := logger.Info()
	if r.Status == StatusFailed {
		evt = logger.Warn().Err(r.Err)
	}
	evt.
		Str("file", r.Filename).
		Str("status", string(r.Status)).
		Str("type", string(r.Extraction.Type)).
		Float64("confidence", r.Extraction.Confidence).
		Strs("errors", r.Extraction.Errors).
		Strs("warnings", r.Warnings).
		Msg("screenshot processed")
}
