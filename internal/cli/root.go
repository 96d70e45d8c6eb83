// Package cli wires the career tracker commands together.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/raine/career-tracker/internal/config"
	"github.com/raine/career-tracker/internal/storage"
	"github.com/raine/career-tracker/internal/vision"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const logFileName = "career-tracker.log"

// AnalyzerFactory builds the vision analyzer for the configured provider.
type AnalyzerFactory func(ctx context.Context, cfg config.Config) (vision.Analyzer, error)

// RootOptions holds global flags and the state resolved before a command runs.
type RootOptions struct {
	ConfigDir string
	Verbose   bool

	cfg         config.Config
	logFile     *os.File
	newAnalyzer AnalyzerFactory
	now         func() time.Time
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	opts := &RootOptions{}
	cmd := NewRootCommand(opts)
	err := cmd.ExecuteContext(ctx)
	opts.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCommand creates the root command.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts.newAnalyzer == nil {
		opts.newAnalyzer = newAnalyzer
	}
	if opts.now == nil {
		opts.now = func() time.Time { return time.Now().UTC() }
	}

	cmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Track a football career save from game screenshots",
		Long:          "Reads league table, team and player stat screenshots with a vision model and keeps the season history in a local database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", "", "config directory (default: user config dir)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewSetupCommand(opts))
	cmd.AddCommand(NewSeasonCommand(opts))
	cmd.AddCommand(NewProcessCommand(opts))
	cmd.AddCommand(NewProgressCommand(opts))
	cmd.AddCommand(NewProcessedCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))

	return cmd
}

// init resolves the config directory, loads configuration and sets up
// logging to stderr and the log file.
func (o *RootOptions) init(stderr io.Writer) error {
	dir := o.ConfigDir
	if dir == "" {
		var err error
		if dir, err = config.Dir(); err != nil {
			return err
		}
	} else if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	config.LoadEnvFile(dir)
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	o.cfg = cfg

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if o.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logPath := filepath.Join(dir, logFileName)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	o.logFile = logFile

	consoleWriter := zerolog.ConsoleWriter{Out: stderr}
	fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
	log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))
	log.Debug().Str("configDir", dir).Str("dbPath", cfg.DBPath).Str("provider", cfg.Provider).Msg("configuration loaded")

	return nil
}

func (o *RootOptions) close() {
	if o.logFile == nil {
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	o.logFile.Close()
	o.logFile = nil
}

func (o *RootOptions) openStore() (*storage.SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(o.cfg.DBPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	store, err := storage.NewSQLiteStore(o.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", o.cfg.DBPath, err)
	}
	return store, nil
}

// resolveSeason returns the season with the given id, or the active season
// when id is zero.
func resolveSeason(store *storage.SQLiteStore, id int64) (*storage.Season, error) {
	if id > 0 {
		return store.GetSeason(id)
	}
	season, err := store.GetActiveSeason()
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, fmt.Errorf("no active season, create one with `%s season create NAME`", config.AppName)
	}
	return season, nil
}

func newAnalyzer(ctx context.Context, cfg config.Config) (vision.Analyzer, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return vision.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.MaxTokens)
	default:
		return vision.NewClaudeAnalyzer(vision.ClaudeOpts{
			APIKey:    cfg.AnthropicAPIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.RequestTimeout,
		}), nil
	}
}
