package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/raine/career-tracker/internal/config"
	"github.com/raine/career-tracker/internal/vision"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errSetupCancelled = errors.New("setup cancelled")

// NewSetupCommand creates the interactive first-time setup command.
func NewSetupCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Choose a vision provider and store its API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isInteractiveTerminal() {
				return fmt.Errorf("setup needs an interactive terminal, set %s or %s in %s instead",
					"ANTHROPIC_API_KEY", "GEMINI_API_KEY", filepath.Join(opts.cfg.Dir, config.EnvFileName))
			}
			return runSetupWizard(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
}

// isInteractiveTerminal returns true if both stdin and stdout are TTYs.
func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// runSetupWizard collects the provider and API key, writes them to
// config.env and reloads the configuration.
func runSetupWizard(ctx context.Context, out io.Writer, opts *RootOptions) error {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("Career Tracker - First-time Setup"))

	provider := opts.cfg.Provider
	var apiKey string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Vision provider").
				Options(
					huh.NewOption("Claude (Anthropic)", config.ProviderClaude),
					huh.NewOption("Gemini (Google)", config.ProviderGemini),
				).
				Value(&provider),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("API key").
				DescriptionFunc(func() string {
					if provider == config.ProviderGemini {
						return "Get yours at https://aistudio.google.com/apikey"
					}
					return "Get yours at https://console.anthropic.com/settings/keys"
				}, &provider).
				EchoMode(huh.EchoModePassword).
				Value(&apiKey).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("API key is required")
					}
					if provider == config.ProviderGemini {
						return vision.VerifyGeminiKey(ctx, "", s)
					}
					return vision.VerifyClaudeKey(ctx, "", s)
				}),
		),
	).WithTheme(huh.ThemeBase16())

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errSetupCancelled
		}
		return err
	}

	keyEnv := "ANTHROPIC_API_KEY"
	if provider == config.ProviderGemini {
		keyEnv = "GEMINI_API_KEY"
	}
	values := map[string]string{
		"CAREER_TRACKER_PROVIDER": provider,
		keyEnv:                    apiKey,
	}
	if err := config.WriteEnvFile(opts.cfg.Dir, values); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Set values in current process
	for k, v := range values {
		os.Setenv(k, v)
	}
	cfg, err := config.Load(opts.cfg.Dir)
	if err != nil {
		return err
	}
	opts.cfg = cfg

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)
	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	fmt.Fprintln(out)
	fmt.Fprintln(out, successStyle.Render("✓ Configuration saved"))
	fmt.Fprintln(out, pathStyle.Render("  "+filepath.Join(opts.cfg.Dir, config.EnvFileName)))
	fmt.Fprintln(out)

	return nil
}
