// Package config provides configuration types and defaults for smbox.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smbox/smbox/internal/highlight"
	"github.com/smbox/smbox/internal/log"
)

// Config holds all configuration options for smbox.
type Config struct {
	Mbox          string          `mapstructure:"mbox"`           // Path to the mbox; falls back to $MAIL
	Watch         bool            `mapstructure:"watch"`          // Watch the mbox for new mail
	WatchDebounce time.Duration   `mapstructure:"watch_debounce"` // Quiet period before reacting to a change
	UI            UIConfig        `mapstructure:"ui"`
	Trash         TrashConfig     `mapstructure:"trash"`
	Tracing       TracingConfig   `mapstructure:"tracing"`
	Flags         map[string]bool `mapstructure:"flags"`

	// Highlights is read separately with LoadHighlights because viper does
	// not preserve mapping order.
	Highlights []highlight.ContextDef `mapstructure:"-"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	DateWidth     int    `mapstructure:"date_width"`     // Header list date column width
	FromWidth     int    `mapstructure:"from_width"`     // Header list from column width
	WrapBody      bool   `mapstructure:"wrap_body"`      // Soft-wrap long body lines
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// TrashConfig controls archiving of purged messages.
type TrashConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Path is the SQLite database file.
	// Default: ~/.local/share/smbox/trash.db
	Path string `mapstructure:"path"`
}

// TracingConfig holds tracing configuration for mbox and trash operations.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for the "file" exporter.
	// Default: ~/.config/smbox/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for the "otlp" exporter.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultTracesFilePath returns ~/.config/smbox/traces/traces.jsonl, or an
// empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "smbox", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Watch:         true,
		WatchDebounce: 200 * time.Millisecond,
		UI: UIConfig{
			DateWidth:     25,
			FromWidth:     40,
			WrapBody:      true,
			MarkdownStyle: "dark",
		},
		Trash: TrashConfig{
			Enabled: true,
			Path:    "", // Derived from the data dir at runtime
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks the whole configuration, including the highlight rules.
func Validate(cfg Config) error {
	if cfg.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative, got %s", cfg.WatchDebounce)
	}
	if err := ValidateUI(cfg.UI); err != nil {
		return err
	}
	if err := ValidateTrash(cfg.Trash); err != nil {
		return err
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	if _, err := highlight.NewRuleSet(cfg.Highlights); err != nil {
		return fmt.Errorf("highlights: %w", err)
	}
	return nil
}

// ValidateUI checks column widths and the markdown style.
func ValidateUI(ui UIConfig) error {
	if ui.DateWidth < 0 {
		return fmt.Errorf("ui.date_width must not be negative, got %d", ui.DateWidth)
	}
	if ui.FromWidth < 0 {
		return fmt.Errorf("ui.from_width must not be negative, got %d", ui.FromWidth)
	}
	switch ui.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", ui.MarkdownStyle)
	}
	return nil
}

// ValidateTrash checks trash configuration for errors.
func ValidateTrash(trash TrashConfig) error {
	if trash.Path != "" && !filepath.IsAbs(trash.Path) {
		return fmt.Errorf("trash.path must be an absolute path, got %q", trash.Path)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# smbox configuration

# Path to the mbox file (default: $MAIL)
# mbox: /var/mail/me

# Watch the mbox for new mail while the viewer is open
watch: true
watch_debounce: 200ms

# UI settings
ui:
  date_width: 25        # Header list date column width
  from_width: 40        # Header list from column width
  wrap_body: true       # Soft-wrap long body lines
  # markdown_style: dark  # Help screen style: "dark" (default) or "light"

# Purged messages are archived here and can be restored with 'smbox trash restore'
trash:
  enabled: true
  # path: /home/me/.local/share/smbox/trash.db

# Experimental features
# flags:
#   auto-reload: true    # Reload instead of notifying when new mail arrives
#   mouse-select: true   # Click a header row to select it

# Body highlighting
#
# Each entry is a context, checked in the order written. A line matching a
# context's enter pattern makes it the active context; the line matching exit
# (optional) clears it. While a context is active its matches color the text.
# A pattern with a capture group colors only the first group.
# Colors are 256-color palette indices (0-255).
highlights:
  login-failures:
    enter: 'login failures:$'
    exit: '^$'
    matches:
      - ['d.......d', 107]
  sshd:
    enter: '^sshd:'
    exit: '^$'
    matches:
      - match: 'Bad protocol version.*(port)'
        color: 160
      - ['Invalid user \S+', 214]

# Tracing of mbox and trash operations
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/smbox/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
