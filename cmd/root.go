package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smbox/smbox/internal/app"
	"github.com/smbox/smbox/internal/config"
	"github.com/smbox/smbox/internal/flags"
	"github.com/smbox/smbox/internal/highlight"
	"github.com/smbox/smbox/internal/log"
	"github.com/smbox/smbox/internal/mbox"
	"github.com/smbox/smbox/internal/paths"
	"github.com/smbox/smbox/internal/tracing"
	"github.com/smbox/smbox/internal/trash"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in the viewer.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "smbox",
	Short: "A terminal mbox viewer with regex highlighting",
	Long: `A terminal viewer for local mbox files.

Messages are listed in the top pane and the selected body is shown below,
colored by the highlight contexts in the config file. Deleted messages are
purged when you quit with q.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runApp,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		return loadHighlights()
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/smbox/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging (also SMBOX_DEBUG)")
	rootCmd.PersistentFlags().StringP("file", "f", "",
		"mbox file (default: config mbox, then $MAIL)")
	rootCmd.Flags().Bool("no-watch", false,
		"do not watch the mbox for new mail")

	// Bind flags to viper
	_ = viper.BindPFlag("mbox", rootCmd.PersistentFlags().Lookup("file"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("watch", defaults.Watch)
	viper.SetDefault("watch_debounce", defaults.WatchDebounce)
	viper.SetDefault("ui.date_width", defaults.UI.DateWidth)
	viper.SetDefault("ui.from_width", defaults.UI.FromWidth)
	viper.SetDefault("ui.wrap_body", defaults.UI.WrapBody)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("trash.enabled", defaults.Trash.Enabled)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .smbox/config.yaml (current directory)
		// 2. ~/.config/smbox/config.yaml (user config)
		if _, err := os.Stat(paths.LocalConfig); err == nil {
			viper.SetConfigFile(paths.LocalConfig)
		} else if user := paths.UserConfig(); user != "" {
			viper.SetConfigFile(user)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create the default user config
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if cfgFile == "" {
				if user := paths.UserConfig(); user != "" {
					if writeErr := config.WriteDefaultConfig(user); writeErr == nil {
						viper.SetConfigFile(user)
						_ = viper.ReadInConfig()
					}
				}
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// loadHighlights reads the ordered highlight contexts, which viper cannot
// decode without losing their order.
func loadHighlights() error {
	defs, err := config.LoadHighlights(viper.ConfigFileUsed())
	if err != nil {
		return fmt.Errorf("loading highlights: %w", err)
	}
	cfg.Highlights = defs
	return nil
}

// newEngine compiles the configured highlight contexts.
func newEngine() (*highlight.Engine, error) {
	rules, err := highlight.NewRuleSet(cfg.Highlights)
	if err != nil {
		return nil, fmt.Errorf("invalid highlights in %s: %w", viper.ConfigFileUsed(), err)
	}
	return highlight.New(rules), nil
}

// setupLogging starts the debug log when requested by flag or environment.
// The returned function is always safe to call.
func setupLogging() (func(), error) {
	if !debugFlag && !log.DebugFromEnv() {
		return func() {}, nil
	}
	logPath := os.Getenv("SMBOX_LOG")
	if logPath == "" {
		logPath = paths.LogFile()
	}
	cleanup, err := log.Init(logPath)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "smbox starting", "version", version, "config", viper.ConfigFileUsed(), "logPath", logPath)
	return cleanup, nil
}

// setupTracing installs the configured trace provider.
func setupTracing() (func(), error) {
	tc := tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	}
	if tc.FilePath == "" {
		tc.FilePath = config.DefaultTracesFilePath()
	}
	provider, err := tracing.NewProvider(tc)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	return func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
		}
	}, nil
}

// openTrash opens the trash database, or returns nil when trash is disabled.
func openTrash(ctx context.Context) (*trash.Store, error) {
	if !cfg.Trash.Enabled {
		return nil, nil
	}
	path := cfg.Trash.Path
	if path == "" {
		path = paths.TrashDB()
	}
	if path == "" {
		return nil, errors.New("unable to determine trash location; set trash.path in the config")
	}
	store, err := trash.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("opening trash: %w", err)
	}
	return store, nil
}

// archiver converts a possibly nil store into an app.Archiver, keeping a nil
// store from becoming a non-nil interface.
func archiver(store *trash.Store) app.Archiver {
	if store == nil {
		return nil
	}
	return store
}

// mboxPath resolves the mbox from --file, the config file and $MAIL.
func mboxPath(cmd *cobra.Command) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	return mbox.ResolvePath(file, cfg.Mbox)
}

func runApp(cmd *cobra.Command, _ []string) error {
	cleanupLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer cleanupLog()

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	shutdownTracing, err := setupTracing()
	if err != nil {
		return err
	}
	defer shutdownTracing()

	path, err := mboxPath(cmd)
	if err != nil {
		return err
	}
	engine, err := newEngine()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	box, err := mbox.Load(ctx, path)
	if err != nil {
		return err
	}

	store, err := openTrash(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	// Handle --no-watch flag (negated logic)
	if noWatch, _ := cmd.Flags().GetBool("no-watch"); noWatch {
		cfg.Watch = false
	}

	registry := flags.New(cfg.Flags)
	for _, name := range registry.Unknown() {
		log.Warn(log.CatConfig, "Unknown feature flag", "flag", name)
	}

	zone.NewGlobal()
	model := app.New(app.Options{
		Path:   path,
		Box:    box,
		Engine: engine,
		Config: cfg,
		Flags:  registry,
		Trash:  archiver(store),
		Debug:  debugFlag || log.DebugFromEnv(),
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if registry.Enabled(flags.FlagMouseSelect) {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	final, err := tea.NewProgram(model, opts...).Run()

	// Clean up watcher resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	if m, ok := final.(app.Model); ok && m.Saved() && m.Purged() > 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Purged %d message(s) from %s\n", m.Purged(), path)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
