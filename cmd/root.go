package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pitcrew/internal/app"
	"pitcrew/internal/build"
	"pitcrew/internal/config"
	"pitcrew/internal/engine"
	"pitcrew/internal/infrastructure/sqlite"
	"pitcrew/internal/log"
	"pitcrew/internal/paths"
	"pitcrew/internal/registry"
	"pitcrew/internal/reveal"
	"pitcrew/internal/session"
	"pitcrew/internal/tracing"
	"pitcrew/internal/ui/prompt"
	"pitcrew/internal/workspace"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
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
	Use:     "pitcrew",
	Short:   "A terminal ui for bot artifact management",
	Long:    `A terminal user interface for building bot binaries and managing their uploaded artifacts in the registry.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/pitcrew/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"enable debug logging and the in-app log panel")
	rootCmd.Flags().StringP("workspace", "w", "",
		"path to the bot workspace root")
	rootCmd.Flags().String("registry", "",
		"registry base URL (overrides config)")
	rootCmd.Flags().Bool("no-auto-refresh", false,
		"disable automatic refresh when the workspace changes")

	// Bind flags to viper
	_ = viper.BindPFlag("workspace", rootCmd.Flags().Lookup("workspace"))
	_ = viper.BindPFlag("registry_url", rootCmd.Flags().Lookup("registry"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("registry_url", defaults.RegistryURL)
	viper.SetDefault("target", defaults.Target)
	viper.SetDefault("auto_refresh", defaults.AutoRefresh)
	viper.SetDefault("auto_refresh_debounce", defaults.AutoRefreshDebounce)
	viper.SetDefault("capability_cache_ttl", defaults.CapabilityCacheTTL)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.show_owners", defaults.UI.ShowOwners)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .pitcrew/config.yaml (current directory)
		// 2. ~/.config/pitcrew/config.yaml (user config)
		if _, err := os.Stat(".pitcrew/config.yaml"); err == nil {
			viper.SetConfigFile(".pitcrew/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "pitcrew"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .pitcrew/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".pitcrew/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func runApp(cmd *cobra.Command, args []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Use provided workspace or current directory, then walk up to the
	// enclosing Cargo.toml so pitcrew works from anywhere in the tree.
	root := cfg.Workspace
	if root == "" {
		var err error
		root, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
	}
	cfg.Workspace = paths.ResolveWorkspaceRoot(root)

	// Handle --no-auto-refresh flag (negated logic)
	if noAutoRefresh, _ := cmd.Flags().GetBool("no-auto-refresh"); noAutoRefresh {
		cfg.AutoRefresh = false
	}

	debug := os.Getenv("PITCREW_DEBUG") != "" || debugFlag
	if debug {
		logPath := os.Getenv("PITCREW_LOG")
		if logPath == "" {
			logPath = "debug.log"
		}
		cleanup, err := log.InitWithTeaLog(logPath, "pitcrew")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer cleanup()

		log.Info(log.CatConfig, "Pitcrew starting", "debug", true, "logPath", logPath, "workspace", cfg.Workspace)
	}

	repo, err := sqlite.OpenRepository(config.SessionDBPath())
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer func() { _ = repo.Close() }()

	client, err := registry.NewClient(registry.ClientConfig{BaseURL: cfg.RegistryURL})
	if err != nil {
		return fmt.Errorf("creating registry client: %w", err)
	}

	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// The bridge needs the program for Send, but the program needs the
	// model which needs the engine which needs the bridge. Prompts only
	// fire from workflows started by keypresses, so the program pointer
	// is always set by the time the closure runs.
	var program *tea.Program
	bridge := prompt.NewBridge(func(msg tea.Msg) {
		if program != nil {
			program.Send(msg)
		}
	})

	eng := engine.New(engine.Options{
		Registry:      client,
		Sessions:      session.NewStore(repo, cfg.RegistryURL),
		Inspector:     workspace.NewInspector(),
		Builder:       build.NewInvoker(cfg.Target),
		Prompter:      bridge,
		Revealer:      reveal.New(),
		Workspace:     cfg.Workspace,
		Target:        cfg.Target,
		CapabilityTTL: cfg.CapabilityCacheTTL,
		Tracer:        tp.Tracer(),
	})
	defer eng.Close()

	model := app.New(eng, cfg, debug)
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.IsFlagEnabled("mouse") {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	program = tea.NewProgram(model, opts...)

	_, err = program.Run()

	// Clean up watcher and listener resources
	model.Close()

	if err != nil {
		return fmt.Errorf("running program: %w", err)
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
