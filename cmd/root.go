package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/pytutor/internal/config"
	"github.com/abhisek/pytutor/internal/store"
)

var (
	appConfig *config.Config
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pytutor",
	Short: "AI tutor for Python object-oriented programming",
	Long:  "PyTutor is a terminal tutor that teaches Python OOP through a guided conversation and tracks which topics you have covered.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvironment(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, chatOptions{})
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PYTUTOR_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (overrides PYTUTOR_CONFIG env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnvironment reads .env, the config file, and sets up the logger.
func loadEnvironment(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath()
	}

	var err error
	if explicit {
		appConfig, err = config.Load(path)
	} else {
		appConfig, err = config.LoadOptional(path)
	}
	if err != nil {
		return err
	}

	levelName := appConfig.LogLevel
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		levelName = v
	}
	level, err := config.ParseLevel(levelName)
	if err != nil {
		return err
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then PYTUTOR_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore resolves the database path and opens it.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
