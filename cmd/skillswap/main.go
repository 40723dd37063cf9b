// Command skillswap is the SkillSwap marketplace CLI and API server.
//
// Every subcommand except serve works directly on the configured store, the
// same one the API server uses. The logged-in user lives in that store too,
// so `skillswap login` on one terminal is visible to the next command run.
//
// WHY cmd/skillswap/?
// The cmd/ directory is a Go convention for executable entry points. Each
// executable gets its own directory with its own main.go; all real logic
// lives in internal/.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/skillswap/internal/config"
	"github.com/sakif/skillswap/internal/model"
	"github.com/sakif/skillswap/internal/repository"
	"github.com/sakif/skillswap/internal/server"
)

// app carries what PersistentPreRunE builds for the subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  repository.Store
	svc    *server.Services
}

var (
	a app

	envFile     string
	storeFlag   string
	dbPathFlag  string
	logLevel    string
	jsonOutput  bool
	errNotLogin = errors.New("nobody is logged in; run `skillswap login` first")
)

func main() {
	err := rootCmd.Execute()
	closeStore()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "skillswap",
	Short: "Trade skills with other people",
	Long: `skillswap keeps a directory of member profiles and a ledger of
skill-swap requests between them.

Log in once, then browse candidates, propose swaps and answer the ones
you receive:

  skillswap login --name Ada --location London
  skillswap skill add offered Go --category Programming
  skillswap browse --category Music
  skillswap swap request <user-id> --want <skill-id> --offer <skill-id>`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if storeFlag != "" {
			cfg.Store = storeFlag
		}
		if dbPathFlag != "" {
			cfg.DBPath = dbPathFlag
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// Logs go to stderr so that stdout stays clean for --json output.
		a.cfg = cfg
		a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.Level(),
		}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "store driver: sqlite, bolt, redis or memory (default from SKILLSWAP_STORE)")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "SQLite database path (default from SKILLSWAP_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default from SKILLSWAP_LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of tables")

	rootCmd.AddCommand(serveCmd)
}

// services opens the store and wires the service layer on first use.
// main closes the store once the command has returned, error or not.
func services() (*server.Services, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	store, err := server.OpenStore(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", a.cfg.Store, err)
	}
	svc, err := server.NewServices(a.cfg, store, a.logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	a.store, a.svc = store, svc
	return svc, nil
}

func closeStore() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", slog.String("error", err.Error()))
	}
	a.store, a.svc = nil, nil
}

// currentUser returns the logged-in user or errNotLogin.
func currentUser(cmd *cobra.Command, svc *server.Services) (*model.User, error) {
	user, err := svc.Identity.CurrentUser(cmd.Context())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errNotLogin
	}
	return user, nil
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ── serve ───────────────────────────────────────────────────────────────────

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API server",
	Long: `serve starts the HTTP API on SKILLSWAP_HOST:SKILLSWAP_PORT and
blocks until SIGINT or SIGTERM, then shuts down gracefully.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := server.New(a.cfg, a.logger)
		if err != nil {
			return err
		}
		// Start blocks until shutdown and closes the store itself.
		return srv.Start()
	},
}
