package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/marshallshelly/bistro/cmd/bistro/output"
	"github.com/marshallshelly/bistro/pkg/client"
	"github.com/marshallshelly/bistro/pkg/console"
	"github.com/marshallshelly/bistro/pkg/runtime"
)

var (
	// Global flags
	apiURL     string
	configPath string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bistro",
	Short: "Bistro - admin console for the restaurant API",
	Long: `Bistro is a command-line admin console for the restaurant database API.

Features:
  - List countries, seasons, dish types, chiefs, dishes, products, recipes,
    ratings, orders and users with reference names resolved
  - Create, update and delete records with client-side validation
  - Dish procedures: seasonal menu, cost, chef reassignment, search
  - Dish ratings report with CSV/JSON export to a file or S3
  - Interactive dish browser`,
	Version:       "0.4.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.Error("%s", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (overrides config and "+runtime.EnvBaseURL+")")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log HTTP requests to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// app bundles everything a command needs to talk to the API.
type app struct {
	config  *runtime.Config
	store   *runtime.SessionStore
	session *runtime.Session
	api     *client.Client
	console *console.Console
}

func newLogger() zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Logger()
}

func newApp() (*app, error) {
	cfg, err := runtime.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.BaseURL = apiURL
	}

	store := runtime.NewSessionStore(cfg.SessionPath)
	session, err := store.Load()
	if err != nil {
		return nil, err
	}

	transport, err := runtime.NewTransport(cfg, session, runtime.WithLogger(newLogger()))
	if err != nil {
		return nil, err
	}

	api := client.New(transport)
	return &app{
		config:  cfg,
		store:   store,
		session: session,
		api:     api,
		console: console.New(api),
	}, nil
}

// userError carries the message shown to the user and keeps the cause
// for errors.Is.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

// failure turns an API error into the message shown to the user: the
// server's own message when it sent one, else a generic one.
func failure(err error, action string) error {
	fallback := "Failed to " + action
	if verbose {
		fallback = fmt.Sprintf("%s: %v", fallback, err)
	}
	return &userError{msg: runtime.UserMessage(err, fallback), err: err}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
