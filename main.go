// main.go
//
// voiceguess entrypoint.
// Commands:
//   - serve (default): HTTP + WebSocket backend for the browser client.
//   - console: play in the terminal, typing what you would say.
//
// Configuration comes from the environment (and .env), see internal/config.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/voiceguess/internal/config"
	"github.com/robalobadob/voiceguess/internal/httpserver"
	"github.com/robalobadob/voiceguess/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx, newRootCmd())
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// execute runs cmd and logs the error it returns. Cobra's own error output
// is silenced.
func execute(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		log.Error().Err(err).Msg("voiceguess")
	}
	return err
}

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "voiceguess",
		Short:         "Voice-driven number guessing game",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), logLevel)
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	cmd.AddCommand(
		newServeCmd(&logLevel),
		newConsoleCmd(&logLevel),
	)
	return cmd
}

func newServeCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *logLevel)
		},
	}
}

func newConsoleCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Play in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
			cfg, err := loadConfig(*logLevel, zerolog.WarnLevel)
			if err != nil {
				return err
			}
			return runConsole(cmd.Context(), cfg)
		},
	}
}

// loadConfig reads the configuration and sets the global log level.
func loadConfig(flagLevel string, def zerolog.Level) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	_, envSet := os.LookupEnv("LOG_LEVEL")
	lvl := pickLevel(flagLevel, cfg.LogLevel, envSet, def)
	zerolog.SetGlobalLevel(lvl)
	cfg.LogLevel = lvl.String()
	return cfg, nil
}

// pickLevel picks the --log-level flag, then LOG_LEVEL when it was set
// explicitly, then def. Unparseable levels fall through.
func pickLevel(flag, env string, envSet bool, def zerolog.Level) zerolog.Level {
	candidates := []string{flag}
	if envSet {
		candidates = append(candidates, env)
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if lvl, err := zerolog.ParseLevel(c); err == nil {
			return lvl
		}
	}
	return def
}

func runServe(ctx context.Context, flagLevel string) error {
	cfg, err := loadConfig(flagLevel, zerolog.InfoLevel)
	if err != nil {
		return err
	}

	st, err := store.New(cfg.StoreDriver, cfg.SQLiteDSN)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer st.Close()

	srv := httpserver.New(cfg, st)
	go srv.Janitor(ctx, janitorInterval(cfg.SessionTTL))

	log.Info().Str("addr", cfg.Addr()).Str("store", cfg.StoreDriver).Msg("starting voiceguess")
	if err := srv.Start(ctx, cfg.Addr()); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// janitorInterval checks for idle sessions a few times per TTL and at
// least once a minute.
func janitorInterval(ttl time.Duration) time.Duration {
	return max(min(ttl/4, time.Minute), time.Second)
}
