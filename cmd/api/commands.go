package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/justsurfingit/jobtracker/internal/auth"
	"github.com/justsurfingit/jobtracker/internal/config"
	"github.com/justsurfingit/jobtracker/internal/database"
	"github.com/justsurfingit/jobtracker/internal/handlers"
	"github.com/justsurfingit/jobtracker/internal/logger"
	"github.com/justsurfingit/jobtracker/internal/services"
	"github.com/justsurfingit/jobtracker/internal/stats"
	"github.com/justsurfingit/jobtracker/internal/store"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jobtracker",
		Short:         "Personal job application tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newStatsCmd(), newTokenCmd())
	return root
}

// setup loads config and configures logging.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.Setup(cfg.LogLevel, cfg.LogFormat), nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// 1. Config & logging
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			// 2. Database
			db, err := database.Connect(cfg.DBDriver, cfg.DatabaseURL)
			if err != nil {
				return err
			}

			// 3. Stores: durable for users, volatile for guests
			guests := store.NewVolatile(cfg.GuestTTL)
			guests.StartSweeper(time.Minute)
			defer guests.Close()
			jobStore := store.NewRouter(store.NewDurable(db), guests)

			// 4. Services
			jobService := services.NewJobService(jobStore, log)
			llmService, err := services.NewLLMService(cmd.Context(), cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				return err
			}
			if !llmService.Enabled() {
				log.Warn("GEMINI_API_KEY not set, /jobs/extract disabled")
			}

			// 5. Handlers & router
			if cfg.JWTSecret == "" {
				log.Warn("AUTH_JWT_SECRET not set, only guest sessions can sign in")
			}
			resolver := auth.NewResolver(cfg.JWTSecret, cfg.GuestEmail, cfg.GuestTTL)
			resolver.Sessions = guests
			router := handlers.NewRouter(
				handlers.NewJobHandler(llmService, jobService),
				handlers.NewSessionHandler(resolver, guests),
				resolver, log,
				handlers.RouterOptions{AllowAllOrigins: cfg.AllowAllOrigins(), Origins: cfg.CORSOrigins},
			)

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.WithField("port", cfg.Port).Info("Server starting")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(*cobra.Command, []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if _, err := database.Connect(cfg.DBDriver, cfg.DatabaseURL); err != nil {
				return err
			}
			log.Info("Migrations complete")
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	var userID, view string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the statistics report for a user as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tv, err := stats.ParseTimeView(view)
			if err != nil {
				return err
			}
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			db, err := database.Connect(cfg.DBDriver, cfg.DatabaseURL)
			if err != nil {
				return err
			}

			svc := services.NewJobService(store.NewDurable(db), log)
			report, err := svc.Stats(cmd.Context(), store.UserOwner(userID), tv)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id whose jobs are aggregated")
	cmd.Flags().StringVar(&view, "view", "month", "histogram granularity: month, week or day")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var userID, email string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("AUTH_JWT_SECRET is not set")
			}
			tok, err := auth.NewResolver(cfg.JWTSecret, cfg.GuestEmail, cfg.GuestTTL).Sign(userID, email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&email, "email", "", "email claim; the guest email selects guest mode")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
