package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/yeremiapane/honda-dealer/config"
	"github.com/yeremiapane/honda-dealer/database"
	"github.com/yeremiapane/honda-dealer/router"
	"github.com/yeremiapane/honda-dealer/utils"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "honda-dealer",
		Short:         "Honda motorcycle dealer backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(serveCmd(), migrateCmd(), seedCmd(), expirePaymentsCmd())
	return cmd
}

// setup loads configuration and initialises the ambient stack.
func setup() *config.Config {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret, cfg.TokenTTL)
	if cfg.JWTSecret == "" {
		utils.ErrorLogger.Warn("JWT_SECRET is not set, using the development secret")
	}
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	return cfg
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := database.SeedAdmin(ctx, app.users, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
				return err
			}

			go app.payments.StartExpirySweeper(ctx, cfg.SweepInterval)
			go utils.CleanupBlacklist(ctx, time.Hour)

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           router.SetupRouter(app.router()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			utils.InfoLogger.Println("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup()
			db, err := config.InitDB(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			return database.AutoMigrate(db)
		},
	}
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the motorcycle catalog and the admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup()
			if file == "" {
				file = cfg.SeedFile
			}
			app, err := newApplication(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			list, err := database.LoadCatalog(file)
			if err != nil {
				return err
			}
			created, updated, err := database.SeedCatalog(cmd.Context(), app.motorcycles, list)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog: %d created, %d updated\n", created, updated)
			return database.SeedAdmin(cmd.Context(), app.users, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file (defaults to the embedded catalog)")
	return cmd
}

func expirePaymentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire-payments",
		Short: "Mark overdue payment instructions as expired once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup()
			app, err := newApplication(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := app.payments.ExpireOverdue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d payment instructions expired\n", n)
			return nil
		},
	}
}
