package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/peachme/peachme/internal/profile"
	"github.com/peachme/peachme/internal/version"
	"github.com/peachme/peachme/server"
	"github.com/peachme/peachme/store"
	"github.com/peachme/peachme/store/db"
)

const greetingBanner = `PeachMe %s, pitch coaching backend
Listening on %s:%d, mode %s, driver %s
`

var rootCmd = &cobra.Command{
	Use:   "peachme",
	Short: "A pitch coaching backend with AI-driven analysis",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		instanceProfile := &profile.Profile{
			Mode:   viper.GetString("mode"),
			Addr:   viper.GetString("addr"),
			Port:   viper.GetInt("port"),
			Data:   viper.GetString("data"),
			Driver: viper.GetString("driver"),
			DSN:    viper.GetString("dsn"),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		instanceProfile.Version = version.GetCurrentVersion(instanceProfile.Mode)

		logLevel := slog.LevelInfo
		if instanceProfile.IsDev() {
			logLevel = slog.LevelDebug
		}
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
		slog.SetDefault(logger)

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			return fmt.Errorf("failed to create db driver: %w", err)
		}
		storeInstance := store.New(dbDriver, instanceProfile)

		s, err := server.NewServer(ctx, instanceProfile, storeInstance, logger)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			logger.Info("shutdown signal received")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			s.Shutdown(shutdownCtx)
			cancel()
		}()

		fmt.Printf(greetingBanner, version.GetCurrentVersion(instanceProfile.Mode),
			instanceProfile.Addr, instanceProfile.Port, instanceProfile.Mode, instanceProfile.Driver)
		if err := s.Start(ctx); err != nil && err != http.ErrServerClosed {
			return err
		}

		<-ctx.Done()
		return nil
	},
}

func init() {
	// .env is optional; real deployments configure through the
	// environment directly.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().String("mode", "demo", `mode of the server, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8080, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("peachme")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
