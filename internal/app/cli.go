package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/ibp/config"
	"github.com/d60-Lab/ibp/internal/shipclient"
	"github.com/d60-Lab/ibp/pkg/database"
	"github.com/d60-Lab/ibp/pkg/logger"
	"github.com/d60-Lab/ibp/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

// NewRootCmd builds the ibp command tree. Flags are bound to viper keys so
// they override config.yaml and IBP_* variables alike.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	root := &cobra.Command{
		Use:           "ibp",
		Short:         "Inside Books Project case management",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.yaml)")
	root.PersistentFlags().String("database.driver", "", "database driver: sqlite or postgres")
	root.PersistentFlags().String("database.dsn", "", "database DSN")
	root.PersistentFlags().String("log.level", "", "log level")
	for _, key := range []string{"database.driver", "database.dsn", "log.level"} {
		_ = v.BindPFlag(key, root.PersistentFlags().Lookup(key))
	}

	load := func() (*config.Config, error) {
		if configFile != "" {
			v.SetConfigFile(configFile)
		}
		cfg, err := config.LoadFrom(v)
		if err != nil {
			return nil, err
		}
		if err := logger.Init(cfg); err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(serveCmd(v, load), migrateCmd(load), importUnitsCmd(load), shipCmd(v, load))
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := NewRootCmd().Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type loader func() (*config.Config, error)

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}

func serveCmd(v *viper.Viper, load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
			if err != nil {
				return err
			}
			defer func() { _ = shutdownTracing(context.Background()) }()

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()

			c, err := Build(ctx, cfg, db)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           c.Engine,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String("server.addr", "", "listen address")
	_ = v.BindPFlag("server.addr", cmd.Flags().Lookup("server.addr"))
	return cmd
}

func migrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()
			logger.Info("schema migrated", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}

func importUnitsCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "import-units FILE",
		Short: "Create or update units from a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			units, err := ParseUnits(f)
			if err != nil {
				return err
			}

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()
			c, err := Build(cmd.Context(), cfg, db)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			if err := c.Units.Import(cmd.Context(), units); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d units\n", len(units))
			return nil
		},
	}
}

func shipCmd(v *viper.Viper, load loader) *cobra.Command {
	var (
		key     string
		unit    string
		postage shipclient.Postage
	)
	cmd := &cobra.Command{
		Use:   "ship REQUEST_ID...",
		Short: "Record a shipment through the shipping endpoints",
		Long: `Record a shipment through the server's key-gated shipping endpoints.

With --unit the requests are packed together: each one is checked against the
unit and mismatches are reported and left out. Without --unit every request is
shipped as its own package.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ids := make([]uint, 0, len(args))
			for _, a := range args {
				n, err := strconv.ParseUint(a, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid request id %q", a)
				}
				ids = append(ids, uint(n))
			}
			if key == "" {
				key = os.Getenv("IBP_APP_KEY")
			}
			client := shipclient.New(cfg.Server.BaseURL, key, cfg.Provider.Timeout)
			out := cmd.OutOrStdout()

			if unit != "" {
				shipped, rejected, err := client.ShipBulk(cmd.Context(), unit, ids, postage)
				for _, r := range rejected {
					fmt.Fprintf(out, "skipped %d: %v\n", r.RequestID, r.Err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "shipped %v to %s\n", shipped, unit)
				return nil
			}

			for _, id := range ids {
				if err := client.ShipRequests(cmd.Context(), []uint{id}, postage); err != nil {
					return fmt.Errorf("request %d: %w", id, err)
				}
				fmt.Fprintf(out, "shipped %d\n", id)
			}
			return nil
		},
	}
	cmd.Flags().String("server.base_url", "", "server URL")
	_ = v.BindPFlag("server.base_url", cmd.Flags().Lookup("server.base_url"))
	cmd.Flags().StringVar(&key, "key", "", "application key (default $IBP_APP_KEY)")
	cmd.Flags().StringVar(&unit, "unit", "", "pack all requests for this unit into one package")
	cmd.Flags().IntVar(&postage.Weight, "weight", 0, "package weight in ounces")
	cmd.Flags().IntVar(&postage.Postage, "postage", 0, "postage in cents")
	cmd.Flags().StringVar(&postage.TrackingCode, "tracking-code", "", "tracking code")
	cmd.Flags().StringVar(&postage.TrackingURL, "tracking-url", "", "tracking URL")
	_ = cmd.MarkFlagRequired("weight")
	_ = cmd.MarkFlagRequired("postage")
	return cmd
}
