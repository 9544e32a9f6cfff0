package main

import (
	"fmt"
	"os"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/catalog"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/config"
	applog "github.com/Deepanshu0211/MahadevEnterprises/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose bool
	envFile string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront API: catalog, carts, wishlists and the admin surface",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(envFile); err != nil {
			return err
		}
		if logger, err = applog.New(verbose); err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply catalog schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openCatalog()
		if err != nil {
			return err
		}
		defer repo.Close()

		logger.Info("catalog migrated",
			zap.String("driver", cfg.CatalogDriver),
			zap.String("path", cfg.MigrationsPath))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog, skipping entries that already exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openCatalog()
		if err != nil {
			return err
		}
		defer repo.Close()

		return seedCatalog(cmd, repo)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading configuration")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// openCatalog connects to the configured catalog database and migrates it.
func openCatalog() (*catalog.Repository, error) {
	creds := &catalog.Credentials{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
	}
	dsn := cfg.SQLitePath
	if cfg.CatalogDriver == catalog.DriverPostgres {
		dsn = creds.DSN()
	}

	repo, err := catalog.NewRepository(cfg.CatalogDriver, dsn)
	if err != nil {
		return nil, err
	}
	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

func seedCatalog(cmd *cobra.Command, repo *catalog.Repository) error {
	seed, err := catalog.LoadSeed(cfg.SeedFile)
	if err != nil {
		return err
	}

	categories, products, err := catalog.ApplySeed(cmd.Context(), repo, seed)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	logger.Info("catalog seeded",
		zap.String("file", cfg.SeedFile),
		zap.Int("categories_added", categories),
		zap.Int("products_added", products))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
