// Command seed applies the catalog definition to the database and runs the
// taxonomy maintenance batches.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stickerverse/sticker-catalog/config"
	"github.com/stickerverse/sticker-catalog/internal/app/repository"
	"github.com/stickerverse/sticker-catalog/internal/app/service"
	"github.com/stickerverse/sticker-catalog/internal/catalog"
	"github.com/stickerverse/sticker-catalog/internal/db"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
	"github.com/stickerverse/sticker-catalog/pkg/redis"
)

type rootOptions struct {
	catalogPath string
	verbose     bool
}

// services is what a maintenance command works with.
type services struct {
	seed    service.SeedService
	cleanup service.CleanupService
	audit   service.AuditService
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:           "seed",
		Short:         "Seed and maintain the sticker taxonomy",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "info"
			if opts.verbose {
				level = "debug"
			}
			logger.Initialize(logger.Config{
				Level:       level,
				Format:      "console",
				Output:      cmd.ErrOrStderr(),
				EnableColor: true,
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(opts, func(s *services) error {
				return runSeed(cmd, s)
			})
		},
	}

	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "Catalog YAML file (default: embedded catalog)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newDedupeCmd(&opts),
		newPurgeCmd(&opts),
		newMigrateLinksCmd(&opts),
		newAuditCmd(&opts),
		newCheckCmd(&opts),
	)
	return root
}

func loadCatalog(path string) (*catalog.Definition, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return catalog.Parse(data)
}

// withServices connects the database, and Redis when configured, for the
// duration of fn.
func withServices(opts rootOptions, fn func(s *services) error) error {
	def, err := loadCatalog(opts.catalogPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Writes must drop the API's cached reads.
	var cache service.CatalogCache
	if cfg.Redis.Enabled() {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, catalog cache will not be invalidated", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			cache = redis.NewCatalogCache(redis.GetClient(), cfg.Redis.CacheTTL)
			defer redis.Close()
		}
	}

	store := repository.NewTaxonomyStore(db.GetDB())
	return fn(&services{
		seed:    service.NewSeedService(store, def, cache),
		cleanup: service.NewCleanupService(store, def, cache),
		audit:   service.NewAuditService(store, def),
	})
}
