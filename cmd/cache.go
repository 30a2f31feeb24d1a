package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/burst-composer/internal/cache"
	"github.com/kozaktomas/burst-composer/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the persistent analysis cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show persisted cache statistics",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [cluster-id]",
	Short: "Remove persisted analyses (all, or one cluster)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func openConfiguredStore() (*cache.Store, error) {
	cfg := config.Load()
	if cfg.Cache.StorePath == "" {
		return nil, errors.New("CACHE_STORE_PATH environment variable is required")
	}
	return cache.OpenStore(cfg.Cache.StorePath)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := openConfiguredStore()
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.Count()
	if err != nil {
		return fmt.Errorf("reading cache stats: %w", err)
	}

	fmt.Printf("Persisted cluster analyses: %d\n", count)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openConfiguredStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		if err := store.Delete(args[0]); err != nil {
			return fmt.Errorf("clearing cluster %s: %w", args[0], err)
		}
		fmt.Printf("Cleared cluster %s\n", args[0])
		return nil
	}

	if err := store.DeleteAll(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Println("Cleared all persisted analyses")
	return nil
}
