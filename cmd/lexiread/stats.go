package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show word store and vocabulary statistics.",
		Action: runStats,
	}
}

func runStats(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	fmt.Printf("Data dir: %s\n", cfg.DataDir)

	if store, err := openWordStore(cfg); err == nil {
		defer store.Close()
		count, err := store.WordCount()
		if err != nil {
			return err
		}
		cs := store.CacheStats()
		fmt.Printf("Word store: %d words\n", count)
		fmt.Printf("Front cache: %d entries, hit rate %.1f%%\n", cs.CacheSize, cs.HitRate()*100)
	} else {
		fmt.Println("Word store: not built (run `lexiread load`)")
	}

	if _, err := os.Stat(cfg.ChunkCachePath()); err == nil {
		fmt.Printf("Chunk cache: %s\n", cfg.ChunkCachePath())
	}

	vstore, err := openVocab(cfg)
	if err != nil {
		return err
	}
	learning, mastered := vstore.Counts()
	fmt.Printf("Vocabulary: %d learning, %d mastered\n", learning, mastered)
	return nil
}
