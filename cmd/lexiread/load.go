package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/jmhart/lexiread/pkg/dictionary"
	"github.com/jmhart/lexiread/pkg/wordstore"
)

func loadCommand() *cli.Command {
	return &cli.Command{
		Name:  "load",
		Usage: "Download the chunked dictionary and build the local word store.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "chunks",
				Usage: "load `N` priority chunks before backgrounding the rest",
			},
			&cli.BoolFlag{
				Name:  "fresh",
				Usage: "clear the chunk cache before loading",
			},
		},
		Action: runLoad,
	}
}

func runLoad(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	logger := newLogger()

	cache, err := dictionary.OpenCache(cfg.ChunkCachePath())
	if err != nil {
		return fmt.Errorf("open chunk cache: %w", err)
	}
	defer cache.Close()
	if c.Bool("fresh") {
		if err := cache.Clear(); err != nil {
			return fmt.Errorf("clear chunk cache: %w", err)
		}
	}

	loader := dictionary.NewLoader(dictionary.LoaderConfig{
		MetadataURL:  cfg.Dictionary.MetadataURL,
		ChunkBaseURL: cfg.Dictionary.ChunkBaseURL,
		Cache:        cache,
		Logger:       logger,
		OnEvent:      printLoadEvent,
	})
	defer loader.Close()

	if err := loader.Initialize(c.Context); err != nil {
		return fmt.Errorf("initialize dictionary loader: %w", err)
	}
	meta := loader.Metadata()
	fmt.Printf("Dictionary %s: %d chunks, %d words\n", meta.Version, meta.TotalChunks, meta.TotalWords)

	k := cfg.Dictionary.PriorityChunks
	if c.IsSet("chunks") {
		k = c.Int("chunks")
	}
	if err := loader.LoadPriorityChunks(c.Context, k); err != nil {
		// Failed chunks are skipped, not fatal; the rest keep loading.
		logger.Printf("priority load: %v", err)
	}
	loader.Wait()
	if loader.State() == dictionary.StateError {
		return fmt.Errorf("dictionary load failed")
	}

	store, err := wordstore.Open(cfg.WordStorePath(), cfg.Dictionary.CacheSize)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Println("Importing into the word store...")
	err = store.ImportFromLive(c.Context, loader.LiveDB(), func(done, total int) {
		fmt.Printf("\r  %d/%d words", done, total)
	})
	fmt.Println()
	if err != nil {
		return fmt.Errorf("import word store: %w", err)
	}
	count, err := store.WordCount()
	if err != nil {
		return err
	}
	fmt.Printf("Word store ready at %s (%d words)\n", cfg.WordStorePath(), count)
	return nil
}

func printLoadEvent(ev dictionary.LoadEvent) {
	switch ev.Kind {
	case dictionary.EventChunkLoaded:
		src := "downloaded"
		if ev.FromCache {
			src = "cache"
		}
		fmt.Printf("chunk %d loaded (%s)\n", ev.ChunkNumber, src)
	case dictionary.EventProgress:
		fmt.Printf("  %.1f%% (%d/%d chunks)\n", ev.Percent, ev.LoadedChunks, ev.TotalChunks)
	case dictionary.EventComplete:
		fmt.Println("All chunks loaded.")
	case dictionary.EventError:
		fmt.Fprintf(os.Stderr, "chunk %d failed: %v\n", ev.ChunkNumber, ev.Err)
	}
}
