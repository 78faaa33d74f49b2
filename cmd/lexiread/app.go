package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/jmhart/lexiread/pkg/analyze"
	"github.com/jmhart/lexiread/pkg/config"
	"github.com/jmhart/lexiread/pkg/lemma"
	"github.com/jmhart/lexiread/pkg/vocab"
	"github.com/jmhart/lexiread/pkg/worddb"
	"github.com/jmhart/lexiread/pkg/wordstore"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "lexiread",
		Usage: "Grade English text against your vocabulary and a frequency dictionary.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "settings file `PATH`",
				Aliases: []string{"c"},
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "store data under `DIR`",
			},
		},
		Commands: []*cli.Command{
			loadCommand(),
			analyzeCommand(),
			lookupCommand(),
			vocabCommand(),
			statsCommand(),
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if dir := c.String("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	return cfg, nil
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "", log.LstdFlags)
}

func openVocab(cfg *config.Config) (*vocab.Store, error) {
	return vocab.Open(cfg.VocabPath(), newLogger())
}

// openWordStore opens the direct word store built by `lexiread load`.
func openWordStore(cfg *config.Config) (*wordstore.Store, error) {
	if _, err := os.Stat(cfg.WordStorePath()); err != nil {
		return nil, fmt.Errorf("word store missing at %s (run `lexiread load` first): %w", cfg.WordStorePath(), err)
	}
	return wordstore.Open(cfg.WordStorePath(), cfg.Dictionary.CacheSize)
}

// newAnalyzer assembles the analyzer over the direct store: tiers ranked
// from the store's frequency data, the rule lemmatizer, and the lookup
// facade with the optional remote API.
func newAnalyzer(cfg *config.Config, store *wordstore.Store) (*analyze.Analyzer, error) {
	tiers, err := analyze.TiersFromStore(store.DB())
	if err != nil {
		return nil, fmt.Errorf("build frequency tiers: %w", err)
	}
	wdb := worddb.New()
	wdb.Initialize(store, nil, cfg.Dictionary.APIURL)
	return &analyze.Analyzer{
		Tiers:      tiers,
		Lemmatizer: lemma.New(nil),
		DB:         wdb,
		Workers:    cfg.Analyzer.Workers,
	}, nil
}
