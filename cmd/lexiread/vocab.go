package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/jmhart/lexiread/pkg/vocab"
)

func vocabCommand() *cli.Command {
	return &cli.Command{
		Name:  "vocab",
		Usage: "Manage your learning and mastered word lists.",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add words to the learning list.",
				ArgsUsage: "WORD...",
				Action:    runVocabAdd,
			},
			{
				Name:      "master",
				Usage:     "Mark learning words as mastered.",
				ArgsUsage: "WORD...",
				Action:    vocabEach(func(s *vocab.Store, word string) error {
					return s.SetStatus(word, vocab.StatusMastered)
				}),
			},
			{
				Name:      "remove",
				Usage:     "Remove words from the vocabulary.",
				ArgsUsage: "WORD...",
				Action:    vocabEach((*vocab.Store).Remove),
			},
			{
				Name:   "list",
				Usage:  "List vocabulary words.",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "mastered", Usage: "list mastered words instead of learning"}},
				Action: runVocabList,
			},
			{
				Name:      "review",
				Usage:     "Record a review of learning words.",
				ArgsUsage: "WORD...",
				Action:    runVocabReview,
			},
			{
				Name:      "export",
				Usage:     "Write the vocabulary as JSON to FILE (or stdout).",
				ArgsUsage: "[FILE]",
				Action:    runVocabExport,
			},
			{
				Name:      "import",
				Usage:     "Replace the vocabulary with the JSON in FILE.",
				ArgsUsage: "FILE",
				Action:    runVocabImport,
			},
			{
				Name:      "sync",
				Usage:     "Merge the vocabulary two ways with FILE.",
				ArgsUsage: "FILE",
				Action:    runVocabSync,
			},
		},
	}
}

func vocabEach(op func(*vocab.Store, string) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.Args().Len() == 0 {
			return fmt.Errorf("provide at least one word")
		}
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		s, err := openVocab(cfg)
		if err != nil {
			return err
		}
		for _, word := range c.Args().Slice() {
			if err := op(s, word); err != nil {
				return fmt.Errorf("%s: %w", word, err)
			}
		}
		return nil
	}
}

// runVocabAdd looks each word up so new entries carry a translation and
// phonetic from the dictionary when available.
func runVocabAdd(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("provide at least one word")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	s, err := openVocab(cfg)
	if err != nil {
		return err
	}
	// Best effort dictionary lookup so new entries carry metadata; a
	// missing word store just leaves it empty.
	store, storeErr := openWordStore(cfg)
	if storeErr == nil {
		defer store.Close()
	}
	for _, word := range c.Args().Slice() {
		var translation, phonetic string
		if storeErr == nil {
			if rec, err := store.QueryWord(c.Context, word); err == nil && rec != nil {
				translation, phonetic = rec.Translation, rec.Phonetic
			}
		}
		if err := s.Add(word, translation, phonetic); err != nil {
			return fmt.Errorf("%s: %w", word, err)
		}
	}
	learning, _ := s.Counts()
	fmt.Printf("%d words on the learning list\n", learning)
	return nil
}

func runVocabList(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	s, err := openVocab(cfg)
	if err != nil {
		return err
	}
	status := vocab.StatusLearning
	if c.Bool("mastered") {
		status = vocab.StatusMastered
	}
	items := s.List(status)
	if len(items) == 0 {
		fmt.Printf("No %s words.\n", status)
		return nil
	}
	for _, item := range items {
		fmt.Printf("%-20s", item.Word)
		if item.Translation != "" {
			fmt.Printf(" %s", item.Translation)
		}
		if item.ReviewCount > 0 {
			fmt.Printf(" (reviewed %d times)", item.ReviewCount)
		}
		fmt.Println()
	}
	return nil
}

func runVocabReview(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("provide at least one word")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	s, err := openVocab(cfg)
	if err != nil {
		return err
	}
	for _, word := range c.Args().Slice() {
		item, err := s.Review(word)
		if err != nil {
			return fmt.Errorf("%s: %w", word, err)
		}
		fmt.Printf("%s reviewed %d times\n", item.Word, item.ReviewCount)
	}
	return nil
}

func runVocabExport(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	s, err := openVocab(cfg)
	if err != nil {
		return err
	}
	out := os.Stdout
	if c.Args().Len() == 1 {
		f, err := os.Create(c.Args().First())
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return s.Export(out)
}

func runVocabImport(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("provide the FILE to import")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	s, err := openVocab(cfg)
	if err != nil {
		return err
	}
	f, err := os.Open(c.Args().First())
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()
	if err := s.Import(f); err != nil {
		return err
	}
	learning, mastered := s.Counts()
	fmt.Printf("Imported %d learning and %d mastered words\n", learning, mastered)
	return nil
}

func runVocabSync(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("provide the FILE to sync with")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	s, err := openVocab(cfg)
	if err != nil {
		return err
	}
	if err := s.Sync(c.Args().First()); err != nil {
		return err
	}
	learning, mastered := s.Counts()
	fmt.Printf("Synced: %d learning, %d mastered\n", learning, mastered)
	return nil
}
