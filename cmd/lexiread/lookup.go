package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/jmhart/lexiread/pkg/lemma"
	"github.com/jmhart/lexiread/pkg/worddb"
)

func lookupCommand() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Look a word up in the local dictionary.",
		ArgsUsage: "WORD...",
		Action:    runLookup,
	}
}

func skipFirst(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s[1:]
}

func runLookup(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("provide at least one word")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := openWordStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	wdb := worddb.New()
	wdb.Initialize(store, nil, cfg.Dictionary.APIURL)
	lem := lemma.New(nil)

	for _, word := range c.Args().Slice() {
		rec, err := wdb.Query(c.Context, word)
		if err != nil {
			return err
		}
		if rec == nil {
			// Retry with lemma candidates before giving up. The first
			// candidate is the word itself, already tried.
			for _, cand := range skipFirst(lem.Lemmatize(word)) {
				rec, err = wdb.Query(c.Context, cand)
				if err != nil {
					return err
				}
				if rec != nil {
					fmt.Printf("%s -> %s\n", word, cand)
					break
				}
			}
		}
		if rec == nil {
			fmt.Printf("%s: not found\n", word)
			continue
		}
		fmt.Printf("%s", rec.Word)
		if rec.Phonetic != "" {
			fmt.Printf(" [%s]", rec.Phonetic)
		}
		fmt.Println()
		if rec.Definition != "" {
			fmt.Printf("  %s\n", rec.Definition)
		}
		if rec.Translation != "" {
			fmt.Printf("  %s\n", rec.Translation)
		}
		if rec.Exchange != "" {
			for tag, form := range lemma.ParseExchange(rec.Exchange) {
				fmt.Printf("  %s: %s\n", tag, form)
			}
		}
	}
	return nil
}
