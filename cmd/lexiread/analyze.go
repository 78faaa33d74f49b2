package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/urfave/cli/v2"

	"github.com/jmhart/lexiread/pkg/analyze"
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze the difficulty of a text file or web article.",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "fetch and analyze the article at `URL` instead of a file",
			},
			&cli.StringFlag{
				Name:  "level",
				Usage: "reader level: common, beginner, intermediate, advanced or expert",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "highlight mode: unknown, difficult or all",
			},
			&cli.StringFlag{
				Name:  "html",
				Usage: "write a highlighted HTML rendering to `PATH`",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	levelName := cfg.Analyzer.DifficultyLevel
	if c.IsSet("level") {
		levelName = c.String("level")
	}
	level, err := analyze.ParseTier(levelName)
	if err != nil {
		return err
	}
	modeName := cfg.Analyzer.HighlightMode
	if c.IsSet("mode") {
		modeName = c.String("mode")
	}
	mode, err := analyze.ParseMode(modeName)
	if err != nil {
		return err
	}

	var text, title string
	switch {
	case c.String("url") != "":
		title, text, err = fetchArticle(c.Context, c.String("url"))
		if err != nil {
			return err
		}
	case c.Args().Len() == 1:
		data, err := os.ReadFile(c.Args().First())
		if err != nil {
			return fmt.Errorf("read text file: %w", err)
		}
		title, text = c.Args().First(), string(data)
	default:
		return fmt.Errorf("provide a FILE argument or --url")
	}

	store, err := openWordStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	analyzer, err := newAnalyzer(cfg, store)
	if err != nil {
		return err
	}
	vstore, err := openVocab(cfg)
	if err != nil {
		return err
	}
	learning, mastered := vstore.Words()

	result, err := analyzer.AnalyzeText(c.Context, text, level, mode, analyze.VocabSets{
		Learning: learning,
		Mastered: mastered,
	})
	if err != nil {
		return err
	}

	printReport(title, level, mode, result)
	if out := c.String("html"); out != "" {
		segments := analyze.ProcessTextForDisplay(text, result)
		if err := writeHTML(out, title, segments); err != nil {
			return err
		}
		fmt.Printf("Highlighted rendering written to %s\n", out)
	}
	return nil
}

// fetchArticle downloads a page and extracts its readable text. Browser-ish
// headers keep bot-blockers from rejecting the request.
func fetchArticle(ctx context.Context, pageURL string) (title, text string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	// Size limit guards against unbounded bodies from untrusted URLs.
	const maxBodySize = 10 * 1024 * 1024
	if resp.ContentLength > int64(maxBodySize) {
		return "", "", fmt.Errorf("content length %d exceeds %d byte limit", resp.ContentLength, maxBodySize)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", "", fmt.Errorf("read response: %w", err)
	}
	if len(body) >= maxBodySize {
		return "", "", fmt.Errorf("response body exceeds %d byte limit", maxBodySize)
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return "", "", fmt.Errorf("extract article: %w", err)
	}
	return article.Title, article.TextContent, nil
}

func printReport(title string, level analyze.Tier, mode analyze.HighlightMode, result *analyze.Analysis) {
	fmt.Printf("Title: %s\n", title)
	fmt.Printf("Level: %s, mode: %s\n", level, mode)
	fmt.Printf("Unique words: %d\n", len(result.Words))
	fmt.Printf("Difficulty score: %d/100\n", result.DifficultyScore)

	byTier := make(map[analyze.Tier]int)
	for _, ws := range result.Words {
		byTier[ws.Tier]++
	}
	for t := analyze.TierCommon; t <= analyze.TierExpert; t++ {
		if byTier[t] > 0 {
			fmt.Printf("  %-12s %d\n", t.String()+":", byTier[t])
		}
	}

	if len(result.NewWords) > 0 {
		words := append([]string(nil), result.NewWords...)
		sort.Strings(words)
		fmt.Printf("New words (%d): %s\n", len(words), strings.Join(words, ", "))
	}
}

func writeHTML(path, title string, segments []analyze.Segment) error {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	sb.WriteString(htmlEscape(title))
	sb.WriteString("</title><style>mark{background:#ffe28a}</style></head><body><pre>")
	for _, seg := range segments {
		if seg.IsWord && seg.Highlight {
			sb.WriteString(`<mark class="tier-` + seg.Tier.String() + `"`)
			if seg.Translation != "" {
				// Segment translations arrive pre-escaped.
				sb.WriteString(` title="` + seg.Translation + `"`)
			}
			sb.WriteString(">")
			sb.WriteString(htmlEscape(seg.Text))
			sb.WriteString("</mark>")
			continue
		}
		sb.WriteString(htmlEscape(seg.Text))
	}
	sb.WriteString("</pre></body></html>\n")
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
