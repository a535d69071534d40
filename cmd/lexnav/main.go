package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/coolbeans/lexnav/pkg/eurlex"
	"github.com/coolbeans/lexnav/pkg/extract"
	"github.com/coolbeans/lexnav/pkg/library"
	"github.com/coolbeans/lexnav/pkg/relevance"
	"github.com/coolbeans/lexnav/pkg/search"
)

var version = "0.1.0"

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	flags := &globalFlags{}
	var application *app

	rootCmd := &cobra.Command{
		Use:   "lexnav",
		Short: "EU legislation reader",
		Long: `Lexnav parses EUR-Lex documents into articles, recitals and annexes,
links each article to the recitals that explain it, and searches across laws.

Examples:
  lexnav parse gdpr.html --stats
  lexnav relevance --law gdpr
  lexnav search "data protection impact assessment" --law gdpr --law ai-act
  lexnav laws verify dma
  lexnav fetch 32016R0679 --out gdpr.html
  lexnav summarize --law gdpr --article 35`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			application, err = newApp(cmd.Context(), flags)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			application.close(flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default ~/.lexnav/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&flags.pretty, "pretty", false, "Human-readable log output")
	rootCmd.PersistentFlags().BoolVar(&flags.showMetrics, "metrics", false, "Print metrics to stderr on exit")

	appRef := func() *app { return application }
	rootCmd.AddCommand(parseCmd(appRef))
	rootCmd.AddCommand(relevanceCmd(appRef))
	rootCmd.AddCommand(searchCmd(appRef))
	rootCmd.AddCommand(lawsCmd(appRef))
	rootCmd.AddCommand(fetchCmd(appRef))
	rootCmd.AddCommand(summarizeCmd(appRef))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func parseCmd(appRef func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a EUR-Lex document",
		Long: `Parse an OJ or consolidated EUR-Lex HTML file, or a JSON snapshot, and print
the structured document as JSON.

Examples:
  lexnav parse gdpr.html
  lexnav parse gdpr.html --stats
  lexnav parse --law ai-act --stats`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			showStats, _ := cmd.Flags().GetBool("stats")

			document, _, err := appRef().resolveDocument(cmd, args)
			if err != nil {
				return err
			}
			if document.IsEmpty() {
				return fmt.Errorf("no articles, recitals or annexes found")
			}

			if !showStats {
				return printJSON(document)
			}

			stats := document.Statistics()
			fmt.Printf("Title:    %s\n", document.Title)
			fmt.Printf("Articles: %d\n", stats.Articles)
			fmt.Printf("Recitals: %d\n", stats.Recitals)
			fmt.Printf("Annexes:  %d\n", stats.Annexes)
			fmt.Printf("Chapters: %d\n", stats.Chapters)
			fmt.Printf("Sections: %d\n", stats.Sections)
			return nil
		},
	}

	cmd.Flags().Bool("stats", false, "Print structural counts instead of the document")
	cmd.Flags().String("law", "", "Registered law key instead of a file")
	return cmd
}

func relevanceCmd(appRef func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relevance [file]",
		Short: "Map articles to the recitals that explain them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			showAll, _ := cmd.Flags().GetBool("all")
			format, _ := cmd.Flags().GetString("format")

			application := appRef()
			var document *extract.Document
			var relevanceMap relevance.Map
			lawKey, _ := cmd.Flags().GetString("law")
			if lawKey != "" && !showAll {
				law, err := application.reader.Open(cmd.Context(), lawKey)
				if err != nil {
					return err
				}
				document = law.Document
				relevanceMap, err = application.reader.LawRelevance(cmd.Context(), lawKey)
				if err != nil {
					return err
				}
			} else {
				var err error
				document, _, err = application.resolveDocument(cmd, args)
				if err != nil {
					return err
				}
				options := application.reader.RelevanceOptions()
				if showAll {
					options.Exclusive = false
				}
				relevanceMap, err = application.reader.RelevanceWithOptions(cmd.Context(), document, options)
				if err != nil {
					return err
				}
			}

			if format == "json" {
				return printJSON(relevanceMap)
			}

			for _, article := range document.Articles {
				related := relevanceMap.RecitalsFor(article.Number)
				if len(related) == 0 {
					continue
				}
				fmt.Printf("Article %s %s\n", article.Number, article.Title)
				for _, recital := range related {
					fmt.Printf("  Recital %-5s %.3f  %s\n",
						recital.Recital.Number, recital.RelevanceScore, strings.Join(recital.Keywords, ", "))
				}
			}
			fmt.Printf("\n%d assignments across %d articles\n", relevanceMap.Assignments(), len(relevanceMap))
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "Assign each recital to every article clearing the threshold")
	cmd.Flags().String("format", "text", "Output format (text, json)")
	cmd.Flags().String("law", "", "Registered law key instead of a file")
	return cmd
}

func searchCmd(appRef func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search articles, recitals and annexes",
		Long: `Search one or more documents. Citation queries such as "5" or "Article 5"
rank the cited provision first.

Examples:
  lexnav search "Article 5" --file gdpr.html
  lexnav search "transparency obligations" --law ai-act --law dsa --limit 5
  lexnav search "penalties"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, _ := cmd.Flags().GetStringSlice("file")
			laws, _ := cmd.Flags().GetStringSlice("law")
			limit, _ := cmd.Flags().GetInt("limit")
			format, _ := cmd.Flags().GetString("format")

			application := appRef()
			var index *search.Index
			if len(files) == 1 {
				document, err := parseFile(files[0])
				if err != nil {
					return err
				}
				index = application.reader.IndexDocument(search.Law{Key: files[0], Label: files[0]}, document)
			} else if len(files) > 1 {
				loaded := make([]*library.Law, 0, len(files))
				for _, path := range files {
					document, err := parseFile(path)
					if err != nil {
						return err
					}
					loaded = append(loaded, library.NewLaw(&library.LawEntry{Key: path}, document))
				}
				index = application.reader.IndexLaws(loaded...)
			} else {
				var err error
				index, err = application.reader.Index(cmd.Context(), laws...)
				if err != nil {
					return err
				}
			}

			results := application.reader.Search(index, args[0], limit)
			if format == "json" {
				return printJSON(results)
			}
			if len(results) == 0 {
				fmt.Println("No results.")
				return nil
			}
			for _, result := range results {
				fmt.Printf("%-10s %-8s %-7s %7.2f  %s\n",
					truncateString(result.Law.Label, 10), result.Type, result.ID, result.Score, result.Title)
				fmt.Printf("    %s\n", result.Preview)
			}
			return nil
		},
	}

	cmd.Flags().StringSlice("file", []string{}, "Documents to search (repeatable)")
	cmd.Flags().StringSlice("law", []string{}, "Registered law keys to search (default all)")
	cmd.Flags().Int("limit", 10, "Maximum results (0 for all)")
	cmd.Flags().String("format", "text", "Output format (text, json)")
	return cmd
}

func lawsCmd(appRef func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "laws",
		Short: "List registered laws",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			entries := appRef().loader.Registry().List()
			if format == "json" {
				return printJSON(entries)
			}

			fmt.Printf("%-10s %-12s %-12s %8s %8s %8s\n", "KEY", "NAME", "CELEX", "ARTICLES", "RECITALS", "ANNEXES")
			fmt.Println(strings.Repeat("-", 64))
			for _, entry := range entries {
				fmt.Printf("%-10s %-12s %-12s %8d %8d %8d\n",
					truncateString(entry.Key, 10), truncateString(entry.Label(), 12), entry.CELEX,
					entry.Expected.Articles, entry.Expected.Recitals, entry.Expected.Annexes)
			}
			return nil
		},
	}

	cmd.Flags().String("format", "text", "Output format (text, json)")
	cmd.AddCommand(lawsVerifyCmd(appRef))
	cmd.AddCommand(lawsCheckCmd(appRef))
	return cmd
}

func lawsCheckCmd(appRef func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [key...]",
		Short: "Check that the canonical links of registered laws resolve",
		RunE: func(cmd *cobra.Command, args []string) error {
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			format, _ := cmd.Flags().GetString("format")

			application := appRef()
			registry := application.loader.Registry()
			entries := registry.List()
			if len(args) > 0 {
				entries = make([]*library.LawEntry, 0, len(args))
				for _, key := range args {
					entry, err := registry.Get(key)
					if err != nil {
						return err
					}
					entries = append(entries, entry)
				}
			}

			report := library.CheckLinks(cmd.Context(), application.client, entries, concurrency)
			if format == "json" {
				return printJSON(report)
			}

			for _, result := range report.Results {
				detail := result.Error
				if result.StatusCode != 0 {
					detail = fmt.Sprintf("HTTP %d", result.StatusCode)
				}
				fmt.Printf("%-10s %-8s %-50s %s\n", result.Key, result.Status, truncateString(result.URI, 50), detail)
			}
			fmt.Printf("\n%d valid, %d invalid, %d errors, %d skipped\n",
				report.Valid, report.Invalid, report.Errors, report.Skipped)
			if report.Invalid+report.Errors > 0 {
				return fmt.Errorf("%d links failed", report.Invalid+report.Errors)
			}
			return nil
		},
	}

	cmd.Flags().Int("concurrency", library.DefaultLinkConcurrency, "Concurrent link checks")
	cmd.Flags().String("format", "text", "Output format (text, json)")
	return cmd
}

func lawsVerifyCmd(appRef func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [key...]",
		Short: "Load laws and compare their structure with the catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			application := appRef()
			if len(args) == 0 {
				for _, entry := range application.loader.Registry().List() {
					args = append(args, entry.Key)
				}
			}

			failed := 0
			for _, key := range args {
				law, err := application.reader.Open(cmd.Context(), key)
				if err != nil {
					fmt.Printf("%-10s ERROR  %v\n", key, err)
					failed++
					continue
				}
				if law.Verified() {
					fmt.Printf("%-10s OK     %d articles, %d recitals, %d annexes (%s)\n",
						law.Entry.Key, law.Stats.Articles, law.Stats.Recitals, law.Stats.Annexes, law.Source)
					continue
				}
				failed++
				fmt.Printf("%-10s DIFF  ", law.Entry.Key)
				for _, mismatch := range law.Mismatches {
					fmt.Printf(" %s %d/%d", mismatch.Field, mismatch.Actual, mismatch.Expected)
				}
				fmt.Println()
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d laws failed verification", failed, len(args))
			}
			return nil
		},
	}
}

func fetchCmd(appRef func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <celex|key>",
		Short: "Download a document from EUR-Lex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("out")

			application := appRef()
			celexNumber, err := resolveCELEX(application.loader.Registry(), args[0])
			if err != nil {
				return err
			}

			fetched, err := application.client.FetchDocument(cmd.Context(), celexNumber)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = os.Stdout.Write(fetched.Body)
				return err
			}
			if err := os.WriteFile(output, fetched.Body, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(os.Stderr, "Fetched %s (%d bytes) to %s\n", fetched.URL, len(fetched.Body), output)
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	return cmd
}

func summarizeCmd(appRef func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [file]",
		Short: "Summarize an article using its recitals as context",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			articleNumber, _ := cmd.Flags().GetString("article")
			if articleNumber == "" {
				return fmt.Errorf("--article is required")
			}

			application := appRef()
			document, _, err := application.resolveDocument(cmd, args)
			if err != nil {
				return err
			}
			result, err := application.reader.SummarizeArticle(cmd.Context(), document, articleNumber)
			if err != nil {
				return err
			}

			fmt.Println(result.Summary)
			if result.Usage.TotalTokens > 0 {
				fmt.Fprintf(os.Stderr, "\n%s %s: %d tokens\n", result.Provider, result.Model, result.Usage.TotalTokens)
			}
			return nil
		},
	}

	cmd.Flags().String("article", "", "Article number")
	cmd.Flags().String("law", "", "Registered law key instead of a file")
	return cmd
}

// resolveCELEX accepts a registered law key, a CELEX number or a citation such as
// "Regulation (EU) 2016/679".
func resolveCELEX(registry *library.Registry, text string) (string, error) {
	if entry, err := registry.Get(text); err == nil && entry.CELEX != "" {
		return entry.CELEX, nil
	}
	if celexNumber, err := eurlex.ParseCELEX(text); err == nil {
		return celexNumber.String(), nil
	}
	if identifier, found := eurlex.ParseIdentifier(text); found {
		celexNumber, err := eurlex.GenerateCELEX(identifier)
		if err != nil {
			return "", err
		}
		return celexNumber.String(), nil
	}
	return "", fmt.Errorf("%q is not a law key, CELEX number or citation", text)
}

func truncateString(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return text[:maxLen]
	}
	return text[:maxLen-3] + "..."
}
