package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"mxliff-workbench/internal/config"
	"mxliff-workbench/internal/fileio"
	"mxliff-workbench/internal/filewalker"
	"mxliff-workbench/internal/keyorder"
	"mxliff-workbench/internal/mxliff"
	"mxliff-workbench/internal/progress"
	"mxliff-workbench/internal/tablematch"
	"mxliff-workbench/internal/textnorm"
	"mxliff-workbench/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if config.Load().PrettyLog {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	rootCmd := &cobra.Command{
		Use:   "mxliff-workbench",
		Short: "Round-trip-safe MXLIFF editing and comment-table matching",
		Long: "Parses MXLIFF localization files into translation records, applies " +
			"target-text edits back with byte-for-byte fidelity, and correlates " +
			"comment tables extracted from review documents with the parsed records.",
	}

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(annotateCmd())
	rootCmd.AddCommand(linesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file-or-directory>...",
		Short: "Parse MXLIFF files into translation records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat, _ := cmd.Flags().GetString("export")
			exportPath, _ := cmd.Flags().GetString("output")
			return runExtract(args, exportFormat, exportPath)
		},
	}

	cmd.Flags().String("export", "", "Export format: tsv or json (no export when empty)")
	cmd.Flags().String("output", "records", "Output path for exported records (without extension)")

	return cmd
}

func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <file.mxliff> <edits.(json|tsv)>",
		Short: "Apply target-text edits and write the patched MXLIFF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath, _ := cmd.Flags().GetString("output")
			return runApply(args[0], args[1], outPath)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file (defaults to overwriting the input)")

	return cmd
}

func annotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate <file.mxliff> <tables.json>",
		Short: "Match comment tables against a MXLIFF file and attach comments",
		Long: `Matches the "source" column of externally extracted document tables
against the MXLIFF source texts, exactly first and then by similarity, and
attaches the matched comments to the corresponding records.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reportPath, _ := cmd.Flags().GetString("report")
			recordsPath, _ := cmd.Flags().GetString("records")
			return runAnnotate(args[0], args[1], reportPath, recordsPath)
		},
	}

	cmd.Flags().String("report", "match_report.json", "Output path for the match report")
	cmd.Flags().String("records", "", "Optional path for exporting the annotated records as JSON")

	return cmd
}

func linesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lines <file-or-directory>...",
		Short: "Report missing dialogue lines per group",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLines(args)
		},
	}
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// newProgressBar adapts the core progress callback to a terminal bar.
func newProgressBar(description string) (progress.Func, func()) {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionClearOnFinish(),
	)

	report := func(percent int, message string) {
		bar.Describe(message)
		_ = bar.Set(percent)
	}
	finish := func() { _ = bar.Finish() }

	return report, finish
}

// loadDocument reads one MXLIFF file and extracts its records.
func loadDocument(ctx context.Context, path string, report progress.Func) (string, []mxliff.Record, error) {
	content, err := fileio.ReadDocument(ctx, path, report)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}

	logger := log.With().Str("file", filepath.Base(path)).Logger()
	records, err := mxliff.Extract(ctx, content, logger, report)
	if err != nil {
		return "", nil, fmt.Errorf("extract %s: %w", path, err)
	}

	return content, records, nil
}

// extractResult is the per-file outcome of a batch extraction.
type extractResult struct {
	Path    string
	Records []mxliff.Record
}

// runExtract handles the `extract` command.
func runExtract(paths []string, exportFormat, exportPath string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	files, err := discoverAll(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Warn().Msg("No MXLIFF files found")
		return nil
	}

	pool := worker.NewPool[string, extractResult](cfg.WorkerCount,
		func(ctx context.Context, path string) (extractResult, error) {
			_, records, err := loadDocument(ctx, path, nil)
			return extractResult{Path: path, Records: records}, err
		},
	)

	var allRecords []mxliff.Record
	for _, task := range pool.Execute(ctx, files) {
		if task.Err != nil {
			continue
		}

		groups := keyorder.Organize(task.Result.Records)
		missing := keyorder.MissingLineReport(groups)

		withComments := 0
		for i := range task.Result.Records {
			r := &task.Result.Records[i]
			if !mxliff.HasComments(r) {
				continue
			}
			withComments++
			log.Debug().
				Str("key", r.Key).
				Str("comments", textnorm.Truncate(mxliff.CommentText(r), 80)).
				Msg("Record carries comments")
		}

		log.Info().
			Str("file", task.Result.Path).
			Int("records", len(task.Result.Records)).
			Int("groups", len(groups)).
			Int("with_comments", withComments).
			Msg("Extracted records")

		for _, m := range missing {
			log.Warn().
				Str("group", m.Group).
				Ints("lines", m.Lines).
				Msg("Missing dialogue lines")
		}

		allRecords = append(allRecords, task.Result.Records...)
	}

	switch exportFormat {
	case "":
	case "json":
		if err := mxliff.ExportJSON(allRecords, exportPath+".json"); err != nil {
			return fmt.Errorf("export JSON: %w", err)
		}
	case "tsv":
		if err := mxliff.ExportTSV(allRecords, exportPath+".tsv"); err != nil {
			return fmt.Errorf("export TSV: %w", err)
		}
	default:
		return fmt.Errorf("unknown export format: %s", exportFormat)
	}

	log.Info().Int("files", len(files)).Int("records", len(allRecords)).Msg("Extraction complete")
	return nil
}

// runApply handles the `apply` command.
func runApply(filePath, editsPath, outPath string) error {
	ctx, cancel := setupContext()
	defer cancel()

	report, finish := newProgressBar("Applying edits...")
	defer finish()

	content, records, err := loadDocument(ctx, filePath, report)
	if err != nil {
		return err
	}

	edits, err := mxliff.LoadEdits(editsPath)
	if err != nil {
		return err
	}

	applied := mxliff.ApplyEdits(records, edits)
	log.Info().Int("edits", len(edits)).Int("applied", applied).Msg("Loaded edit set")

	logger := log.With().Str("file", filepath.Base(filePath)).Logger()
	patched, warnings, err := mxliff.Patch(content, records, logger)
	if err != nil {
		return fmt.Errorf("patch %s: %w", filePath, err)
	}

	for _, key := range warnings {
		log.Warn().Str("key", key).Msg("Edit could not be applied")
	}

	if outPath == "" {
		outPath = filePath
	}
	if err := os.WriteFile(outPath, []byte(patched), 0644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}

	report.Report(100, "Export complete")
	log.Info().
		Str("output", outPath).
		Int("unapplied", len(warnings)).
		Msg("Patched file written")
	return nil
}

// runAnnotate handles the `annotate` command.
func runAnnotate(filePath, tablesPath, reportPath, recordsPath string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	report, finish := newProgressBar("Matching tables...")
	defer finish()

	_, records, err := loadDocument(ctx, filePath, report)
	if err != nil {
		return err
	}

	tables, err := tablematch.LoadTables(tablesPath)
	if err != nil {
		return err
	}
	log.Info().Int("tables", len(tables)).Msg("Loaded document tables")

	matcher := tablematch.NewMatcher(log.With().Str("file", filepath.Base(filePath)).Logger())
	matcher.Threshold = cfg.FuzzyThreshold
	matcher.MaxMatches = cfg.MaxMatches

	result, err := matcher.Match(ctx, tables, records, report)
	if err != nil {
		return fmt.Errorf("match tables: %w", err)
	}

	for _, u := range result.Updates {
		log.Debug().
			Str("key", u.Key).
			Str("type", u.MatchType).
			Str("comment", textnorm.Truncate(u.Comment, 80)).
			Msg("Matched comment")
	}

	applied, updatedKeys := tablematch.ApplyComments(records, result.Updates)
	log.Info().
		Int("matches", result.Matches).
		Int("comments_added", applied).
		Int("keys", len(updatedKeys)).
		Msg("Attached comments to records")

	if err := tablematch.WriteResult(result, reportPath); err != nil {
		return err
	}
	log.Info().Str("path", reportPath).Msg("Match report written")

	if recordsPath != "" {
		if err := mxliff.ExportJSON(records, recordsPath); err != nil {
			return fmt.Errorf("export annotated records: %w", err)
		}
	}

	return nil
}

// runLines handles the `lines` command.
func runLines(paths []string) error {
	ctx, cancel := setupContext()
	defer cancel()

	files, err := discoverAll(paths)
	if err != nil {
		return err
	}

	for _, path := range files {
		_, records, err := loadDocument(ctx, path, nil)
		if err != nil {
			return err
		}

		groups := keyorder.Organize(records)
		missing := keyorder.MissingLineReport(groups)

		if len(missing) == 0 {
			fmt.Printf("%s: no missing lines\n", path)
			continue
		}

		fmt.Printf("%s: missing lines in %d group(s)\n", path, len(missing))
		for _, m := range missing {
			lines := make([]string, len(m.Lines))
			for i, n := range m.Lines {
				lines[i] = fmt.Sprint(n)
			}
			fmt.Printf("  - %s: line(s) %s\n", m.Group, strings.Join(lines, ", "))
		}
	}

	return nil
}

// discoverAll expands every argument into its MXLIFF files.
func discoverAll(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		found, err := filewalker.Discover(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}
