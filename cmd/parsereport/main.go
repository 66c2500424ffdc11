// Command parsereport parses one ERP export, classifies it and prints the
// board as JSON. It is meant for checking new report variants without
// running the server.
//
//	parsereport -kind reservas -file ME5R.txt -today 2025-03-10
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deliveryboard/internal/classification"
	"deliveryboard/internal/config"
	"deliveryboard/internal/confirmations"
	"deliveryboard/internal/dataprocessing"
	"deliveryboard/internal/exporter"
	"deliveryboard/internal/infrastructure"
	"deliveryboard/internal/textreport"
	"deliveryboard/pkg/contracts"
	"deliveryboard/pkg/contracts/domain"
)

// Output is what gets printed
type Output struct {
	Kind   domain.RecordKind           `json:"kind"`
	File   string                      `json:"file"`
	Today  domain.Date                 `json:"today"`
	Stats  dataprocessing.Stats        `json:"stats"`
	Counts map[domain.Bucket]int       `json:"counts"`
	Result domain.ClassificationResult `json:"result"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "parsereport:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("parsereport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	kindFlag := fs.String("kind", "", "report kind: reservation|requisition (reservas, requisicoes)")
	file := fs.String("file", "", "report file to parse")
	todayFlag := fs.String("today", "", "reference day as YYYY-MM-DD (defaults to the current day)")
	tz := fs.String("tz", "Local", "time zone that decides the current day")
	encoding := fs.String("encoding", textreport.EncodingLatin1, "encoding of non UTF-8 input: latin1|windows1252")
	maxRecords := fs.Int("max-records", dataprocessing.DefaultMaxRecords, "record cap after sorting, 0 disables it")
	compact := fs.Bool("compact", false, "drop empty cells in fixed-offset reports before mapping")
	maxBytes := fs.Int64("max-bytes", 32<<20, "refuse files larger than this, 0 disables the check")
	dbPath := fs.String("confirmations", "", "optional confirmation database to classify with")
	out := fs.String("out", "", "also export the board to this .csv or .xlsx file")
	pretty := fs.Bool("pretty", true, "indent the JSON output")
	logLevel := fs.String("log-level", "warn", "log level on stderr")
	version := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *version {
		_, err := fmt.Fprintln(stdout, contracts.GetVersionString())
		return err
	}

	if *kindFlag == "" || *file == "" {
		fs.Usage()
		return errors.New("-kind and -file are required")
	}
	kind, err := domain.ParseRecordKind(*kindFlag)
	if err != nil {
		return err
	}
	if _, err := textreport.LookupEncoding(*encoding); err != nil {
		return err
	}

	logger, _, err := infrastructure.NewLogger(config.LoggingConfig{Level: *logLevel, Format: "json", Output: "console"}, stderr)
	if err != nil {
		return err
	}

	loc := time.Local
	if *tz != "" && *tz != "Local" {
		if loc, err = time.LoadLocation(*tz); err != nil {
			return fmt.Errorf("unknown timezone %q: %w", *tz, err)
		}
	}
	now := time.Now
	if *todayFlag != "" {
		day, err := time.ParseInLocation("2006-01-02", *todayFlag, loc)
		if err != nil {
			return fmt.Errorf("invalid -today %q: %w", *todayFlag, err)
		}
		// Noon keeps the day stable under any offset applied later
		ref := day.Add(12 * time.Hour)
		now = func() time.Time { return ref }
	}

	parser, err := dataprocessing.NewParserForKind(kind, dataprocessing.Options{
		Encoding:       *encoding,
		MaxRecords:     *maxRecords,
		Now:            now,
		Location:       loc,
		CompactColumns: *compact,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	parsed, err := parser.ParseFile(*file, *maxBytes)
	if err != nil {
		return err
	}

	answers, err := loadConfirmations(*dbPath)
	if err != nil {
		return err
	}

	today := classification.Today(now(), loc)
	result := classification.Classify(parsed.Records, answers, today)

	logger.Info("report classified",
		slog.String("kind", string(kind)),
		slog.String("file", *file),
		slog.Int("records", len(parsed.Records)),
		slog.Int("dropped", parsed.Stats.Dropped))

	if *out != "" {
		if err := exportBoard(*out, kind, *file, today, result, logger); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(Output{
		Kind:   kind,
		File:   filepath.Base(*file),
		Today:  today,
		Stats:  parsed.Stats,
		Counts: result.Counts(),
		Result: result,
	})
}

// loadConfirmations reads the answers stored by the server; no path means
// classification without answers.
func loadConfirmations(path string) (map[string]bool, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("confirmation database: %w", err)
	}
	store, err := confirmations.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.LoadAll(context.Background())
}

func exportBoard(path string, kind domain.RecordKind, source string, today domain.Date, result domain.ClassificationResult, logger *slog.Logger) error {
	format, err := exporter.ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	snap := &domain.ReportSnapshot{
		Kind:        kind,
		Result:      result,
		Source:      domain.SourceFile{Path: source, Name: filepath.Base(source)},
		Today:       today,
		RefreshedAt: time.Now(),
	}
	if err := exporter.NewBoardExporter(logger).Export(f, snap, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
