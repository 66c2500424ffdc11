package dataprocessing

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"deliveryboard/internal/textreport"
	"deliveryboard/pkg/contracts/domain"
)

// DefaultMaxRecords bounds how many records one parse returns
const DefaultMaxRecords = 200

var (
	// ErrHeaderNotFound is returned for a header-driven report with no header row
	ErrHeaderNotFound = errors.New("no header row found in report")
	// ErrFileTooLarge is returned when the source exceeds the configured size
	ErrFileTooLarge = errors.New("report file exceeds size limit")
)

// Options configures a Parser
type Options struct {
	// Encoding of non UTF-8 input (latin1, windows1252)
	Encoding string
	// MaxRecords caps the output after sorting; 0 disables the cap
	MaxRecords int
	// Now is the parser clock, used for derived fields such as approval
	Now func() time.Time
	// Location decides what "today" is
	Location *time.Location
	// CompactColumns switches fixed-offset layouts to compacted splitting.
	// Header-driven layouts keep positional columns.
	CompactColumns bool
	Logger         *slog.Logger
}

// DefaultOptions returns latin1 decoding, a 200 record cap and the local clock
func DefaultOptions() Options {
	return Options{
		Encoding:   textreport.EncodingLatin1,
		MaxRecords: DefaultMaxRecords,
		Now:        time.Now,
		Location:   time.Local,
	}
}

// Layout binds line rules, a strategy and the record building hooks of one
// report kind.
type Layout struct {
	Kind     domain.RecordKind
	Rules    textreport.LineRules
	Strategy Strategy
	// Fields lists every field a record of this kind exposes
	Fields []string
	// Target picks the target date of a row
	Target func(fields map[string]string, line string) *domain.Date
	// Key returns the identity key of a row
	Key func(fields map[string]string, line string) string
	// Derive adds computed fields; may be nil
	Derive func(fields map[string]string, today domain.Date)
}

// Stats counts what happened to the lines of one parse
type Stats struct {
	Lines      int `json:"lines"`
	Headers    int `json:"headers"`
	Data       int `json:"data"`
	Dropped    int `json:"dropped"`
	Duplicates int `json:"duplicates"`
	Truncated  int `json:"truncated"`
}

// Result is the output of one parse
type Result struct {
	Records []domain.Record
	Stats   Stats
}

// Parser extracts records of one kind from raw report text
type Parser struct {
	layout Layout
	opts   Options
	logger *slog.Logger
}

// NewParser creates a parser for layout
func NewParser(layout Layout, opts Options) *Parser {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if fixed, ok := layout.Strategy.(FixedOffset); ok && opts.CompactColumns {
		fixed.Compact = true
		layout.Strategy = fixed
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		layout: layout,
		opts:   opts,
		logger: logger.With(slog.String("component", "report_parser"), slog.String("kind", string(layout.Kind))),
	}
}

// LayoutFor returns the layout of the given record kind
func LayoutFor(kind domain.RecordKind) (Layout, error) {
	switch kind {
	case domain.KindReservation:
		return ReservationLayout(), nil
	case domain.KindRequisition:
		return RequisitionLayout(), nil
	default:
		return Layout{}, fmt.Errorf("no layout for record kind %q", kind)
	}
}

// NewParserForKind returns the parser of the given record kind
func NewParserForKind(kind domain.RecordKind, opts Options) (*Parser, error) {
	layout, err := LayoutFor(kind)
	if err != nil {
		return nil, err
	}
	return NewParser(layout, opts), nil
}

// Kind returns the record kind this parser produces
func (p *Parser) Kind() domain.RecordKind {
	return p.layout.Kind
}

// ParseFile reads path, refusing files larger than maxBytes (0 = unbounded),
// and parses its content.
func (p *Parser) ParseFile(path string, maxBytes int64) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("%s: %w (%d bytes)", path, ErrFileTooLarge, maxBytes)
	}
	return p.Parse(raw)
}

// Parse extracts records from raw report bytes
func (p *Parser) Parse(raw []byte) (*Result, error) {
	text := textreport.Decode(raw, p.opts.Encoding)
	today := domain.DateOf(p.opts.Now().In(p.opts.Location))
	split := p.layout.Strategy.Splitter()

	var (
		stats   Stats
		records []domain.Record
		columns ColumnMap
	)
	headerDriven, isHeaderDriven := p.layout.Strategy.(HeaderDriven)

	for n, line := range textreport.Lines(text) {
		stats.Lines++

		switch textreport.ClassifyLine(line, p.layout.Rules) {
		case textreport.LineBlank, textreport.LineSeparator:
			continue
		case textreport.LineHeader:
			stats.Headers++
			if !isHeaderDriven {
				continue
			}
			cm := headerDriven.ColumnMap(split(line))
			if !cm.Has(headerDriven.KeyField) {
				p.logger.Debug("Header ignored, key column missing", slog.Int("line", n+1))
				continue
			}
			columns = cm
			continue
		}

		cols := split(line)
		var (
			fields map[string]string
			ok     bool
		)
		switch s := p.layout.Strategy.(type) {
		case FixedOffset:
			fields, ok = s.Map(cols)
		case HeaderDriven:
			if columns != nil {
				fields, ok = s.Map(cols, columns)
			}
		}
		if !ok {
			stats.Dropped++
			p.logger.Debug("Line dropped", slog.Int("line", n+1), slog.Int("columns", len(cols)))
			continue
		}

		records = append(records, p.build(fields, line, today))
		stats.Data++
	}

	if isHeaderDriven && columns == nil {
		return nil, ErrHeaderNotFound
	}

	records, stats.Duplicates = dedupe(records)
	sortByTargetDesc(records)
	if p.opts.MaxRecords > 0 && len(records) > p.opts.MaxRecords {
		stats.Truncated = len(records) - p.opts.MaxRecords
		records = records[:p.opts.MaxRecords]
	}

	p.logger.Debug("Report parsed",
		slog.Int("lines", stats.Lines),
		slog.Int("records", len(records)),
		slog.Int("dropped", stats.Dropped),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("truncated", stats.Truncated))

	return &Result{Records: records, Stats: stats}, nil
}

func (p *Parser) build(fields map[string]string, line string, today domain.Date) domain.Record {
	var target *domain.Date
	if p.layout.Target != nil {
		target = p.layout.Target(fields, line)
	}
	key := identityKey(line)
	if p.layout.Key != nil {
		key = p.layout.Key(fields, line)
	}
	if p.layout.Derive != nil {
		p.layout.Derive(fields, today)
	}
	for _, f := range p.layout.Fields {
		if _, ok := fields[f]; !ok {
			fields[f] = ""
		}
	}

	return domain.Record{
		ID:         RecordID(p.layout.Kind, key),
		Kind:       p.layout.Kind,
		Fields:     fields,
		TargetDate: target,
		RawLine:    strings.TrimSpace(line),
	}
}

// dedupe keeps one record per id: the last occurrence wins but takes the
// position of the first.
func dedupe(records []domain.Record) ([]domain.Record, int) {
	seen := make(map[string]int, len(records))
	out := records[:0]
	dups := 0
	for _, rec := range records {
		if i, ok := seen[rec.ID]; ok {
			out[i] = rec
			dups++
			continue
		}
		seen[rec.ID] = len(out)
		out = append(out, rec)
	}
	return out, dups
}

// sortByTargetDesc orders records newest target date first, undated last,
// keeping input order among equal dates.
func sortByTargetDesc(records []domain.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].TargetDate, records[j].TargetDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

func dateField(value string) *domain.Date {
	if d, ok := textreport.ExtractDate(value); ok {
		return &d
	}
	return nil
}
