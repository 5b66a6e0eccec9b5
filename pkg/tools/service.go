package tools

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/arnavshah/storeplan-api/pkg/extract"
	"github.com/arnavshah/storeplan-api/pkg/logger"
	"github.com/arnavshah/storeplan-api/pkg/lookup"
	"github.com/arnavshah/storeplan-api/pkg/metrics"
	"github.com/arnavshah/storeplan-api/pkg/models"
	"github.com/arnavshah/storeplan-api/pkg/scheduler"
	"github.com/arnavshah/storeplan-api/pkg/tabular"
	"github.com/arnavshah/storeplan-api/pkg/workbook"
)

// Tool names one of the four utilities
type Tool string

const (
	ToolConcat  Tool = "concat"
	ToolPJP     Tool = "pjp"
	ToolFloater Tool = "floater"
	ToolLookup  Tool = "lookup"
)

// Stats summarizes a finished run
type Stats struct {
	Files     int      `json:"files"`
	RowsIn    int      `json:"rows_in"`
	RowsOut   int      `json:"rows_out"`
	Fairness  *float64 `json:"fairness_score,omitempty"`
	Matched   int      `json:"matched,omitempty"`
	Unmatched int      `json:"unmatched,omitempty"`
}

// Artifact is the downloadable workbook a run produces
type Artifact struct {
	RunID    string           `json:"run_id"`
	Tool     Tool             `json:"tool"`
	FileName string           `json:"file_name"`
	Sheets   []workbook.Sheet `json:"sheets"`
	Stats    Stats            `json:"stats"`
}

// Write streams the artifact as an xlsx workbook
func (a *Artifact) Write(w io.Writer) error {
	return workbook.Write(w, a.Sheets...)
}

// Save writes the workbook into dir and returns its path
func (a *Artifact) Save(dir string) (string, error) {
	path := filepath.Join(dir, a.FileName)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := a.Write(f); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

// Service runs the tools
type Service struct {
	log     logger.Logger
	metrics metrics.Recorder
	picker  func() scheduler.Picker
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics sets the metrics recorder
func WithMetrics(m metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPicker sets the factory for per-run randomness
func WithPicker(f func() scheduler.Picker) Option {
	return func(s *Service) { s.picker = f }
}

// WithClock sets the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a tool service
func NewService(opts ...Option) *Service {
	s := &Service{
		log:     logger.NopLogger{},
		metrics: metrics.NopRecorder{},
		picker:  func() scheduler.Picker { return scheduler.NewRandomPicker() },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseMonth parses a "YYYY-MM" month selector
func ParseMonth(month string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(month))
	if err != nil {
		return 0, 0, err
	}
	return t.Year(), t.Month(), nil
}

// Concatenate merges every file into one sheet. Spreadsheet rows get a Store
// column holding the file's base name; PDFs contribute a single marker row.
func (s *Service) Concatenate(ctx context.Context, files []Source) (*Artifact, error) {
	return s.run(ToolConcat, func() (*Artifact, error) {
		if len(files) == 0 {
			return nil, missingInput(ToolConcat, "Please select at least one file!")
		}
		for _, f := range files {
			if f.Missing() {
				return nil, missingInput(ToolConcat, "Please select at least one file!")
			}
		}

		var sheetFiles []Source
		for _, f := range files {
			if tabular.DetectFormat(f.Name) != tabular.FormatPDF {
				sheetFiles = append(sheetFiles, f)
			}
		}
		read, err := s.readAll(ctx, ToolConcat, sheetFiles...)
		if err != nil {
			return nil, err
		}

		var out []models.Row
		rowsIn := 0
		next := 0
		for _, f := range files {
			store := tabular.BaseName(f.Name)
			if tabular.DetectFormat(f.Name) == tabular.FormatPDF {
				r := models.NewRow()
				r.SetText("Store", store)
				r.SetText("Content_Type", "PDF")
				r.SetText("File_Name", f.Name)
				r.SetText("Processed_At", s.now().Format("1/2/2006, 3:04:05 PM"))
				out = append(out, r)
				continue
			}
			for _, row := range read[next] {
				r := row.Clone()
				r.SetText("Store", store)
				out = append(out, r)
			}
			rowsIn += len(read[next])
			next++
		}

		return &Artifact{
			FileName: "concatenated_output.xlsx",
			Sheets:   []workbook.Sheet{{Name: "Concatenated Data", Rows: out}},
			Stats:    Stats{Files: len(files), RowsIn: rowsIn, RowsOut: len(out)},
		}, nil
	})
}

// GeneratePJP builds the monthly route plan from a route sheet
func (s *Service) GeneratePJP(ctx context.Context, file Source, month string) (*Artifact, error) {
	return s.run(ToolPJP, func() (*Artifact, error) {
		if file.Missing() || strings.TrimSpace(month) == "" {
			return nil, missingInput(ToolPJP, "Please select store data file and month!")
		}
		year, m, err := ParseMonth(month)
		if err != nil {
			return nil, missingInput(ToolPJP, fmt.Sprintf("invalid month %q, expected YYYY-MM", month))
		}

		read, err := s.readAll(ctx, ToolPJP, file)
		if err != nil {
			return nil, err
		}
		routes := extract.Routes(read[0])
		if len(routes) == 0 {
			return nil, parseFailure(ToolPJP, "%s: no route with at least one store found", file.Name)
		}

		entries := scheduler.GeneratePJP(routes, year, m, s.picker())
		rows := scheduler.PJPRows(entries)
		fairness := scheduler.FairnessScore(routes, entries)

		s.log.Debugw("pjp generated", map[string]any{
			"routes":   len(routes),
			"days":     len(entries),
			"fairness": fairness,
		})
		return &Artifact{
			FileName: fmt.Sprintf("PJP_%02d_%d.xlsx", int(m), year),
			Sheets:   []workbook.Sheet{{Name: "Monthly PJP", Rows: rows}},
			Stats:    Stats{Files: 1, RowsIn: len(read[0]), RowsOut: len(rows), Fairness: &fairness},
		}, nil
	})
}

// GenerateFloaters builds both floater schedules from a counter sheet
func (s *Service) GenerateFloaters(ctx context.Context, file Source, month string) (*Artifact, error) {
	return s.run(ToolFloater, func() (*Artifact, error) {
		if file.Missing() || strings.TrimSpace(month) == "" {
			return nil, missingInput(ToolFloater, "Please select data file and month!")
		}
		year, m, err := ParseMonth(month)
		if err != nil {
			return nil, missingInput(ToolFloater, fmt.Sprintf("invalid month %q, expected YYYY-MM", month))
		}

		read, err := s.readAll(ctx, ToolFloater, file)
		if err != nil {
			return nil, err
		}
		p := s.picker()
		counters := extract.Counters(read[0], p)
		schedules := scheduler.GenerateFloaters(counters, year, m, p)
		rows1 := scheduler.FloaterRows(schedules.Floater1)
		rows2 := scheduler.FloaterRows(schedules.Floater2)

		return &Artifact{
			FileName: fmt.Sprintf("Floater_Schedule_%02d_%d.xlsx", int(m), year),
			Sheets: []workbook.Sheet{
				{Name: "Floater 1", Rows: rows1},
				{Name: "Floater 2", Rows: rows2},
			},
			Stats: Stats{Files: 1, RowsIn: len(read[0]), RowsOut: len(rows1) + len(rows2)},
		}, nil
	})
}

// Lookup matches the SOH file against the catalogue by description
func (s *Service) Lookup(ctx context.Context, catalogue, soh Source) (*Artifact, error) {
	return s.run(ToolLookup, func() (*Artifact, error) {
		if catalogue.Missing() || soh.Missing() {
			return nil, missingInput(ToolLookup, "Please select both catalogue and SOH files!")
		}

		read, err := s.readAll(ctx, ToolLookup, catalogue, soh)
		if err != nil {
			return nil, err
		}
		results := lookup.Match(read[0], read[1])
		matched, unmatched := lookup.Stats(results)

		return &Artifact{
			FileName: "catalogue_lookup_results.xlsx",
			Sheets:   []workbook.Sheet{{Name: "Lookup Results", Rows: results}},
			Stats: Stats{
				Files:     2,
				RowsIn:    len(read[0]) + len(read[1]),
				RowsOut:   len(results),
				Matched:   matched,
				Unmatched: unmatched,
			},
		}, nil
	})
}

// readAll reads every source concurrently. All reads must succeed; the
// first failure aborts the run.
func (s *Service) readAll(ctx context.Context, tool Tool, sources ...Source) ([][]models.Row, error) {
	out := make([][]models.Row, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rc, err := src.Open()
			if err != nil {
				return classify(tool, fmt.Errorf("%s: %w", src.Name, err))
			}
			defer rc.Close()

			rows, err := tabular.Read(src.Name, rc)
			if err != nil {
				return classify(tool, err)
			}
			out[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, classify(tool, err)
	}
	return out, nil
}

func (s *Service) run(tool Tool, fn func() (*Artifact, error)) (*Artifact, error) {
	start := time.Now()
	runID := uuid.NewString()

	art, err := fn()
	s.metrics.ObserveRun(string(tool), KindOf(err), time.Since(start))
	if err != nil {
		s.log.Warnf("%s run %s failed (%s): %v", tool, runID, KindOf(err), err)
		return nil, err
	}

	art.RunID = runID
	art.Tool = tool
	s.metrics.AddRows(string(tool), "in", art.Stats.RowsIn)
	s.metrics.AddRows(string(tool), "out", art.Stats.RowsOut)
	s.log.Infof("%s run %s produced %s (%d rows) in %s", tool, runID, art.FileName, art.Stats.RowsOut, time.Since(start))
	return art, nil
}
