package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxFileSize caps a single uploaded document.
const DefaultMaxFileSize int64 = 50 << 20

// ErrIdentifierRequired is returned by Lookup when the id has no digits.
var ErrIdentifierRequired = errors.New("identifier is required")

// Document is an uploaded roster file.
type Document struct {
	Name string
	Data []byte
}

// Ingestion is the outcome of reading one document.
type Ingestion struct {
	Name    string         `json:"name"`
	Source  string         `json:"source"`
	Pages   []PageStat     `json:"pages,omitempty"`
	Mapping ColumnMapping  `json:"mapping"`
	Stats   NormalizeStats `json:"stats"`
	Set     *RecordSet     `json:"-"`
}

// Comparison is a finished old/new comparison.
type Comparison struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Old       *Ingestion    `json:"old"`
	New       *Ingestion    `json:"new"`
	Report    *DiffReport   `json:"report"`
}

// RunSummary is what the run log keeps about a comparison. Record sets are
// never stored.
type RunSummary struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"startedAt"`
	DurationMs   int64     `json:"durationMs"`
	OldName      string    `json:"oldName"`
	NewName      string    `json:"newName"`
	TotalOld     int       `json:"totalOld"`
	TotalNew     int       `json:"totalNew"`
	TotalEntries int       `json:"totalEntries"`
	TotalExits   int       `json:"totalExits"`
	TotalChanged int       `json:"totalChanged"`
	ClientIP     string    `json:"clientIp,omitempty"`
	UserAgent    string    `json:"userAgent,omitempty"`
}

// RunRecorder persists run summaries.
type RunRecorder interface {
	Append(ctx context.Context, run RunSummary) error
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Extract       ExtractOptions
	Normalize     NormalizerOptions
	MaxFileSize   int64
	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration // per comparison; 0 disables
}

// Service ties extraction, normalization and diffing together for the web
// server and the CLI.
type Service struct {
	cfg        ServiceConfig
	resolver   *ColumnResolver
	normalizer *Normalizer
	limiter    *ComparisonLimiter
	runs       RunRecorder
	logger     *slog.Logger
}

// NewService creates a Service. runs may be nil, in which case comparisons
// are not logged.
func NewService(cfg ServiceConfig, runs RunRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	return &Service{
		cfg:        cfg,
		resolver:   NewColumnResolver(logger),
		normalizer: NewNormalizer(cfg.Normalize, logger),
		limiter:    NewComparisonLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		runs:       runs,
		logger:     logger,
	}
}

// Limiter exposes the comparison limiter for health reporting and shutdown.
func (s *Service) Limiter() *ComparisonLimiter {
	return s.limiter
}

// Sources lists the registered document formats.
func (s *Service) Sources() []SourceInfo {
	defs := All()
	infos := make([]SourceInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// ExtractAndNormalize turns one document into a record set.
func (s *Service) ExtractAndNormalize(ctx context.Context, doc Document) (*RecordSet, error) {
	in, err := s.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}
	return in.Set, nil
}

// Extract is ExtractAndNormalize with the intermediate details kept.
func (s *Service) Extract(ctx context.Context, doc Document) (*Ingestion, error) {
	var in *Ingestion
	err := s.run(ctx, func(ctx context.Context) error {
		var err error
		in, err = s.ingest(ctx, doc)
		return err
	})
	return in, err
}

// Compare ingests both documents concurrently, validates the resulting sets
// and diffs them. The run summary is appended to the run log.
func (s *Service) Compare(ctx context.Context, oldDoc, newDoc Document) (*Comparison, error) {
	var cmp *Comparison
	err := s.run(ctx, func(ctx context.Context) error {
		start := time.Now()
		oldIn, newIn, err := s.ingestPair(ctx, oldDoc, newDoc)
		if err != nil {
			return err
		}
		cmp, err = s.compare(ctx, start, oldIn, newIn)
		return err
	})
	return cmp, err
}

// CompareSets diffs two record sets that did not come through ingestion,
// such as records saved by an earlier extract. Nothing has normalized them,
// so a set with a missing or non-numeric identifier is rejected with a
// *ValidationError before the diff.
func (s *Service) CompareSets(ctx context.Context, oldName string, oldSet *RecordSet, newName string, newSet *RecordSet) (*Comparison, error) {
	var cmp *Comparison
	err := s.run(ctx, func(ctx context.Context) error {
		var err error
		cmp, err = s.compare(ctx, time.Now(), setIngestion(oldName, oldSet), setIngestion(newName, newSet))
		return err
	})
	return cmp, err
}

func setIngestion(name string, set *RecordSet) *Ingestion {
	n := set.Len()
	return &Ingestion{
		Name:   name,
		Source: "records",
		Stats:  NormalizeStats{Input: n, Output: n},
		Set:    set,
	}
}

func (s *Service) compare(ctx context.Context, start time.Time, oldIn, newIn *Ingestion) (*Comparison, error) {
	if err := ValidateRecordSet("old", oldIn.Set); err != nil {
		return nil, err
	}
	if err := ValidateRecordSet("new", newIn.Set); err != nil {
		return nil, err
	}

	report := Diff(oldIn.Set, newIn.Set)
	cmp := &Comparison{
		ID:        uuid.NewString(),
		StartedAt: start,
		Duration:  time.Since(start),
		Old:       oldIn,
		New:       newIn,
		Report:    report,
	}

	s.logger.Info("comparison finished",
		"comparison_id", cmp.ID,
		"old", oldIn.Name,
		"new", newIn.Name,
		"entries", report.TotalEntries,
		"exits", report.TotalExits,
		"changed", report.TotalChanged,
		"duration", cmp.Duration,
	)
	s.recordRun(ctx, cmp)
	return cmp, nil
}

// Lookup reports what happened to one person between the two documents.
func (s *Service) Lookup(ctx context.Context, oldDoc, newDoc Document, id string) (*LookupResult, error) {
	if NormalizeIdentifier(id) == "" {
		return nil, ErrIdentifierRequired
	}

	var res LookupResult
	err := s.run(ctx, func(ctx context.Context) error {
		oldIn, newIn, err := s.ingestPair(ctx, oldDoc, newDoc)
		if err != nil {
			return err
		}
		res = LookupIdentifier(id, oldIn.Set, newIn.Set)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// run applies the per-comparison timeout and holds a limiter slot around fn.
func (s *Service) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	return s.limiter.Do(ctx, fn)
}

func (s *Service) ingestPair(ctx context.Context, oldDoc, newDoc Document) (oldIn, newIn *Ingestion, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		in, err := s.ingest(gctx, oldDoc)
		if err != nil {
			return fmt.Errorf("old list: %w", err)
		}
		oldIn = in
		return nil
	})
	g.Go(func() error {
		in, err := s.ingest(gctx, newDoc)
		if err != nil {
			return fmt.Errorf("new list: %w", err)
		}
		newIn = in
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return oldIn, newIn, nil
}

func (s *Service) ingest(ctx context.Context, doc Document) (*Ingestion, error) {
	if len(doc.Data) == 0 {
		return nil, fmt.Errorf("%s: empty file", doc.Name)
	}
	if int64(len(doc.Data)) > s.cfg.MaxFileSize {
		return nil, fmt.Errorf("%s: file too large (%d bytes, limit %d)", doc.Name, len(doc.Data), s.cfg.MaxFileSize)
	}

	def, err := Detect(doc.Name, doc.Data)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("document", doc.Name, "source", def.Info.Key)
	table, err := def.New(s.cfg.Extract, logger).Extract(ctx, doc.Data)
	if err != nil {
		var ee *ExtractionError
		if errors.As(err, &ee) && ee.Source == "" {
			ee.Source = doc.Name
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mapping, err := s.resolver.Resolve(table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Name, err)
	}

	set, stats, err := s.normalizer.NormalizeSet(mapping.Records(table))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Name, err)
	}

	logger.Debug("document ingested", "records", set.Len(), "dropped", stats.Dropped())
	return &Ingestion{
		Name:    doc.Name,
		Source:  def.Info.Key,
		Pages:   table.Pages,
		Mapping: mapping,
		Stats:   stats,
		Set:     set,
	}, nil
}

func (s *Service) recordRun(ctx context.Context, cmp *Comparison) {
	if s.runs == nil {
		return
	}
	run := RunSummary{
		ID:           cmp.ID,
		StartedAt:    cmp.StartedAt,
		DurationMs:   cmp.Duration.Milliseconds(),
		OldName:      cmp.Old.Name,
		NewName:      cmp.New.Name,
		TotalOld:     cmp.Report.TotalOld,
		TotalNew:     cmp.Report.TotalNew,
		TotalEntries: cmp.Report.TotalEntries,
		TotalExits:   cmp.Report.TotalExits,
		TotalChanged: cmp.Report.TotalChanged,
		ClientIP:     GetIPAddressFromContext(ctx),
		UserAgent:    GetUserAgentFromContext(ctx),
	}
	// A lost log entry must not fail the comparison.
	if err := s.runs.Append(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("failed to record comparison run", "comparison_id", cmp.ID, "error", err)
	}
}
