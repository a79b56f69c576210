package scanner

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"gasguard/grammar"
	"gasguard/internal/errors"
	"gasguard/internal/ir"
	"gasguard/internal/parser"
	"gasguard/internal/report"
	"gasguard/internal/rules"
	"gasguard/internal/semantic"
)

var log = commonlog.GetLogger("gasguard.scanner")

// Scanner dispatches files to the builder and engine of their format. A
// Scanner holds no per-scan state and may be used from several goroutines.
type Scanner struct {
	engines map[ir.Format]*rules.Engine
	workers int
	exclude []string
}

type Option func(*Scanner)

// WithWorkers bounds the number of files scanned concurrently by
// ScanDirectory. Values below one select one worker.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		s.workers = max(n, 1)
	}
}

// WithExclude sets the globs Walk skips.
func WithExclude(globs ...string) Option {
	return func(s *Scanner) {
		s.exclude = append(s.exclude, globs...)
	}
}

// WithEngine replaces the engine used for a format.
func WithEngine(format ir.Format, engine *rules.Engine) Option {
	return func(s *Scanner) {
		s.engines[format] = engine
	}
}

func New(opts ...Option) *Scanner {
	s := &Scanner{
		engines: map[ir.Format]*rules.Engine{
			ir.FormatSoroban: rules.NewSorobanEngine(),
			ir.FormatVyper:   rules.NewVyperEngine(),
		},
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engines returns the configured engines, Soroban first.
func (s *Scanner) Engines() []*rules.Engine {
	return []*rules.Engine{s.engines[ir.FormatSoroban], s.engines[ir.FormatVyper]}
}

// Recovered is a contract with everything derived from it before rules run.
type Recovered struct {
	Contract    *ir.Contract
	Usage       semantic.Usage
	Diagnostics []errors.Positioned
}

// Recover builds the contract for source in the format detected from path.
// Soroban sources are additionally parsed with the Rust grammar and their
// usage analyzed.
func (s *Scanner) Recover(ctx context.Context, path, source string) (*Recovered, error) {
	switch FormatFromPath(path) {
	case ir.FormatSoroban:
		parsed, err := parser.ParseSoroban(path, source)
		if err != nil {
			return nil, err
		}
		tree, err := grammar.ParseRust(ctx, path, []byte(source))
		if err != nil {
			return nil, err
		}
		return &Recovered{
			Contract:    parsed.Contract,
			Usage:       semantic.AnalyzeUsage(tree.RootNode(), []byte(source)),
			Diagnostics: parsed.Diagnostics,
		}, nil

	case ir.FormatVyper:
		parsed, err := parser.ParseVyper(path, source)
		if err != nil {
			return nil, err
		}
		return &Recovered{Contract: parsed.Contract, Diagnostics: parsed.Diagnostics}, nil

	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

// ScanSource scans in-memory source as if read from path. Unsupported
// extensions produce an empty, successful result. On failure the returned
// result carries the error as well.
func (s *Scanner) ScanSource(ctx context.Context, path, source string) (report.ScanResult, error) {
	start := time.Now()
	format := FormatFromPath(path)
	result := report.ScanResult{
		Source:     path,
		Format:     format,
		Violations: []rules.Violation{},
		ScanTime:   start.UTC(),
		Text:       source,
	}

	if format == ir.FormatUnknown {
		return result, nil
	}

	engine, ok := s.engines[format]
	if !ok {
		result.Err = fmt.Errorf("no rule engine configured for %s", format)
		return result, result.Err
	}

	recovered, err := s.Recover(ctx, path, source)
	if err != nil {
		result.Err = err
		result.Elapsed = time.Since(start)
		return result, err
	}

	result.Diagnostics = recovered.Diagnostics
	result.Violations = engine.Analyze(recovered.Contract, recovered.Usage)
	result.Elapsed = time.Since(start)
	log.Debugf("scanned %s in %s: %d violation(s)", path, result.Elapsed, len(result.Violations))
	return result, nil
}

// ScanFile reads and scans one file. An unreadable file yields an IOError.
func (s *Scanner) ScanFile(ctx context.Context, path string) (report.ScanResult, error) {
	if !Supported(path) {
		return s.ScanSource(ctx, path, "")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		ioErr := &errors.IOError{Path: path, Err: err}
		return report.ScanResult{
			Source:     path,
			Format:     FormatFromPath(path),
			Violations: []rules.Violation{},
			ScanTime:   time.Now().UTC(),
			Err:        ioErr,
		}, ioErr
	}
	return s.ScanSource(ctx, path, string(data))
}

// ScanDirectory scans every supported file under root with a bounded pool
// of workers. Results keep walk order regardless of completion order. A file
// that fails is recorded as a failed result and the remaining files are
// still scanned; Rust files that declare no contract are left out.
func (s *Scanner) ScanDirectory(ctx context.Context, root string) (*report.Report, error) {
	paths, err := Walk(root, s.exclude)
	if err != nil {
		return nil, &errors.IOError{Path: root, Err: err}
	}
	log.Infof("scanning %d file(s) under %s with %d worker(s)", len(paths), root, s.workers)

	results := make([]*report.ScanResult, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			result, err := s.ScanFile(gCtx, path)
			if err != nil {
				if stderrors.Is(err, parser.ErrNoContract) {
					log.Noticef("skipping %s: %s", path, err.Error())
					return nil
				}
				log.Warningf("failed to scan %s: %s", path, err.Error())
			}
			results[i] = &result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := report.New()
	for _, result := range results {
		if result != nil {
			r.Merge(*result)
		}
	}
	return r, nil
}

// Scan scans a single file or a directory tree into a report. For a single
// file, scan failures are recorded in the report rather than returned.
func (s *Scanner) Scan(ctx context.Context, path string) (*report.Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &errors.IOError{Path: path, Err: err}
	}
	if info.IsDir() {
		return s.ScanDirectory(ctx, path)
	}

	result, err := s.ScanFile(ctx, path)
	var ioErr *errors.IOError
	if stderrors.As(err, &ioErr) {
		return nil, err
	}
	return report.New().Merge(result), nil
}
