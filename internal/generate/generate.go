// Package generate drives the per-version conversion: flattening the export,
// rendering the root page synchronously, then fanning the remaining pages out
// over a worker pool. Page failures are isolated and reported, never fatal.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/typdocs/internal/docjson"
	"git.home.luguber.info/inful/typdocs/internal/lint"
	"git.home.luguber.info/inful/typdocs/internal/logfields"
	"git.home.luguber.info/inful/typdocs/internal/mdx"
	"git.home.luguber.info/inful/typdocs/internal/metrics"
)

// Options controls one conversion run.
type Options struct {
	Version  string
	IsLatest bool
	Workers  int
	// Sequential disables the worker pool; output must be byte-identical
	// either way.
	Sequential bool
	Lint       bool
	Recorder   metrics.Recorder
}

// PageFailure records one page that could not be rendered or written.
type PageFailure struct {
	Title   string
	Message string
}

// Report summarizes a conversion run.
type Report struct {
	BuildID  string
	Pages    int
	Failures []PageFailure
	Findings []lint.Finding
}

// Run converts a parsed export into the output directory. The root page and
// the top-level navigation descriptor are written first; all other pages are
// independent tasks.
func Run(ctx context.Context, trees []docjson.Page, outputDir string, opts Options) (*Report, error) {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	records := mdx.FlattenForest(trees)
	slog.Info("Found pages", logfields.Count(len(records)), logfields.Version(opts.Version))

	report := &Report{BuildID: uuid.NewString(), Pages: len(records)}

	rootIdx := -1
	for i, rec := range records {
		if rec.IsRoot() {
			rootIdx = i
			break
		}
	}

	if rootIdx >= 0 {
		if err := writeRoot(records[rootIdx], trees, outputDir, opts); err != nil {
			return report, err
		}
		records = append(records[:rootIdx], records[rootIdx+1:]...)
	}

	var mu sync.Mutex
	process := func(rec mdx.PageRecord) {
		failure, findings := writePage(rec, outputDir, opts)
		mu.Lock()
		if failure != nil {
			report.Failures = append(report.Failures, *failure)
			slog.Error("Failed to process page", logfields.Page(failure.Title), slog.String("message", failure.Message))
		}
		report.Findings = append(report.Findings, findings...)
		mu.Unlock()
		if failure != nil {
			opts.Recorder.IncPageFailures(opts.Version)
		} else {
			opts.Recorder.IncPagesRendered(opts.Version)
		}
	}

	if opts.Sequential {
		for _, rec := range records {
			process(rec)
		}
	} else {
		tasks := make(chan mdx.PageRecord)
		var wg sync.WaitGroup
		wg.Add(opts.Workers)
		for range opts.Workers {
			go func() {
				defer wg.Done()
				for rec := range tasks {
					select {
					case <-ctx.Done():
						return
					default:
					}
					process(rec)
				}
			}()
		}
	feed:
		for _, rec := range records {
			// The send must abort on cancellation: workers stop receiving
			// once ctx is done, and an unguarded send would block forever.
			select {
			case tasks <- rec:
			case <-ctx.Done():
				break feed
			}
		}
		close(tasks)
		wg.Wait()
	}

	if len(report.Failures) > 0 {
		slog.Warn("Completed MDX generation with failures",
			logfields.Count(len(records)+1),
			slog.Int("failures", len(report.Failures)))
	} else {
		slog.Info("Completed MDX generation", logfields.Count(len(records)+1))
	}
	return report, ctx.Err()
}

// writeRoot writes the top-level index and the synthesized root navigation
// descriptor. Its page ordering comes from the top-level trees after the
// first, matching the published navigation.
func writeRoot(root mdx.PageRecord, trees []docjson.Page, outputDir string, opts Options) error {
	title := opts.Version
	if opts.IsLatest {
		title = "latest"
	}

	var pages []string
	for _, tree := range trees[1:] {
		pages = append(pages, mdx.LastRouteSegment(tree.Route))
	}
	meta := mdx.Meta{
		Title:       title,
		Description: "Typst Docs for version: " + opts.Version,
		Pages:       pages,
		Root:        true,
	}
	if err := os.WriteFile(filepath.Join(outputDir, "meta.json"), []byte(meta.Serialize()), 0o644); err != nil {
		return fmt.Errorf("write root meta: %w", err)
	}

	content := mdx.ConvertPage(root)
	if err := os.WriteFile(filepath.Join(outputDir, "index.mdx"), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write root index: %w", err)
	}
	return nil
}

// writePage assembles and persists one page. Panics and errors are converted
// into a PageFailure so sibling tasks keep running.
func writePage(rec mdx.PageRecord, outputDir string, opts Options) (failure *PageFailure, findings []lint.Finding) {
	defer func() {
		if r := recover(); r != nil {
			failure = &PageFailure{Title: rec.Title, Message: fmt.Sprintf("panic: %v", r)}
		}
	}()

	doc := mdx.Assemble(rec)

	target := filepath.Join(outputDir, filepath.FromSlash(doc.Path))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return &PageFailure{Title: rec.Title, Message: err.Error()}, nil
	}
	if err := os.WriteFile(target, []byte(doc.Content), 0o644); err != nil {
		return &PageFailure{Title: rec.Title, Message: err.Error()}, nil
	}

	if doc.Meta != nil {
		metaTarget := filepath.Join(outputDir, filepath.FromSlash(doc.MetaPath))
		if err := os.WriteFile(metaTarget, []byte(doc.Meta.Serialize()), 0o644); err != nil {
			return &PageFailure{Title: rec.Title, Message: err.Error()}, nil
		}
	}

	if opts.Lint {
		findings = lint.CheckBody(rec.Route, []byte(doc.Content))
	}
	return nil, findings
}
