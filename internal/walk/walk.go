// Package walk discovers HTML files under a directory tree and
// processes them concurrently, rewriting each file in place. Grounded
// on _examples/original_source/crates/cli/src/main.rs's
// locate_html_files (walkdir, following symlinks) and its
// files.par_iter().for_each (rayon) concurrent-processing loop,
// reworked onto golang.org/x/sync/errgroup's bounded worker pool.
package walk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/sync/errgroup"
)

func tracer() tracing.Trace {
	return tracing.Select("critters.walk")
}

// HTMLFiles returns every *.html file under root. It walks with
// filepath.WalkDir, which does not follow symbolic links: a linked
// directory is not descended into.
func HTMLFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A single unreadable entry shouldn't abort the whole walk;
			// locate_html_files silently drops errored entries via
			// filter_map(|e| e.ok()).
			tracer().Errorf("walking %q: %v", path, err)
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".html") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: listing html files under %q: %w", root, err)
	}
	return paths, nil
}

// ProcessFunc transforms one file's contents, returning the rewritten
// HTML to write back.
type ProcessFunc func(path string, contents string) (string, error)

// Run discovers every HTML file under root and runs process over each
// concurrently, bounded by concurrency workers, writing each result
// back to its original path. A single file's processing error is
// logged and skipped rather than aborting the run, mirroring the
// CLI's per-file warn!+return inside its rayon closure.
func Run(ctx context.Context, root string, concurrency int, process ProcessFunc) error {
	files, err := HTMLFiles(root)
	if err != nil {
		return err
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, path := range files {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				tracer().Errorf("reading %q: %v", path, err)
				return nil
			}
			out, err := process(path, string(data))
			if err != nil {
				tracer().Errorf("processing %q: %v", path, err)
				return nil
			}
			if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
				tracer().Errorf("writing %q: %v", path, err)
				return nil
			}
			return nil
		})
	}
	return g.Wait()
}
