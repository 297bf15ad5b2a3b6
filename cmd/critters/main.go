// Command critters walks a directory tree, finds every *.html file,
// and rewrites each in place with its critical CSS inlined. Grounded
// on _examples/original_source/crates/cli/src/main.rs's Args/
// locate_html_files/rayon loop, reworked onto cobra flags and
// internal/walk's errgroup-backed worker pool.
package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("critters.cli")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
