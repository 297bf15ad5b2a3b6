package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/essentialcss/critters"
	"github.com/essentialcss/critters/config"
	"github.com/essentialcss/critters/dom"
	"github.com/essentialcss/critters/dom/domdbg"
	"github.com/essentialcss/critters/internal/walk"
	"github.com/spf13/cobra"
)

// --- Flag variables, mirroring CrittersOptions' field-per-flag shape ---
var (
	flagPublicPath          string
	flagExternal            bool
	flagInlineThreshold     int
	flagMinimumExternalSize int
	flagPruneSource         bool
	flagMergeStylesheets    bool
	flagAdditionalSheets    []string
	flagReduceInlineStyles  bool
	flagPreload             string
	flagNoscriptFallback    bool
	flagInlineFonts         bool
	flagPreloadFonts        bool
	flagKeyframes           string
	flagCompress            bool
	flagConcurrency         int
	flagDump                bool
)

var rootCmd = &cobra.Command{
	Use:   "critters <path>",
	Short: "Inline critical CSS into every HTML file under a directory",
	Long: `critters walks the given path for *.html files and, for each one,
inlines the CSS rules its elements actually use while deferring the
rest of each stylesheet behind a preload strategy.`,
	Args: cobra.ExactArgs(1),
	RunE: runCritters,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&flagPublicPath, "public-path", "", "prefix stripped from a stylesheet href before resolving it under path")
	flags.BoolVar(&flagExternal, "external", true, "inline styles from external stylesheets")
	flags.IntVar(&flagInlineThreshold, "inline-threshold", 0, "size threshold in bytes (accepted but currently has no effect)")
	flags.IntVar(&flagMinimumExternalSize, "minimum-external-size", 0, "minimum external stylesheet size in bytes (accepted but currently has no effect)")
	flags.BoolVar(&flagPruneSource, "prune-source", false, "remove a <style> element entirely once it retains no critical rules")
	flags.BoolVar(&flagMergeStylesheets, "merge-stylesheets", true, "merge every inlined <style> block into one element")
	flags.StringSliceVar(&flagAdditionalSheets, "additional-stylesheets", nil, "extra CSS files (relative to path) considered alongside each document's own stylesheets")
	flags.BoolVar(&flagReduceInlineStyles, "reduce-inline-styles", true, "also extract critical rules from pre-existing inline <style> elements")
	flags.StringVar(&flagPreload, "preload", "body-preload", "preload strategy for deferred stylesheets: body-preload, body, media, swap, swap-high, none")
	flags.BoolVar(&flagNoscriptFallback, "noscript-fallback", true, "add a <noscript> fallback next to JS-based preload strategies")
	flags.BoolVar(&flagInlineFonts, "inline-fonts", false, "keep @font-face rules referenced by retained declarations")
	flags.BoolVar(&flagPreloadFonts, "preload-fonts", true, "emit a preload <link> for every @font-face src encountered")
	flags.StringVar(&flagKeyframes, "keyframes", "critical", "which @keyframes rules to retain: critical, all, none")
	flags.BoolVar(&flagCompress, "compress", true, "minify the serialized critical CSS")
	flags.IntVar(&flagConcurrency, "concurrency", runtime.NumCPU(), "number of files processed concurrently")
	flags.BoolVar(&flagDump, "dump", false, "print each document's DOM tree to stderr before processing it")
}

func runCritters(cmd *cobra.Command, args []string) error {
	path := args[0]

	keyframes, err := parseKeyframesStrategy(flagKeyframes)
	if err != nil {
		return err
	}
	preload, err := parsePreloadStrategy(flagPreload)
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.Path = path
	cfg.PublicPath = flagPublicPath
	cfg.External = flagExternal
	cfg.InlineThreshold = flagInlineThreshold
	cfg.MinimumExternalSize = flagMinimumExternalSize
	cfg.PruneSource = flagPruneSource
	cfg.MergeStylesheets = flagMergeStylesheets
	cfg.AdditionalStylesheets = flagAdditionalSheets
	cfg.ReduceInlineStyles = flagReduceInlineStyles
	cfg.PreloadStrategy = preload
	cfg.NoscriptFallback = flagNoscriptFallback
	cfg.InlineFonts = flagInlineFonts
	cfg.PreloadFonts = flagPreloadFonts
	cfg.Keyframes = keyframes
	cfg.Compress = flagCompress

	start := time.Now()
	var processed atomic.Int64
	err = walk.Run(context.Background(), path, flagConcurrency, func(file, contents string) (string, error) {
		if flagDump {
			dumpDocument(file, contents)
		}
		out, err := critters.Process(contents, cfg)
		if err != nil {
			return "", err
		}
		processed.Add(1)
		tracer().Infof("processed %s", file)
		return out, nil
	})
	if err != nil {
		return fmt.Errorf("critters: %w", err)
	}
	fmt.Printf("Processed %d files in %s.\n", processed.Load(), time.Since(start).Round(time.Millisecond))
	return nil
}

// dumpDocument prints file's DOM tree to stderr, a debugging aid for
// inspecting what the extractor's container walk will actually see.
// A parse failure here is non-fatal: Process re-parses the same
// contents right after and reports any real error itself.
func dumpDocument(file, contents string) {
	doc, err := dom.Parse(contents)
	if err != nil {
		return
	}
	fmt.Fprintf(os.Stderr, "--- %s ---\n%s\n", file, domdbg.Dump(doc.Root()))
}

func parsePreloadStrategy(s string) (config.PreloadStrategy, error) {
	switch s {
	case "body-preload":
		return config.BodyPreload, nil
	case "body":
		return config.Body, nil
	case "media":
		return config.Media, nil
	case "swap":
		return config.Swap, nil
	case "swap-high":
		return config.SwapHigh, nil
	case "none":
		return config.None, nil
	default:
		return 0, fmt.Errorf("critters: unknown --preload value %q", s)
	}
}

func parseKeyframesStrategy(s string) (config.KeyframesStrategy, error) {
	switch s {
	case "critical":
		return config.KeyframesCritical, nil
	case "all":
		return config.KeyframesAll, nil
	case "none":
		return config.KeyframesNone, nil
	default:
		return 0, fmt.Errorf("critters: unknown --keyframes value %q", s)
	}
}
