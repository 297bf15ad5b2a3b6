// Package critters is the orchestration entry point: given an HTML
// document and a config.Config, it parses the document, extracts the
// critical CSS of every inline/external/additional stylesheet, inlines
// it in place, and defers the rest per the configured preload
// strategy. Grounded on
// _examples/original_source/crates/critters-rs/src/lib.rs's
// Critters::process, which collects every stylesheet (inline <style>
// elements, external <link> stylesheets turned into <style> elements,
// and additional stylesheets injected into <head>) into one list and
// then runs the same extraction pass uniformly over all of them.
package critters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/essentialcss/critters/asset"
	"github.com/essentialcss/critters/config"
	"github.com/essentialcss/critters/cssparse"
	"github.com/essentialcss/critters/dom"
	"github.com/essentialcss/critters/extractor"
	"github.com/essentialcss/critters/rewrite"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("critters")
}

// Process parses htmlSrc, extracts and inlines the critical CSS of its
// stylesheets per cfg, and returns the rewritten document as HTML text.
func Process(htmlSrc string, cfg config.Config) (string, error) {
	doc, err := dom.Parse(htmlSrc)
	if err != nil {
		return "", fmt.Errorf("critters: parsing document: %w", err)
	}
	container := doc.Element("body")

	var styles []*dom.Node

	if cfg.ReduceInlineStyles {
		inline, err := doc.Root().Select("style")
		if err != nil {
			return "", fmt.Errorf("critters: selecting inline styles: %w", err)
		}
		styles = append(styles, inline...)
	}

	if cfg.External {
		links, err := doc.Root().Select(`link[rel="stylesheet"]`)
		if err != nil {
			return "", fmt.Errorf("critters: selecting stylesheet links: %w", err)
		}
		for _, link := range links {
			href, ok := link.Attrs().Get("href")
			if !ok || !strings.HasSuffix(href, ".css") {
				continue
			}
			if matchesAny(cfg.ExcludeExternal, href) {
				continue
			}
			css, err := asset.Read(cfg.Path, cfg.PublicPath, href)
			if err != nil {
				tracer().Errorf("loading external stylesheet %q: %v", href, err)
				continue
			}
			style, err := rewrite.InlineExternalStylesheet(doc, link, css, cfg.PreloadStrategy, cfg.NoscriptFallback)
			if err != nil {
				tracer().Errorf("inlining external stylesheet %q: %v", href, err)
				continue
			}
			styles = append(styles, style)
		}
	}

	for _, href := range dedupSorted(cfg.AdditionalStylesheets) {
		css, err := asset.Read(cfg.Path, cfg.PublicPath, href)
		if err != nil {
			tracer().Errorf("loading additional stylesheet %q: %v", href, err)
			continue
		}
		style, err := rewrite.InjectStyle(doc, css)
		if err != nil {
			return "", fmt.Errorf("critters: injecting additional stylesheet %q: %w", href, err)
		}
		styles = append(styles, style)
	}

	for i, style := range styles {
		css := styleText(style)
		if strings.TrimSpace(css) == "" {
			continue
		}
		sheet, err := cssparse.Parse(css, i)
		if err != nil {
			tracer().Errorf("parsing stylesheet #%d: %v", i, err)
			continue
		}
		result := extractor.Extract(sheet, extractor.Options{
			Container:    container,
			Keyframes:    cfg.Keyframes,
			PreloadFonts: cfg.PreloadFonts,
			InlineFonts:  cfg.InlineFonts,
			AllowRules:   cfg.AllowRules,
		})
		for _, failed := range result.FailedSelectors {
			tracer().Errorf("stylesheet #%d: invalid selector: %s", i, failed)
		}
		for _, src := range result.FontFaceSrcs {
			if err := rewrite.PreloadFont(doc, src); err != nil {
				tracer().Errorf("preloading font %q: %v", src, err)
			}
		}
		critical := sheet.Serialize(cfg.Compress)
		rewrite.SetStyleContent(style, critical)
		if cfg.PruneSource {
			rewrite.RemoveIfEmpty(style, critical)
		}
	}

	if cfg.MergeStylesheets {
		mergeStyles(doc, styles)
	}

	out, err := doc.Serialize()
	if err != nil {
		return "", fmt.Errorf("critters: serializing document: %w", err)
	}
	return out, nil
}

func styleText(style *dom.Node) string {
	var b strings.Builder
	for _, c := range style.Children() {
		if c.Kind() == dom.TextNode {
			b.WriteString(c.Data())
		}
	}
	return b.String()
}

func matchesAny(matchers []config.Matcher, s string) bool {
	for _, m := range matchers {
		if m.Match(s) {
			return true
		}
	}
	return false
}

func dedupSorted(hrefs []string) []string {
	sorted := append([]string(nil), hrefs...)
	sort.Strings(sorted)
	out := sorted[:0]
	var prev string
	for i, h := range sorted {
		if i == 0 || h != prev {
			out = append(out, h)
		}
		prev = h
	}
	return out
}

// mergeStyles combines every non-empty <style> element Process produced
// this call into a single element at the end of <head>, preserving
// their relative order. The original implementation left this as a
// TODO; this is a fresh implementation of the documented behavior.
func mergeStyles(doc *dom.Document, styles []*dom.Node) {
	var nonEmpty []*dom.Node
	for _, s := range styles {
		if strings.TrimSpace(styleText(s)) != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) < 2 {
		return
	}
	head := doc.Element("head")
	if head == nil {
		return
	}
	var merged strings.Builder
	for i, s := range nonEmpty {
		if i > 0 {
			merged.WriteString("\n")
		}
		merged.WriteString(styleText(s))
		s.Remove()
	}
	target := dom.NewElement("style")
	target.AppendChild(dom.NewText(merged.String()))
	head.AppendChild(target)
}
