package rewrite

import (
	"strings"
	"testing"

	"github.com/essentialcss/critters/config"
	"github.com/essentialcss/critters/dom"
)

func parseDoc(t *testing.T, html string) *dom.Document {
	t.Helper()
	d, err := dom.Parse(html)
	if err != nil {
		t.Fatalf("parsing HTML: %v", err)
	}
	return d
}

func findLink(t *testing.T, d *dom.Document) *dom.Node {
	t.Helper()
	link, err := d.Root().SelectFirst(`link[rel="stylesheet"]`)
	if err != nil || link == nil {
		t.Fatalf("expected to find link, err=%v", err)
	}
	return link
}

func TestInjectStyle(t *testing.T) {
	d := parseDoc(t, `<html><head></head><body></body></html>`)
	style, err := InjectStyle(d, "body{color:red}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if style.TagName() != "style" {
		t.Errorf("expected a style element, got %q", style.TagName())
	}
	out, _ := d.Serialize()
	if !strings.Contains(out, "body{color:red}") {
		t.Errorf("expected injected CSS in output, got %q", out)
	}
}

func TestPreloadFont(t *testing.T) {
	d := parseDoc(t, `<html><head></head><body></body></html>`)
	if err := PreloadFont(d, "/fonts/a.woff2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	link, err := d.Root().SelectFirst(`link[rel="preload"]`)
	if err != nil || link == nil {
		t.Fatalf("expected preload link, err=%v", err)
	}
	if v, _ := link.Attrs().Get("as"); v != "font" {
		t.Errorf("expected as=font, got %q", v)
	}
}

func TestInlineExternalStylesheetBodyPreload(t *testing.T) {
	d := parseDoc(t, `<html><head><link id="main" rel="stylesheet" href="/main.css"></head><body></body></html>`)
	link := findLink(t, d)

	style, err := InlineExternalStylesheet(d, link, "body{color:red}", config.BodyPreload, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if style.TagName() != "style" {
		t.Errorf("expected inlined style element")
	}

	if rel, _ := link.Attrs().Get("rel"); rel != "preload" {
		t.Errorf("expected original link rel=preload, got %q", rel)
	}
	if as, _ := link.Attrs().Get("as"); as != "style" {
		t.Errorf("expected original link as=style, got %q", as)
	}

	bodyLink, err := d.Root().SelectFirst(`body link[rel="stylesheet"]`)
	if err != nil || bodyLink == nil {
		t.Fatalf("expected a clone link moved into body, err=%v", err)
	}
	if bodyLink.Attrs().Has("id") {
		t.Error("expected cloned body link to have its id stripped")
	}
}

func TestInlineExternalStylesheetBody(t *testing.T) {
	d := parseDoc(t, `<html><head><link rel="stylesheet" href="/main.css"></head><body></body></html>`)
	link := findLink(t, d)

	if _, err := InlineExternalStylesheet(d, link, "body{color:red}", config.Body, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	head := d.Element("head")
	if l, _ := head.SelectFirst(`link[rel="stylesheet"]`); l != nil {
		t.Errorf("expected link moved out of head")
	}
	bodyLink, err := d.Root().SelectFirst(`body link[rel="stylesheet"]`)
	if err != nil || bodyLink == nil {
		t.Fatalf("expected link moved into body, err=%v", err)
	}
}

func TestInlineExternalStylesheetMedia(t *testing.T) {
	d := parseDoc(t, `<html><head><link id="main" rel="stylesheet" href="/main.css" media="screen and (min-width: 480px)"></head><body></body></html>`)
	link := findLink(t, d)

	if _, err := InlineExternalStylesheet(d, link, "body{color:red}", config.Media, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if media, _ := link.Attrs().Get("media"); media != "print" {
		t.Errorf("expected media=print, got %q", media)
	}
	if onload, _ := link.Attrs().Get("onload"); onload != "this.media='screen and (min-width: 480px)'" {
		t.Errorf("expected remembered media in onload, got %q", onload)
	}
	noscript, err := d.Root().SelectFirst("noscript")
	if err != nil || noscript == nil {
		t.Fatalf("expected <noscript> fallback, err=%v", err)
	}
	fallback, err := noscript.SelectFirst("link")
	if err != nil || fallback == nil {
		t.Fatalf("expected a link inside the noscript fallback, err=%v", err)
	}
	if fallback.Attrs().Has("id") {
		t.Error("expected noscript fallback clone to have its id stripped")
	}
}

func TestInlineExternalStylesheetMediaRejectsInvalidMedia(t *testing.T) {
	d := parseDoc(t, `<html><head><link rel="stylesheet" href="/main.css" media="x');alert(1);//"></head><body></body></html>`)
	link := findLink(t, d)

	if _, err := InlineExternalStylesheet(d, link, "body{color:red}", config.Media, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	onload, _ := link.Attrs().Get("onload")
	if onload != "this.media='all'" {
		t.Errorf("expected invalid media to fall back to all, got %q", onload)
	}
}

func TestInlineExternalStylesheetMediaNoFallback(t *testing.T) {
	d := parseDoc(t, `<html><head><link rel="stylesheet" href="/main.css"></head><body></body></html>`)
	link := findLink(t, d)

	if _, err := InlineExternalStylesheet(d, link, "body{color:red}", config.Media, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if noscript, err := d.Root().SelectFirst("noscript"); err != nil || noscript != nil {
		t.Errorf("expected no <noscript> fallback when disabled, got %v", noscript)
	}
}

func TestInlineExternalStylesheetSwap(t *testing.T) {
	d := parseDoc(t, `<html><head><link id="main" rel="stylesheet" href="/main.css"></head><body></body></html>`)
	link := findLink(t, d)

	if _, err := InlineExternalStylesheet(d, link, "body{color:red}", config.Swap, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rel, _ := link.Attrs().Get("rel"); rel != "preload" {
		t.Errorf("expected rel=preload, got %q", rel)
	}
	if as, _ := link.Attrs().Get("as"); as != "style" {
		t.Errorf("expected as=style, got %q", as)
	}
	if onload, _ := link.Attrs().Get("onload"); onload != "this.rel='stylesheet'" {
		t.Errorf("expected onload=this.rel='stylesheet', got %q", onload)
	}
	if link.Attrs().Has("fetchpriority") {
		t.Error("expected no fetchpriority attribute for plain Swap")
	}

	noscript, err := d.Root().SelectFirst("noscript")
	if err != nil || noscript == nil {
		t.Fatalf("expected <noscript> fallback, err=%v", err)
	}
	fallback, err := noscript.SelectFirst("link")
	if err != nil || fallback == nil {
		t.Fatalf("expected a link inside the noscript fallback, err=%v", err)
	}
	if fallback.Attrs().Has("id") {
		t.Error("expected noscript fallback clone to have its id stripped")
	}
}

func TestInlineExternalStylesheetSwapHigh(t *testing.T) {
	d := parseDoc(t, `<html><head><link id="main" rel="stylesheet" href="/main.css"></head><body></body></html>`)
	link := findLink(t, d)

	if _, err := InlineExternalStylesheet(d, link, "body{color:red}", config.SwapHigh, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rel, _ := link.Attrs().Get("rel"); rel != "alternate stylesheet preload" {
		t.Errorf("expected rel=\"alternate stylesheet preload\", got %q", rel)
	}
	if as, _ := link.Attrs().Get("as"); as != "style" {
		t.Errorf("expected as=style, got %q", as)
	}
	if title, _ := link.Attrs().Get("title"); title != "styles" {
		t.Errorf("expected title=styles, got %q", title)
	}
	if onload, _ := link.Attrs().Get("onload"); onload != "this.title='';this.rel='stylesheet'" {
		t.Errorf("expected onload=this.title='';this.rel='stylesheet', got %q", onload)
	}

	noscript, err := d.Root().SelectFirst("noscript")
	if err != nil || noscript == nil {
		t.Fatalf("expected <noscript> fallback, err=%v", err)
	}
	fallback, err := noscript.SelectFirst("link")
	if err != nil || fallback == nil {
		t.Fatalf("expected a link inside the noscript fallback, err=%v", err)
	}
	if fallback.Attrs().Has("id") {
		t.Error("expected noscript fallback clone to have its id stripped")
	}
}

func TestInlineExternalStylesheetNoneLeavesLinkUntouched(t *testing.T) {
	d := parseDoc(t, `<html><head><link rel="stylesheet" href="/main.css"></head><body></body></html>`)
	link := findLink(t, d)

	if _, err := InlineExternalStylesheet(d, link, "body{color:red}", config.None, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rel, _ := link.Attrs().Get("rel"); rel != "stylesheet" {
		t.Errorf("expected link left untouched, rel=%q", rel)
	}
	if link.Attrs().Has("onload") {
		t.Error("expected no onload handler for None strategy")
	}
}

func TestRemoveIfEmpty(t *testing.T) {
	d := parseDoc(t, `<html><head><style>.x{color:red}</style></head><body></body></html>`)
	style, err := d.Root().SelectFirst("style")
	if err != nil || style == nil {
		t.Fatalf("expected style element, err=%v", err)
	}
	if !RemoveIfEmpty(style, "") {
		t.Error("expected RemoveIfEmpty to report removal")
	}
	if s, _ := d.Root().SelectFirst("style"); s != nil {
		t.Error("expected style element removed from document")
	}
}
