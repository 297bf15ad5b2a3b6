package critters

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/essentialcss/critters/config"
)

func TestProcessInlinesInlineStyle(t *testing.T) {
	html := `<html><head><style>.critical{color:red}.unused{color:blue}</style></head>
<body><div class="critical"></div></body></html>`

	cfg := config.DefaultConfig()
	cfg.Compress = false
	out, err := Process(html, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, ".critical") {
		t.Errorf("expected .critical retained, got %q", out)
	}
	if strings.Contains(out, ".unused") {
		t.Errorf("expected .unused dropped, got %q", out)
	}
}

func TestProcessInlinesExternalStylesheet(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.css"), []byte(".critical{color:red}.unused{color:blue}"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	html := `<html><head><link rel="stylesheet" href="/main.css"></head>
<body><div class="critical"></div></body></html>`

	cfg := config.DefaultConfig()
	cfg.Path = dir
	out, err := Process(html, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<style>") {
		t.Errorf("expected an inlined <style> element, got %q", out)
	}
	if !strings.Contains(out, `rel="preload"`) {
		t.Errorf("expected the original link turned into a preload, got %q", out)
	}
	if !strings.Contains(out, ".critical") {
		t.Errorf("expected .critical retained, got %q", out)
	}
	if strings.Contains(out, ".unused") {
		t.Errorf("expected .unused dropped, got %q", out)
	}
}

func TestProcessAdditionalStylesheets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "extra.css"), []byte(".extra{color:green}"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	html := `<html><head></head><body><div class="extra"></div></body></html>`

	cfg := config.DefaultConfig()
	cfg.External = false
	cfg.Path = dir
	cfg.AdditionalStylesheets = []string{"/extra.css"}
	out, err := Process(html, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, ".extra") {
		t.Errorf("expected additional stylesheet's critical rule inlined, got %q", out)
	}
}

func TestProcessPruneSourceRemovesEmptyStyle(t *testing.T) {
	html := `<html><head><style>.unused{color:blue}</style></head><body><div></div></body></html>`

	cfg := config.DefaultConfig()
	cfg.PruneSource = true
	out, err := Process(html, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "<style>") {
		t.Errorf("expected empty <style> pruned, got %q", out)
	}
}

func TestProcessReduceInlineStylesFalseLeavesStyleUntouched(t *testing.T) {
	html := `<html><head><style>.unused{color:blue}</style></head><body><div></div></body></html>`

	cfg := config.DefaultConfig()
	cfg.ReduceInlineStyles = false
	out, err := Process(html, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, ".unused") {
		t.Errorf("expected inline style left untouched when ReduceInlineStyles is false, got %q", out)
	}
}

func TestProcessAllowRulesForcesRetention(t *testing.T) {
	html := `<html><head><style>.force{color:red}</style></head><body><div></div></body></html>`

	cfg := config.DefaultConfig()
	cfg.AllowRules = []config.Matcher{config.NewLiteralMatcher(".force")}
	out, err := Process(html, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, ".force") {
		t.Errorf("expected allow-listed selector retained even though unmatched, got %q", out)
	}
}

func TestProcessExcludeExternalLeavesLinkAlone(t *testing.T) {
	dir := t.TempDir()
	html := `<html><head><link rel="stylesheet" href="/skip.css"></head><body></body></html>`

	cfg := config.DefaultConfig()
	cfg.Path = dir
	cfg.ExcludeExternal = []config.Matcher{config.NewLiteralMatcher("/skip.css")}
	out, err := Process(html, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `rel="stylesheet"`) || strings.Contains(out, `rel="preload"`) {
		t.Errorf("expected excluded link left completely untouched, got %q", out)
	}
}

func TestProcessMatchesElementAppendedByEarlierRewrite(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.css"), []byte(`link[rel="stylesheet"]{color:red}`), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	html := `<html><head><link id="main" rel="stylesheet" href="/main.css"></head><body></body></html>`

	cfg := config.DefaultConfig()
	cfg.Path = dir
	cfg.Compress = false
	out, err := Process(html, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// BodyPreload clones the original link into <body> and only then
	// changes the original's rel to "preload", so the clone is the sole
	// element still matching rel="stylesheet" by the time extraction
	// runs. The extractor's container walk must see it even though this
	// same Process call is what appended it.
	if !strings.Contains(out, "color: red") {
		t.Errorf("expected selector matching the body-appended link clone to be retained, got %q", out)
	}
}

func TestProcessDoesNotMangleEntities(t *testing.T) {
	html := `<html><head><style>.x{color:red}</style></head><body><p class="x">A &amp; B</p></body></html>`

	out, err := Process(html, config.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "A &amp; B") {
		t.Errorf("expected entities preserved on round-trip, got %q", out)
	}
}
