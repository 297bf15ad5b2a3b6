package cssparse

import (
	"strings"
	"testing"
)

func TestParseStyleRule(t *testing.T) {
	sheet, err := Parse(`.critical { color: red; } .unused { color: blue; }`, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheet.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(sheet.Rules))
	}
	if sheet.Rules[0].Kind != KindStyle {
		t.Errorf("expected KindStyle, got %v", sheet.Rules[0].Kind)
	}
	if got := sheet.Rules[0].Selectors; len(got) != 1 || got[0] != ".critical" {
		t.Errorf("expected selectors [.critical], got %v", got)
	}
	if sheet.Rules[0].ID != (RuleID{SourceIndex: 0, Index: 0}) {
		t.Errorf("unexpected rule id: %+v", sheet.Rules[0].ID)
	}
	if sheet.Rules[1].ID != (RuleID{SourceIndex: 0, Index: 1}) {
		t.Errorf("unexpected rule id: %+v", sheet.Rules[1].ID)
	}
}

func TestSplitSelectorListRespectsParens(t *testing.T) {
	sheet, err := Parse(`:not(.a, .b), h1 { color: red; }`, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{":not(.a, .b)", "h1"}
	got := sheet.Rules[0].Selectors
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("selector %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAtRuleClassification(t *testing.T) {
	sheet, err := Parse(`
		@font-face { font-family: "Foo"; src: url(foo.woff); }
		@keyframes spin { from { opacity: 0; } to { opacity: 1; } }
		@media (min-width: 100px) { h1 { color: red; } }
		@import url(other.css);
	`, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheet.Rules) != 4 {
		t.Fatalf("expected 4 rules, got %d", len(sheet.Rules))
	}
	kinds := []Kind{KindFontFace, KindKeyframes, KindMedia, KindOther}
	for i, want := range kinds {
		if sheet.Rules[i].Kind != want {
			t.Errorf("rule %d: got kind %v, want %v", i, sheet.Rules[i].Kind, want)
		}
	}
	if len(sheet.Rules[2].Nested) != 1 {
		t.Errorf("expected @media to carry 1 nested rule, got %d", len(sheet.Rules[2].Nested))
	}
}

func TestRetainAndSerialize(t *testing.T) {
	sheet, err := Parse(`.keep { color: red; } .drop { color: blue; }`, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sheet.Retain(func(r *Rule) bool {
		return len(r.Selectors) > 0 && r.Selectors[0] == ".keep"
	})
	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule after retain, got %d", len(sheet.Rules))
	}
	css := sheet.Serialize(false)
	if !strings.Contains(css, ".keep") {
		t.Errorf("expected serialized CSS to contain .keep, got %q", css)
	}
	if strings.Contains(css, ".drop") {
		t.Errorf("expected serialized CSS to not contain .drop, got %q", css)
	}
}

func TestSerializeCompressMinifies(t *testing.T) {
	sheet, err := Parse(`.a { color: red; margin: 0; } .b { color: blue; }`, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	compact := sheet.Serialize(true)
	if strings.Contains(compact, "\n") {
		t.Errorf("expected no newlines in compressed output, got %q", compact)
	}
	if !strings.Contains(compact, ".a{color:red;margin:0}") {
		t.Errorf("expected tightly-packed declarations, got %q", compact)
	}
	if !strings.Contains(compact, ".b{color:blue}") {
		t.Errorf("expected second rule retained without its trailing semicolon, got %q", compact)
	}
}

func TestSerializeCompressPreservesQuotedStrings(t *testing.T) {
	sheet, err := Parse(`.c::before { content: "a: b, c"; }`, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	compact := sheet.Serialize(true)
	if !strings.Contains(compact, `"a: b, c"`) {
		t.Errorf("expected quoted string spacing preserved verbatim, got %q", compact)
	}
}

func TestSetSelectorsNarrows(t *testing.T) {
	sheet, err := Parse(`h1, .unused { color: red; }`, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sheet.Rules[0].SetSelectors([]string{"h1"})
	css := sheet.Serialize(false)
	if strings.Contains(css, ".unused") {
		t.Errorf("expected narrowed selector list, got %q", css)
	}
	if !strings.Contains(css, "h1") {
		t.Errorf("expected h1 to survive, got %q", css)
	}
}
