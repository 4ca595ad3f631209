package catalog

import (
	"strings"
	"testing"
)

func TestNormalizeFieldStripsAccentsAndTransliteratesD(t *testing.T) {
	got := NormalizeField("Nguyễn Văn Đức")
	want := "NGUYEN VAN DUC"
	if got != want {
		t.Fatalf("NormalizeField mismatch: got %q want %q", got, want)
	}
}

func TestNormalizeFieldIdempotent(t *testing.T) {
	once := NormalizeField("Trần Thị Đào")
	twice := NormalizeField(once)
	if once != twice {
		t.Fatalf("NormalizeField not idempotent: %q -> %q", once, twice)
	}
}

func TestNormalizeFieldPlainASCII(t *testing.T) {
	if got := NormalizeField("VIETCOMBANK"); got != "VIETCOMBANK" {
		t.Fatalf("expected ASCII input unchanged, got %q", got)
	}
}

func TestRenderTemplateSubstitutesTokens(t *testing.T) {
	rendered, err := RenderTemplate("transfer to {{bankName}} account {{accountNumber}}", map[string]string{
		"bankName":      "VCB",
		"accountNumber": "00123",
	})
	if err != nil {
		t.Fatalf("RenderTemplate returned error: %v", err)
	}
	if rendered != "transfer to VCB account 00123" {
		t.Fatalf("unexpected render: %q", rendered)
	}
}

func TestRenderTemplateFailsOnUnresolvedPlaceholder(t *testing.T) {
	_, err := RenderTemplate("pay {{bankName}} ref {{reference}}", map[string]string{
		"bankName": "VCB",
	})
	if err == nil {
		t.Fatal("expected error for unresolved placeholder")
	}
	if !strings.Contains(err.Error(), "reference") {
		t.Fatalf("error should name the missing token: %v", err)
	}
}

func TestTemplateTokensOrderAndDedup(t *testing.T) {
	tokens := TemplateTokens("{{a}} {{b}} {{a}} {{c}}")
	want := []string{"a", "b", "c"}
	if len(tokens) != len(want) {
		t.Fatalf("tokens mismatch: %v", tokens)
	}
	for i, tok := range want {
		if tokens[i] != tok {
			t.Fatalf("tokens[%d] = %q, want %q", i, tokens[i], tok)
		}
	}
}

func TestResolvePromptCustomSentinel(t *testing.T) {
	custom := Transformation{Key: "x", Prompt: CustomPrompt, Shape: ShapeSingle}
	if got := ResolvePrompt(custom, "  make it rain  "); got != "make it rain" {
		t.Fatalf("custom prompt not used: %q", got)
	}
	fixed := Transformation{Key: "y", Prompt: "fixed instruction", Shape: ShapeSingle}
	if got := ResolvePrompt(fixed, "ignored"); got != "fixed instruction" {
		t.Fatalf("fixed prompt overridden: %q", got)
	}
}
