package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z0-9_]+)\}\}`)

// TemplateTokens lists the {{token}} placeholders in a prompt template, in
// order of first appearance.
func TemplateTokens(template string) []string {
	var tokens []string
	seen := map[string]struct{}{}
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		token := match[1]
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return tokens
}

// RenderTemplate substitutes {{token}} placeholders with field values using
// literal replacement. Leaving a placeholder unresolved is a caller error, so
// any token without a field value fails the render.
func RenderTemplate(template string, fields map[string]string) (string, error) {
	var missing []string
	rendered := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		token := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := fields[token]
		if !ok || strings.TrimSpace(value) == "" {
			missing = append(missing, token)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unresolved template placeholders: %s", strings.Join(missing, ", "))
	}
	return rendered, nil
}

// ResolvePrompt produces the final instruction for a transformation: the user
// text for custom-prompt transformations, otherwise the catalog prompt.
func ResolvePrompt(t Transformation, userPrompt string) string {
	if t.Prompt == CustomPrompt {
		return strings.TrimSpace(userPrompt)
	}
	return t.Prompt
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeField converts a templated-field value to uppercase ASCII: NFD
// decomposition strips combining accent marks, and the Vietnamese Đ, which
// does not decompose under NFD, is transliterated to a plain D. The rendered
// prompt feeds a payment-QR generator that only accepts ASCII bank-transfer
// fields. Normalizing an already-normalized string is a no-op.
func NormalizeField(value string) string {
	value = strings.ReplaceAll(value, "Đ", "D")
	value = strings.ReplaceAll(value, "đ", "d")
	stripped, _, err := transform.String(stripMarks, value)
	if err != nil {
		stripped = value
	}
	return strings.ToUpper(strings.TrimSpace(stripped))
}

// NormalizeFields applies NormalizeField to every value in the map, returning
// a new map.
func NormalizeFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = NormalizeField(v)
	}
	return out
}
