package main

import (
	"regexp"
	"strings"
	"unicode"
)

// SubstitutionResult is the outcome of one substitution attempt.
type SubstitutionResult struct {
	Text    string
	Applied bool
}

// substitutionStrategy tries to replace oldValue with newValue inside
// context. ok=false means the strategy did not match and the cascade
// should move on.
type substitutionStrategy func(context, oldValue, newValue string) (string, bool)

// substitutionStrategies is the ordered cascade. Each strategy runs only
// if every strategy before it failed; the first success wins.
var substitutionStrategies = []substitutionStrategy{
	substituteExact,
	substituteTolerant,
	substituteNumericCore,
}

// AttemptSubstitution replaces oldValue with newValue inside context
// using the strategy cascade. Model-extracted values often differ from
// the literal text in spacing and unit formatting, so an exact match is
// tried first and progressively looser matches after it. When nothing
// matches, the context is returned unchanged with Applied=false.
func AttemptSubstitution(context, oldValue, newValue string) SubstitutionResult {
	if context == "" || oldValue == "" {
		return SubstitutionResult{Text: context, Applied: false}
	}
	for _, strategy := range substitutionStrategies {
		if out, ok := strategy(context, oldValue, newValue); ok {
			return SubstitutionResult{Text: out, Applied: true}
		}
	}
	return SubstitutionResult{Text: context, Applied: false}
}

// substituteExact replaces the first verbatim occurrence of oldValue.
// First-occurrence-only keeps re-renders deterministic when the same
// number appears twice in one sentence.
func substituteExact(context, oldValue, newValue string) (string, bool) {
	if !strings.Contains(context, oldValue) {
		return "", false
	}
	return strings.Replace(context, oldValue, newValue, 1), true
}

// substituteTolerant matches oldValue ignoring whitespace differences.
// It first checks the whitespace-stripped forms to avoid building a
// pattern that cannot match, then locates the first tolerant match in
// the original context and replaces that exact span.
func substituteTolerant(context, oldValue, newValue string) (string, bool) {
	if stripWhitespace(oldValue) == "" {
		return "", false
	}
	if !strings.Contains(stripWhitespace(context), stripWhitespace(oldValue)) {
		return "", false
	}
	re, err := tolerantPattern(oldValue)
	if err != nil {
		return "", false
	}
	loc := re.FindStringIndex(context)
	if loc == nil {
		return "", false
	}
	return context[:loc[0]] + newValue + context[loc[1]:], true
}

// tolerantPattern builds a regexp from oldValue where digits match
// literally, commas are optional with optional trailing space, and all
// other characters tolerate surrounding whitespace.
func tolerantPattern(oldValue string) (*regexp.Regexp, error) {
	var b strings.Builder
	first := true
	for _, r := range oldValue {
		if unicode.IsSpace(r) {
			continue
		}
		if !first {
			b.WriteString(`\s*`)
		}
		first = false
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',':
			b.WriteString(`,?\s*`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return regexp.Compile(b.String())
}

// numericCoreRe extracts the leading numeric token of a value: digits
// with optional comma groups and at most one decimal point.
var numericCoreRe = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// substituteNumericCore replaces just the numeric token of oldValue with
// the numeric token of newValue, leaving units and surrounding text
// alone. Last resort before giving up: it only fires when the old token
// appears verbatim, so an unrelated number cannot be rewritten.
func substituteNumericCore(context, oldValue, newValue string) (string, bool) {
	oldToken := numericCoreRe.FindString(oldValue)
	newToken := numericCoreRe.FindString(newValue)
	if oldToken == "" || newToken == "" {
		return "", false
	}
	if !strings.Contains(context, oldToken) {
		return "", false
	}
	return strings.Replace(context, oldToken, newToken, 1), true
}

// HighlightValue wraps the first occurrence of value in text with **
// markers for presentation. Purely cosmetic: when the value cannot be
// located (exactly or tolerantly) the text comes back unchanged, and the
// caller's substitution result is unaffected.
func HighlightValue(text, value string) string {
	if text == "" || value == "" {
		return text
	}
	if idx := strings.Index(text, value); idx >= 0 {
		return text[:idx] + "**" + value + "**" + text[idx+len(value):]
	}
	re, err := tolerantPattern(value)
	if err != nil {
		return text
	}
	loc := re.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + "**" + text[loc[0]:loc[1]] + "**" + text[loc[1]:]
}

func stripWhitespace(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
