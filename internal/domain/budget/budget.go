// Package budget maps chat model identifiers to a context size ceiling in characters.
package budget

import (
	"strings"
	"unicode/utf8"
)

// DefaultLimit applies when no rule matches the model identifier.
const DefaultLimit = 16000

// Rule maps a model-name substring (usually the parameter count tag) to a character limit.
type Rule struct {
	Token string
	Limit int
}

// DefaultRules is evaluated top to bottom; the first rule whose token occurs in the
// lower-cased model name wins. The order is significant: "qwen3:14b" matches "4b" first.
var DefaultRules = []Rule{
	{Token: "1b", Limit: 4000},
	{Token: "2b", Limit: 6000},
	{Token: "3b", Limit: 8000},
	{Token: "4b", Limit: 10000},
	{Token: "7b", Limit: 14000},
	{Token: "8b", Limit: 16000},
	{Token: "14b", Limit: 22000},
	{Token: "32b", Limit: 30000},
	{Token: "70b", Limit: 45000},
	{Token: "110b", Limit: 60000},
	{Token: "480b", Limit: 100000},
}

// Table is an ordered list of rules plus a fallback limit.
type Table struct {
	rules    []Rule
	fallback int
}

// NewTable creates a Table. Rules keep the given order; non-positive limits and blank
// tokens are dropped. fallback <= 0 means DefaultLimit.
func NewTable(rules []Rule, fallback int) Table {
	kept := make([]Rule, 0, len(rules))
	for _, r := range rules {
		tok := strings.ToLower(strings.TrimSpace(r.Token))
		if tok == "" || r.Limit <= 0 {
			continue
		}
		kept = append(kept, Rule{Token: tok, Limit: r.Limit})
	}
	if fallback <= 0 {
		fallback = DefaultLimit
	}
	return Table{rules: kept, fallback: fallback}
}

// Default returns the built-in table.
func Default() Table {
	return NewTable(DefaultRules, DefaultLimit)
}

// LimitFor returns the character budget for a model identifier. Always > 0.
func (t Table) LimitFor(model string) int {
	lower := strings.ToLower(model)
	for _, r := range t.rules {
		if strings.Contains(lower, r.Token) {
			return r.Limit
		}
	}
	if t.fallback <= 0 {
		return DefaultLimit
	}
	return t.fallback
}

// Rules returns a copy of the table's rules in evaluation order.
func (t Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Clamp cuts text to at most limit characters (runes) and reports whether it did.
// limit <= 0 means unlimited. The cut is not word aware.
func Clamp(text string, limit int) (string, bool) {
	if limit <= 0 {
		return text, false
	}
	if len(text) <= limit {
		// byte length bounds rune count
		return text, false
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i], true
		}
		n++
	}
	return text, false
}

// Len returns the length of text in the unit Clamp uses.
func Len(text string) int {
	return utf8.RuneCountInString(text)
}
