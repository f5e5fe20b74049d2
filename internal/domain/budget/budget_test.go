package budget

import (
	"strings"
	"testing"
)

func TestLimitFor(t *testing.T) {
	table := Default()

	tests := []struct {
		model string
		want  int
	}{
		{"qwen3:4b", 10000},
		{"unknown-model", 16000},
		{"", 16000},
		{"llama3.2:1b", 4000},
		{"gemma2:2b", 6000},
		{"QWEN2.5:7B", 14000},
		{"llama3.1:8b", 16000},
		// "32b" contains "2b", which comes first in the table
		{"qwen2.5:32b", 6000},
		{"llama3.1:70b", 45000},
		{"qwen3-coder:480b", 100000},
		// first textual match wins: "14b" contains "4b"
		{"qwen3:14b", 10000},
		{"qwen:110b", 60000},
	}

	for _, tc := range tests {
		t.Run(tc.model, func(t *testing.T) {
			if got := table.LimitFor(tc.model); got != tc.want {
				t.Errorf("LimitFor(%q) = %d, want %d", tc.model, got, tc.want)
			}
		})
	}
}

func TestNewTable_PreservesOrder(t *testing.T) {
	table := NewTable([]Rule{
		{Token: "14B", Limit: 22000},
		{Token: "4b", Limit: 10000},
	}, 0)

	if got := table.LimitFor("qwen3:14b"); got != 22000 {
		t.Errorf("custom order: got %d, want 22000", got)
	}
	if got := table.LimitFor("nomatch"); got != DefaultLimit {
		t.Errorf("fallback: got %d, want %d", got, DefaultLimit)
	}
}

func TestNewTable_DropsInvalidRules(t *testing.T) {
	table := NewTable([]Rule{
		{Token: "", Limit: 100},
		{Token: "1b", Limit: 0},
		{Token: "2b", Limit: -5},
		{Token: "3b", Limit: 300},
	}, 5000)

	rules := table.Rules()
	if len(rules) != 1 || rules[0].Token != "3b" {
		t.Fatalf("expected only 3b rule, got %+v", rules)
	}
	if got := table.LimitFor("llama:1b"); got != 5000 {
		t.Errorf("got %d, want fallback 5000", got)
	}
}

func TestTable_ZeroValueIsPositive(t *testing.T) {
	var table Table
	if got := table.LimitFor("anything"); got <= 0 {
		t.Errorf("zero Table must still return a positive limit, got %d", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		limit     int
		want      string
		truncated bool
	}{
		{"unlimited zero", "hello", 0, "hello", false},
		{"unlimited negative", "hello", -1, "hello", false},
		{"shorter", "hi", 5, "hi", false},
		{"exact", "hello", 5, "hello", false},
		{"longer", "hello world", 5, "hello", true},
		{"empty", "", 3, "", false},
		{"multibyte exact", "привет", 6, "привет", false},
		{"multibyte cut", "привет мир", 6, "привет", true},
		{"mixed", "añb€c", 3, "añb", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, truncated := Clamp(tc.text, tc.limit)
			if got != tc.want || truncated != tc.truncated {
				t.Errorf("Clamp(%q, %d) = (%q, %v), want (%q, %v)",
					tc.text, tc.limit, got, truncated, tc.want, tc.truncated)
			}
		})
	}
}

func TestClamp_Idempotent(t *testing.T) {
	texts := []string{"", "a", "hello world", strings.Repeat("ж", 50), "mixed ascii и кириллица"}
	for _, text := range texts {
		for n := 0; n <= 60; n++ {
			once, _ := Clamp(text, n)
			twice, truncated := Clamp(once, n)
			if twice != once {
				t.Fatalf("Clamp not idempotent for %q, n=%d: %q vs %q", text, n, once, twice)
			}
			if truncated {
				t.Fatalf("second Clamp reported truncation for %q, n=%d", text, n)
			}
		}
	}
}

func TestClamp_LengthProperty(t *testing.T) {
	text := strings.Repeat("абв", 20) // 60 runes
	for limit := 1; limit <= 80; limit++ {
		got, truncated := Clamp(text, limit)
		if Len(text) > limit {
			if !truncated || Len(got) != limit {
				t.Fatalf("limit %d: truncated=%v len=%d", limit, truncated, Len(got))
			}
		} else if truncated || got != text {
			t.Fatalf("limit %d: expected unchanged text", limit)
		}
	}
}
