package classify

import (
	"strings"
	"testing"
)

func TestFailureType_String(t *testing.T) {
	tests := []struct {
		ft   FailureType
		want string
	}{
		{FailureNone, "none"},
		{FailureQuota, "quota/rate_limit"},
		{FailureTimeout, "timeout"},
		{FailureNetwork, "network"},
		{FailurePermission, "permission"},
		{FailureLLM, "llm_failure"},
		{FailureIncomplete, "incomplete"},
		{FailureOther, "other"},
		{FailureUnknown, "unknown"},
		{FailureType(99), "unknown"},
	}

	for _, tc := range tests {
		if got := tc.ft.String(); got != tc.want {
			t.Errorf("FailureType(%d).String() = %q, want %q", tc.ft, got, tc.want)
		}
	}
}

func TestClassifier_Classify_Stderr(t *testing.T) {
	c := NewClassifier("claude", DefaultVocabulary())

	tests := []struct {
		name   string
		stderr string
		want   FailureType
	}{
		{
			name:   "rate limit",
			stderr: "Rate limit exceeded. Please wait.",
			want:   FailureQuota,
		},
		{
			name:   "429",
			stderr: "HTTP 429: Too Many Requests",
			want:   FailureQuota,
		},
		{
			name:   "capacity exhausted",
			stderr: "You have exhausted your capacity for this period",
			want:   FailureQuota,
		},
		{
			name:   "timeout",
			stderr: "request timed out after 120s",
			want:   FailureTimeout,
		},
		{
			name:   "network",
			stderr: "Connection refused",
			want:   FailureNetwork,
		},
		{
			name:   "socket",
			stderr: "socket hang up",
			want:   FailureNetwork,
		},
		{
			name:   "permission",
			stderr: "Access denied: insufficient scope",
			want:   FailurePermission,
		},
		{
			name:   "generic failure",
			stderr: "agent failed to produce feedback",
			want:   FailureLLM,
		},
		{
			name:   "unrecognized",
			stderr: "something unexpected happened",
			want:   FailureOther,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(tc.stderr, "")
			if got.Type != tc.want {
				t.Errorf("Classify(%q) = %v, want %v", tc.stderr, got.Type, tc.want)
			}
			if got.Message == "" {
				t.Errorf("Classify(%q) returned empty message", tc.stderr)
			}
		})
	}
}

func TestClassifier_Classify_Priority(t *testing.T) {
	// Text matching both timeout and network takes the first category in
	// priority order.
	c := NewClassifier("claude", DefaultVocabulary())

	got := c.Classify("connection timed out", "")
	if got.Type != FailureTimeout {
		t.Errorf("Classify ambiguous text = %v, want FailureTimeout", got.Type)
	}
}

func TestClassifier_Classify_InformationalBannerIsNotFailure(t *testing.T) {
	c := NewClassifier("gemini", DefaultVocabulary())

	tests := []struct {
		name   string
		stderr string
		want   FailureType
	}{
		{
			name:   "yolo banner only",
			stderr: "YOLO mode enabled: all tool calls automatically approved",
			want:   FailureNone,
		},
		{
			name:   "cached credentials only",
			stderr: "Loaded cached credentials.",
			want:   FailureNone,
		},
		{
			name:   "banner plus real error",
			stderr: "YOLO mode enabled\nError: model returned malformed response",
			want:   FailureLLM,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(tc.stderr, "")
			if got.Type != tc.want {
				t.Errorf("Classify(%q) = %v, want %v", tc.stderr, got.Type, tc.want)
			}
		})
	}
}

func TestClassifier_Classify_ErrorLineSkipsBanners(t *testing.T) {
	c := NewClassifier("gemini", DefaultVocabulary())

	stderr := "YOLO mode enabled: tools automatically approved\n" +
		"Loaded cached credentials.\n" +
		"Error: generation failed after 3 attempts"

	got := c.Classify(stderr, "")
	if got.Type != FailureLLM {
		t.Fatalf("Classify = %v, want FailureLLM", got.Type)
	}
	if got.Message != "Error: generation failed after 3 attempts" {
		t.Errorf("message = %q, want the error line", got.Message)
	}
}

func TestClassifier_Classify_QuotaMessageExtraction(t *testing.T) {
	c := NewClassifier("claude", DefaultVocabulary())

	t.Run("bracketed API error preferred", func(t *testing.T) {
		stderr := "request failed\n[API Error: rate limit exceeded, retry at 14:00]\nmore noise"
		got := c.Classify(stderr, "")
		if got.Type != FailureQuota {
			t.Fatalf("Classify = %v, want FailureQuota", got.Type)
		}
		if got.Message != "[API Error: rate limit exceeded, retry at 14:00]" {
			t.Errorf("message = %q, want bracketed span", got.Message)
		}
	})

	t.Run("falls back to quota line", func(t *testing.T) {
		stderr := "something went wrong\nyour quota resets at 3am\ntrailing"
		got := c.Classify(stderr, "")
		if got.Type != FailureQuota {
			t.Fatalf("Classify = %v, want FailureQuota", got.Type)
		}
		if got.Message != "your quota resets at 3am" {
			t.Errorf("message = %q, want quota line", got.Message)
		}
	})
}

func TestClassifier_Classify_IncompleteExecution(t *testing.T) {
	c := NewClassifier("claude", DefaultVocabulary())

	tests := []struct {
		name   string
		stdout string
		want   FailureType
	}{
		{
			name:   "started without success marker",
			stdout: "Marking student Ada Lovelace\nrunning cells...",
			want:   FailureIncomplete,
		},
		{
			name:   "feedback stage without success marker",
			stdout: "Creating final feedback for student",
			want:   FailureIncomplete,
		},
		{
			name:   "completed with checkmark",
			stdout: "Marking student Ada Lovelace\n✓ Completed Ada Lovelace",
			want:   FailureNone,
		},
		{
			name:   "unrelated stdout",
			stdout: "loading rubric",
			want:   FailureNone,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify("", tc.stdout)
			if got.Type != tc.want {
				t.Errorf("Classify(stdout=%q) = %v, want %v", tc.stdout, got.Type, tc.want)
			}
		})
	}
}

func TestClassifier_Classify_BothEmpty(t *testing.T) {
	c := NewClassifier("claude", DefaultVocabulary())

	got := c.Classify("", "")
	if got.Type != FailureNone {
		t.Errorf("Classify(empty, empty) = %v, want FailureNone", got.Type)
	}
	if got.Message != "" {
		t.Errorf("Classify(empty, empty) message = %q, want empty", got.Message)
	}
}

func TestClassifier_ProviderSpecificQuota(t *testing.T) {
	// "5-hour limit reached" is codex-specific phrasing; the common list
	// also matches it via "limit reached", so use a phrase unique to the
	// provider list.
	c := NewClassifier("codex", DefaultVocabulary())
	got := c.Classify("Try /extra-usage to continue", "")
	if got.Type != FailureQuota {
		t.Errorf("Classify codex-specific phrase = %v, want FailureQuota", got.Type)
	}

	other := NewClassifier("claude", DefaultVocabulary())
	got = other.Classify("Try /extra-usage to continue", "")
	if got.Type == FailureQuota {
		t.Errorf("codex phrase should not match for provider claude")
	}
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		provider string
		want     bool
	}{
		{"claude rate limit", "Rate limit exceeded. Please wait.", "claude", true},
		{"codex window", "5-hour limit reached, resets 3am", "codex", true},
		{"gemini resource", "RESOURCE_EXHAUSTED: quota metric exceeded", "gemini", true},
		{"ordinary error", "Error: file not found", "claude", false},
		{"empty", "", "claude", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsQuotaError(tc.output, tc.provider); got != tc.want {
				t.Errorf("IsQuotaError(%q, %q) = %v, want %v", tc.output, tc.provider, got, tc.want)
			}
		})
	}
}

func TestWriteQuotaWarning(t *testing.T) {
	var buf strings.Builder
	WriteQuotaWarning(&buf, "codex", "5-hour limit reached, resets 3am")

	out := buf.String()
	if !strings.Contains(out, "CODEX API QUOTA/RATE LIMIT REACHED") {
		t.Errorf("warning missing title: %q", out)
	}
	if !strings.Contains(out, "5-hour limit reached, resets 3am") {
		t.Errorf("warning missing extracted snippet")
	}
	if !strings.Contains(out, "Switch provider") {
		t.Errorf("warning missing switch-provider fallback")
	}
	if !strings.Contains(out, "resets at 3am") {
		t.Errorf("warning missing codex reset guidance")
	}
}

func TestVocabulary_WithProviderPatterns(t *testing.T) {
	vocab := DefaultVocabulary().WithProviderPatterns(map[string][]string{
		"claude": {"custom billing threshold hit"},
	})

	if !IsQuotaErrorWith("Custom billing threshold hit", "claude", vocab) {
		t.Errorf("merged provider pattern not matched")
	}

	// The base vocabulary must be unaffected.
	if IsQuotaError("custom billing threshold hit", "claude") {
		t.Errorf("default vocabulary mutated by merge")
	}
}
