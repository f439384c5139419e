package classify

import (
	"regexp"
	"strings"
)

// Result is the outcome of classifying one task's captured output.
type Result struct {
	// Type is FailureNone when no failure signal was found.
	Type FailureType

	// Message is the extracted diagnostic text. Empty for FailureNone.
	Message string
}

// apiErrorRe extracts a bracketed API error span, the most reliable
// diagnostic a provider CLI emits on quota exhaustion.
var apiErrorRe = regexp.MustCompile(`\[API Error:[^\]]*\]`)

// Classifier assigns failure categories to captured worker output.
// It is stateless after construction and safe for concurrent use.
type Classifier struct {
	provider string
	vocab    Vocabulary
}

// NewClassifier creates a classifier for output produced by the named
// provider CLI.
func NewClassifier(provider string, vocab Vocabulary) *Classifier {
	return &Classifier{provider: provider, vocab: vocab}
}

// Classify inspects a task's captured stderr (primary signal) and stdout
// (secondary signal) and returns the failure category plus an extracted
// diagnostic message.
//
// Categories are checked in a fixed priority order: quota, timeout,
// network, permission, llm_failure, other. The ordering is policy, not a
// property of the inputs; text matching multiple categories takes the
// first match.
func (c *Classifier) Classify(stderr, stdout string) Result {
	stderr = strings.TrimSpace(stderr)
	stdout = strings.TrimSpace(stdout)

	if stderr != "" {
		return c.classifyStderr(stderr)
	}
	if stdout != "" {
		return c.classifyStdout(stdout)
	}

	// No text signal at all. Silent failures are caught by the
	// missing-output audit, not here.
	return Result{Type: FailureNone}
}

func (c *Classifier) classifyStderr(stderr string) Result {
	lower := strings.ToLower(stderr)

	if c.matchesQuota(lower) {
		return Result{Type: FailureQuota, Message: extractQuotaMessage(stderr)}
	}
	if containsAny(lower, c.vocab.Timeout) {
		return Result{Type: FailureTimeout, Message: stderr}
	}
	if containsAny(lower, c.vocab.Network) {
		return Result{Type: FailureNetwork, Message: stderr}
	}
	if containsAny(lower, c.vocab.Permission) {
		return Result{Type: FailurePermission, Message: stderr}
	}
	if strings.Contains(lower, "failed") || strings.Contains(lower, "error") {
		return Result{Type: FailureLLM, Message: c.extractErrorLine(stderr)}
	}

	// A stderr that is nothing but informational banners is expected
	// tool noise, not a failure.
	if c.isInformationalOnly(lower) {
		return Result{Type: FailureNone}
	}

	return Result{Type: FailureOther, Message: stderr}
}

func (c *Classifier) classifyStdout(stdout string) Result {
	for _, marker := range c.vocab.StartMarkers {
		if strings.Contains(stdout, marker) && !strings.Contains(stdout, c.vocab.SuccessMarker) {
			return Result{
				Type:    FailureIncomplete,
				Message: "Task started but did not complete successfully",
			}
		}
	}
	return Result{Type: FailureNone}
}

// matchesQuota checks the common quota phrases plus the provider-specific
// list for this classifier's provider.
func (c *Classifier) matchesQuota(lower string) bool {
	if containsAny(lower, c.vocab.QuotaCommon) {
		return true
	}
	return containsAny(lower, c.vocab.QuotaByProvider[c.provider])
}

// isInformationalOnly reports whether the stderr contains an informational
// banner and no error/failure keyword.
func (c *Classifier) isInformationalOnly(lower string) bool {
	if !containsAny(lower, c.vocab.Informational) {
		return false
	}
	return !strings.Contains(lower, "failed") && !strings.Contains(lower, "error")
}

// extractQuotaMessage pulls the most specific quota diagnostic out of a
// stderr blob: a bracketed [API Error: ...] span when present, otherwise
// the first line mentioning quota, limit, capacity, or reset.
func extractQuotaMessage(stderr string) string {
	if m := apiErrorRe.FindString(stderr); m != "" {
		return m
	}
	for _, line := range strings.Split(stderr, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "quota") || strings.Contains(lower, "limit") ||
			strings.Contains(lower, "capacity") || strings.Contains(lower, "reset") {
			return strings.TrimSpace(line)
		}
	}
	return stderr
}

// extractErrorLine returns the first stderr line that still contains
// "error" or "failed" after skipping informational banners.
func (c *Classifier) extractErrorLine(stderr string) string {
	for _, line := range strings.Split(stderr, "\n") {
		lower := strings.ToLower(line)
		if containsAny(lower, c.vocab.Informational) {
			continue
		}
		if strings.Contains(lower, "error") || strings.Contains(lower, "failed") {
			return strings.TrimSpace(line)
		}
	}
	return stderr
}

// containsAny reports whether text contains any of the given substrings.
// Patterns are assumed to already be lowercase.
func containsAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
