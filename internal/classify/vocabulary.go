package classify

// Vocabulary holds the phrase lists the classifier matches against.
// All matching is case-insensitive substring search. The lists are data,
// not logic: new provider error phrasings can be added via configuration
// without touching the decision procedure.
type Vocabulary struct {
	// QuotaCommon are quota/rate-limit phrases shared by all providers.
	QuotaCommon []string

	// QuotaByProvider maps a provider name to its specific quota
	// phrasings, checked in addition to QuotaCommon.
	QuotaByProvider map[string][]string

	// Timeout, Network, and Permission are category phrase lists checked
	// after quota, in that order.
	Timeout    []string
	Network    []string
	Permission []string

	// Informational are lines that look alarming but are expected tool
	// noise (approval-mode banners, cached-credential notices). They are
	// skipped during message extraction, and a stderr consisting solely
	// of them is not a failure.
	Informational []string

	// StartMarkers are stdout phrases proving a worker began its task.
	StartMarkers []string

	// SuccessMarker is the glyph a worker prints on task completion.
	SuccessMarker string
}

// DefaultVocabulary returns the built-in phrase lists. The quota lists
// cover the provider CLIs observed in production marking runs.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		QuotaCommon: []string{
			"rate limit",
			"quota exceeded",
			"usage limit",
			"limit reached",
			"too many requests",
			"quota has been exceeded",
			"rate_limit_exceeded",
			"resource_exhausted",
			"resource exhausted",
			"exhausted your capacity",
		},
		QuotaByProvider: map[string][]string{
			"codex": {
				"5-hour limit reached",
				"resets 3am",
				"/upgrade to max",
				"/extra-usage",
				"daily limit",
				"usage cap",
			},
			"claude": {
				"rate limit exceeded",
				"usage limits",
				"maximum requests",
				"quota exceeded",
				"overloaded_error",
			},
			"gemini": {
				"quota exceeded",
				"rate limit",
				"resource exhausted",
				"quota_exceeded",
				"rate_limit_error",
			},
		},
		Timeout: []string{
			"timeout",
			"timed out",
		},
		Network: []string{
			"connection",
			"network",
			"socket",
		},
		Permission: []string{
			"permission",
			"access denied",
		},
		Informational: []string{
			"yolo mode",
			"automatically approved",
			"cached credentials",
		},
		StartMarkers: []string{
			"Creating final feedback",
			"Marking student",
		},
		SuccessMarker: "✓",
	}
}

// WithProviderPatterns returns a copy of the vocabulary with extra quota
// phrases merged in for the named providers. Used to apply pattern
// overrides from configuration.
func (v Vocabulary) WithProviderPatterns(extra map[string][]string) Vocabulary {
	if len(extra) == 0 {
		return v
	}
	merged := make(map[string][]string, len(v.QuotaByProvider)+len(extra))
	for provider, patterns := range v.QuotaByProvider {
		merged[provider] = patterns
	}
	for provider, patterns := range extra {
		merged[provider] = append(merged[provider], patterns...)
	}
	v.QuotaByProvider = merged
	return v
}
