package classify

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// IsQuotaError reports whether the combined output of a single worker
// call indicates quota or rate-limit exhaustion for the given provider.
// It uses the same pattern set as the classifier's quota branch, so an
// interactive caller can warn immediately without running a batch scan.
func IsQuotaError(output, provider string) bool {
	return IsQuotaErrorWith(output, provider, DefaultVocabulary())
}

// IsQuotaErrorWith is IsQuotaError with an explicit vocabulary, for
// callers carrying configured pattern overrides.
func IsQuotaErrorWith(output, provider string, vocab Vocabulary) bool {
	lower := strings.ToLower(output)
	if containsAny(lower, vocab.QuotaCommon) {
		return true
	}
	return containsAny(lower, vocab.QuotaByProvider[provider])
}

var (
	quotaBannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	quotaErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	quotaGuideStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// WriteQuotaWarning renders a highly visible quota-exhaustion warning to
// w, with provider-specific remediation guidance. It is presentation only
// and never alters classification state.
func WriteQuotaWarning(w io.Writer, provider, output string) {
	rule := quotaBannerStyle.Render(strings.Repeat("=", 80))
	title := fmt.Sprintf("⚠  %s API QUOTA/RATE LIMIT REACHED  ⚠", strings.ToUpper(provider))

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, quotaBannerStyle.Render(title))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	if snippet := quotaSnippet(output); snippet != "" {
		fmt.Fprintln(w, quotaErrorStyle.Render("Error message: "+snippet))
		fmt.Fprintln(w)
	}

	name := providerDisplayName(provider)
	fmt.Fprintln(w, quotaGuideStyle.Render("What this means:"))
	fmt.Fprintf(w, "  • The %s API has run out of quota or hit a rate limit\n", name)
	fmt.Fprintln(w, "  • All completed work has been preserved (resume will skip completed tasks)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, quotaGuideStyle.Render("Options to continue:"))
	writeProviderGuidance(w, provider)
	fmt.Fprintln(w)

	fmt.Fprintln(w, quotaGuideStyle.Render("Resume capability:"))
	fmt.Fprintln(w, "  • Your progress is saved - no work will be lost")
	fmt.Fprintln(w, "  • When you re-run, only failed tasks will be processed")
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// quotaSnippet extracts the most informative single line from provider
// output: the first line mentioning a limit, quota, or reset time.
func quotaSnippet(output string) string {
	for _, line := range strings.Split(output, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "limit reached") || strings.Contains(lower, "resets") ||
			strings.Contains(lower, "quota") {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

// writeProviderGuidance emits remediation steps for the named provider.
// Reset windows differ: codex quotas reset on a fixed schedule, claude
// rate limits reset hourly or daily, gemini quotas reset daily.
func writeProviderGuidance(w io.Writer, provider string) {
	wait := func(detail string) {
		fmt.Fprintf(w, "  1. %s %s\n", quotaGuideStyle.Render("Wait for quota reset"), detail)
		fmt.Fprintln(w, "     Then re-run the same command - resume will pick up where it left off")
	}

	switch provider {
	case "codex":
		wait("(typically resets at 3am local time)")
		fmt.Fprintf(w, "  2. %s: Use '/upgrade to Max' or enable '/extra-usage'\n", quotaGuideStyle.Render("Upgrade plan"))
		fmt.Fprintf(w, "  3. %s: Configure provider 'claude' or 'gemini'\n", quotaGuideStyle.Render("Switch provider"))
	case "claude":
		wait("(typically resets hourly or daily)")
		fmt.Fprintf(w, "  2. %s: Consider Claude Pro or API tier upgrade\n", quotaGuideStyle.Render("Upgrade plan"))
		fmt.Fprintf(w, "  3. %s: Configure provider 'codex' or 'gemini'\n", quotaGuideStyle.Render("Switch provider"))
	case "gemini":
		wait("(typically resets daily)")
		fmt.Fprintf(w, "  2. %s: Consider Gemini Advanced or higher API tier\n", quotaGuideStyle.Render("Upgrade plan"))
		fmt.Fprintf(w, "  3. %s: Configure provider 'claude' or 'codex'\n", quotaGuideStyle.Render("Switch provider"))
	default:
		wait("and re-run")
		fmt.Fprintf(w, "  2. %s or switch to a different provider\n", quotaGuideStyle.Render("Upgrade plan"))
	}
}

func providerDisplayName(provider string) string {
	if provider == "" {
		return "provider"
	}
	return strings.ToUpper(provider[:1]) + provider[1:]
}
