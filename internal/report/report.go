// Package report renders the consolidated failure report for a pipeline
// stage: a deterministic human-readable summary plus a machine-readable
// JSON counterpart with identical facts. The only externally
// load-bearing contract is exit signaling: the invoking CLI must exit
// non-zero whenever failures or missing outputs are present.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gradeflow/gradeflow/internal/scan"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	headStyle = lipgloss.NewStyle().Bold(true)
)

// Report aggregates one stage's scan and audit results.
type Report struct {
	Stage          string               `json:"stage"`
	Timestamp      time.Time            `json:"timestamp"`
	Failures       []scan.TaskFailure   `json:"failures"`
	MissingOutputs []scan.MissingOutput `json:"missing_outputs"`
}

// summary is the roll-up section of the JSON report.
type summary struct {
	TotalFailures int            `json:"total_failures"`
	TotalMissing  int            `json:"total_missing"`
	ByErrorType   map[string]int `json:"by_error_type"`
}

// New builds a report for a stage. The timestamp is taken at build time.
func New(stage string, failures []scan.TaskFailure, missing []scan.MissingOutput) *Report {
	return &Report{
		Stage:          stage,
		Timestamp:      time.Now(),
		Failures:       failures,
		MissingOutputs: missing,
	}
}

// HasIssues reports whether any failure or missing output exists. True
// means the invoking process must exit non-zero so scripted resume loops
// can distinguish "done" from "retry".
func (r *Report) HasIssues() bool {
	return len(r.Failures) > 0 || len(r.MissingOutputs) > 0
}

// byType groups failures by error type, preserving discovery order
// within each group.
func (r *Report) byType() (map[string][]scan.TaskFailure, []string) {
	groups := make(map[string][]scan.TaskFailure)
	for _, f := range r.Failures {
		groups[f.ErrorType] = append(groups[f.ErrorType], f)
	}
	types := make([]string, 0, len(groups))
	for t := range groups {
		types = append(types, t)
	}
	sort.Strings(types)
	return groups, types
}

// hasType reports whether any failure carries the given error type.
func (r *Report) hasType(errorType string) bool {
	for _, f := range r.Failures {
		if f.ErrorType == errorType {
			return true
		}
	}
	return false
}

// Render produces the human-readable report text.
func (r *Report) Render() string {
	var b strings.Builder
	rule := strings.Repeat("=", 70)
	thin := strings.Repeat("-", 70)

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "ERROR SUMMARY REPORT - %s\n", strings.ToUpper(r.Stage))
	fmt.Fprintf(&b, "Generated: %s\n", r.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b)

	total := len(r.Failures) + len(r.MissingOutputs)
	fmt.Fprintf(&b, "SUMMARY: %d issue(s) found\n", total)
	fmt.Fprintf(&b, "  - Task failures: %d\n", len(r.Failures))
	fmt.Fprintf(&b, "  - Missing outputs: %d\n", len(r.MissingOutputs))
	fmt.Fprintln(&b)

	if !r.HasIssues() {
		fmt.Fprintln(&b, okStyle.Render("✓ No errors detected!"))
		fmt.Fprintln(&b)
		return b.String()
	}

	if len(r.Failures) > 0 {
		fmt.Fprintln(&b, thin)
		fmt.Fprintln(&b, headStyle.Render("FAILED TASKS BY ERROR TYPE"))
		fmt.Fprintln(&b, thin)
		fmt.Fprintln(&b)

		groups, types := r.byType()
		for _, errorType := range types {
			failures := groups[errorType]
			fmt.Fprintf(&b, "## %s (%d failures)\n\n", strings.ToUpper(errorType), len(failures))
			for _, f := range failures {
				fmt.Fprintf(&b, "  Student: %s\n", f.StudentName)
				if f.ErrorMessage != "" {
					fmt.Fprintf(&b, "  Error: %s\n", firstLine(f.ErrorMessage, 100))
				}
				fmt.Fprintln(&b)
			}
		}
	}

	if len(r.MissingOutputs) > 0 {
		fmt.Fprintln(&b, thin)
		fmt.Fprintln(&b, headStyle.Render("MISSING OUTPUT FILES"))
		fmt.Fprintln(&b, thin)
		fmt.Fprintln(&b)
		for _, m := range r.MissingOutputs {
			fmt.Fprintf(&b, "  Student: %s\n", m.StudentName)
			fmt.Fprintf(&b, "  Expected: %s\n", m.ExpectedFile)
			fmt.Fprintln(&b)
		}
	}

	r.renderRecommendations(&b, thin)
	return b.String()
}

// renderRecommendations emits remediation bullets only for the failure
// types actually present.
func (r *Report) renderRecommendations(b *strings.Builder, thin string) {
	fmt.Fprintln(b, thin)
	fmt.Fprintln(b, headStyle.Render("RECOMMENDATIONS"))
	fmt.Fprintln(b, thin)
	fmt.Fprintln(b)

	if r.hasType("quota/rate_limit") {
		fmt.Fprintln(b, "• QUOTA/RATE LIMIT errors detected:")
		fmt.Fprintln(b, "  - Wait for quota reset (check provider docs for reset time)")
		fmt.Fprintln(b, "  - Re-run the same command to retry only failed tasks")
		fmt.Fprintln(b)
	}
	if r.hasType("timeout") {
		fmt.Fprintln(b, "• TIMEOUT errors detected:")
		fmt.Fprintln(b, "  - Try reducing parallelism to lower concurrency")
		fmt.Fprintln(b, "  - Check network connection stability")
		fmt.Fprintln(b)
	}
	if r.hasType("incomplete") {
		fmt.Fprintln(b, "• INCOMPLETE tasks detected:")
		fmt.Fprintln(b, "  - The worker may have failed to generate output")
		fmt.Fprintln(b, "  - Re-run to retry - resume will skip completed tasks")
		fmt.Fprintln(b)
	}
	if r.hasType("llm_failure") {
		fmt.Fprintln(b, "• LLM FAILURE errors detected:")
		fmt.Fprintln(b, "  - The LLM agent failed to complete the task")
		fmt.Fprintln(b, "  - This may be due to context length, API issues, or prompt problems")
		fmt.Fprintln(b, "  - Re-run to retry - resume will skip completed tasks")
		fmt.Fprintln(b)
	}

	fmt.Fprintln(b, "To retry failed tasks, re-run the same command - resume is automatic.")
	fmt.Fprintln(b)
}

// MarshalJSON emits the machine-readable counterpart with the same facts
// as the rendered text, plus roll-up counts.
func (r *Report) MarshalJSON() ([]byte, error) {
	byType := make(map[string]int)
	for _, f := range r.Failures {
		byType[f.ErrorType]++
	}

	failures := r.Failures
	if failures == nil {
		failures = []scan.TaskFailure{}
	}
	missing := r.MissingOutputs
	if missing == nil {
		missing = []scan.MissingOutput{}
	}

	return json.Marshal(struct {
		Stage          string               `json:"stage"`
		Timestamp      string               `json:"timestamp"`
		Failures       []scan.TaskFailure   `json:"failures"`
		MissingOutputs []scan.MissingOutput `json:"missing_outputs"`
		Summary        summary              `json:"summary"`
	}{
		Stage:          r.Stage,
		Timestamp:      r.Timestamp.Format(time.RFC3339),
		Failures:       failures,
		MissingOutputs: missing,
		Summary: summary{
			TotalFailures: len(r.Failures),
			TotalMissing:  len(r.MissingOutputs),
			ByErrorType:   byType,
		},
	})
}

// firstLine returns the first line of s, capped at max bytes.
func firstLine(s string, max int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > max {
		s = s[:max]
	}
	return s
}
