// Package progress renders textual progress for marking runs. The
// reporters are purely presentational and stateless across runs: safe to
// omit entirely in a non-interactive deployment.
package progress

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	ruleStyle = lipgloss.NewStyle().Bold(true)
)

// DefaultBarWidth is the progress bar width when none is configured.
const DefaultBarWidth = 30

// Reporter renders two-level (activity, student) progress for structured
// assignments, or one-level progress when totalActivities is 1.
type Reporter struct {
	w               io.Writer
	totalActivities int
	totalStudents   int
	currentActivity int
	currentStudent  int
	bar             progress.Model
}

// NewReporter creates a reporter writing to w. barWidth <= 0 uses the
// default width.
func NewReporter(w io.Writer, totalActivities, totalStudents, barWidth int) *Reporter {
	if barWidth <= 0 {
		barWidth = DefaultBarWidth
	}
	return &Reporter{
		w:               w,
		totalActivities: totalActivities,
		totalStudents:   totalStudents,
		bar:             progress.New(progress.WithSolidFill("10"), progress.WithWidth(barWidth), progress.WithoutPercentage()),
	}
}

// Update redraws the progress line. activity and student are 1-based;
// pass 0 to keep the current value.
func (r *Reporter) Update(activity, student int, message string) {
	if activity > 0 {
		r.currentActivity = activity
	}
	if student > 0 {
		r.currentStudent = student
	}

	var pct float64
	var prefix string
	if r.totalActivities > 1 {
		// Structured assignment: progress over the flattened task index.
		total := r.totalActivities * r.totalStudents
		current := (r.currentActivity-1)*r.totalStudents + r.currentStudent
		if total > 0 {
			pct = float64(current) / float64(total)
		}
		prefix = fmt.Sprintf("[A%d/%d] [Student %d/%d]",
			r.currentActivity, r.totalActivities, r.currentStudent, r.totalStudents)
	} else {
		if r.totalStudents > 0 {
			pct = float64(r.currentStudent) / float64(r.totalStudents)
		}
		prefix = fmt.Sprintf("[Student %d/%d]", r.currentStudent, r.totalStudents)
	}

	fmt.Fprintf(r.w, "\r%s (%.1f%%) %s %s", prefix, pct*100, r.bar.ViewAs(pct), message)
}

// StartActivity announces a new activity and resets the student counter.
func (r *Reporter) StartActivity(activity int, name string) {
	r.currentActivity = activity
	r.currentStudent = 0
	suffix := ""
	if name != "" {
		suffix = " - " + name
	}
	rule := ruleStyle.Render("============================================================")
	fmt.Fprintf(r.w, "\n\n%s\n", rule)
	fmt.Fprintf(r.w, "Starting Activity %d/%d%s\n", activity, r.totalActivities, suffix)
	fmt.Fprintf(r.w, "%s\n", rule)
}

// StartStudent announces the start of one student's task.
func (r *Reporter) StartStudent(name string, idx int) {
	r.currentStudent = idx
	r.Update(0, 0, fmt.Sprintf("Processing %s...", name))
}

// CompleteStudent marks one student's task done.
func (r *Reporter) CompleteStudent(name string) {
	r.Update(0, 0, okStyle.Render("✓ Completed "+name))
	fmt.Fprintln(r.w)
}

// ErrorStudent reports a per-student failure.
func (r *Reporter) ErrorStudent(name, msg string) {
	fmt.Fprintf(r.w, "\n%s\n", errStyle.Render(fmt.Sprintf("✗ Error with %s: %s", name, msg)))
}

// CompleteActivity marks an activity done.
func (r *Reporter) CompleteActivity(activity int) {
	fmt.Fprintf(r.w, "\n%s\n", okStyle.Render(fmt.Sprintf("✓ Activity %d/%d completed", activity, r.totalActivities)))
}

// StageComplete announces the completion of a major pipeline stage.
func (r *Reporter) StageComplete(stage string) {
	rule := ruleStyle.Render("============================================================")
	fmt.Fprintf(r.w, "\n\n%s\n", rule)
	fmt.Fprintf(r.w, "%s\n", okStyle.Render("✓ "+stage+" completed"))
	fmt.Fprintf(r.w, "%s\n\n", rule)
}

// Simple is a one-level progress reporter for single-stage operations.
type Simple struct {
	w       io.Writer
	total   int
	current int
	prefix  string
	bar     progress.Model
}

// NewSimple creates a simple reporter writing to w.
func NewSimple(w io.Writer, total int, prefix string, barWidth int) *Simple {
	if barWidth <= 0 {
		barWidth = DefaultBarWidth
	}
	return &Simple{
		w:      w,
		total:  total,
		prefix: prefix,
		bar:    progress.New(progress.WithSolidFill("10"), progress.WithWidth(barWidth), progress.WithoutPercentage()),
	}
}

// Update redraws the progress line at the given position.
func (s *Simple) Update(current int, message string) {
	s.current = current
	var pct float64
	if s.total > 0 {
		pct = float64(current) / float64(s.total)
	}
	fmt.Fprintf(s.w, "\r%s: [%d/%d] (%.1f%%) %s %s", s.prefix, s.current, s.total, pct*100, s.bar.ViewAs(pct), message)
}

// Increment advances by one and redraws.
func (s *Simple) Increment(message string) {
	s.Update(s.current+1, message)
}

// Complete prints the final completion line.
func (s *Simple) Complete() {
	fmt.Fprintf(s.w, "\n%s\n", okStyle.Render(fmt.Sprintf("✓ %s completed (%d items)", s.prefix, s.total)))
}
