package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record is one structured error captured during a marking run.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Student   string    `json:"student,omitempty"`
	Activity  string    `json:"activity,omitempty"`
	FilePath  string    `json:"file_path,omitempty"`
	Exception string    `json:"exception,omitempty"`
	Fatal     bool      `json:"fatal"`
}

// errorLog is the on-disk shape of the error file.
type errorLog struct {
	TotalErrors    int      `json:"total_errors"`
	FailedStudents []string `json:"failed_students"`
	Errors         []Record `json:"errors"`
}

// Tracker accumulates error records across a run and persists them to a
// per-session JSON file after every record, so the log survives a crash
// at any point. A fatal record terminates the process immediately after
// being persisted.
type Tracker struct {
	logger  *Logger
	path    string
	records []Record
	failed  []string
	exit    func(int)
}

// NewTracker creates a Tracker writing to a timestamped error file under
// {runDir}/logs. A nil logger discards log output.
func NewTracker(runDir string, logger *Logger) (*Tracker, error) {
	if logger == nil {
		logger = NopLogger()
	}
	logsDir := filepath.Join(runDir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	return &Tracker{
		logger: logger,
		path:   filepath.Join(logsDir, fmt.Sprintf("errors_%s.json", time.Now().Format("20060102_150405"))),
		exit:   os.Exit,
	}, nil
}

// Path returns the error log file path.
func (t *Tracker) Path() string {
	return t.path
}

// LogError records a structured error, persists the error file, and for
// fatal records terminates the process with exit status 1. Per-task
// failures must never be logged as fatal; fatal is reserved for
// conditions the caller judges unrecoverable, like required
// configuration being entirely absent.
func (t *Tracker) LogError(rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	t.records = append(t.records, rec)

	if rec.Student != "" && !contains(t.failed, rec.Student) {
		t.failed = append(t.failed, rec.Student)
	}

	args := []any{"type", rec.Type}
	if rec.Student != "" {
		args = append(args, "student", rec.Student)
	}
	if rec.Activity != "" {
		args = append(args, "activity", rec.Activity)
	}
	if rec.Exception != "" {
		args = append(args, "exception", rec.Exception)
	}
	t.logger.Error(rec.Message, args...)

	t.save()

	if rec.Fatal {
		t.logger.Error("fatal error encountered, stopping execution")
		t.exit(1)
	}
}

// save writes the error file. A write failure is logged and swallowed:
// the error log is an artifact of failure reporting and must never
// itself crash the run.
func (t *Tracker) save() {
	data, err := json.MarshalIndent(errorLog{
		TotalErrors:    len(t.records),
		FailedStudents: t.failedStudents(),
		Errors:         t.records,
	}, "", "  ")
	if err != nil {
		t.logger.Warn("could not marshal error log", "error", err)
		return
	}
	if err := os.WriteFile(t.path, data, 0644); err != nil {
		t.logger.Warn("could not save error log", "path", t.path, "error", err)
	}
}

func (t *Tracker) failedStudents() []string {
	if t.failed == nil {
		return []string{}
	}
	return t.failed
}

// Errors returns the records logged so far.
func (t *Tracker) Errors() []Record {
	return t.records
}

// FailedStudents returns the distinct students with at least one error,
// in first-failure order.
func (t *Tracker) FailedStudents() []string {
	return t.failedStudents()
}

// Summary holds roll-up counts for the end-of-run report.
type Summary struct {
	TotalErrors    int      `json:"total_errors"`
	FailedStudents int      `json:"failed_students"`
	FailedList     []string `json:"failed_student_list"`
}

// Summarize returns roll-up counts for the run.
func (t *Tracker) Summarize() Summary {
	return Summary{
		TotalErrors:    len(t.records),
		FailedStudents: len(t.failed),
		FailedList:     t.failedStudents(),
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
