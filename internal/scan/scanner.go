// Package scan walks the directory tree of captured worker output after
// a batch run, classifying each task's stdout/stderr, and cross-checks
// the submissions manifest against produced artifacts to surface silent
// failures. Individual I/O anomalies are logged and skipped: a scan over
// hundreds of students must never die on one unreadable file.
package scan

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gradeflow/gradeflow/internal/classify"
	"github.com/gradeflow/gradeflow/internal/logging"
)

const (
	// maxMessageLen caps the stored diagnostic message per failure.
	maxMessageLen = 500
	// maxStdoutSnippet caps the stored stdout context per failure.
	maxStdoutSnippet = 200
)

// TaskFailure describes one failed task discovered by scanning.
type TaskFailure struct {
	TaskDir       string `json:"task_dir"`
	StudentName   string `json:"student_name"`
	ErrorType     string `json:"error_type"`
	ErrorMessage  string `json:"error_message"`
	StdoutSnippet string `json:"stdout_snippet,omitempty"`
}

// Scanner discovers failed tasks in a batch output tree.
type Scanner struct {
	classifier *classify.Classifier
	logger     *logging.Logger
}

// NewScanner creates a scanner using the given classifier. A nil logger
// discards log output.
func NewScanner(classifier *classify.Classifier, logger *logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Scanner{classifier: classifier, logger: logger}
}

// ScanTasks walks the task directories under outputRoot, classifies each
// task's captured stdout/stderr, and returns the failures found, in
// directory discovery order.
//
// Batch dispatchers often group task directories under a numbered parent
// (e.g. "1/"); one level of such nesting is tolerated. When no numbered
// group exists, outputRoot itself is treated as the results directory.
func (s *Scanner) ScanTasks(outputRoot string) []TaskFailure {
	var failures []TaskFailure

	for _, resultsDir := range s.resultsDirs(outputRoot) {
		entries, err := os.ReadDir(resultsDir)
		if err != nil {
			s.logger.Warn("could not read results directory", "dir", resultsDir, "error", err)
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			taskDir := filepath.Join(resultsDir, entry.Name())
			if failure, ok := s.scanTask(taskDir, entry.Name()); ok {
				failures = append(failures, failure)
			}
		}
	}

	return failures
}

// resultsDirs returns the numbered batch subdirectories under root, or
// root itself when none exist.
func (s *Scanner) resultsDirs(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		s.logger.Warn("could not read output root", "dir", root, "error", err)
		return nil
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && isNumeric(entry.Name()) {
			dirs = append(dirs, filepath.Join(root, entry.Name()))
		}
	}
	if len(dirs) == 0 {
		return []string{root}
	}
	return dirs
}

// scanTask classifies one task directory. Returns false when the task
// shows no failure signal.
func (s *Scanner) scanTask(taskDir, dirName string) (TaskFailure, bool) {
	stderr := s.readCaptured(filepath.Join(taskDir, "stderr"))
	stdout := s.readCaptured(filepath.Join(taskDir, "stdout"))

	result := s.classifier.Classify(stderr, stdout)
	if !result.Type.IsFailure() {
		return TaskFailure{}, false
	}

	return TaskFailure{
		TaskDir:       taskDir,
		StudentName:   ExtractStudentName(dirName),
		ErrorType:     result.Type.String(),
		ErrorMessage:  truncate(result.Message, maxMessageLen),
		StdoutSnippet: truncate(strings.TrimSpace(stdout), maxStdoutSnippet),
	}, true
}

// readCaptured reads a captured output file, replacing invalid UTF-8
// rather than failing: worker output is arbitrary bytes.
func (s *Scanner) readCaptured(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("could not read captured output", "path", path, "error", err)
		}
		return ""
	}
	if !utf8.Valid(data) {
		data = []byte(strings.ToValidUTF8(string(data), "�"))
	}
	return string(data)
}

var (
	studentQuotedRe = regexp.MustCompile(`--student\s+'([^']+)'`)
	studentBareRe   = regexp.MustCompile(`--student\s+(\S+)`)
)

// ExtractStudentName derives the student name from a task directory
// name. Dispatchers name task directories after the full worker command
// line, so a --student argument is usually present; when it is not, a
// truncated copy of the directory name is returned so the failure still
// has an identifiable owner.
func ExtractStudentName(dirName string) string {
	if m := studentQuotedRe.FindStringSubmatch(dirName); m != nil {
		return m[1]
	}
	if m := studentBareRe.FindStringSubmatch(dirName); m != nil {
		return m[1]
	}
	if len(dirName) > 50 {
		return dirName[:50] + "..."
	}
	return dirName
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Cut on a rune boundary so truncation never produces invalid UTF-8.
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
