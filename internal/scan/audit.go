package scan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Submission is one entry from the submissions manifest. Unknown fields
// are ignored; only the student name and path matter to the audit.
type Submission struct {
	StudentName string `json:"student_name"`
	Path        string `json:"path"`
}

// Manifest is the input manifest listing every scheduled work unit.
type Manifest struct {
	Submissions []Submission `json:"submissions"`
}

// MissingOutput describes a manifest entry with no produced artifact: a
// silent failure invisible to text scanning, typically a worker that
// crashed before writing anything at all.
type MissingOutput struct {
	StudentName    string `json:"student_name"`
	ExpectedFile   string `json:"expected_file"`
	SubmissionPath string `json:"submission_path"`
}

// LoadManifest reads and parses a submissions manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// FeedbackFileName returns the deterministic output artifact name for a
// student. The dispatcher and the auditor must agree on this mapping.
func FeedbackFileName(student string) string {
	return student + "_feedback.md"
}

// AuditMissing cross-references the manifest against finalDir and
// returns every submission whose expected feedback artifact does not
// exist, in manifest order.
func AuditMissing(manifest *Manifest, finalDir string) []MissingOutput {
	var missing []MissingOutput
	for _, sub := range manifest.Submissions {
		expected := filepath.Join(finalDir, FeedbackFileName(sub.StudentName))
		if _, err := os.Stat(expected); err == nil {
			continue
		}
		missing = append(missing, MissingOutput{
			StudentName:    sub.StudentName,
			ExpectedFile:   expected,
			SubmissionPath: sub.Path,
		})
	}
	return missing
}
