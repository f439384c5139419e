package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	content := `{
		"submissions": [
			{"student_name": "Ada Lovelace", "path": "subs/ada.ipynb", "extra": "ignored"},
			{"student_name": "Grace Hopper", "path": "subs/grace.ipynb"}
		],
		"schema_version": 2
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if len(m.Submissions) != 2 {
		t.Fatalf("got %d submissions, want 2", len(m.Submissions))
	}
	if m.Submissions[0].StudentName != "Ada Lovelace" || m.Submissions[0].Path != "subs/ada.ipynb" {
		t.Errorf("first submission = %+v", m.Submissions[0])
	}
}

func TestLoadManifest_Errors(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("no error for missing manifest")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(bad); err == nil {
		t.Error("no error for malformed manifest")
	}
}

func TestAuditMissing_PreservesManifestOrder(t *testing.T) {
	finalDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(finalDir, FeedbackFileName("Grace Hopper")), []byte("ok"), 0644); err != nil {
		t.Fatal(err)
	}

	manifest := &Manifest{Submissions: []Submission{
		{StudentName: "Katherine Johnson", Path: "subs/katherine.ipynb"},
		{StudentName: "Grace Hopper", Path: "subs/grace.ipynb"},
		{StudentName: "Ada Lovelace", Path: "subs/ada.ipynb"},
	}}

	missing := AuditMissing(manifest, finalDir)

	if len(missing) != 2 {
		t.Fatalf("got %d missing, want 2", len(missing))
	}
	if missing[0].StudentName != "Katherine Johnson" || missing[1].StudentName != "Ada Lovelace" {
		t.Errorf("missing order = [%s, %s], want manifest order", missing[0].StudentName, missing[1].StudentName)
	}
}

func TestAuditMissing_AllPresent(t *testing.T) {
	finalDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(finalDir, FeedbackFileName("Ada Lovelace")), []byte("ok"), 0644); err != nil {
		t.Fatal(err)
	}

	manifest := &Manifest{Submissions: []Submission{
		{StudentName: "Ada Lovelace", Path: "subs/ada.ipynb"},
	}}

	if missing := AuditMissing(manifest, finalDir); len(missing) != 0 {
		t.Errorf("got %d missing, want 0", len(missing))
	}
}

func TestFeedbackFileName(t *testing.T) {
	if got := FeedbackFileName("Ada Lovelace"); got != "Ada Lovelace_feedback.md" {
		t.Errorf("FeedbackFileName = %q", got)
	}
}
