package logging

import (
	"encoding/json"
	"os"
	"testing"
)

func TestTracker_LogError_PersistsAfterEveryRecord(t *testing.T) {
	tracker, err := NewTracker(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}

	tracker.LogError(Record{
		Type:    "file_error",
		Message: "could not read notebook",
		Student: "Ada Lovelace",
	})

	data, err := os.ReadFile(tracker.Path())
	if err != nil {
		t.Fatalf("error file not written: %v", err)
	}

	var got struct {
		TotalErrors    int      `json:"total_errors"`
		FailedStudents []string `json:"failed_students"`
		Errors         []Record `json:"errors"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("error file is not valid JSON: %v", err)
	}
	if got.TotalErrors != 1 || len(got.Errors) != 1 {
		t.Errorf("total_errors = %d, errors = %d, want 1/1", got.TotalErrors, len(got.Errors))
	}
	if len(got.FailedStudents) != 1 || got.FailedStudents[0] != "Ada Lovelace" {
		t.Errorf("failed_students = %v", got.FailedStudents)
	}
	if got.Errors[0].Timestamp.IsZero() {
		t.Error("record timestamp not stamped")
	}
}

func TestTracker_FailedStudents_Dedupe(t *testing.T) {
	tracker, err := NewTracker(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}

	tracker.LogError(Record{Type: "llm_failure", Message: "first", Student: "Ada Lovelace"})
	tracker.LogError(Record{Type: "timeout", Message: "second", Student: "Ada Lovelace"})
	tracker.LogError(Record{Type: "timeout", Message: "third", Student: "Grace Hopper"})
	tracker.LogError(Record{Type: "config", Message: "no student attached"})

	failed := tracker.FailedStudents()
	if len(failed) != 2 {
		t.Fatalf("FailedStudents = %v, want 2 distinct", failed)
	}
	// First-failure order.
	if failed[0] != "Ada Lovelace" || failed[1] != "Grace Hopper" {
		t.Errorf("FailedStudents order = %v", failed)
	}

	s := tracker.Summarize()
	if s.TotalErrors != 4 || s.FailedStudents != 2 {
		t.Errorf("Summary = %+v", s)
	}
}

func TestTracker_Fatal_PersistsThenExits(t *testing.T) {
	tracker, err := NewTracker(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}

	exitCode := -1
	tracker.exit = func(code int) { exitCode = code }

	tracker.LogError(Record{Type: "config", Message: "run directory missing", Fatal: true})

	if exitCode != 1 {
		t.Errorf("exit code = %d, want 1", exitCode)
	}
	// The record must hit disk before the process dies.
	data, err := os.ReadFile(tracker.Path())
	if err != nil {
		t.Fatalf("error file not written before exit: %v", err)
	}
	var got errorLog
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.TotalErrors != 1 || !got.Errors[0].Fatal {
		t.Errorf("persisted log = %+v", got)
	}
}

func TestTracker_EmptyFailedStudentsIsNonNil(t *testing.T) {
	tracker, err := NewTracker(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}

	tracker.LogError(Record{Type: "config", Message: "anonymous error"})

	data, err := os.ReadFile(tracker.Path())
	if err != nil {
		t.Fatal(err)
	}
	// failed_students must serialize as [], not null.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["failed_students"]) == "null" {
		t.Error("failed_students serialized as null")
	}
}
