package progress

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWatchModel_CountsExistingTaskDirs(t *testing.T) {
	root := t.TempDir()
	batch := filepath.Join(root, "1")
	for _, dir := range []string{
		filepath.Join(batch, "mark --student 'Ada Lovelace'"),
		filepath.Join(batch, "mark --student 'Grace Hopper'"),
		filepath.Join(root, "mark --student 'Alan Turing'"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	m, err := NewWatchModel(root, 10, 20)
	if err != nil {
		t.Fatalf("NewWatchModel failed: %v", err)
	}
	defer m.close()

	// Batch group dirs are watched, not counted; task dirs are counted.
	if got := m.Count(); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
}

func TestWatchModel_QuitsWhenTotalReached(t *testing.T) {
	root := t.TempDir()
	m, err := NewWatchModel(root, 2, 20)
	if err != nil {
		t.Fatal(err)
	}
	defer m.close()

	_, cmd := m.Update(taskDirMsg(filepath.Join(root, "task-one")))
	if cmd == nil {
		t.Fatal("expected a follow-up command below total")
	}
	if m.Done() {
		t.Error("done before total reached")
	}

	_, _ = m.Update(taskDirMsg(filepath.Join(root, "task-two")))
	if !m.Done() {
		t.Error("not done after total reached")
	}
	if m.Count() != 2 {
		t.Errorf("Count = %d, want 2", m.Count())
	}
}

func TestWatchModel_DuplicateDirCountedOnce(t *testing.T) {
	root := t.TempDir()
	m, err := NewWatchModel(root, 5, 20)
	if err != nil {
		t.Fatal(err)
	}
	defer m.close()

	path := filepath.Join(root, "task-one")
	_, _ = m.Update(taskDirMsg(path))
	_, _ = m.Update(taskDirMsg(path))

	if m.Count() != 1 {
		t.Errorf("Count = %d, want 1", m.Count())
	}
}

func TestWatchModel_View(t *testing.T) {
	root := t.TempDir()
	m, err := NewWatchModel(root, 4, 20)
	if err != nil {
		t.Fatal(err)
	}
	defer m.close()

	_, _ = m.Update(taskDirMsg(filepath.Join(root, "task-one")))

	out := m.View()
	if !strings.Contains(out, "1/4 tasks dispatched") {
		t.Errorf("counter missing: %q", out)
	}
	if !strings.Contains(out, "press q to quit") {
		t.Errorf("quit hint missing: %q", out)
	}
}

func TestIsNumericName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"12", true},
		{"", false},
		{"batch-1", false},
	}
	for _, tc := range tests {
		if got := isNumericName(tc.in); got != tc.want {
			t.Errorf("isNumericName(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
