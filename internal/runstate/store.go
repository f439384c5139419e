package runstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gradeflow/gradeflow/internal/logging"
)

// StateFileName is the name of the persisted state file inside a run
// directory's logs folder.
const StateFileName = "state.json"

// Store manages the persisted RunState for one run directory. All
// mutating operations save immediately (write-through); saves are atomic
// so a concurrent reader or a crash never observes a half-written file.
//
// Store is not safe for concurrent use within a process; the pipeline is
// single-threaded by design and cross-process races are excluded by the
// dispatcher contract.
type Store struct {
	runDir string
	logger *logging.Logger
	state  *RunState
}

// Open loads the state for a run directory, creating fresh state if the
// file is absent or corrupt. Corruption never fails the open: the broken
// file is logged and replaced on the next save, because losing resume
// data is acceptable and crashing a marking run is not.
func Open(runDir string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	st := &Store{runDir: runDir, logger: logger}

	if err := os.MkdirAll(st.logsDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	st.state = st.load()
	return st, nil
}

// Path returns the state file path for this store's run directory.
func (s *Store) Path() string {
	return filepath.Join(s.logsDir(), StateFileName)
}

func (s *Store) logsDir() string {
	return filepath.Join(s.runDir, "logs")
}

// State returns the in-memory state snapshot. Callers must not mutate it
// directly; use the Mark* methods so changes are persisted.
func (s *Store) State() *RunState {
	return s.state
}

// load reads the persisted state, falling back to fresh state on any
// read or parse failure.
func (s *Store) load() *RunState {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("could not read state file, starting fresh", "path", s.Path(), "error", err)
		}
		return NewRunState()
	}

	var state RunState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("state file corrupt, starting fresh", "path", s.Path(), "error", err)
		return NewRunState()
	}
	if state.StartedAt.IsZero() {
		state.StartedAt = time.Now()
	}
	state.reindex()
	return &state
}

// Save persists the full state atomically, bumping UpdatedAt.
func (s *Store) Save() error {
	s.state.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := atomicWriteFile(s.Path(), data, 0644); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Reset discards all persisted state for the run directory. This is the
// only way a completed unit becomes incomplete again.
func (s *Store) Reset() error {
	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	s.state = NewRunState()
	return nil
}

// MarkStageComplete records the most recently finished pipeline stage.
func (s *Store) MarkStageComplete(stage string) error {
	s.state.LastStage = stage
	now := time.Now()
	s.state.CompletedAt = &now
	s.logger.Info("stage completed", "stage", stage)
	return s.Save()
}

// MarkActivityComplete records an activity as processed. Re-marking a
// completed activity is a no-op and does not rewrite the file.
func (s *Store) MarkActivityComplete(activity string) error {
	if !s.state.addActivity(activity) {
		return nil
	}
	return s.Save()
}

// MarkStudentComplete records a work unit as processed. Pass an empty
// activity for free-form assignments. Idempotent.
func (s *Store) MarkStudentComplete(student, activity string) error {
	if !s.state.addStudent(studentKey(student, activity)) {
		return nil
	}
	return s.Save()
}

// IsActivityComplete reports whether an activity has been processed.
// Dispatchers consult this to skip re-dispatching on resume.
func (s *Store) IsActivityComplete(activity string) bool {
	return s.state.HasActivity(activity)
}

// IsStudentComplete reports whether a work unit has been processed.
func (s *Store) IsStudentComplete(student, activity string) bool {
	return s.state.HasStudent(student, activity)
}

// atomicWriteFile writes data to a file atomically by writing to a
// temporary file in the same directory first, then renaming. The target
// is never observable in a partially-written state.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
