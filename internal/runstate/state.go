// Package runstate persists per-run pipeline state so an interrupted
// marking run can resume without repeating completed work. State is a
// single JSON file per run directory, written atomically after every
// mutation. Completion is monotonic: a unit marked complete is never
// un-marked except by deleting the state file.
package runstate

import (
	"sort"
	"time"
)

// ChecksumRecord fingerprints a checkpoint artifact at a point in time.
// Re-recording the same label overwrites the prior entry.
type ChecksumRecord struct {
	Path       string    `json:"path"`
	Checksum   string    `json:"checksum"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RunState is the persisted snapshot of one assignment run.
type RunState struct {
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	LastStage   string     `json:"last_stage,omitempty"`

	// CompletedActivities and CompletedStudents are persisted as sorted
	// arrays for diff-stable state files; membership is checked through
	// the sets below.
	CompletedActivities []string `json:"completed_activities"`
	CompletedStudents   []string `json:"completed_students"`

	Checksums map[string]ChecksumRecord `json:"checksums"`

	activitySet map[string]struct{}
	studentSet  map[string]struct{}
}

// NewRunState returns a fresh state with StartedAt set to now.
func NewRunState() *RunState {
	s := &RunState{
		StartedAt:           time.Now(),
		CompletedActivities: []string{},
		CompletedStudents:   []string{},
		Checksums:           map[string]ChecksumRecord{},
	}
	s.reindex()
	return s
}

// reindex rebuilds the membership sets from the persisted slices.
// Called after construction and after unmarshaling.
func (s *RunState) reindex() {
	s.activitySet = make(map[string]struct{}, len(s.CompletedActivities))
	for _, a := range s.CompletedActivities {
		s.activitySet[a] = struct{}{}
	}
	s.studentSet = make(map[string]struct{}, len(s.CompletedStudents))
	for _, k := range s.CompletedStudents {
		s.studentSet[k] = struct{}{}
	}
	if s.Checksums == nil {
		s.Checksums = map[string]ChecksumRecord{}
	}
}

// studentKey derives the membership key for a work unit. A student with
// no activity is a distinct key from the same student under an activity;
// callers must use one key form consistently per assignment type.
func studentKey(student, activity string) string {
	if activity == "" {
		return student
	}
	return student + ":" + activity
}

// addActivity inserts an activity into the completed set. Returns false
// if it was already present.
func (s *RunState) addActivity(activity string) bool {
	if _, ok := s.activitySet[activity]; ok {
		return false
	}
	s.activitySet[activity] = struct{}{}
	s.CompletedActivities = append(s.CompletedActivities, activity)
	sort.Strings(s.CompletedActivities)
	return true
}

// addStudent inserts a work-unit key into the completed set. Returns
// false if it was already present.
func (s *RunState) addStudent(key string) bool {
	if _, ok := s.studentSet[key]; ok {
		return false
	}
	s.studentSet[key] = struct{}{}
	s.CompletedStudents = append(s.CompletedStudents, key)
	sort.Strings(s.CompletedStudents)
	return true
}

// HasActivity reports whether an activity is marked complete.
func (s *RunState) HasActivity(activity string) bool {
	_, ok := s.activitySet[activity]
	return ok
}

// HasStudent reports whether a work unit is marked complete.
func (s *RunState) HasStudent(student, activity string) bool {
	_, ok := s.studentSet[studentKey(student, activity)]
	return ok
}
